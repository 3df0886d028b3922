package nodeid

// noIndex marks a segment that was not produced by an indexed embedding.
const noIndex = -1

// PathSegment is one embedding step of a task address, such as
// `segment[3]` or `from_start`.
type PathSegment struct {
	Name  string
	Index int
}

// NewPathSegment returns an unindexed segment.
func NewPathSegment(name string) PathSegment {
	return PathSegment{Name: name, Index: noIndex}
}

// NewPathSegmentWithIndex returns a segment for the index-th embedding of name.
func NewPathSegmentWithIndex(name string, index int) PathSegment {
	return PathSegment{Name: name, Index: index}
}

func (ps PathSegment) HasIndex() bool {
	return ps.Index != noIndex
}

// Address locates a task inside a composed task graph. Embedding a segment
// prepends the embedding site, so the first segment is the outermost one.
type Address struct {
	Path []PathSegment
}

// New builds an address from the given segments.
func New(segments ...PathSegment) *Address {
	path := make([]PathSegment, len(segments))
	copy(path, segments)
	return &Address{Path: path}
}
