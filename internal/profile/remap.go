package profile

import "maps"

// Remapping rewrites requested profile names per task:
// remap[task][requested] is the name the task should look up instead.
type Remapping map[string]map[string]string

// Set records that task should use name whenever requested is asked for.
func (m Remapping) Set(task, requested, name string) {
	inner, ok := m[task]
	if !ok {
		inner = make(map[string]string)
		m[task] = inner
	}
	inner[requested] = name
}

// Clone returns a deep copy of m.
func (m Remapping) Clone() Remapping {
	if m == nil {
		return nil
	}
	out := make(Remapping, len(m))
	for task, inner := range m {
		out[task] = maps.Clone(inner)
	}
	return out
}

// Equal reports whether m and o hold the same entries. Nil and empty are equal.
func (m Remapping) Equal(o Remapping) bool {
	if len(m) != len(o) {
		return false
	}
	for task, inner := range m {
		other, ok := o[task]
		if !ok || !maps.Equal(inner, other) {
			return false
		}
	}
	return true
}

// ResolveName returns the name task should look up for requested.
func ResolveName(requested, task string, remap Remapping) string {
	if name, ok := remap[task][requested]; ok {
		return name
	}
	return requested
}
