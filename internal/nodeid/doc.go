/*
Package nodeid provides a structured representation for task graph node
identifiers.

The format is a dot-separated sequence of segments, e.g.
`raster.segment[3].totg`. Embedding one task graph into another prefixes
every embedded node address with the segment that names the embedding
site, so ids stay unique across arbitrarily nested generators.
*/
package nodeid
