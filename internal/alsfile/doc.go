// Package alsfile reads and writes Live Set containers.
//
// A container is a gzip-compressed XML document. Decode turns the bytes into
// a generic attributed tree of RawNode values that keeps attribute order and
// child order, which is the only representation that survives an encode/decode
// round trip. Comments and processing instructions are dropped; the XML
// declaration is kept verbatim and written back by Encode.
//
// Decode and Encode are pure transforms. ReadFile and WriteFile are thin
// wrappers for callers that want the codec to touch the filesystem.
package alsfile
