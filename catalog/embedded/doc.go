// Package embedded patches the JSON flavour of the catalog.
//
// A JSON catalog keeps its entry table and per-entry extra data as base64
// blobs. Bundle request options live in the extra data as tagged records:
//
//	byte    tag (7 = JSON object)
//	int32   assembly name length, then ASCII bytes
//	int32   class name length, then ASCII bytes
//	int32   document length in bytes, then the document (UTF-16LE or UTF-8)
//
// The document slot has a fixed byte budget. Rewritten documents must fit in
// it; the length prefix is authoritative, so left-over bytes in the slot are
// never read.
//
// Both the outer catalog and the embedded documents are parsed with a
// lenient grammar that allows comments and trailing commas. Untouched parts
// of the outer document keep their original formatting.
package embedded
