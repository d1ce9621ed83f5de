// Package graph walks the binary catalog's offset graph.
//
// A binary catalog stores every structure at a byte offset and references it
// from other structures by that offset alone. Identical sub-objects are
// interned, so one location list, provider id or data object may be reached
// from many keys. The walker follows
//
//	keys -> location lists -> locations -> provider id
//	                                    -> extra data -> request options (checksum)
//
// visiting every offset at most once, and produces a Plan: the absolute
// offsets of the non-zero checksum words that belong to AssetBundleProvider
// locations. The walk never writes; patching the plan is the job of the
// inplace package.
//
// Strings are referenced with two flag bits above a 30-bit offset
// (format.StringFlagUnicode, format.StringFlagDynamic). Dynamic strings are
// linked lists of fragments; see StringDecoder.
package graph
