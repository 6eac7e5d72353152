// Package serializer encodes lookup results into the wire format sent to clients.
//
// A miss is always the bare 7 byte marker NOENTRY. A hit is a JSON object keyed by the
// canonical term:
//
//	{"HELLO": {"noun": ["a greeting", "an expression of surprise"]}}
//
// Two formats are available:
//
//   - text (default): byte for byte what Python's json.dumps produces, i.e. ", " and ": "
//     separators and every non-ASCII character escaped as \uXXXX
//   - compact: the same document without whitespace
//
// Both keep the order of categories and of nested objects as found in the dataset.
package serializer
