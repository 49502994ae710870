package bitio

import "unicode/utf8"

// isValidUTF8 reports whether b is well-formed UTF-8, used to validate
// decoded String field values.
func isValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}
