package tabular

import (
	"bytes"
	"unicode/utf8"
)

// utf8BOM is the byte order mark Windows tools prepend to UTF-8 files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText strips a leading BOM and replaces invalid UTF-8 so the CSV
// state machine only ever sees valid text.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	return string(sanitizeUTF8(data))
}

// sanitizeUTF8 replaces each invalid byte with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
