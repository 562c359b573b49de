package crashreport

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// DecodeText converts raw artifact bytes to text. Attempts run in order and
// the first success wins: UTF-16 (BOM-marked or detected by its NUL
// pattern), UTF-8 with an optional BOM, then Latin-1.
func DecodeText(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if dec := utf16Decoder(raw); dec != nil {
		if out, err := dec.Bytes(raw); err == nil && utf8.Valid(out) {
			return string(out)
		}
	}
	if body := bytes.TrimPrefix(raw, utf8BOM); utf8.Valid(body) {
		return string(body)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// utf16Decoder returns a decoder when raw looks like UTF-16, or nil.
// BOM-less input qualifies only when it is even-length and most NUL bytes
// sit in one byte lane, covering at least half of the code units. Code
// points such as U+0100 put a NUL in the other lane and are tolerated.
func utf16Decoder(raw []byte) *encoding.Decoder {
	switch {
	case bytes.HasPrefix(raw, utf16LEBOM):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case bytes.HasPrefix(raw, utf16BEBOM):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	}
	if len(raw) < 2 || len(raw)%2 != 0 {
		return nil
	}

	var evenNUL, oddNUL int
	for i, b := range raw {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			evenNUL++
		} else {
			oddNUL++
		}
	}
	pairs := len(raw) / 2
	switch {
	case oddNUL > evenNUL && oddNUL*2 >= pairs:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	case evenNUL > oddNUL && evenNUL*2 >= pairs:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	}
	return nil
}
