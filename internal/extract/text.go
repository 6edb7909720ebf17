package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// extractPlainText decodes a text upload. A byte-order mark decides the
// encoding outright; otherwise an ordered list of encodings is tried and the
// first decode producing non-blank text wins. Latin-1 accepts any byte
// sequence, so in practice this only fails on blank content.
func (e *Extractor) extractPlainText(data []byte) (string, error) {
	if bytes.HasPrefix(data, bomUTF8) {
		rest := data[len(bomUTF8):]
		if !utf8.Valid(rest) {
			return "", undecodableText()
		}
		return string(rest), nil
	}
	if bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return "", undecodableText()
		}
		return string(out), nil
	}

	if utf8.Valid(data) {
		if t := string(data); usableText(t) {
			return t, nil
		}
	}
	for _, enc := range []encoding.Encoding{charmap.ISO8859_1, charmap.Windows1252} {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		if t := string(out); usableText(t) {
			return t, nil
		}
	}

	return "", undecodableText()
}

func usableText(s string) bool {
	return s != "" && strings.TrimSpace(s) != ""
}

func undecodableText() *Error {
	return badInput(CodeUndecodableText,
		"Could not decode text file. Please ensure it uses a standard encoding (UTF-8 recommended).")
}
