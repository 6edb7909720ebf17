package extract

import (
	"bytes"
	"fmt"
)

var magicBytes = map[FileKind][][]byte{
	KindPDF: {[]byte("%PDF")},
	// docx is a ZIP container, so any of the ZIP local header signatures.
	KindWord: {[]byte("PK\x03\x04"), []byte("PK\x05\x06"), []byte("PK\x07\x08")},
}

const textSampleSize = 1024

// ValidateSignature checks that the content matches the claimed kind: magic
// bytes for binary formats, a printable-ratio heuristic for plain text. It is
// a cheap best-effort gate before the real parsers, not a format validator.
func ValidateSignature(data []byte, kind FileKind) error {
	if kind == KindText {
		sample := data
		if len(sample) > textSampleSize {
			sample = sample[:textSampleSize]
		}
		if len(sample) == 0 {
			return nil
		}
		control := 0
		for _, b := range sample {
			if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
				control++
			}
		}
		if float64(control)/float64(len(sample)) > 0.1 {
			return badInput(CodeSignatureMismatch, "File appears to be binary")
		}
		return nil
	}

	sigs := magicBytes[kind]
	if len(sigs) == 0 {
		return nil
	}
	for _, sig := range sigs {
		if bytes.HasPrefix(data, sig) {
			return nil
		}
	}
	return badInput(CodeSignatureMismatch, fmt.Sprintf("File content does not match %s format", kind))
}
