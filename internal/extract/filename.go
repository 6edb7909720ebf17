package extract

import (
	"strings"
	"unicode/utf8"
)

// SanitizeFilename normalizes an untrusted filename into a safe basename.
// Directory components are dropped regardless of separator style, NUL bytes
// are removed, and surrounding dots and spaces are stripped. The operation
// is idempotent.
func SanitizeFilename(name string) (string, error) {
	if name == "" {
		return "", badInput(CodeInvalidFilename, "Filename is required")
	}

	s := strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.Trim(s, ". ")

	if utf8.RuneCountInString(s) > 255 {
		if i := strings.LastIndexByte(s, '.'); i >= 0 {
			stem := []rune(s[:i])
			if len(stem) > 250 {
				stem = stem[:250]
			}
			s = string(stem) + "." + s[i+1:]
		} else {
			s = string([]rune(s)[:255])
		}
	}

	if s == "" {
		return "", badInput(CodeInvalidFilename, "Invalid filename")
	}
	return s, nil
}
