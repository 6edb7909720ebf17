package extract

import (
	"regexp"
	"strings"
)

var (
	// C0 and C1 control characters minus tab, newline and carriage return.
	controlCharRe = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\x9F]`)
	hspaceRunRe   = regexp.MustCompile(`[ \t]+`)
	newlineRunRe  = regexp.MustCompile("\n{3,}")
)

// SanitizeText strips control characters and normalizes whitespace. It is a
// total function, idempotent, and applied both to extracted document text and
// to text submitted directly for classification.
func SanitizeText(s string) string {
	s = controlCharRe.ReplaceAllString(s, "")
	s = hspaceRunRe.ReplaceAllString(s, " ")
	s = newlineRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
