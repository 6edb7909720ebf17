package extract

import "net/http"

// Rejection codes. Every failure the pipeline can produce carries exactly
// one of these.
const (
	CodeInvalidFilename   = "invalid_filename"
	CodeUnsupportedType   = "unsupported_type"
	CodeEmptyFile         = "empty_file"
	CodeTooLarge          = "too_large"
	CodeSignatureMismatch = "signature_mismatch"
	CodeUndecodableText   = "undecodable_text"
	CodeTooManyPages      = "too_many_pages"
	CodeProtectedDocument = "protected_document"
	CodeNoExtractableText = "no_extractable_text"
	CodeMalformedDocument = "malformed_document"
	CodeZipBomb           = "zip_bomb"
	CodeTextTooShort      = "text_too_short"
)

// Error is a terminal, non-retryable rejection of an upload. Status is the
// HTTP status class the boundary should answer with: 413 for too_large,
// 400 for everything else.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func badInput(code, message string) *Error {
	return newError(code, http.StatusBadRequest, message)
}
