// Package extract converts untrusted uploaded documents into clean, bounded
// plaintext. The pipeline runs strictly forward: filename sanitization, type
// resolution, size check, signature check, format-specific extraction, text
// sanitization, length bounds. Any failure short-circuits with an *Error.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/alxdev/echocheck-backend/pkg/logger"
)

// FileKind identifies a supported upload format.
type FileKind string

const (
	KindText FileKind = "txt"
	KindPDF  FileKind = "pdf"
	KindWord FileKind = "docx"
)

var kindByExt = map[string]FileKind{
	".txt":  KindText,
	".pdf":  KindPDF,
	".docx": KindWord,
}

// Result is the outcome of a successful pipeline run.
type Result struct {
	Text     string
	Kind     FileKind
	Filename string
}

// Default resource limits.
const (
	DefaultMaxFileBytes         = 10 << 20
	DefaultMaxPDFPages          = 500
	DefaultMaxDocxParagraphs    = 10000
	DefaultMaxDecompressedBytes = 50 << 20
	DefaultMinTextLen           = 10
	DefaultMaxTextLen           = 50000

	// Extraction stops accumulating once this many characters were collected,
	// independent of the final MaxTextLen truncation.
	extractedTextSoftCap = 100000
)

// Config holds the pipeline's resource limits. Zero fields take defaults.
type Config struct {
	MaxFileBytes         int64
	MaxPDFPages          int
	MaxDocxParagraphs    int
	MaxDecompressedBytes int64
	MinTextLen           int
	MaxTextLen           int
	AllowedExtensions    []string
}

func (c Config) withDefaults() Config {
	if c.MaxFileBytes <= 0 {
		c.MaxFileBytes = DefaultMaxFileBytes
	}
	if c.MaxPDFPages <= 0 {
		c.MaxPDFPages = DefaultMaxPDFPages
	}
	if c.MaxDocxParagraphs <= 0 {
		c.MaxDocxParagraphs = DefaultMaxDocxParagraphs
	}
	if c.MaxDecompressedBytes <= 0 {
		c.MaxDecompressedBytes = DefaultMaxDecompressedBytes
	}
	if c.MinTextLen <= 0 {
		c.MinTextLen = DefaultMinTextLen
	}
	if c.MaxTextLen <= 0 {
		c.MaxTextLen = DefaultMaxTextLen
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = []string{".txt", ".pdf", ".docx"}
	}
	return c
}

// Extractor runs the ingestion pipeline. It is stateless apart from its
// read-only configuration and is safe for concurrent use.
type Extractor struct {
	cfg    Config
	logger logger.Logger
}

// NewExtractor creates an extractor with the given limits.
func NewExtractor(cfg Config, log logger.Logger) *Extractor {
	return &Extractor{
		cfg:    cfg.withDefaults(),
		logger: log,
	}
}

// Config returns the effective limits.
func (e *Extractor) Config() Config {
	return e.cfg
}

// KindForFilename resolves the file kind from the extension of an already
// sanitized filename. The declared content type is advisory only and never
// trusted; the extension is authoritative.
func (e *Extractor) KindForFilename(filename, contentType string) (FileKind, error) {
	ext := ""
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		ext = strings.ToLower(filename[i:])
	}

	kind, ok := kindByExt[ext]
	if !ok || !e.extensionAllowed(ext) {
		return "", badInput(CodeUnsupportedType,
			fmt.Sprintf("Unsupported file type. Allowed types: %s", strings.Join(e.cfg.AllowedExtensions, ", ")))
	}
	return kind, nil
}

func (e *Extractor) extensionAllowed(ext string) bool {
	for _, allowed := range e.cfg.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// readAll reads the upload into memory, enforcing the empty and size bounds.
func (e *Extractor) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.cfg.MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, badInput(CodeEmptyFile, "File is empty")
	}
	if int64(len(data)) > e.cfg.MaxFileBytes {
		return nil, newError(CodeTooLarge, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File too large. Maximum size: %dMB", e.cfg.MaxFileBytes>>20))
	}
	return data, nil
}

// ExtractText runs the full pipeline over one upload and returns the clean
// text, the resolved kind and the sanitized filename.
func (e *Extractor) ExtractText(ctx context.Context, r io.Reader, filename, contentType string) (*Result, error) {
	safeName, err := SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	kind, err := e.KindForFilename(safeName, contentType)
	if err != nil {
		return nil, err
	}

	data, err := e.readAll(r)
	if err != nil {
		return nil, err
	}

	if err := ValidateSignature(data, kind); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var text string
	switch kind {
	case KindText:
		text, err = e.extractPlainText(data)
	case KindPDF:
		text, err = e.extractPDF(ctx, data)
	case KindWord:
		text, err = e.extractDocx(ctx, data)
	default:
		err = badInput(CodeUnsupportedType, "Unsupported file type")
	}
	if err != nil {
		return nil, err
	}

	text = SanitizeText(text)

	n := utf8.RuneCountInString(text)
	if n < e.cfg.MinTextLen {
		return nil, badInput(CodeTextTooShort,
			fmt.Sprintf("Extracted text is too short (minimum %d characters)", e.cfg.MinTextLen))
	}
	if n > e.cfg.MaxTextLen {
		text = string([]rune(text)[:e.cfg.MaxTextLen])
		n = e.cfg.MaxTextLen
	}

	e.logger.Info("document text extracted",
		logger.String("filename", safeName),
		logger.String("file_type", string(kind)),
		logger.Int("chars", n),
	)

	return &Result{Text: text, Kind: kind, Filename: safeName}, nil
}
