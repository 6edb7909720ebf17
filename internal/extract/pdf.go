package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls plain text out of a PDF page by page. The parser panics
// on some malformed inputs, so the whole extraction runs under a recover
// that reports the panic as a parse failure.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = classifyPDFError(fmt.Errorf("pdf parser panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", classifyPDFError(err)
	}

	numPages := reader.NumPage()
	if numPages > e.cfg.MaxPDFPages {
		return "", badInput(CodeTooManyPages,
			fmt.Sprintf("PDF has too many pages (max %d)", e.cfg.MaxPDFPages))
	}

	var parts []string
	total := 0
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", classifyPDFError(err)
		}
		if pageText == "" {
			continue
		}

		parts = append(parts, pageText)
		total += utf8.RuneCountInString(pageText)
		if total > extractedTextSoftCap {
			break
		}
	}

	if len(parts) == 0 {
		return "", badInput(CodeNoExtractableText,
			"Could not extract text from PDF. The file may be scanned/image-based or empty.")
	}

	return strings.Join(parts, "\n\n"), nil
}

func classifyPDFError(err error) *Error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") {
		return badInput(CodeProtectedDocument,
			"PDF is password-protected. Please provide an unencrypted file.")
	}
	return badInput(CodeMalformedDocument,
		"Failed to read PDF file. Please ensure it's a valid PDF.")
}
