package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"
)

const docxDocumentPath = "word/document.xml"

// extractDocx reads the document body out of a .docx upload in two phases.
// Phase one opens the ZIP container and bounds the declared uncompressed
// sizes before anything is inflated. Phase two streams word/document.xml
// through the XML token decoder, which resolves no external entities,
// collecting non-blank paragraph text up to the paragraph cap.
func (e *Extractor) extractDocx(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", badInput(CodeMalformedDocument, "Invalid DOCX file format")
	}

	maxBytes := uint64(e.cfg.MaxDecompressedBytes)
	var total uint64
	for _, f := range zr.File {
		if f.UncompressedSize64 > maxBytes {
			return "", zipBomb()
		}
		total += f.UncompressedSize64
		if total > maxBytes {
			return "", zipBomb()
		}
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == docxDocumentPath {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", badInput(CodeMalformedDocument,
			"Failed to read Word document. Please ensure it's a valid .docx file.")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", classifyDocxError(err)
	}
	defer rc.Close()

	var (
		parts     []string
		current   strings.Builder
		inPara    bool
		inText    bool
		paraCount int
	)

	dec := xml.NewDecoder(rc)
loop:
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", classifyDocxError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				paraCount++
				if paraCount > e.cfg.MaxDocxParagraphs {
					break loop
				}
				inPara = true
				current.Reset()
			case "t":
				if inPara {
					inText = true
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara {
					inPara = false
					if text := current.String(); strings.TrimSpace(text) != "" {
						parts = append(parts, text)
					}
				}
			}
		}
	}

	if len(parts) == 0 {
		return "", badInput(CodeNoExtractableText,
			"Could not extract text from document. The file may be empty.")
	}

	return strings.Join(parts, "\n\n"), nil
}

func zipBomb() *Error {
	return badInput(CodeZipBomb, "File content is too large when decompressed")
}

func classifyDocxError(err error) *Error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "encrypt") || strings.Contains(msg, "password") {
		return badInput(CodeProtectedDocument,
			"Document is password-protected. Please provide an unencrypted file.")
	}
	return badInput(CodeMalformedDocument,
		"Failed to read Word document. Please ensure it's a valid .docx file.")
}
