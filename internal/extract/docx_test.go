package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	doc.WriteString(`<w:document xmlns:w="` + wordNamespace + `"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>`)
		doc.WriteString(p)
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	return buildZip(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   doc.String(),
	})
}

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	e := newTestExtractor(Config{})
	data := buildDocx(t, "First paragraph of the letter.", "Second paragraph, slightly longer.")

	got, err := e.extractDocx(context.Background(), data)
	require.NoError(t, err)
	require.Equal(t, "First paragraph of the letter.\n\nSecond paragraph, slightly longer.", got)
}

func TestExtractDocxSkipsBlankParagraphs(t *testing.T) {
	e := newTestExtractor(Config{})
	data := buildDocx(t, "Opening.", "", "   ", "Closing.")

	got, err := e.extractDocx(context.Background(), data)
	require.NoError(t, err)
	require.Equal(t, "Opening.\n\nClosing.", got)
}

func TestExtractDocxSplitTextRuns(t *testing.T) {
	// A paragraph holding several runs is joined back into one line.
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="` + wordNamespace + `"><w:body>` +
		`<w:p><w:r><w:t>split </w:t></w:r><w:r><w:t>across</w:t></w:r><w:r><w:t> runs</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	e := newTestExtractor(Config{})
	data := buildZip(t, map[string]string{"word/document.xml": doc})

	got, err := e.extractDocx(context.Background(), data)
	require.NoError(t, err)
	require.Equal(t, "split across runs", got)
}

func TestExtractDocxParagraphCap(t *testing.T) {
	e := newTestExtractor(Config{MaxDocxParagraphs: 3})
	data := buildDocx(t, "P1", "P2", "P3", "P4", "P5")

	got, err := e.extractDocx(context.Background(), data)
	require.NoError(t, err)
	require.Equal(t, "P1\n\nP2\n\nP3", got)
}

func TestExtractDocxEmptyDocument(t *testing.T) {
	e := newTestExtractor(Config{})
	data := buildDocx(t, "", "  ")

	_, err := e.extractDocx(context.Background(), data)
	requireExtractError(t, err, CodeNoExtractableText)
}

func TestExtractDocxNotAZip(t *testing.T) {
	e := newTestExtractor(Config{})

	_, err := e.extractDocx(context.Background(), []byte("PK\x03\x04 but then garbage"))
	xerr := requireExtractError(t, err, CodeMalformedDocument)
	require.Equal(t, "Invalid DOCX file format", xerr.Message)
}

func TestExtractDocxMissingDocumentPart(t *testing.T) {
	e := newTestExtractor(Config{})
	data := buildZip(t, map[string]string{"word/styles.xml": "<styles/>"})

	_, err := e.extractDocx(context.Background(), data)
	requireExtractError(t, err, CodeMalformedDocument)
}

func TestExtractDocxZipBomb(t *testing.T) {
	e := newTestExtractor(Config{MaxDecompressedBytes: 256})
	data := buildDocx(t, strings.Repeat("padding far beyond the declared limit ", 50))

	_, err := e.extractDocx(context.Background(), data)
	xerr := requireExtractError(t, err, CodeZipBomb)
	require.Equal(t, "File content is too large when decompressed", xerr.Message)
}

func TestExtractDocxZipBombChecksDeclaredSizesFirst(t *testing.T) {
	// One oversized entry that is not even the document body must trip the
	// guard before any XML is parsed.
	e := newTestExtractor(Config{MaxDecompressedBytes: 1024})
	data := buildZip(t, map[string]string{
		"word/document.xml": `<?xml version="1.0"?><w:document xmlns:w="` + wordNamespace + `"><w:body><w:p><w:r><w:t>tiny</w:t></w:r></w:p></w:body></w:document>`,
		"word/media/pad.bin": strings.Repeat("0123456789abcdef", 256), // 4 KiB declared
	})

	_, err := e.extractDocx(context.Background(), data)
	requireExtractError(t, err, CodeZipBomb)
}

func TestExtractDocxMalformedXML(t *testing.T) {
	e := newTestExtractor(Config{})
	data := buildZip(t, map[string]string{
		"word/document.xml": `<w:document xmlns:w="` + wordNamespace + `"><w:body><w:p><w:r><w:t>unclosed`,
	})

	_, err := e.extractDocx(context.Background(), data)
	xerr := requireExtractError(t, err, CodeMalformedDocument)
	require.Equal(t, "Failed to read Word document. Please ensure it's a valid .docx file.", xerr.Message)
}

func TestClassifyDocxError(t *testing.T) {
	require.Equal(t, CodeProtectedDocument, classifyDocxError(errors.New("document is encrypted")).Code)
	require.Equal(t, CodeProtectedDocument, classifyDocxError(errors.New("Password required")).Code)
	require.Equal(t, CodeMalformedDocument, classifyDocxError(errors.New("XML syntax error on line 1")).Code)
}
