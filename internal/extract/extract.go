// Package extract pulls plain text out of uploaded resume and JD documents.
// Extraction is best-effort: any parser failure yields an empty string so the
// caller can decide how to handle an unreadable document.
package extract

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Text extracts plain text from a document, dispatching on the file
// extension. Unknown extensions are treated as plain text. It never returns
// an error; unreadable input degrades to "".
func Text(data []byte, filename string) string {
	if len(data) == 0 {
		return ""
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return pdfText(data)
	case ".docx":
		return docxText(data)
	default:
		return plainText(data)
	}
}

// pdfText collects text from every readable page. The pdf library panics on
// some malformed xref tables, so the whole pass runs under recover.
func pdfText(data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}

	return builder.String()
}

func docxText(data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	defer doc.Close()

	return stripTags(doc.Editable().GetContent())
}

// plainText decodes bytes as UTF-8, falling back to a Latin-1 read when the
// data is not valid UTF-8. Latin-1 maps every byte to a rune, so the fallback
// cannot fail and legacy-encoded accented text stays readable.
func plainText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// stripTags flattens document XML into text, with newlines at paragraph
// boundaries.
func stripTags(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")

	var builder strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}
