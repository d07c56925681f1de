package extract

import (
	"strings"
	"testing"
)

func TestTextPlainFiles(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{
			name:     "txt passthrough",
			filename: "resume.txt",
			data:     []byte("John Doe\nBackend Engineer"),
			want:     "John Doe\nBackend Engineer",
		},
		{
			name:     "markdown passthrough",
			filename: "jd.md",
			data:     []byte("# Senior Go Developer\n\n5+ years"),
			want:     "# Senior Go Developer\n\n5+ years",
		},
		{
			name:     "unknown extension treated as text",
			filename: "notes.rtfx",
			data:     []byte("plain content"),
			want:     "plain content",
		},
		{
			name:     "no extension",
			filename: "resume",
			data:     []byte("content without extension"),
			want:     "content without extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.data, tt.filename); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextInvalidUTF8(t *testing.T) {
	data := []byte{'r', 0xe9, 's', 'u', 'm', 0xe9} // latin-1 "résumé"

	got := Text(data, "resume.txt")
	if got != "résumé" {
		t.Errorf("expected latin-1 fallback decode, got %q", got)
	}
}

func TestTextInvalidUTF8NeverEmpty(t *testing.T) {
	data := []byte{0xff, 0xfe, 0x00, 0x80}

	got := Text(data, "notes.txt")
	if len(got) != len(data) {
		t.Errorf("latin-1 fallback should keep every byte, got %q", got)
	}
}

func TestTextNeverFails(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"empty input", "resume.pdf", nil},
		{"corrupt pdf", "resume.pdf", []byte("%PDF-1.4 garbage not a real document")},
		{"corrupt docx", "resume.docx", []byte("PK\x03\x04 truncated zip")},
		{"text bytes with pdf extension", "file.pdf", []byte("just text")},
		{"binary junk docx", "file.docx", []byte{0x00, 0x01, 0x02, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Must not panic; corrupt documents degrade to "".
			got := Text(tt.data, tt.filename)
			if got != "" {
				t.Errorf("corrupt input should yield empty string, got %q", got)
			}
		})
	}
}

func TestTextExtensionCaseInsensitive(t *testing.T) {
	got := Text([]byte("%PDF garbage"), "RESUME.PDF")
	if got != "" {
		t.Errorf("uppercase .PDF should still dispatch to the PDF parser, got %q", got)
	}
}

func TestStripTags(t *testing.T) {
	content := `<w:document><w:p><w:r><w:t>Senior Engineer</w:t></w:r></w:p><w:p><w:r><w:t>Go, Kubernetes</w:t></w:r></w:p></w:document>`

	got := stripTags(content)
	if !strings.Contains(got, "Senior Engineer") {
		t.Errorf("expected text content preserved, got %q", got)
	}
	if strings.Contains(got, "<") || strings.Contains(got, ">") {
		t.Errorf("expected tags stripped, got %q", got)
	}
	if !strings.Contains(got, "Senior Engineer\n") {
		t.Errorf("expected newline at paragraph boundary, got %q", got)
	}
}
