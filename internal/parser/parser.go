package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parser extracts ciphertext from raw document bytes.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// Document is the text recovered from one file, split into sections
// (paragraphs, headed blocks, pages or rows depending on the format).
type Document struct {
	Title    string
	Sections []Section
}

// Section is one block of ciphertext.
type Section struct {
	Title string // Heading, page or row label (empty for plain paragraphs)
	Text  string
	Page  int // Source page/row (0 if N/A)
}

// Text joins all sections with blank lines.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n\n")
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// sectionBuilder accumulates blocks under the current heading.
type sectionBuilder struct {
	sections []Section
	title    string
	text     strings.Builder
}

func (b *sectionBuilder) heading(title string) {
	b.flush()
	b.title = title
}

func (b *sectionBuilder) block(t string) {
	if t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

func (b *sectionBuilder) flush() {
	t := strings.TrimSpace(b.text.String())
	if t != "" {
		b.sections = append(b.sections, Section{Title: b.title, Text: t})
	}
	b.text.Reset()
}

func (b *sectionBuilder) done() []Section {
	b.flush()
	return b.sections
}
