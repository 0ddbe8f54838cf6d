package chunks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNoText indicates the document yielded nothing to chunk (commonly a
// scanned, image-only PDF).
var ErrNoText = errors.New("no extractable text in document")

// LoadOptions controls chunking. Zero values use the defaults.
type LoadOptions struct {
	ChunkSize    int // runes per chunk (default: 1400)
	ChunkOverlap int // runes shared between neighbors (default: 180)
	MaxChunks    int // cap on chunk count, 0 = unlimited
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 1400
	}
	if o.ChunkOverlap <= 0 {
		o.ChunkOverlap = 180
	}
	return o
}

// Load parses a document and splits it into ordered chunks. PDFs get
// page-level text extraction; markdown (the shape OCR services hand back)
// is split on headings so chunks keep their section titles.
func Load(path string, opts LoadOptions) ([]Chunk, error) {
	opts = opts.withDefaults()

	var (
		out []Chunk
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		out, err = loadPDF(path, opts)
	case ".md", ".markdown", ".txt":
		out, err = loadMarkdown(path, opts)
	default:
		return nil, fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if opts.MaxChunks > 0 && len(out) > opts.MaxChunks {
		out = out[:opts.MaxChunks]
	}
	return out, nil
}

func loadPDF(path string, opts LoadOptions) ([]Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	pageCount, err := api.PageCount(f, nil)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("invalid PDF %s: %w", path, err)
	}
	if pageCount == 0 {
		return nil, ErrNoText
	}

	pf, reader, err := lpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF %s: %w", path, err)
	}
	defer pf.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page should not sink the document.
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	full := strings.TrimSpace(strings.Join(pages, "\n\n"))
	if full == "" {
		return nil, ErrNoText
	}

	sourceID := filepath.Base(path)
	var out []Chunk
	for _, piece := range SplitText(full, opts.ChunkSize, opts.ChunkOverlap) {
		out = append(out, Chunk{
			Index:    len(out),
			Text:     piece,
			SourceID: sourceID,
		})
	}
	return out, nil
}

func loadMarkdown(path string, opts LoadOptions) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	sourceID := filepath.Base(path)
	var out []Chunk
	for _, sec := range splitMarkdownSections(string(data)) {
		for _, piece := range SplitText(sec.body, opts.ChunkSize, opts.ChunkOverlap) {
			out = append(out, Chunk{
				Index:        len(out),
				Text:         piece,
				SourceID:     sourceID,
				SectionTitle: sec.title,
			})
		}
	}
	if len(out) == 0 {
		return nil, ErrNoText
	}
	return out, nil
}

type mdSection struct {
	title string
	body  string
}

// splitMarkdownSections splits on ATX headings. Text before the first
// heading becomes an untitled preamble section.
func splitMarkdownSections(text string) []mdSection {
	var sections []mdSection
	var title string
	var body []string

	flush := func() {
		b := strings.TrimSpace(strings.Join(body, "\n"))
		if b != "" {
			sections = append(sections, mdSection{title: title, body: b})
		}
		body = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if h := headingTitle(line); h != "" {
			flush()
			title = h
			continue
		}
		body = append(body, line)
	}
	flush()

	return sections
}

func headingTitle(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return ""
	}
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level > 6 {
		return ""
	}
	rest := strings.TrimSpace(trimmed[level:])
	return rest
}
