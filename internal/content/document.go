package content

import (
	"context"
	"fmt"
	"html"
	"html/template"
	"os"
	"strings"

	"github.com/go-while/go-toolsite/internal/models"
	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// Document is a loaded blog post
type Document struct {
	Slug string
	Meta models.PostMeta
	Body string
}

// Summary returns the listing form of the document
func (d *Document) Summary() models.PostSummary {
	return models.PostSummary{Slug: d.Slug, PostMeta: d.Meta}
}

// HTML renders the body as escaped paragraphs, headings ("# ") and list items ("- ").
// Raw HTML in the source is never passed through.
func (d *Document) HTML() template.HTML {
	var b strings.Builder
	inList := false
	closeList := func() {
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
	}
	for _, block := range strings.Split(strings.ReplaceAll(d.Body, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "### "):
				closeList()
				fmt.Fprintf(&b, "<h4>%s</h4>\n", html.EscapeString(line[4:]))
			case strings.HasPrefix(line, "## "):
				closeList()
				fmt.Fprintf(&b, "<h3>%s</h3>\n", html.EscapeString(line[3:]))
			case strings.HasPrefix(line, "# "):
				closeList()
				fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(line[2:]))
			case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
				if !inList {
					b.WriteString("<ul>\n")
					inList = true
				}
				fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(line[2:]))
			default:
				closeList()
				fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(line))
			}
		}
		closeList()
	}
	return template.HTML(b.String())
}

// ParseDocument splits a page into YAML frontmatter and body.
// Frontmatter is optional; when present it must be closed by a "---" line.
func ParseDocument(slug string, raw []byte) (*Document, error) {
	text := strings.TrimLeft(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\ufeff")
	doc := &Document{Slug: slug}

	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") {
		doc.Body = strings.TrimSpace(text)
		doc.Meta.Title = slug
		return doc, nil
	}

	rest := text[len(frontmatterDelimiter)+1:]
	closing := strings.Index(rest, "\n"+frontmatterDelimiter)
	if closing == -1 {
		if !strings.HasPrefix(rest, frontmatterDelimiter) {
			return nil, fmt.Errorf("post %s: no closing --- delimiter found", slug)
		}
		closing = 0
	} else {
		closing++ // keep the newline with the yaml
	}

	if err := yaml.Unmarshal([]byte(rest[:closing]), &doc.Meta); err != nil {
		return nil, fmt.Errorf("post %s: invalid YAML frontmatter: %w", slug, err)
	}
	doc.Body = strings.TrimSpace(rest[closing+len(frontmatterDelimiter):])
	if doc.Meta.Title == "" {
		doc.Meta.Title = slug
	}
	return doc, nil
}

// FileImporter reads documents from disk
type FileImporter struct{}

// Import reads and parses the file at location
func (FileImporter) Import(ctx context.Context, slug, location string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("read post %s: %w", slug, err)
	}
	return ParseDocument(slug, raw)
}
