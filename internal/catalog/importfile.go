package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/go-while/go-toolsite/internal/models"
)

// ParseToolFile decodes a tool list exported by hand or from a spreadsheet.
// The format follows the file extension (.json or .csv); data is first
// converted from charset to UTF-8. Every entry gets meta imported_from.
func ParseToolFile(name string, data []byte, charset string) ([]models.ToolEntry, error) {
	data, err := DecodeCharset(data, charset)
	if err != nil {
		return nil, err
	}

	var tools []models.ToolEntry
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		tools, err = DecodeTools(data)
	case ".csv":
		tools, err = parseToolCSV(data)
	default:
		return nil, fmt.Errorf("unsupported tool file format: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	source := filepath.Base(name)
	for i := range tools {
		if tools[i].ID == "" {
			tools[i].ID = slugify(tools[i].Name)
		}
		if tools[i].Meta == nil {
			tools[i].Meta = make(map[string]string, 1)
		}
		tools[i].Meta["imported_from"] = source
	}
	return tools, nil
}

// DecodeCharset converts data from charset to UTF-8 using the WHATWG encoding index
func DecodeCharset(data []byte, charset string) ([]byte, error) {
	charset = normalizeCharsetName(charset)
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if charset == "" || charset == "utf-8" {
		return data, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset: %s", charset)
	}
	if enc == nil {
		return data, nil
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode from %s: %w", charset, err)
	}
	return out, nil
}

// normalizeCharsetName maps common aliases to names htmlindex knows
func normalizeCharsetName(charset string) string {
	normalized := strings.ToLower(strings.TrimSpace(charset))

	switch normalized {
	case "iso-8859-15", "iso8859-15", "iso_8859-15", "latin-9", "latin9":
		return "iso-8859-15"
	case "iso-8859-1", "iso8859-1", "iso_8859-1", "latin-1", "latin1":
		return "iso-8859-1"
	case "windows-1252", "cp1252", "win1252":
		return "windows-1252"
	case "windows-1251", "cp1251", "win1251":
		return "windows-1251"
	case "utf-8", "utf8":
		return "utf-8"
	case "us-ascii", "ascii":
		return "windows-1252" // superset of ASCII
	default:
		return normalized
	}
}

// parseToolCSV reads a header row and maps known column names.
// Tags are separated by ';' or '|' inside their cell.
func parseToolCSV(data []byte) ([]models.ToolEntry, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("csv header has no name column")
	}

	var tools []models.ToolEntry
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		featured, _ := strconv.ParseBool(get("featured"))
		tools = append(tools, models.ToolEntry{
			ID:          get("id"),
			Name:        get("name"),
			Description: get("description"),
			Category:    get("category"),
			Tags:        splitCell(get("tags")),
			URL:         get("url"),
			ImageURL:    get("image_url"),
			Pricing:     get("pricing"),
			Featured:    featured,
		})
	}
	return tools, nil
}

func splitCell(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.FieldsFunc(cell, func(r rune) bool { return r == ';' || r == '|' })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// slugify derives an id from a display name
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
