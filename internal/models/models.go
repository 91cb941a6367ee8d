// Package models contains the data types shared by the catalog, content and web packages
package models

import (
	"time"
)

// ToolEntry represents one listing in the AI tools directory
type ToolEntry struct {
	ID          string            `json:"id" db:"id"`
	Name        string            `json:"name" db:"name"`
	Description string            `json:"description" db:"description"`
	Category    string            `json:"category" db:"category"`
	Tags        []string          `json:"tags,omitempty" db:"tags"`
	URL         string            `json:"url" db:"url"`
	ImageURL    string            `json:"image_url,omitempty" db:"image_url"`
	Pricing     string            `json:"pricing,omitempty" db:"pricing"`
	Featured    bool              `json:"featured,omitempty" db:"featured"`
	Meta        map[string]string `json:"meta,omitempty" db:"-"`
}

// ToolCatalog is an ordered list of entries, in the order the source produced them
type ToolCatalog []ToolEntry

// IDs returns the identifiers of all entries in catalog order
func (tc ToolCatalog) IDs() []string {
	ids := make([]string, 0, len(tc))
	for _, t := range tc {
		ids = append(ids, t.ID)
	}
	return ids
}

// Category represents a distinct tool category with its display name
type Category struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// PostMeta holds the frontmatter of a blog post
type PostMeta struct {
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Date        time.Time `json:"date" yaml:"date"`
	Author      string    `json:"author,omitempty" yaml:"author"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags"`
	Draft       bool      `json:"draft,omitempty" yaml:"draft"`
}

// PostSummary is the listing form of a post returned by the posts API
type PostSummary struct {
	Slug string `json:"slug"`
	PostMeta
}

// ImageObject represents an image stored in blob storage
type ImageObject struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ContentType  string    `json:"content_type"`
}

// ImportRun records one execution of the tool importer
type ImportRun struct {
	ID         int64     `json:"id" db:"id"`
	SourceFile string    `json:"source_file" db:"source_file"`
	Imported   int       `json:"imported" db:"imported"`
	Skipped    int       `json:"skipped" db:"skipped"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int         `json:"total_count"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
}

// NewPaginatedResponse slices a full result set down to the requested page.
// page is 1-based; out-of-range pages yield an empty Data slice.
func NewPaginatedResponse[T any](all []T, page, pageSize int) PaginatedResponse {
	if pageSize <= 0 {
		pageSize = len(all)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	if page < 1 {
		page = 1
	}
	totalCount := len(all)
	totalPages := (totalCount + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	// past the last page: skip the multiplication, it can overflow
	start, end := totalCount, totalCount
	if page <= totalPages {
		start = (page - 1) * pageSize
		end = start + pageSize
	}
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}
	return PaginatedResponse{
		Data:       all[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
