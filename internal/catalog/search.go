package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/go-while/go-toolsite/internal/models"
)

// searchDoc is the indexed form of a ToolEntry
type searchDoc struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// Search ranks entries against a free-text query.
// The index lives only for this call; an empty query returns entries unchanged.
func Search(ctx context.Context, entries models.ToolCatalog, text string, limit int) (models.ToolCatalog, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(entries) == 0 {
		return entries, nil
	}
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	defer idx.Close()

	batch := idx.NewBatch()
	for i, e := range entries {
		// position as doc id: the catalog may contain duplicate IDs
		if err := batch.Index(strconv.Itoa(i), searchDoc{
			Name:        e.Name,
			Description: e.Description,
			Category:    e.Category,
			Tags:        e.Tags,
		}); err != nil {
			return nil, fmt.Errorf("index tool %s: %w", e.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("index tools: %w", err)
	}

	req := bleve.NewSearchRequestOptions(buildQuery(text), limit, 0, false)
	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search tools: %w", err)
	}

	out := make(models.ToolCatalog, 0, len(res.Hits))
	for _, hit := range res.Hits {
		pos, err := strconv.Atoi(hit.ID)
		if err != nil || pos < 0 || pos >= len(entries) {
			continue
		}
		out = append(out, entries[pos])
	}
	return out, nil
}

// buildQuery matches whole words (with one typo) or word prefixes
func buildQuery(text string) query.Query {
	match := bleve.NewMatchQuery(text)
	match.SetFuzziness(1)
	queries := []query.Query{match}
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		queries = append(queries, bleve.NewPrefixQuery(tok))
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// FilterCategory keeps entries whose category equals key, case-insensitively
func FilterCategory(entries models.ToolCatalog, key string) models.ToolCatalog {
	if key == "" {
		return entries
	}
	out := make(models.ToolCatalog, 0, len(entries))
	for _, e := range entries {
		if strings.EqualFold(e.Category, key) {
			out = append(out, e)
		}
	}
	return out
}
