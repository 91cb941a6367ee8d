package catalog

import (
	"strings"

	"github.com/go-while/go-toolsite/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Categories returns the distinct categories in first-seen order.
// Keys are compared case-insensitively; "image-generation" is shown as "Image Generation".
func Categories(entries models.ToolCatalog) []models.Category {
	caser := cases.Title(language.English)
	seen := make(map[string]int)
	var out []models.Category
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Category))
		if key == "" {
			continue
		}
		if i, ok := seen[key]; ok {
			out[i].Count++
			continue
		}
		seen[key] = len(out)
		title := caser.String(strings.NewReplacer("-", " ", "_", " ").Replace(key))
		out = append(out, models.Category{Key: key, Title: title, Count: 1})
	}
	return out
}
