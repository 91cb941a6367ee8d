package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-toolsite/internal/catalog"
	"github.com/go-while/go-toolsite/internal/models"
)

// HomePageData represents data for the tool directory
type HomePageData struct {
	TemplateData
	Page       models.PaginatedResponse // Data holds the current page of []models.ToolEntry
	Categories []models.Category
	Query      string
	Category   string
	Total      int
	Fallback   bool
}

func (s *WebServer) homePage(c *gin.Context) {
	res := s.resolveCatalog(c.Request.Context())

	entries, err := s.filterTools(c, res.Entries)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	paged := models.NewPaginatedResponse([]models.ToolEntry(entries), page, s.Config.Catalog.PageSize)

	data := HomePageData{
		TemplateData: s.getBaseTemplateData(c, s.Config.Site.Name),
		Page:         paged,
		Categories:   catalog.Categories(res.Entries),
		Query:        c.Query("q"),
		Category:     c.Query("category"),
		Total:        len(entries),
		Fallback:     res.IsFallback(),
	}
	s.renderTemplate(c, "home.html", data)
}

// filterTools applies the ?category= and ?q= parameters shared by the home page and /api/tools
func (s *WebServer) filterTools(c *gin.Context, entries models.ToolCatalog) (models.ToolCatalog, error) {
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		entries = catalog.FilterCategory(entries, category)
	}
	return catalog.Search(c.Request.Context(), entries, c.Query("q"), 0)
}
