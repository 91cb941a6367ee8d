package web

import (
	"github.com/gin-gonic/gin"

	"github.com/go-while/go-toolsite/internal/models"
)

// PortfolioPageData lists the featured tools next to the static portfolio text
type PortfolioPageData struct {
	TemplateData
	Featured []models.ToolEntry
}

func (s *WebServer) aboutPage(c *gin.Context) {
	s.renderTemplate(c, "about.html", s.getBaseTemplateData(c, "About"))
}

func (s *WebServer) portfolioPage(c *gin.Context) {
	res := s.resolveCatalog(c.Request.Context())

	var featured []models.ToolEntry
	for _, t := range res.Entries {
		if t.Featured {
			featured = append(featured, t)
		}
	}
	s.renderTemplate(c, "portfolio.html", PortfolioPageData{
		TemplateData: s.getBaseTemplateData(c, "Portfolio"),
		Featured:     featured,
	})
}
