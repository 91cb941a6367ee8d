package web

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-toolsite/internal/content"
	"github.com/go-while/go-toolsite/internal/metrics"
	"github.com/go-while/go-toolsite/internal/models"
)

// BlogPageData represents data for the post list
type BlogPageData struct {
	TemplateData
	Posts []models.PostSummary
}

// PostPageData represents data for a single post
type PostPageData struct {
	TemplateData
	Post models.PostSummary
	Body template.HTML
}

func (s *WebServer) postList() []models.PostSummary {
	if s.Posts == nil {
		return []models.PostSummary{}
	}
	return s.Posts.List()
}

func (s *WebServer) blogPage(c *gin.Context) {
	s.renderTemplate(c, "blog.html", BlogPageData{
		TemplateData: s.getBaseTemplateData(c, "Blog"),
		Posts:        s.postList(),
	})
}

func (s *WebServer) blogPostPage(c *gin.Context) {
	if s.Loader == nil {
		s.Metrics.ObservePostLoad(metrics.LoadNotFound)
		s.renderError(c, http.StatusNotFound, "Post Not Found", "There are no posts on this site.")
		return
	}

	doc, err := s.Loader.Load(c.Request.Context(), c.Param("slug"))
	switch {
	case errors.Is(err, content.ErrNotFound):
		s.Metrics.ObservePostLoad(metrics.LoadNotFound)
		s.renderError(c, http.StatusNotFound, "Post Not Found", "The requested post does not exist.")
		return
	case err != nil:
		s.Metrics.ObservePostLoad(metrics.LoadError)
		s.renderError(c, http.StatusInternalServerError, "Post could not be loaded", err.Error())
		return
	}
	s.Metrics.ObservePostLoad(metrics.LoadOK)

	s.renderTemplate(c, "post.html", PostPageData{
		TemplateData: s.getBaseTemplateData(c, doc.Meta.Title),
		Post:         doc.Summary(),
		Body:         doc.HTML(),
	})
}
