package web

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-toolsite/internal/config"
)

// TemplateData represents common template data
type TemplateData struct {
	Title       template.HTML
	CurrentTime string
	CurrentPath string
	AppVersion  string
	Site        config.SiteConfig
	Theme       config.Theme
	Navigation  []config.NavItem
	FooterLinks []config.NavItem
}

// getBaseTemplateData creates a TemplateData struct with the site chrome
func (s *WebServer) getBaseTemplateData(c *gin.Context, title string) TemplateData {
	site := s.Config.Site
	return TemplateData{
		Title:       template.HTML(template.HTMLEscapeString(title)),
		CurrentTime: time.Now().Format("2006-01-02 15:04:05"),
		CurrentPath: c.Request.URL.Path,
		AppVersion:  config.AppVersion,
		Site:        site,
		Theme:       site.Theme,
		Navigation:  site.Navigation(),
		FooterLinks: site.FooterLinks(),
	}
}

// renderError renders an error page. Only server errors are logged as errors.
func (s *WebServer) renderError(c *gin.Context, statusCode int, message string, errstring string) {
	errorData := struct {
		TemplateData
		Error      string
		Detail     string
		StatusCode int
	}{
		TemplateData: s.getBaseTemplateData(c, "Error"),
		Error:        message,
		StatusCode:   statusCode,
	}
	if statusCode >= http.StatusInternalServerError {
		log.Printf("[ERROR]:internal/web: Error %d: %s - %s", statusCode, message, errstring)
	} else {
		errorData.Detail = errstring
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(statusCode)
	if err := s.templates["error.html"].ExecuteTemplate(c.Writer, "base.html", errorData); err != nil {
		log.Printf("Error rendering error template: %v", err)
		c.String(statusCode, "Error: %s", message)
	}
}

// renderTemplate renders a page inside base.html
func (s *WebServer) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		s.renderError(c, http.StatusInternalServerError, "Template error", "unknown template "+templateName)
		return
	}
	// render into a buffer so a failing template still gets a clean error page
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", templateName, err)
		s.renderError(c, http.StatusInternalServerError, "Template error", err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
