package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"
)

//go:embed static/*
var EmbeddedStaticFS embed.FS

//go:embed templates/*.html
var EmbeddedTemplatesFS embed.FS

// pages rendered inside base.html
var pageTemplates = []string{"home.html", "about.html", "portfolio.html", "blog.html", "post.html", "error.html"}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	},
	"join": strings.Join,
	"add":  func(delta, n int) int { return n + delta },
}

// mustLoadTemplates parses one template set per page so "content" blocks do not collide
func mustLoadTemplates() map[string]*template.Template {
	sets := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		sets[name] = template.Must(template.New("base.html").Funcs(templateFuncs).
			ParseFS(EmbeddedTemplatesFS, "templates/base.html", "templates/"+name))
	}
	return sets
}

// ListEmbeddedFiles returns a list of all embedded static files for debugging
func ListEmbeddedFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(EmbeddedStaticFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

// EmbeddedStaticHandler returns a Gin handler for serving embedded static files
func EmbeddedStaticHandler(prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Strip the URL path prefix to get the file path
		name := strings.TrimPrefix(path.Clean(c.Request.URL.Path), prefix)
		name = strings.TrimPrefix(name, "/")
		if name == "" || name == "." {
			// Static directory has no index file, return 404
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		data, err := fs.ReadFile(EmbeddedStaticFS, "static/"+name)
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		// Set some cache headers for static content
		c.Header("Cache-Control", "public, max-age=3600") // browser caches an hour
		c.Data(http.StatusOK, getContentType(name, data), data)
	}
}

// EmbeddedFileHandler returns a Gin handler for serving a single embedded file
func EmbeddedFileHandler(filePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		content, err := fs.ReadFile(EmbeddedStaticFS, filePath)
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, getContentType(filePath, content), content)
	}
}

// getContentType sniffs binary formats from the file header and
// falls back to the extension for text assets
func getContentType(filePath string, content []byte) string {
	if kind, err := filetype.Match(content); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}

	switch strings.ToLower(path.Ext(filePath)) {
	case ".ico":
		return "image/x-icon"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript"
	case ".svg":
		return "image/svg+xml"
	case ".html":
		return "text/html; charset=utf-8"
	case ".xml":
		return "application/xml"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
