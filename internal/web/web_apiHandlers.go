package web

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-toolsite/internal/blob"
	"github.com/go-while/go-toolsite/internal/config"
)

// getHealth is a fixed liveness answer
func (s *WebServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listTools returns the resolved catalog with its resolution tag
func (s *WebServer) listTools(c *gin.Context) {
	res := s.resolveCatalog(c.Request.Context())

	entries, err := s.filterTools(c, res.Entries)
	if err != nil {
		log.Printf("[WEB] tool search failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source": res.Source,
		"reason": res.Reason,
		"count":  len(entries),
		"tools":  entries,
	})
}

// listPosts returns the published post metadata, newest first
func (s *WebServer) listPosts(c *gin.Context) {
	posts := s.postList()
	c.JSON(http.StatusOK, gin.H{
		"count": len(posts),
		"posts": posts,
	})
}

// listImages lists image objects from blob storage
func (s *WebServer) listImages(c *gin.Context) {
	images, err := s.Images.ListImages(c.Request.Context(), c.Query("prefix"))
	switch {
	case errors.Is(err, blob.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	case err != nil:
		log.Printf("[WEB] image listing failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(images),
		"images": images,
	})
}

// getStats returns JSON statistics data for the API
func (s *WebServer) getStats(c *gin.Context) {
	res := s.resolveCatalog(c.Request.Context())

	stats := gin.H{
		"tools":           len(res.Entries),
		"tools_source":    res.Source,
		"posts":           len(s.postList()),
		"last_update":     time.Now().Format(time.RFC3339),
		"backend_version": config.AppVersion,
		"uptime":          time.Since(s.StartTime).Round(time.Second).String(),
	}
	if s.Posts != nil {
		stats["posts_registered"] = s.Posts.Len()
	}
	if s.DB != nil {
		dbStats, err := s.DB.GetStats(c.Request.Context())
		if err != nil {
			log.Printf("[WEB] database stats failed: %v", err)
		} else {
			stats["database"] = dbStats
		}
	}

	c.JSON(http.StatusOK, stats)
}

// adminPage is a placeholder until an authenticated admin area exists
func (s *WebServer) adminPage(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "not implemented"})
}
