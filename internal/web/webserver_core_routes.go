// Package web provides the HTTP server and web interface for go-toolsite
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"github.com/go-while/go-toolsite/internal/blob"
	"github.com/go-while/go-toolsite/internal/catalog"
	"github.com/go-while/go-toolsite/internal/config"
	"github.com/go-while/go-toolsite/internal/content"
	"github.com/go-while/go-toolsite/internal/database"
	"github.com/go-while/go-toolsite/internal/metrics"
)

// Services are the components the handlers read from.
// Only Resolver is required; a nil Posts registry serves an empty blog.
type Services struct {
	Resolver *catalog.Resolver
	Posts    *content.Registry
	Loader   *content.Loader    // defaults to a FileImporter over Posts
	Images   *blob.ImageStore   // nil disables /api/images
	Metrics  *metrics.Metrics   // nil disables /metrics
	DB       *database.Database // optional, adds table counts to /api/stats
}

// WebServer represents the web server
type WebServer struct {
	Router    *gin.Engine
	Config    *config.MainConfig
	Resolver  *catalog.Resolver
	Posts     *content.Registry
	Loader    *content.Loader
	Images    *blob.ImageStore
	Metrics   *metrics.Metrics
	DB        *database.Database
	StartTime time.Time // Track server start time for uptime calculations

	templates  map[string]*template.Template // page name -> base.html + page
	httpServer *http.Server
}

// NewServer creates a new web server instance
func NewServer(cfg *config.MainConfig, svc Services) *WebServer {
	if cfg.Web.Debug {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Configure Gin to trust reverse proxy headers
	// Set trusted proxies for common reverse proxy setups (nginx, etc.)
	router.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})

	// Configure security headers based on SSL setup
	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}

	// Only add SSL-specific headers if SSL is enabled on the application itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if cfg.Web.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}

	router.Use(secure.New(secureConfig))

	loader := svc.Loader
	if loader == nil && svc.Posts != nil {
		loader = content.NewLoader(svc.Posts, content.FileImporter{})
	}

	server := &WebServer{
		Router:    router,
		Config:    cfg,
		Resolver:  svc.Resolver,
		Posts:     svc.Posts,
		Loader:    loader,
		Images:    svc.Images,
		Metrics:   svc.Metrics,
		DB:        svc.DB,
		StartTime: time.Now(),
		templates: mustLoadTemplates(),
	}

	// Add reverse proxy middleware for handling X-Forwarded headers
	router.Use(server.ReverseProxyMiddleware())
	router.Use(server.ApacheLogFormat())
	router.Use(server.MetricsMiddleware())

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	// Static files first (highest priority)
	s.Router.GET("/static/*filepath", EmbeddedStaticHandler("/static"))
	s.Router.HEAD("/static/*filepath", EmbeddedStaticHandler("/static"))
	s.Router.GET("/favicon.ico", EmbeddedFileHandler("static/img/logo.png"))
	s.Router.GET("/robots.txt", func(c *gin.Context) {
		c.String(http.StatusOK, "User-agent: *\nDisallow: /admin\nDisallow: /api/\n")
	})
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(200, "pong")
	})

	// API routes
	s.Router.GET("/api", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/about")
	})
	api := s.Router.Group("/api")
	{
		api.GET("/health", s.getHealth)
		api.GET("/tools", s.listTools)
		api.GET("/posts", s.listPosts)
		api.GET("/images", s.listImages)
		api.GET("/stats", s.getStats)
	}
	if s.Metrics != nil {
		s.Router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	s.Router.GET("/admin", s.adminPage)

	// Pages
	s.Router.GET("/", s.homePage)
	s.Router.GET("/about", s.aboutPage)
	s.Router.GET("/about/", s.aboutPage)
	s.Router.GET("/portfolio", s.portfolioPage)
	s.Router.GET("/portfolio/", s.portfolioPage)
	s.Router.GET("/blog", s.blogPage)
	s.Router.GET("/blog/", s.blogPage)
	s.Router.GET("/blog/:slug", s.blogPostPage)

	s.Router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		s.renderError(c, http.StatusNotFound, "Page Not Found", "The requested page does not exist.")
	})
}

// Start starts the web server with SSL support if configured.
// Returns nil after a graceful Shutdown.
func (s *WebServer) Start() error {
	addr := ":" + strconv.Itoa(s.Config.Web.ListenPort)
	s.StartTime = time.Now() // Set the start time for uptime calculations
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var err error
	if s.Config.Web.SSL {
		if s.Config.Web.CertFile == "" || s.Config.Web.KeyFile == "" {
			return errors.New("SSL enabled but cert_file or key_file not specified in config")
		}
		log.Printf("Starting HTTPS server on %s", addr)
		err = s.httpServer.ListenAndServeTLS(s.Config.Web.CertFile, s.Config.Web.KeyFile)
	} else {
		log.Printf("Starting HTTP server on %s", addr)
		err = s.httpServer.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for active requests
func (s *WebServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ReverseProxyMiddleware handles X-Forwarded headers when running behind a reverse proxy
func (s *WebServer) ReverseProxyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handle X-Forwarded-Proto to detect if the original request was HTTPS
		if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
			c.Request.URL.Scheme = "https"
		}

		// Handle X-Forwarded-Host to get the original host
		if host := c.GetHeader("X-Forwarded-Host"); host != "" {
			c.Request.Host = host
		}

		c.Next()
	}
}

func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s"`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
		)
	})
}

// MetricsMiddleware counts requests by matched route
func (s *WebServer) MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Metrics.ObserveRequest(c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// resolveCatalog runs one resolution and records its outcome
func (s *WebServer) resolveCatalog(ctx context.Context) *catalog.Resolution {
	start := time.Now()
	res := s.Resolver.Resolve(ctx)
	s.Metrics.ObserveResolution(string(res.Source), string(res.Reason), len(res.Entries), time.Since(start))
	return res
}
