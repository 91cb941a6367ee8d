// AI tools directory and blog web server for go-toolsite
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	prof "github.com/go-while/go-cpu-mem-profiler"

	"github.com/go-while/go-toolsite/internal/config"
	"github.com/go-while/go-toolsite/internal/database"
	"github.com/go-while/go-toolsite/internal/metrics"
	"github.com/go-while/go-toolsite/internal/web"
)

var Prof *prof.Profiler

var (
	// command-line flags
	configFile  string
	webport     int
	webssl      bool
	webcertFile string
	webkeyFile  string
	remoteURL   string
	useDB       bool
	contentRoot string
	watch       bool
	pprofAddr   string
	debug       bool
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&configFile, "config", "", "Config file (yaml, json or toml). Settings can also be set via TOOLSITE_* environment variables")
	flag.IntVar(&webport, "webport", 0, "Web server port (default: 11980)")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&webcertFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&webkeyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.StringVar(&remoteURL, "remote-url", "", "Remote tool catalog URL (JSON array or {\"tools\":[...]})")
	flag.BoolVar(&useDB, "usedb", false, "Read the tool catalog from the sqlite tools table when no -remote-url is set")
	flag.StringVar(&contentRoot, "content", "", "Blog content root (default: content/blog)")
	flag.BoolVar(&watch, "watch", false, "Rescan blog posts when files change")
	flag.StringVar(&pprofAddr, "pprof", "", "Serve pprof on this address, e.g. :51111 (default: disabled)")
	flag.BoolVar(&debug, "debug", false, "gin debug mode")
	flag.Parse()

	log.Printf("Starting go-toolsite: Web Server (version: %s)", appVersion)

	var mainConfig *config.MainConfig
	if configFile != "" {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			log.Fatalf("[WEB]: Failed to load config: %v", err)
		}
		mainConfig = cfg
	} else {
		mainConfig = config.NewDefaultConfig()
	}

	// Override config with command-line flags if provided
	if webport > 0 {
		mainConfig.Web.ListenPort = webport
		log.Printf("[WEB]: Overriding listen port with command-line flag: %d", webport)
	}
	if webssl {
		mainConfig.Web.SSL = true
	}
	if webcertFile != "" {
		mainConfig.Web.CertFile = webcertFile
	}
	if webkeyFile != "" {
		mainConfig.Web.KeyFile = webkeyFile
	}
	if remoteURL != "" {
		mainConfig.Catalog.RemoteURL = remoteURL
	}
	if useDB {
		mainConfig.Catalog.UseDatabase = true
	}
	if contentRoot != "" {
		mainConfig.Content.Root = contentRoot
	}
	if watch {
		mainConfig.Content.Watch = true
	}
	if debug {
		mainConfig.Web.Debug = true
	}
	if err := mainConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: Invalid configuration: %v", err)
	}
	log.Printf("[WEB]: Using WEB configuration: %#v", mainConfig.Web)

	if pprofAddr != "" {
		Prof = prof.NewProf()
		go Prof.PprofWeb(pprofAddr)
		Prof.StartMemProfile(5*time.Minute, 30*time.Second)
	}

	var db *database.Database
	if mainConfig.Catalog.UseDatabase {
		dbConfig := database.DefaultDBConfig()
		dbConfig.DataDir = mainConfig.Database.DataDir
		var err error
		db, err = database.OpenDatabase(dbConfig)
		if err != nil {
			log.Fatalf("[WEB]: Failed to initialize database: %v", err)
		}
	}

	m := metrics.New()

	resolver, err := buildResolver(mainConfig, db)
	if err != nil {
		log.Fatalf("[WEB]: Failed to load tool datasets: %v", err)
	}

	registry, watcher, err := buildContent(mainConfig, m)
	if err != nil {
		log.Fatalf("[WEB]: Failed to scan blog content: %v", err)
	}

	server := web.NewServer(mainConfig, web.Services{
		Resolver: resolver,
		Posts:    registry,
		Images:   buildImages(context.Background(), mainConfig),
		Metrics:  m,
		DB:       db,
	})

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start web server in goroutine to make it non-blocking
	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			webServerErrChan <- err
		}
	}()

	log.Printf("[WEB]: Server started successfully. Press Ctrl+C to gracefully shutdown...")

	updateFileChan := make(chan bool, 1)
	go monitorUpdateFile(updateFileChan)

	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		log.Fatalf("[WEB]: Failed to start web server: %v", err)
	case <-updateFileChan:
		log.Printf("[WEB]: Update file detected, initiating graceful shutdown for update...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[WEB]: Error stopping web server: %v", err)
	}

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			log.Printf("[WEB]: Error stopping content watcher: %v", err)
		}
	}

	if db != nil {
		if err := db.Shutdown(); err != nil {
			log.Fatalf("[WEB]: Failed to shutdown database: %v", err)
		}
		log.Printf("[WEB]: Database shutdown successfully")
	}

	log.Printf("[WEB]: Graceful shutdown completed")
}
