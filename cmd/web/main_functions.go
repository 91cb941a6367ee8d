package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-while/go-toolsite/internal/blob"
	"github.com/go-while/go-toolsite/internal/catalog"
	"github.com/go-while/go-toolsite/internal/config"
	"github.com/go-while/go-toolsite/internal/content"
	"github.com/go-while/go-toolsite/internal/database"
	"github.com/go-while/go-toolsite/internal/metrics"
)

// buildResolver picks the remote tool provider: HTTP source first, then the
// sqlite tools table, else none (always serve the bundled datasets)
func buildResolver(cfg *config.MainConfig, db *database.Database) (*catalog.Resolver, error) {
	static, imported, err := catalog.LoadDatasets()
	if err != nil {
		return nil, err
	}

	var remote catalog.RemoteProvider
	switch {
	case cfg.Catalog.RemoteURL != "":
		remote = catalog.NewHTTPProvider(cfg.Catalog.RemoteURL, cfg.Catalog.RemoteTimeout)
		log.Printf("[WEB]: Tool catalog remote source: %s (timeout %s)", cfg.Catalog.RemoteURL, cfg.Catalog.RemoteTimeout)
	case db != nil:
		remote = &catalog.DBProvider{DB: db}
		log.Printf("[WEB]: Tool catalog remote source: sqlite tools table")
	default:
		log.Printf("[WEB]: No remote tool source configured, serving %d static + %d imported tools", len(static), len(imported))
	}

	return catalog.NewResolver(remote, static, imported, catalog.Concat), nil
}

// buildContent scans the content root and optionally starts a watcher.
// The returned watcher is nil when watching is disabled or failed to start.
func buildContent(cfg *config.MainConfig, m *metrics.Metrics) (*content.Registry, *content.Watcher, error) {
	registry := content.NewRegistry(content.NewFileStore(cfg.Content.Root, cfg.Content.FileName))
	n, err := registry.Scan()
	if err != nil {
		return nil, nil, err
	}
	m.SetPostsRegistered(n)
	log.Printf("[WEB]: Registered %d blog posts from %s", n, cfg.Content.Root)

	if !cfg.Content.Watch {
		return registry, nil, nil
	}
	watcher := content.NewWatcher(registry)
	watcher.OnScan(m.SetPostsRegistered)
	if err := watcher.Start(); err != nil {
		log.Printf("[WEB]: Warning: content watcher disabled: %v", err)
		return registry, nil, nil
	}
	return registry, watcher, nil
}

// buildImages returns nil when no bucket is configured
func buildImages(ctx context.Context, cfg *config.MainConfig) *blob.ImageStore {
	store, err := blob.NewFromConfig(ctx, cfg.Blob)
	if err != nil {
		if err != blob.ErrNotConfigured {
			log.Printf("[WEB]: Warning: image storage disabled: %v", err)
		}
		return nil
	}
	log.Printf("[WEB]: Image storage: bucket=%s prefix=%s", cfg.Blob.Bucket, cfg.Blob.Prefix)
	return store
}

// monitorUpdateFile checks for a .update file and triggers a graceful shutdown
func monitorUpdateFile(shutdownChan chan<- bool) {
	updateFilePath := ".update"
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	log.Printf("[WEB]: Update file monitor started, checking for '%s' every 60 seconds", updateFilePath)

	for range ticker.C {
		if _, err := os.Stat(updateFilePath); err != nil {
			continue
		}
		log.Printf("[WEB]: Update file '%s' detected, triggering graceful shutdown", updateFilePath)

		if err := os.Rename(updateFilePath, updateFilePath+".todo"); err != nil {
			log.Printf("[WEB]: Warning: Failed to rename update file '%s': %v", updateFilePath, err)
			continue
		}

		select {
		case shutdownChan <- true:
			log.Printf("[WEB]: Shutdown signal sent via update file monitor")
		default:
			log.Printf("[WEB]: Shutdown channel already signaled")
		}
		return
	}
}
