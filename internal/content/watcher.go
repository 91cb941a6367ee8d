package content

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces bursts of editor writes into one rescan
var debounceDelay = 200 * time.Millisecond

// Watcher rescans a Registry when files below its root change
type Watcher struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	done     chan struct{}
	mu       sync.Mutex
	running  bool
	onScan   func(int) // optional, called after each rescan
}

// NewWatcher creates a watcher for registry
func NewWatcher(registry *Registry) *Watcher {
	return &Watcher{registry: registry}
}

// OnScan registers fn to be called with the post count after each rescan.
// Call it before Start.
func (w *Watcher) OnScan(fn func(int)) {
	w.mu.Lock()
	w.onScan = fn
	w.mu.Unlock()
}

// Start watches the content root and each post directory
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("content watcher: already started")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	root := w.registry.files.Root
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return err
	}
	addSubdirs(watcher, root)

	w.watcher = watcher
	w.done = make(chan struct{})
	w.running = true

	go w.eventLoop()
	log.Printf("[CONTENT] watching %s for post changes", root)
	return nil
}

// Stop releases the watcher. Safe to call when not started.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	close(w.done)
	err := w.watcher.Close()
	w.running = false
	return err
}

func addSubdirs(watcher *fsnotify.Watcher, root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := watcher.Add(filepath.Join(root, e.Name())); err != nil {
				log.Printf("[CONTENT] cannot watch %s: %v", e.Name(), err)
			}
		}
	}
}

func (w *Watcher) eventLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-w.done:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			// new post directory: watch it too
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						log.Printf("[CONTENT] cannot watch %s: %v", event.Name, err)
					}
				}
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, w.rescan)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[CONTENT] fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) rescan() {
	n, err := w.registry.Scan()
	if err != nil {
		log.Printf("[CONTENT] rescan failed: %v", err)
		return
	}
	log.Printf("[CONTENT] registry rescanned: %d posts", n)
	w.mu.Lock()
	onScan := w.onScan
	w.mu.Unlock()
	if onScan != nil {
		onScan(n)
	}
}
