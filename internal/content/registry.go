package content

import (
	"log"
	"os"
	"sort"
	"sync"

	"github.com/go-while/go-toolsite/internal/models"
)

// Registry is the lookup table of known slugs, filled by scanning the content root.
// It implements Store, so a Loader backed by a Registry never builds a path from
// a slug that was not found on disk at scan time.
type Registry struct {
	files *FileStore

	scanMux sync.Mutex // one Scan at a time, so the newest scan swaps last

	mux   sync.RWMutex
	posts map[string]models.PostMeta
}

// NewRegistry creates an empty registry over files. Call Scan to populate it.
func NewRegistry(files *FileStore) *Registry {
	return &Registry{
		files: files,
		posts: make(map[string]models.PostMeta),
	}
}

// Scan rebuilds the registry from disk and returns the number of posts found.
// A missing root yields an empty registry, not an error.
func (r *Registry) Scan() (int, error) {
	r.scanMux.Lock()
	defer r.scanMux.Unlock()

	entries, err := os.ReadDir(r.files.Root)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[CONTENT] content root %s does not exist, no posts registered", r.files.Root)
			r.swap(make(map[string]models.PostMeta))
			return 0, nil
		}
		return 0, err
	}

	posts := make(map[string]models.PostMeta, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		slug := e.Name()
		if ValidateSlug(slug) != nil {
			log.Printf("[CONTENT] skipping directory with invalid slug: %q", slug)
			continue
		}
		if !r.files.Exists(slug) {
			continue
		}
		meta := models.PostMeta{Title: slug}
		raw, err := os.ReadFile(r.files.Locate(slug))
		if err == nil {
			var doc *Document
			doc, err = ParseDocument(slug, raw)
			if err == nil {
				meta = doc.Meta
			}
		}
		if err != nil {
			// still registered: loading it reports the error to the caller
			log.Printf("[CONTENT] post %s has unreadable metadata: %v", slug, err)
		}
		posts[slug] = meta
	}

	r.swap(posts)
	return len(posts), nil
}

func (r *Registry) swap(posts map[string]models.PostMeta) {
	r.mux.Lock()
	r.posts = posts
	r.mux.Unlock()
}

// Exists reports whether slug was found by the last scan and its file is still on disk
func (r *Registry) Exists(slug string) bool {
	r.mux.RLock()
	_, ok := r.posts[slug]
	r.mux.RUnlock()
	return ok && r.files.Exists(slug)
}

// Locate returns the on-disk path of slug
func (r *Registry) Locate(slug string) string {
	return r.files.Locate(slug)
}

// Len returns the number of registered posts, drafts included
func (r *Registry) Len() int {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return len(r.posts)
}

// List returns published posts, newest first. Ties are ordered by slug.
func (r *Registry) List() []models.PostSummary {
	r.mux.RLock()
	out := make([]models.PostSummary, 0, len(r.posts))
	for slug, meta := range r.posts {
		if meta.Draft {
			continue
		}
		out = append(out, models.PostSummary{Slug: slug, PostMeta: meta})
	}
	r.mux.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}
