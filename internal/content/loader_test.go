package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingImporter counts imports and returns canned results
type recordingImporter struct {
	calls     int
	locations []string
	doc       *Document
	err       error
}

func (ri *recordingImporter) Import(ctx context.Context, slug, location string) (*Document, error) {
	ri.calls++
	ri.locations = append(ri.locations, location)
	return ri.doc, ri.err
}

func writePost(t *testing.T, root, slug, body string) {
	t.Helper()
	dir := filepath.Join(root, slug)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"), []byte(body), 0o644))
}

func TestValidateSlug(t *testing.T) {
	valid := []string{"hello", "hello-world", "post_2024", "A1"}
	invalid := []string{"", "..", "../etc", "a/b", `a\b`, "hello world", "post.md", "%2e%2e", "ü", string(make([]byte, maxSlugLen+1))}

	for _, s := range valid {
		require.NoError(t, ValidateSlug(s), s)
	}
	for _, s := range invalid {
		err := ValidateSlug(s)
		require.ErrorIs(t, err, ErrInvalidSlug, s)
	}
}

func TestLoadMissingSlugNeverImports(t *testing.T) {
	root := t.TempDir()
	imp := &recordingImporter{}
	l := NewLoader(NewFileStore(root, "page.md"), imp)

	doc, err := l.Load(context.Background(), "nonexistent-slug")

	require.Nil(t, doc)
	require.ErrorIs(t, err, ErrNotFound)
	require.Zero(t, imp.calls)
}

func TestLoadInvalidSlugIsNotFound(t *testing.T) {
	root := t.TempDir()
	// a file outside the content root that traversal would reach
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(root), "page.md"), []byte("secret"), 0o644))
	imp := &recordingImporter{}
	l := NewLoader(NewFileStore(root, "page.md"), imp)

	_, err := l.Load(context.Background(), "..")

	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, ErrInvalidSlug)
	require.Zero(t, imp.calls)
}

func TestLoadExistingImportsOnce(t *testing.T) {
	root := t.TempDir()
	writePost(t, root, "existing-post", "hello")
	want := &Document{Slug: "existing-post", Body: "hello"}
	imp := &recordingImporter{doc: want}
	l := NewLoader(NewFileStore(root, "page.md"), imp)

	doc, err := l.Load(context.Background(), "existing-post")

	require.NoError(t, err)
	require.Same(t, want, doc)
	require.Equal(t, 1, imp.calls)
	require.Equal(t, []string{filepath.Join(root, "existing-post", "page.md")}, imp.locations)
}

func TestLoadPropagatesImportErrorUnmodified(t *testing.T) {
	root := t.TempDir()
	writePost(t, root, "existing-post", "hello")
	syntaxErr := errors.New("SyntaxError: unexpected token")
	imp := &recordingImporter{err: syntaxErr}
	l := NewLoader(NewFileStore(root, "page.md"), imp)

	doc, err := l.Load(context.Background(), "existing-post")

	require.Nil(t, doc)
	require.True(t, err == syntaxErr, "error must be returned as-is")
	require.NotErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1, imp.calls)
}

func TestFileStoreDirectoryIsNotADocument(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "post", "page.md"), 0o755))
	require.False(t, NewFileStore(root, "page.md").Exists("post"))
}

func TestLoadWithFileImporter(t *testing.T) {
	root := t.TempDir()
	writePost(t, root, "first-post", "---\ntitle: First Post\ndate: 2024-05-01\ntags: [go, ai]\n---\n# Intro\n\nSome <b>text</b>.\n\n- one\n- two\n")
	l := NewLoader(NewFileStore(root, "page.md"), FileImporter{})

	doc, err := l.Load(context.Background(), "first-post")
	require.NoError(t, err)
	require.Equal(t, "First Post", doc.Meta.Title)
	require.Equal(t, []string{"go", "ai"}, doc.Meta.Tags)
	require.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), doc.Meta.Date)

	html := string(doc.HTML())
	require.Contains(t, html, "<h2>Intro</h2>")
	require.Contains(t, html, "Some &lt;b&gt;text&lt;/b&gt;.")
	require.Contains(t, html, "<ul>\n<li>one</li>\n<li>two</li>\n</ul>")
}

func TestLoadBrokenFrontmatterPropagates(t *testing.T) {
	root := t.TempDir()
	writePost(t, root, "broken", "---\ntitle: [unclosed\n---\nbody")
	l := NewLoader(NewFileStore(root, "page.md"), FileImporter{})

	_, err := l.Load(context.Background(), "broken")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestParseDocument(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		wantTitle string
		wantBody  string
		wantErr   bool
	}{
		{name: "no frontmatter", raw: "just text", wantTitle: "slug", wantBody: "just text"},
		{name: "empty frontmatter", raw: "---\n---\nbody", wantTitle: "slug", wantBody: "body"},
		{name: "crlf", raw: "---\r\ntitle: T\r\n---\r\nbody\r\n", wantTitle: "T", wantBody: "body"},
		{name: "unclosed", raw: "---\ntitle: T\nbody", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := ParseDocument("slug", []byte(tc.raw))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantTitle, doc.Meta.Title)
			require.Equal(t, tc.wantBody, doc.Body)
		})
	}
}
