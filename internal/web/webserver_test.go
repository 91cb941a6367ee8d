package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/go-while/go-toolsite/internal/blob"
	"github.com/go-while/go-toolsite/internal/catalog"
	"github.com/go-while/go-toolsite/internal/config"
	"github.com/go-while/go-toolsite/internal/content"
	"github.com/go-while/go-toolsite/internal/metrics"
	"github.com/go-while/go-toolsite/internal/models"
)

var (
	staticTools = []models.ToolEntry{
		{ID: "writer", Name: "Writer Bot", Description: "Drafts blog posts", Category: "writing", Featured: true},
		{ID: "painter", Name: "Painter", Description: "Generates images", Category: "image-generation"},
	}
	importedTools = []models.ToolEntry{
		{ID: "voice", Name: "Voice Lab", Description: "Speech synthesis", Category: "audio"},
	}
)

func failingRemote(ctx context.Context) ([]models.ToolEntry, error) {
	return nil, errors.New("connection refused")
}

type fakeS3 struct {
	out *s3.ListObjectsV2Output
	err error
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return f.out, f.err
}

func writePost(t *testing.T, root, slug, body string) {
	t.Helper()
	dir := filepath.Join(root, slug)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"), []byte(body), 0o644))
}

func newTestServer(t *testing.T, remote catalog.RemoteProvider, images *blob.ImageStore) *WebServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	writePost(t, root, "hello-world", "---\ntitle: Hello World\ndate: 2024-06-01\ntags: [intro]\n---\n# Welcome\n\nFirst <post>.")
	writePost(t, root, "secret-draft", "---\ntitle: Secret Draft\ndraft: true\n---\nwip")
	writePost(t, root, "broken", "---\ntitle: [oops\n---\nbody")

	reg := content.NewRegistry(content.NewFileStore(root, "page.md"))
	_, err := reg.Scan()
	require.NoError(t, err)

	cfg := config.NewDefaultConfig()
	return NewServer(cfg, Services{
		Resolver: catalog.NewResolver(remote, staticTools, importedTools, nil),
		Posts:    reg,
		Images:   images,
		Metrics:  metrics.New(),
	})
}

func do(s *WebServer, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthAndPing(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := do(s, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = do(s, "/ping")
	require.Equal(t, "pong", rec.Body.String())
}

func TestToolsAPIRemote(t *testing.T) {
	remote := catalog.RemoteProviderFunc(func(ctx context.Context) ([]models.ToolEntry, error) {
		return []models.ToolEntry{{ID: "live", Name: "Live Tool", Category: "chat"}}, nil
	})
	s := newTestServer(t, remote, nil)

	body := decode(t, do(s, "/api/tools"))
	require.Equal(t, "remote", body["source"])
	require.Equal(t, "", body["reason"])
	require.EqualValues(t, 1, body["count"])
}

func TestToolsAPIFallbackAndSearch(t *testing.T) {
	s := newTestServer(t, catalog.RemoteProviderFunc(failingRemote), nil)

	body := decode(t, do(s, "/api/tools"))
	require.Equal(t, "fallback", body["source"])
	require.Equal(t, "remote_error", body["reason"])
	require.EqualValues(t, 3, body["count"])

	var ids []string
	for _, raw := range body["tools"].([]interface{}) {
		ids = append(ids, raw.(map[string]interface{})["id"].(string))
	}
	require.Equal(t, []string{"writer", "painter", "voice"}, ids)

	body = decode(t, do(s, "/api/tools?q=speech"))
	require.EqualValues(t, 1, body["count"])

	body = decode(t, do(s, "/api/tools?category=Image-Generation"))
	require.EqualValues(t, 1, body["count"])
}

func TestHomePage(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := do(s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	html := rec.Body.String()
	require.Contains(t, html, "Writer Bot")
	require.Contains(t, html, "Voice Lab")
	require.Contains(t, html, "Image Generation")
	require.Contains(t, html, "Showing the bundled tool list.")
	require.Contains(t, html, `href="/blog"`)

	rec = do(s, "/?q=images")
	require.Contains(t, rec.Body.String(), "Painter")
	require.NotContains(t, rec.Body.String(), "Voice Lab")
}

func TestStaticPages(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := do(s, "/about")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/api/tools")

	rec = do(s, "/portfolio")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Writer Bot")
	require.NotContains(t, rec.Body.String(), "Painter")
}

func TestBlogPages(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := do(s, "/blog")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `href="/blog/hello-world"`)
	require.NotContains(t, rec.Body.String(), "Secret Draft")

	rec = do(s, "/blog/hello-world")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<h2>Welcome</h2>")
	require.Contains(t, rec.Body.String(), "First &lt;post&gt;.")
	require.Contains(t, rec.Body.String(), "June 1, 2024")

	// drafts are unlisted, not hidden
	rec = do(s, "/blog/secret-draft")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBlogPostErrors(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := do(s, "/blog/nonexistent-slug")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Post Not Found")

	rec = do(s, "/blog/bad.slug")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(s, "/blog/broken")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPostsAPI(t *testing.T) {
	s := newTestServer(t, nil, nil)

	body := decode(t, do(s, "/api/posts"))
	require.EqualValues(t, 2, body["count"])
	first := body["posts"].([]interface{})[0].(map[string]interface{})
	require.Equal(t, "hello-world", first["slug"])
}

func TestImagesAPI(t *testing.T) {
	rec := do(newTestServer(t, nil, nil), "/api/images")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	failing := blob.NewImageStore(&fakeS3{err: errors.New("denied")}, config.BlobConfig{Bucket: "site"})
	rec = do(newTestServer(t, nil, failing), "/api/images")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	ok := blob.NewImageStore(&fakeS3{out: &s3.ListObjectsV2Output{
		Contents: []types.Object{{Key: aws.String("images/a.webp"), Size: aws.Int64(5)}},
	}}, config.BlobConfig{Bucket: "site", PublicBaseURL: "https://cdn.example.com"})
	body := decode(t, do(newTestServer(t, nil, ok), "/api/images?prefix=logos/"))
	require.EqualValues(t, 1, body["count"])
}

func TestAdminStub(t *testing.T) {
	rec := do(newTestServer(t, nil, nil), "/admin")
	require.Equal(t, http.StatusNotImplemented, rec.Code)
	require.JSONEq(t, `{"error":"not implemented"}`, rec.Body.String())
}

func TestStaticFiles(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := do(s, "/static/img/logo.png")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = do(s, "/static/css/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/css")

	rec = do(s, "/static/missing.js")
	require.Equal(t, http.StatusNotFound, rec.Code)

	files, err := ListEmbeddedFiles()
	require.NoError(t, err)
	require.Contains(t, files, "static/css/site.css")
}

func TestNotFoundAndMetrics(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := do(s, "/no/such/page")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Page Not Found")

	rec = do(s, "/api/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"not found"}`, rec.Body.String())

	do(s, "/api/tools")
	do(s, "/blog/nonexistent-slug")
	rec = do(s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `toolsite_catalog_resolutions_total{reason="remote_error",source="fallback"} 1`)
	require.Contains(t, rec.Body.String(), `toolsite_post_loads_total{result="not_found"} 1`)
}

func TestStats(t *testing.T) {
	body := decode(t, do(newTestServer(t, nil, nil), "/api/stats"))
	require.EqualValues(t, 3, body["tools"])
	require.EqualValues(t, 2, body["posts"])
	require.EqualValues(t, 3, body["posts_registered"])
	require.Nil(t, body["database"])
}
