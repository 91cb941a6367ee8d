package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-while/go-toolsite/internal/models"
)

// maxRemoteBody caps the size of a remote tool listing
const maxRemoteBody = 8 << 20

// HTTPProvider fetches the tool listing from a JSON endpoint.
// The body may be a bare array or an object with a "tools" array.
type HTTPProvider struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
	Header  http.Header // extra request headers, e.g. an API key
}

// NewHTTPProvider creates a provider with its own client
func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		URL:     url,
		Client:  &http.Client{},
		Timeout: timeout,
	}
}

// FetchTools performs one GET against the configured URL
func (p *HTTPProvider) FetchTools(ctx context.Context) ([]models.ToolEntry, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build tools request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vals := range p.Header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tools: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch tools: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return nil, fmt.Errorf("read tools body: %w", err)
	}
	return DecodeTools(body)
}

// DecodeTools accepts either `[...]` or `{"tools":[...]}`
func DecodeTools(body []byte) ([]models.ToolEntry, error) {
	var entries []models.ToolEntry
	if err := json.Unmarshal(body, &entries); err == nil {
		return entries, nil
	}
	var wrapped struct {
		Tools []models.ToolEntry `json:"tools"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode tools: %w", err)
	}
	return wrapped.Tools, nil
}

// ToolLister is implemented by the database layer
type ToolLister interface {
	ListTools(ctx context.Context) ([]models.ToolEntry, error)
}

// DBProvider reads the tool listing from the sqlite tools table
type DBProvider struct {
	DB ToolLister
}

// FetchTools returns all rows of the tools table
func (p *DBProvider) FetchTools(ctx context.Context) ([]models.ToolEntry, error) {
	if p.DB == nil {
		return nil, fmt.Errorf("tools database not opened")
	}
	return p.DB.ListTools(ctx)
}
