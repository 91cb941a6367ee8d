package catalog

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/go-while/go-toolsite/internal/models"
	"github.com/stretchr/testify/require"
)

var (
	toolA = models.ToolEntry{ID: "A", Name: "Alpha"}
	toolB = models.ToolEntry{ID: "B", Name: "Beta"}
	toolC = models.ToolEntry{ID: "C", Name: "Gamma"}
)

// countingProvider records how often it was asked
type countingProvider struct {
	entries []models.ToolEntry
	err     error
	calls   int
}

func (p *countingProvider) FetchTools(ctx context.Context) ([]models.ToolEntry, error) {
	p.calls++
	return p.entries, p.err
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestResolveRemoteNonEmpty(t *testing.T) {
	remote := &countingProvider{entries: []models.ToolEntry{{ID: "t1", Name: "Remote One"}}}
	mergeCalled := false
	r := NewResolver(remote, []models.ToolEntry{toolA}, []models.ToolEntry{toolC},
		func(static, imported []models.ToolEntry) models.ToolCatalog {
			mergeCalled = true
			return Concat(static, imported)
		})

	res := r.Resolve(context.Background())

	require.Equal(t, SourceRemote, res.Source)
	require.Equal(t, ReasonNone, res.Reason)
	require.NoError(t, res.Err)
	require.Equal(t, []string{"t1"}, res.Entries.IDs())
	require.False(t, mergeCalled, "local datasets must not be consulted")
	require.Equal(t, 1, remote.calls)
}

func TestResolveRemoteErrorFallsBack(t *testing.T) {
	buf := captureLog(t)
	netErr := errors.New("NetworkError: connection refused")
	remote := &countingProvider{err: netErr}
	r := NewResolver(remote, []models.ToolEntry{toolA, toolB}, []models.ToolEntry{toolC}, nil)

	res := r.Resolve(context.Background())

	require.True(t, res.IsFallback())
	require.Equal(t, ReasonRemoteError, res.Reason)
	require.ErrorIs(t, res.Err, netErr)
	require.Equal(t, []string{"A", "B", "C"}, res.Entries.IDs())
	require.Contains(t, buf.String(), "NetworkError")
	require.Equal(t, 1, remote.calls, "no retries")
}

func TestResolveRemoteEmptyFallsBack(t *testing.T) {
	for _, empty := range [][]models.ToolEntry{nil, {}} {
		remote := &countingProvider{entries: empty}
		r := NewResolver(remote, []models.ToolEntry{toolA, toolB}, []models.ToolEntry{toolC}, nil)

		res := r.Resolve(context.Background())

		require.Equal(t, SourceFallback, res.Source)
		require.Equal(t, ReasonRemoteEmpty, res.Reason)
		require.NoError(t, res.Err)
		require.Equal(t, []string{"A", "B", "C"}, res.Entries.IDs())
	}
}

func TestResolveEmptyAndErrorGiveSameEntries(t *testing.T) {
	static := []models.ToolEntry{toolA, toolB}
	imported := []models.ToolEntry{toolC}

	failing := NewResolver(&countingProvider{err: errors.New("boom")}, static, imported, nil)
	empty := NewResolver(&countingProvider{}, static, imported, nil)

	require.Equal(t, failing.Resolve(context.Background()).Entries, empty.Resolve(context.Background()).Entries)
}

func TestResolveNeverPanics(t *testing.T) {
	captureLog(t)
	panicking := RemoteProviderFunc(func(ctx context.Context) ([]models.ToolEntry, error) {
		panic("provider exploded")
	})
	r := NewResolver(panicking, []models.ToolEntry{toolA}, nil, nil)

	var res *Resolution
	require.NotPanics(t, func() { res = r.Resolve(context.Background()) })
	require.Equal(t, ReasonRemoteError, res.Reason)
	require.ErrorContains(t, res.Err, "provider exploded")
	require.Equal(t, []string{"A"}, res.Entries.IDs())
}

func TestResolveWithoutRemote(t *testing.T) {
	captureLog(t)
	r := NewResolver(nil, []models.ToolEntry{toolA}, []models.ToolEntry{toolB}, nil)

	res := r.Resolve(context.Background())

	require.ErrorIs(t, res.Err, ErrNoRemote)
	require.Equal(t, []string{"A", "B"}, res.Entries.IDs())
}

func TestResolveCancelledContextFallsBack(t *testing.T) {
	captureLog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	remote := RemoteProviderFunc(func(ctx context.Context) ([]models.ToolEntry, error) {
		return nil, ctx.Err()
	})
	r := NewResolver(remote, []models.ToolEntry{toolA}, nil, nil)

	res := r.Resolve(ctx)

	require.ErrorIs(t, res.Err, context.Canceled)
	require.Equal(t, []string{"A"}, res.Entries.IDs())
}

func TestResolveBuildsFreshCatalog(t *testing.T) {
	static := []models.ToolEntry{toolA}
	r := NewResolver(&countingProvider{}, static, []models.ToolEntry{toolB}, nil)

	first := r.Resolve(context.Background())
	first.Entries[0].Name = "mutated"

	second := r.Resolve(context.Background())
	require.Equal(t, "Alpha", second.Entries[0].Name)
	require.Equal(t, "Alpha", static[0].Name)
}

func TestConcatKeepsDuplicates(t *testing.T) {
	out := Concat([]models.ToolEntry{toolA}, []models.ToolEntry{toolA, toolB})
	require.Equal(t, []string{"A", "A", "B"}, out.IDs())
}
