// Package catalog resolves the tool directory shown on the home page.
//
// Every Resolve call makes exactly one attempt against the remote provider.
// When that attempt errors or comes back empty, the bundled static and
// imported datasets are merged and served instead. Nothing is cached between
// calls and no error ever reaches the caller; the Resolution says which path
// was taken and why.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-while/go-toolsite/internal/models"
)

// ErrNoRemote is recorded when a Resolver has no remote provider configured
var ErrNoRemote = errors.New("no remote tool provider configured")

// RemoteProvider is an external source of tool entries
type RemoteProvider interface {
	FetchTools(ctx context.Context) ([]models.ToolEntry, error)
}

// RemoteProviderFunc adapts a plain function to RemoteProvider
type RemoteProviderFunc func(ctx context.Context) ([]models.ToolEntry, error)

func (f RemoteProviderFunc) FetchTools(ctx context.Context) ([]models.ToolEntry, error) {
	return f(ctx)
}

// MergeFunc combines the static and imported datasets into the fallback catalog
type MergeFunc func(static, imported []models.ToolEntry) models.ToolCatalog

// Concat returns static followed by imported. Duplicate IDs are kept.
func Concat(static, imported []models.ToolEntry) models.ToolCatalog {
	out := make(models.ToolCatalog, 0, len(static)+len(imported))
	out = append(out, static...)
	out = append(out, imported...)
	return out
}

// Source tells where a resolved catalog came from
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Reason tells why the fallback was used
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonRemoteError Reason = "remote_error"
	ReasonRemoteEmpty Reason = "remote_empty"
)

// Resolution is the result of one Resolve call
type Resolution struct {
	Source  Source
	Reason  Reason
	Err     error // absorbed remote error, diagnostics only
	Entries models.ToolCatalog
}

// IsFallback reports whether the local datasets were served
func (r *Resolution) IsFallback() bool {
	return r.Source == SourceFallback
}

// Resolver produces a fresh ToolCatalog per call
type Resolver struct {
	remote   RemoteProvider
	static   []models.ToolEntry
	imported []models.ToolEntry
	merge    MergeFunc
}

// NewResolver creates a resolver. remote may be nil, merge defaults to Concat.
func NewResolver(remote RemoteProvider, static, imported []models.ToolEntry, merge MergeFunc) *Resolver {
	if merge == nil {
		merge = Concat
	}
	return &Resolver{
		remote:   remote,
		static:   static,
		imported: imported,
		merge:    merge,
	}
}

// Resolve returns the remote catalog when it is non-empty, otherwise the merged local datasets
func (r *Resolver) Resolve(ctx context.Context) *Resolution {
	entries, err := r.fetchRemote(ctx)
	if err != nil {
		log.Printf("[CATALOG] remote tool provider failed, serving fallback: %v", err)
		return r.fallback(ReasonRemoteError, err)
	}
	if len(entries) == 0 {
		return r.fallback(ReasonRemoteEmpty, nil)
	}
	return &Resolution{
		Source:  SourceRemote,
		Reason:  ReasonNone,
		Entries: models.ToolCatalog(entries),
	}
}

// fetchRemote makes the single remote attempt and turns a provider panic into an error
func (r *Resolver) fetchRemote(ctx context.Context) (entries []models.ToolEntry, err error) {
	if r.remote == nil {
		return nil, ErrNoRemote
	}
	defer func() {
		if p := recover(); p != nil {
			entries = nil
			err = fmt.Errorf("remote tool provider panic: %v", p)
		}
	}()
	return r.remote.FetchTools(ctx)
}

func (r *Resolver) fallback(reason Reason, err error) *Resolution {
	return &Resolution{
		Source:  SourceFallback,
		Reason:  reason,
		Err:     err,
		Entries: r.merge(r.static, r.imported),
	}
}
