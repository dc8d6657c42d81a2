// Package provider defines the adapter contract for external music sources
// and holds one sub-package per backing service.
package provider

import (
	"context"

	"github.com/dmelis/melodybot/internal/domain"
)

// SearchRequest describes one page of a provider search.
type SearchRequest struct {
	Query    string
	Mode     domain.SearchMode
	Cursor   string // opaque cursor from a previous SearchResult; empty for page one
	PageSize int
}

// SearchResult is one page of matches. Empty Items with a nil error means
// the upstream was reachable but had nothing; an upstream failure is
// reported as an error wrapping domain.ErrProviderUnavailable.
type SearchResult struct {
	Items      []domain.ResultItem
	NextCursor string
	PrevCursor string
}

// Media is what a fetch hands back: either a local file (Path set, caller
// owns removal) or an external link for providers that never produce audio.
type Media struct {
	Path      string
	Title     string
	Performer string
	Link      string
}

// Provider is a single external search/media source.
type Provider interface {
	// Type returns the provider identifier for result tagging.
	Type() domain.ProviderType

	// DisplayName is the human-facing source label.
	DisplayName() string

	// CanDownload reports whether FetchMedia yields a local audio file.
	// Link-only providers return false and FetchMedia returns a Media
	// with only Link set.
	CanDownload() bool

	// Search returns one page of matches for the query.
	Search(ctx context.Context, req SearchRequest) (SearchResult, error)

	// FetchMedia retrieves the audio for an item, or its external link.
	FetchMedia(ctx context.Context, item domain.ResultItem) (Media, error)
}

// Set is the collection of enabled providers, keyed by type.
type Set map[domain.ProviderType]Provider

// Get returns the provider for a type.
func (s Set) Get(t domain.ProviderType) (Provider, bool) {
	p, ok := s[t]
	return p, ok
}

// Types returns the enabled provider types in a stable order.
func (s Set) Types() []domain.ProviderType {
	order := []domain.ProviderType{domain.ProviderYouTube, domain.ProviderSpotify, domain.ProviderConverter}
	var out []domain.ProviderType
	for _, t := range order {
		if _, ok := s[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
