package domain

import "time"

// ProviderType identifies an external search/media source.
type ProviderType string

const (
	ProviderYouTube   ProviderType = "youtube"
	ProviderSpotify   ProviderType = "spotify"
	ProviderConverter ProviderType = "converter"
)

// ResultItem is one candidate track or video from a provider search.
// Immutable once fetched; referenced by position within its ResultPage.
type ResultItem struct {
	Provider ProviderType
	ID       string // provider-scoped identifier
	Title    string
	Author   string // artist or channel name
	URL      string // external link, where the provider exposes one
}

// ResultPage is one page of search results plus opaque cursors for the
// adjacent pages. An empty cursor means no page exists in that direction.
type ResultPage struct {
	Items      []ResultItem
	NextCursor string
	PrevCursor string
}

// HistoryEntry is one recorded search query.
type HistoryEntry struct {
	UserID    int64
	Query     string
	CreatedAt time.Time
}
