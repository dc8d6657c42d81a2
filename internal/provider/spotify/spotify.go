// Package spotify implements the metadata provider backed by the Spotify
// Web API. Spotify streams are DRM-protected, so this provider never
// produces audio; selecting one of its results delivers the external link.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/dmelis/melodybot/internal/config"
	"github.com/dmelis/melodybot/internal/domain"
	"github.com/dmelis/melodybot/internal/logging"
	"github.com/dmelis/melodybot/internal/provider"
)

const (
	tokenURL       = "https://accounts.spotify.com/api/token"
	defaultAPIBase = "https://api.spotify.com"
)

// Provider searches the Spotify catalog for tracks, artists, albums and
// playlists.
type Provider struct {
	client  *http.Client
	apiBase string
	log     *logging.Logger
}

// New creates a Spotify provider using the client-credentials flow.
func New(cfg config.SpotifyConfig, log *logging.Logger) *Provider {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}
	client := cc.Client(context.Background())
	client.Timeout = 30 * time.Second

	return &Provider{
		client:  client,
		apiBase: defaultAPIBase,
		log:     log.Sub("spotify"),
	}
}

func (p *Provider) Type() domain.ProviderType { return domain.ProviderSpotify }

func (p *Provider) DisplayName() string { return "Spotify" }

func (p *Provider) CanDownload() bool { return false }

// Search runs a catalog search. Cursors are result offsets.
func (p *Provider) Search(ctx context.Context, req provider.SearchRequest) (provider.SearchResult, error) {
	offset := parseOffset(req.Cursor)
	kind := searchType(req.Mode)

	q := url.Values{}
	q.Set("q", req.Query)
	q.Set("type", kind)
	q.Set("limit", strconv.Itoa(req.PageSize))
	q.Set("offset", strconv.Itoa(offset))

	endpoint := p.apiBase + "/v1/search?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return provider.SearchResult{}, fmt.Errorf("%w: spotify: %v", domain.ErrProviderUnavailable, err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return provider.SearchResult{}, fmt.Errorf("%w: spotify search: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.SearchResult{}, fmt.Errorf("%w: spotify: reading response: %v", domain.ErrProviderUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return provider.SearchResult{}, fmt.Errorf("%w: spotify: status %d: %s",
			domain.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return provider.SearchResult{}, fmt.Errorf("%w: spotify: parsing response: %v", domain.ErrProviderUnavailable, err)
	}

	page := parsed.page(kind)
	items := page.resultItems()

	result := provider.SearchResult{Items: items}
	if page.Next != "" {
		result.NextCursor = strconv.Itoa(offset + req.PageSize)
	}
	if offset > 0 {
		prev := offset - req.PageSize
		if prev < 0 {
			prev = 0
		}
		result.PrevCursor = strconv.Itoa(prev)
	}
	return result, nil
}

// FetchMedia returns the item's external link; Spotify never yields audio.
func (p *Provider) FetchMedia(_ context.Context, item domain.ResultItem) (provider.Media, error) {
	if item.URL == "" {
		return provider.Media{}, fmt.Errorf("%w: spotify item %s has no link", domain.ErrUnsupported, item.ID)
	}
	return provider.Media{
		Link:      item.URL,
		Title:     item.Title,
		Performer: item.Author,
	}, nil
}

func parseOffset(cursor string) int {
	if cursor == "" {
		return 0
	}
	n, err := strconv.Atoi(cursor)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// searchType maps the conversation's search mode to the API's type param.
func searchType(mode domain.SearchMode) string {
	switch mode {
	case domain.ModeArtist:
		return "artist"
	case domain.ModeAlbum:
		return "album"
	case domain.ModePlaylist:
		return "playlist"
	default:
		return "track"
	}
}

// --- Web API response shapes ---

type searchResponse struct {
	Tracks    *resultPage `json:"tracks,omitempty"`
	Artists   *resultPage `json:"artists,omitempty"`
	Albums    *resultPage `json:"albums,omitempty"`
	Playlists *resultPage `json:"playlists,omitempty"`
}

func (r *searchResponse) page(kind string) *resultPage {
	var p *resultPage
	switch kind {
	case "artist":
		p = r.Artists
	case "album":
		p = r.Albums
	case "playlist":
		p = r.Playlists
	default:
		p = r.Tracks
	}
	if p == nil {
		return &resultPage{}
	}
	return p
}

type resultPage struct {
	Items []catalogItem `json:"items"`
	Next  string        `json:"next"`
}

type catalogItem struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []artistRef  `json:"artists,omitempty"`
	Owner        *ownerRef    `json:"owner,omitempty"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type artistRef struct {
	Name string `json:"name"`
}

type ownerRef struct {
	DisplayName string `json:"display_name"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

func (p *resultPage) resultItems() []domain.ResultItem {
	items := make([]domain.ResultItem, 0, len(p.Items))
	for _, it := range p.Items {
		author := ""
		if len(it.Artists) > 0 {
			author = it.Artists[0].Name
		} else if it.Owner != nil {
			author = it.Owner.DisplayName
		}
		items = append(items, domain.ResultItem{
			Provider: domain.ProviderSpotify,
			ID:       it.ID,
			Title:    it.Name,
			Author:   author,
			URL:      it.ExternalURLs.Spotify,
		})
	}
	return items
}
