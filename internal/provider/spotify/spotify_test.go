package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmelis/melodybot/internal/domain"
	"github.com/dmelis/melodybot/internal/logging"
	"github.com/dmelis/melodybot/internal/provider"
)

func testProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Provider{
		client:  server.Client(),
		apiBase: server.URL,
		log:     logging.New(nil, "silent"),
	}
}

const trackPage = `{
	"tracks": {
		"items": [
			{
				"id": "t1",
				"name": "One More Time",
				"artists": [{"name": "Daft Punk"}],
				"external_urls": {"spotify": "https://open.spotify.com/track/t1"}
			},
			{
				"id": "t2",
				"name": "Around the World",
				"artists": [{"name": "Daft Punk"}],
				"external_urls": {"spotify": "https://open.spotify.com/track/t2"}
			}
		],
		"next": "https://api.spotify.com/v1/search?offset=5"
	}
}`

func TestSearch_MapsTracks(t *testing.T) {
	var gotQuery, gotType, gotOffset string
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotType = r.URL.Query().Get("type")
		gotOffset = r.URL.Query().Get("offset")
		w.Write([]byte(trackPage))
	})

	res, err := p.Search(context.Background(), provider.SearchRequest{
		Query:    "daft punk",
		Mode:     domain.ModeTitle,
		PageSize: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, "daft punk", gotQuery)
	assert.Equal(t, "track", gotType)
	assert.Equal(t, "0", gotOffset)

	require.Len(t, res.Items, 2)
	assert.Equal(t, domain.ProviderSpotify, res.Items[0].Provider)
	assert.Equal(t, "One More Time", res.Items[0].Title)
	assert.Equal(t, "Daft Punk", res.Items[0].Author)
	assert.Equal(t, "https://open.spotify.com/track/t1", res.Items[0].URL)

	// first page: forward cursor only
	assert.Equal(t, "5", res.NextCursor)
	assert.Empty(t, res.PrevCursor)
}

func TestSearch_SecondPageHasPrevCursor(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("offset"))
		w.Write([]byte(`{"tracks": {"items": [{"id": "t3", "name": "X", "external_urls": {}}], "next": ""}}`))
	})

	res, err := p.Search(context.Background(), provider.SearchRequest{
		Query:    "daft punk",
		Cursor:   "5",
		PageSize: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, "0", res.PrevCursor)
	// no next page upstream, no forward cursor
	assert.Empty(t, res.NextCursor)
}

func TestSearch_ModeSelectsType(t *testing.T) {
	var gotType string
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.URL.Query().Get("type")
		w.Write([]byte(`{"artists": {"items": [{"id": "a1", "name": "Daft Punk", "external_urls": {"spotify": "u"}}], "next": ""}}`))
	})

	res, err := p.Search(context.Background(), provider.SearchRequest{
		Query:    "daft punk",
		Mode:     domain.ModeArtist,
		PageSize: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, "artist", gotType)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Daft Punk", res.Items[0].Title)
}

func TestSearch_EmptyResultIsNotAnError(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tracks": {"items": [], "next": ""}}`))
	})

	res, err := p.Search(context.Background(), provider.SearchRequest{Query: "zzz", PageSize: 5})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestSearch_UpstreamFailureIsProviderUnavailable(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := p.Search(context.Background(), provider.SearchRequest{Query: "x", PageSize: 5})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestFetchMedia_ReturnsLink(t *testing.T) {
	p := &Provider{log: logging.New(nil, "silent")}

	media, err := p.FetchMedia(context.Background(), domain.ResultItem{
		Provider: domain.ProviderSpotify,
		ID:       "t1",
		Title:    "One More Time",
		Author:   "Daft Punk",
		URL:      "https://open.spotify.com/track/t1",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://open.spotify.com/track/t1", media.Link)
	assert.Empty(t, media.Path, "spotify never yields a local file")
}

func TestFetchMedia_NoLink(t *testing.T) {
	p := &Provider{log: logging.New(nil, "silent")}

	_, err := p.FetchMedia(context.Background(), domain.ResultItem{ID: "t1"})
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}

func TestProvider_Capabilities(t *testing.T) {
	p := &Provider{log: logging.New(nil, "silent")}
	assert.Equal(t, domain.ProviderSpotify, p.Type())
	assert.False(t, p.CanDownload())
}
