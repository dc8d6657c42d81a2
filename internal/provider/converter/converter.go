// Package converter implements the provider adapter for a third-party
// "Spotify to mp3" converter site. There is no API; both search and
// download scrape the site's HTML, so every selector miss is treated as
// an ordinary not-found rather than a failure, since the markup changes often.
package converter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/dmelis/melodybot/internal/config"
	"github.com/dmelis/melodybot/internal/domain"
	"github.com/dmelis/melodybot/internal/logging"
	"github.com/dmelis/melodybot/internal/provider"
)

// Provider scrapes a converter site for track matches and mp3 files.
type Provider struct {
	baseURL string
	client  *http.Client
	tempDir string
	log     *logging.Logger
}

// New creates a converter provider for the configured site.
func New(cfg config.ConverterConfig, tempDir string, log *logging.Logger) *Provider {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
		tempDir: tempDir,
		log:     log.Sub("converter"),
	}
}

func (p *Provider) Type() domain.ProviderType { return domain.ProviderConverter }

func (p *Provider) DisplayName() string { return "Converter" }

func (p *Provider) CanDownload() bool { return true }

// Search scrapes the site's search page. Cursors are page numbers.
func (p *Provider) Search(ctx context.Context, req provider.SearchRequest) (provider.SearchResult, error) {
	page := parsePage(req.Cursor)

	q := url.Values{}
	q.Set("q", req.Query)
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}

	doc, err := p.fetchDocument(ctx, p.baseURL+"/search?"+q.Encode())
	if err != nil {
		return provider.SearchResult{}, err
	}

	var items []domain.ResultItem
	doc.Find(".track-list .track").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if len(items) >= req.PageSize {
			return false
		}
		id, ok := row.Attr("data-track-id")
		if !ok || id == "" {
			// markup drifted for this row; skip rather than fail
			return true
		}
		items = append(items, domain.ResultItem{
			Provider: domain.ProviderConverter,
			ID:       id,
			Title:    strings.TrimSpace(row.Find(".track-title").Text()),
			Author:   strings.TrimSpace(row.Find(".track-artist").Text()),
		})
		return true
	})

	result := provider.SearchResult{Items: items}
	if doc.Find(".pagination .next").Length() > 0 {
		result.NextCursor = strconv.Itoa(page + 1)
	}
	if page > 1 {
		result.PrevCursor = strconv.Itoa(page - 1)
	}
	return result, nil
}

// FetchMedia scrapes the track's download page for the produced mp3 and
// saves it under a uniquely named temp path. The caller owns removal.
func (p *Provider) FetchMedia(ctx context.Context, item domain.ResultItem) (provider.Media, error) {
	doc, err := p.fetchDocument(ctx, p.baseURL+"/track/"+url.PathEscape(item.ID))
	if err != nil {
		return provider.Media{}, err
	}

	href, ok := doc.Find("a.download-link").First().Attr("href")
	if !ok || href == "" {
		// the converter produced nothing for this track
		return provider.Media{}, fmt.Errorf("%w: converter has no file for %q", domain.ErrUnsupported, item.Title)
	}
	if strings.HasPrefix(href, "/") {
		href = p.baseURL + href
	}

	path := filepath.Join(p.tempDir, uuid.New().String()+".mp3")
	if err := p.downloadFile(ctx, href, path); err != nil {
		return provider.Media{}, err
	}

	p.log.Info().Str("track", item.ID).Str("file", path).Msg("converter file downloaded")

	return provider.Media{
		Path:      path,
		Title:     item.Title,
		Performer: item.Author,
	}, nil
}

func (p *Provider) fetchDocument(ctx context.Context, endpoint string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: converter: %v", domain.ErrProviderUnavailable, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: converter: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: converter: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: converter: parsing page: %v", domain.ErrProviderUnavailable, err)
	}
	return doc, nil
}

func (p *Provider) downloadFile(ctx context.Context, endpoint, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: converter: %v", domain.ErrProviderUnavailable, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: converter download: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: converter download: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%w: converter download: %v", domain.ErrProviderUnavailable, err)
	}
	return f.Close()
}

func parsePage(cursor string) int {
	if cursor == "" {
		return 1
	}
	n, err := strconv.Atoi(cursor)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
