// Package youtube implements the provider adapter for the YouTube Data API,
// with media extraction delegated to the yt-dlp CLI.
package youtube

import (
	"context"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/dmelis/melodybot/internal/config"
	"github.com/dmelis/melodybot/internal/domain"
	"github.com/dmelis/melodybot/internal/logging"
	"github.com/dmelis/melodybot/internal/provider"
)

const watchURL = "https://www.youtube.com/watch?v="

// Provider searches YouTube and downloads audio via yt-dlp.
type Provider struct {
	svc     *yt.Service
	ytdlp   string
	tempDir string
	log     *logging.Logger
}

// New creates a YouTube provider. Extra client options are passed through
// to the API service (tests override the endpoint this way).
func New(ctx context.Context, cfg config.YouTubeConfig, tempDir string, log *logging.Logger, opts ...option.ClientOption) (*Provider, error) {
	all := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	svc, err := yt.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}

	ytdlp := cfg.YtDlpPath
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return &Provider{
		svc:     svc,
		ytdlp:   ytdlp,
		tempDir: tempDir,
		log:     log.Sub("youtube"),
	}, nil
}

func (p *Provider) Type() domain.ProviderType { return domain.ProviderYouTube }

func (p *Provider) DisplayName() string { return "YouTube" }

func (p *Provider) CanDownload() bool { return true }

// Search runs a video search. Page cursors are the API's page tokens.
func (p *Provider) Search(ctx context.Context, req provider.SearchRequest) (provider.SearchResult, error) {
	call := p.svc.Search.List([]string{"snippet"}).
		Context(ctx).
		Q(searchQuery(req)).
		Type("video").
		MaxResults(int64(req.PageSize))
	if req.Cursor != "" {
		call = call.PageToken(req.Cursor)
	}

	resp, err := call.Do()
	if err != nil {
		return provider.SearchResult{}, fmt.Errorf("%w: youtube search: %v", domain.ErrProviderUnavailable, err)
	}

	items := make([]domain.ResultItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.Id == nil || it.Id.VideoId == "" || it.Snippet == nil {
			continue
		}
		items = append(items, domain.ResultItem{
			Provider: domain.ProviderYouTube,
			ID:       it.Id.VideoId,
			Title:    html.UnescapeString(it.Snippet.Title),
			Author:   it.Snippet.ChannelTitle,
			URL:      watchURL + it.Id.VideoId,
		})
	}

	return provider.SearchResult{
		Items:      items,
		NextCursor: resp.NextPageToken,
		PrevCursor: resp.PrevPageToken,
	}, nil
}

// searchQuery shapes the raw query by search mode.
func searchQuery(req provider.SearchRequest) string {
	switch req.Mode {
	case domain.ModeArtist:
		return req.Query + " songs"
	case domain.ModeAlbum:
		return req.Query + " full album"
	default:
		return req.Query
	}
}

// FetchMedia extracts mp3 audio for a video into a uniquely named file
// under the temp dir. The caller owns removal of the returned path.
func (p *Provider) FetchMedia(ctx context.Context, item domain.ResultItem) (provider.Media, error) {
	base := uuid.New().String()
	outTemplate := filepath.Join(p.tempDir, base+".%(ext)s")

	args := []string{
		"-f", "bestaudio/best",
		"-x", "--audio-format", "mp3",
		"--audio-quality", "192K",
		"--no-playlist",
		"--quiet",
		"-o", outTemplate,
		watchURL + item.ID,
	}

	p.log.Debug().Str("video", item.ID).Msg("starting yt-dlp")

	cmd := exec.CommandContext(ctx, p.ytdlp, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		p.cleanup(base)
		return provider.Media{}, fmt.Errorf("%w: yt-dlp: %v (%s)",
			domain.ErrProviderUnavailable, err, strings.TrimSpace(stderr.String()))
	}

	// yt-dlp names the final file itself; find what it produced.
	matches, err := filepath.Glob(filepath.Join(p.tempDir, base+"*.mp3"))
	if err != nil || len(matches) == 0 {
		p.cleanup(base)
		return provider.Media{}, fmt.Errorf("%w: no mp3 produced for video %s",
			domain.ErrProviderUnavailable, item.ID)
	}

	p.log.Info().Str("video", item.ID).Str("file", matches[0]).Msg("audio extracted")

	return provider.Media{
		Path:      matches[0],
		Title:     item.Title,
		Performer: item.Author,
	}, nil
}

// cleanup removes any partial artifacts left behind for a job.
func (p *Provider) cleanup(base string) {
	matches, _ := filepath.Glob(filepath.Join(p.tempDir, base+"*"))
	for _, m := range matches {
		os.Remove(m)
	}
}
