package download

import (
	"context"
	"os"
	"time"

	"github.com/dmelis/melodybot/internal/domain"
	"github.com/dmelis/melodybot/internal/logging"
	"github.com/dmelis/melodybot/internal/provider"
)

// Fetcher runs provider media fetches under the per-user limiter with a
// bounded timeout. Admission is synchronous so callers can report a
// rejected job immediately; the fetch itself runs on its own goroutine
// because media retrieval is a long blocking operation.
type Fetcher struct {
	limiter *Limiter
	timeout time.Duration
	log     *logging.Logger
}

// NewFetcher creates a fetcher around the given limiter.
func NewFetcher(limiter *Limiter, timeout time.Duration, log *logging.Logger) *Fetcher {
	return &Fetcher{
		limiter: limiter,
		timeout: timeout,
		log:     log.Sub("download"),
	}
}

// Start acquires a job slot and launches the fetch. It returns
// domain.ErrTooManyDownloads, without touching the provider, when the
// user is at the ceiling. Otherwise the fetch runs in the background:
// deliver is called with the media, then done with the overall outcome.
// The slot is released and any temp file removed no matter how the fetch
// or delivery ends.
func (f *Fetcher) Start(ctx context.Context, p provider.Provider, userID int64, item domain.ResultItem, deliver func(provider.Media) error, done func(error)) error {
	if !f.limiter.TryAcquire(userID) {
		return domain.ErrTooManyDownloads
	}

	go func() {
		defer f.limiter.Release(userID)
		err := f.run(ctx, p, userID, item, deliver)
		if done != nil {
			done(err)
		}
	}()
	return nil
}

func (f *Fetcher) run(ctx context.Context, p provider.Provider, userID int64, item domain.ResultItem, deliver func(provider.Media) error) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	media, err := p.FetchMedia(ctx, item)
	if err != nil {
		f.log.Error().Err(err).
			Int64("user", userID).
			Str("provider", string(p.Type())).
			Str("item", item.ID).
			Msg("media fetch failed")
		return err
	}

	if media.Path != "" {
		defer func() {
			if err := os.Remove(media.Path); err != nil && !os.IsNotExist(err) {
				f.log.Warn().Err(err).Str("file", media.Path).Msg("failed to remove temp file")
			}
		}()
	}

	f.log.Info().
		Int64("user", userID).
		Str("provider", string(p.Type())).
		Str("item", item.ID).
		Dur("duration", time.Since(start)).
		Msg("media fetched")

	return deliver(media)
}
