package cli

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmelis/melodybot/internal/channel/telegram"
	"github.com/dmelis/melodybot/internal/config"
	"github.com/dmelis/melodybot/internal/conversation"
	"github.com/dmelis/melodybot/internal/domain"
	"github.com/dmelis/melodybot/internal/download"
	"github.com/dmelis/melodybot/internal/provider"
	"github.com/dmelis/melodybot/internal/provider/converter"
	"github.com/dmelis/melodybot/internal/provider/spotify"
	"github.com/dmelis/melodybot/internal/provider/youtube"
	"github.com/dmelis/melodybot/internal/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating data directories: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := store.Open(filepath.Join(paths.Data, "melodybot.db"), log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()
			history := store.NewHistoryStore(db)

			providers := provider.Set{}
			if yc := cfg.Providers.YouTube; yc != nil {
				p, err := youtube.New(ctx, *yc, cfg.Downloads.TempDir, log)
				if err != nil {
					return fmt.Errorf("initializing youtube provider: %w", err)
				}
				providers[domain.ProviderYouTube] = p
			}
			if sc := cfg.Providers.Spotify; sc != nil {
				providers[domain.ProviderSpotify] = spotify.New(*sc, log)
			}
			if cc := cfg.Providers.Converter; cc != nil {
				providers[domain.ProviderConverter] = converter.New(*cc, cfg.Downloads.TempDir, log)
			}
			for _, t := range providers.Types() {
				log.Info().Str("provider", string(t)).Msg("provider enabled")
			}

			limiter := download.NewLimiter(cfg.Downloads.PerUserLimit)
			fetcher := download.NewFetcher(limiter, time.Duration(cfg.Downloads.FetchTimeout)*time.Second, log)

			ch := telegram.New(cfg.Telegram, log)

			engine := conversation.NewEngine(ch, providers, history, fetcher, conversation.Options{
				PageSize:      cfg.Search.PageSize,
				SearchTimeout: time.Duration(cfg.Search.Timeout) * time.Second,
				HistoryLimit:  cfg.History.Retention,
			}, log)
			engine.Attach()

			log.Info().Msg("bot starting")
			err = ch.Start(ctx)
			if err != nil && ctx.Err() == nil {
				return err
			}

			log.Info().Msg("shutting down")
			return ch.Stop(cmd.Context())
		},
	}
	return cmd
}
