package conversation

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmelis/melodybot/internal/domain"
	"github.com/dmelis/melodybot/internal/provider"
)

func (e *Engine) handleText(ctx context.Context, sess *domain.Session, ev domain.Event) {
	text := strings.TrimSpace(ev.Text)
	lower := strings.ToLower(text)

	// /start resets unconditionally, from any state including ended.
	if lower == "/start" {
		sess.Reset()
		e.send(ctx, sess, renderMenu())
		return
	}

	// Cancellation is available from every non-terminal state. It clears
	// transient search data; history is untouched.
	if (lower == labelCancel || lower == "/"+labelCancel) && sess.State != domain.StateEnded {
		sess.Reset()
		e.send(ctx, sess, Reply{Text: "Cancelled."})
		e.send(ctx, sess, renderMenu())
		return
	}

	switch sess.State {
	case domain.StateMenu:
		e.onMenu(ctx, sess, lower)
	case domain.StateChooseSource:
		e.onChooseSource(ctx, sess, lower)
	case domain.StateChooseType:
		e.onChooseType(ctx, sess, lower)
	case domain.StateEnterQuery:
		e.onQuery(ctx, sess, text)
	case domain.StateShowResults:
		e.send(ctx, sess, Reply{Text: "Use the buttons to pick a result, or send \"cancel\"."})
	case domain.StateEnded:
		e.send(ctx, sess, Reply{Text: "Send /start to begin."})
	}
}

func (e *Engine) onMenu(ctx context.Context, sess *domain.Session, input string) {
	switch {
	case labelMatches(input, labelSearch):
		sess.State = domain.StateChooseSource
		e.send(ctx, sess, renderSources(e.sourceOptions()))
	case labelMatches(input, labelHistory):
		entries := e.history.Recent(sess.UserID, e.opts.HistoryLimit)
		e.send(ctx, sess, renderHistory(entries))
	case labelMatches(input, labelExit):
		sess.Reset()
		sess.State = domain.StateEnded
		e.send(ctx, sess, Reply{
			Text:     "Bye! Send /start to begin again.",
			Keyboard: &domain.Keyboard{Remove: true},
		})
	default:
		e.send(ctx, sess, Reply{Text: "Choose one of the menu options."})
	}
}

func (e *Engine) onChooseSource(ctx context.Context, sess *domain.Session, input string) {
	for _, opt := range e.sourceOptions() {
		if !labelMatches(input, opt.Label) {
			continue
		}
		sess.Provider = opt.Type
		if opt.Type == domain.ProviderSpotify {
			sess.State = domain.StateChooseType
			e.send(ctx, sess, renderTypes())
			return
		}
		sess.Mode = domain.ModeTitle
		sess.State = domain.StateEnterQuery
		e.send(ctx, sess, renderQueryPrompt(e.displayName(opt.Type)))
		return
	}
	e.send(ctx, sess, Reply{Text: "Pick one of the sources."})
}

func (e *Engine) onChooseType(ctx context.Context, sess *domain.Session, input string) {
	modes := map[string]domain.SearchMode{
		labelTrack:    domain.ModeTitle,
		labelArtist:   domain.ModeArtist,
		labelAlbum:    domain.ModeAlbum,
		labelPlaylist: domain.ModePlaylist,
	}
	for label, mode := range modes {
		if labelMatches(input, label) {
			sess.Mode = mode
			sess.State = domain.StateEnterQuery
			e.send(ctx, sess, renderQueryPrompt(e.displayName(sess.Provider)))
			return
		}
	}
	e.send(ctx, sess, Reply{Text: "Pick what to search for."})
}

func (e *Engine) onQuery(ctx context.Context, sess *domain.Session, query string) {
	if query == "" {
		e.send(ctx, sess, Reply{Text: "Send me some text to search for."})
		return
	}

	p, ok := e.providers.Get(sess.Provider)
	if !ok {
		e.fail(ctx, sess, "Search failed, try again.")
		return
	}

	sess.Query = query
	e.history.Record(sess.UserID, query)

	page, err := e.search(ctx, p, sess, "")
	if err != nil {
		e.log.Error().Err(err).Int64("user", sess.UserID).Str("query", query).Msg("search failed")
		e.fail(ctx, sess, "Search failed, try again later.")
		return
	}
	if len(page.Items) == 0 {
		sess.Reset()
		e.send(ctx, sess, Reply{Text: "No results found."})
		e.send(ctx, sess, renderMenu())
		return
	}

	sess.SetPage(page)
	sess.State = domain.StateShowResults
	e.send(ctx, sess, renderResults(page, sess.PageGen))
}

func (e *Engine) handleCallback(ctx context.Context, sess *domain.Session, ev domain.Event) {
	kind, gen, idx, ok := parseToken(ev.Data)

	// Any token that doesn't line up with the current result page is
	// stale: wrong state, wrong generation, or an out-of-range index.
	// Never index into a superseded page.
	if !ok || sess.State != domain.StateShowResults || sess.Page == nil || gen != sess.PageGen {
		e.unknown(ctx, sess)
		return
	}

	switch kind {
	case "next":
		e.flipPage(ctx, sess, ev, sess.Page.NextCursor)
	case "prev":
		e.flipPage(ctx, sess, ev, sess.Page.PrevCursor)
	case "pick":
		if idx < 0 || idx >= len(sess.Page.Items) {
			e.unknown(ctx, sess)
			return
		}
		e.pick(ctx, sess, ev, sess.Page.Items[idx])
	default:
		e.unknown(ctx, sess)
	}
}

// flipPage re-issues the search with the stored cursor and re-renders in
// place. An empty cursor means the button should not have existed.
func (e *Engine) flipPage(ctx context.Context, sess *domain.Session, ev domain.Event, cursor string) {
	if cursor == "" {
		e.unknown(ctx, sess)
		return
	}

	p, ok := e.providers.Get(sess.Provider)
	if !ok {
		e.fail(ctx, sess, "Search failed, try again.")
		return
	}

	page, err := e.search(ctx, p, sess, cursor)
	if err != nil {
		e.log.Error().Err(err).Int64("user", sess.UserID).Msg("pagination failed")
		e.fail(ctx, sess, "Search failed, try again later.")
		return
	}
	if len(page.Items) == 0 {
		sess.Reset()
		e.send(ctx, sess, Reply{Text: "No more results."})
		e.send(ctx, sess, renderMenu())
		return
	}

	sess.SetPage(page)
	e.edit(ctx, sess, ev.MessageID, renderResults(page, sess.PageGen))
}

// pick dispatches the selected item: a background download for providers
// that produce audio, or an immediate link message otherwise.
func (e *Engine) pick(ctx context.Context, sess *domain.Session, ev domain.Event, item domain.ResultItem) {
	p, ok := e.providers.Get(item.Provider)
	if !ok {
		e.fail(ctx, sess, "That source is not available right now.")
		return
	}

	if !p.CanDownload() {
		media, err := p.FetchMedia(ctx, item)
		if err != nil || media.Link == "" {
			e.fail(ctx, sess, "Couldn't get a link for that, try again.")
			return
		}
		e.send(ctx, sess, renderLink(item, media.Link))
		sess.Reset()
		e.send(ctx, sess, renderMenu())
		return
	}

	chatID := sess.ChatID
	deliver := func(m provider.Media) error {
		return e.ch.SendAudio(context.Background(), chatID, domain.Audio{
			Path:      m.Path,
			Title:     m.Title,
			Performer: m.Performer,
		})
	}
	done := func(err error) {
		if err != nil {
			if _, sendErr := e.ch.SendText(context.Background(), chatID, "Download failed, try again later.", nil); sendErr != nil {
				e.log.Error().Err(sendErr).Int64("chat", chatID).Msg("failed to send failure notice")
			}
			return
		}
		if _, err := e.ch.SendText(context.Background(), chatID, "Here you go! 🎶", nil); err != nil {
			e.log.Error().Err(err).Int64("chat", chatID).Msg("failed to send completion notice")
		}
	}

	err := e.fetcher.Start(context.Background(), p, sess.UserID, item, deliver, done)
	if err != nil {
		// Ceiling reached: stay on the results page so the user can retry.
		e.send(ctx, sess, Reply{Text: "Too many simultaneous downloads, wait for one to finish."})
		return
	}

	e.edit(ctx, sess, ev.MessageID, Reply{Text: "⬇️ Downloading \"" + item.Title + "\", hang on..."})
	sess.Reset()
	e.send(ctx, sess, renderMenu())
}

// search runs one bounded provider search for the session's query.
func (e *Engine) search(ctx context.Context, p provider.Provider, sess *domain.Session, cursor string) (*domain.ResultPage, error) {
	sctx, cancel := e.searchCtx(ctx)
	defer cancel()

	res, err := p.Search(sctx, provider.SearchRequest{
		Query:    sess.Query,
		Mode:     sess.Mode,
		Cursor:   cursor,
		PageSize: e.opts.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &domain.ResultPage{
		Items:      res.Items,
		NextCursor: res.NextCursor,
		PrevCursor: res.PrevCursor,
	}, nil
}

// fail surfaces an error message and returns the session to the menu.
func (e *Engine) fail(ctx context.Context, sess *domain.Session, msg string) {
	sess.Reset()
	e.send(ctx, sess, Reply{Text: msg})
	e.send(ctx, sess, renderMenu())
}

// unknown handles stale or malformed callback tokens.
func (e *Engine) unknown(ctx context.Context, sess *domain.Session) {
	sess.Reset()
	e.send(ctx, sess, Reply{Text: "Unknown command."})
	e.send(ctx, sess, renderMenu())
}

func (e *Engine) sourceOptions() []sourceOption {
	var out []sourceOption
	for _, t := range e.providers.Types() {
		out = append(out, sourceOption{Type: t, Label: sourceLabel(t, e.displayName(t))})
	}
	return out
}

func (e *Engine) displayName(t domain.ProviderType) string {
	if p, ok := e.providers.Get(t); ok {
		return p.DisplayName()
	}
	return string(t)
}

// labelMatches reports whether the user's input selects a button label,
// either the exact label or its text minus the leading emoji.
func labelMatches(input, label string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return false
	}
	if input == strings.ToLower(label) {
		return true
	}
	if i := strings.IndexRune(label, ' '); i > 0 {
		return input == strings.ToLower(label[i+1:])
	}
	return false
}

// parseToken splits a callback token into its kind, generation, and, for
// pick tokens, the item index.
func parseToken(data string) (kind string, gen, idx int, ok bool) {
	parts := strings.Split(data, ":")
	switch {
	case len(parts) == 2 && (parts[0] == "next" || parts[0] == "prev"):
		g, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", 0, 0, false
		}
		return parts[0], g, 0, true
	case len(parts) == 3 && parts[0] == "pick":
		g, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", 0, 0, false
		}
		i, err := strconv.Atoi(parts[2])
		if err != nil {
			return "", 0, 0, false
		}
		return parts[0], g, i, true
	default:
		return "", 0, 0, false
	}
}
