// Package conversation implements the bot's wizard state machine: menu,
// source selection, query entry, paginated results, download dispatch.
package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/dmelis/melodybot/internal/domain"
	"github.com/dmelis/melodybot/internal/download"
	"github.com/dmelis/melodybot/internal/logging"
	"github.com/dmelis/melodybot/internal/provider"
)

// HistoryStore is the engine's view of the query log.
type HistoryStore interface {
	Record(userID int64, query string)
	Recent(userID int64, n int) []domain.HistoryEntry
}

// Options configures an Engine.
type Options struct {
	PageSize      int
	SearchTimeout time.Duration
	HistoryLimit  int
}

// Engine routes inbound chat events to per-state handlers. Events for one
// user are handled strictly in order; different users proceed concurrently.
type Engine struct {
	ch        domain.Channel
	providers provider.Set
	history   HistoryStore
	fetcher   *download.Fetcher
	opts      Options
	log       *logging.Logger

	mu       sync.Mutex
	sessions map[int64]*sessionSlot
}

// sessionSlot serializes event handling for one user's session. Inbound
// events are staged in queue and drained by a single goroutine, so two
// rapid events from the same user are handled in arrival order.
type sessionSlot struct {
	mu      sync.Mutex
	session *domain.Session

	qmu      sync.Mutex
	queue    []domain.Event
	draining bool
}

// NewEngine creates the conversation engine.
func NewEngine(ch domain.Channel, providers provider.Set, history HistoryStore, fetcher *download.Fetcher, opts Options, log *logging.Logger) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = 15 * time.Second
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	return &Engine{
		ch:        ch,
		providers: providers,
		history:   history,
		fetcher:   fetcher,
		opts:      opts,
		log:       log.Sub("conversation"),
		sessions:  make(map[int64]*sessionSlot),
	}
}

// Attach registers the engine as the channel's event handler. The handler
// only enqueues, so the channel's polling loop is never blocked by a slow
// session.
func (e *Engine) Attach() {
	e.ch.OnEvent(e.enqueue)
}

// enqueue stages an event on the user's slot and starts a drainer if one
// isn't already running. Enqueue order is processing order per user.
func (e *Engine) enqueue(ev domain.Event) {
	sl := e.slot(ev.UserID, ev.ChatID)

	sl.qmu.Lock()
	sl.queue = append(sl.queue, ev)
	if !sl.draining {
		sl.draining = true
		go e.drain(sl)
	}
	sl.qmu.Unlock()
}

func (e *Engine) drain(sl *sessionSlot) {
	for {
		sl.qmu.Lock()
		if len(sl.queue) == 0 {
			sl.draining = false
			sl.qmu.Unlock()
			return
		}
		ev := sl.queue[0]
		sl.queue = sl.queue[1:]
		sl.qmu.Unlock()

		e.HandleEvent(context.Background(), ev)
	}
}

// Session returns the user's session, creating it at the menu if absent.
// Exposed for tests.
func (e *Engine) Session(userID, chatID int64) *domain.Session {
	return e.slot(userID, chatID).session
}

func (e *Engine) slot(userID, chatID int64) *sessionSlot {
	e.mu.Lock()
	defer e.mu.Unlock()
	sl, ok := e.sessions[userID]
	if !ok {
		sl = &sessionSlot{session: domain.NewSession(userID, chatID)}
		e.sessions[userID] = sl
	}
	return sl
}

// HandleEvent processes one inbound event to completion. A panic in a
// handler is contained to this session: it is logged, the user gets the
// generic failure message, and the session returns to the menu.
func (e *Engine) HandleEvent(ctx context.Context, ev domain.Event) {
	sl := e.slot(ev.UserID, ev.ChatID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	sess := sl.session
	sess.ChatID = ev.ChatID

	defer func() {
		if r := recover(); r != nil {
			e.log.Error().
				Interface("panic", r).
				Int64("user", ev.UserID).
				Str("state", string(sess.State)).
				Msg("handler panicked")
			sess.Reset()
			e.send(ctx, sess, Reply{Text: "Something went wrong, try again."})
			e.send(ctx, sess, renderMenu())
		}
	}()

	if ev.Kind == domain.EventCallback && ev.CallbackID != "" {
		if err := e.ch.AckCallback(ctx, ev.CallbackID); err != nil {
			e.log.Debug().Err(err).Msg("callback ack failed")
		}
	}

	e.log.Debug().
		Int64("user", ev.UserID).
		Str("kind", string(ev.Kind)).
		Str("state", string(sess.State)).
		Msg("handling event")

	switch ev.Kind {
	case domain.EventText:
		e.handleText(ctx, sess, ev)
	case domain.EventCallback:
		e.handleCallback(ctx, sess, ev)
	}
}

// send delivers a reply to the session's chat.
func (e *Engine) send(ctx context.Context, sess *domain.Session, r Reply) {
	if r.Text == "" {
		return
	}
	if _, err := e.ch.SendText(ctx, sess.ChatID, r.Text, r.Keyboard); err != nil {
		e.log.Error().Err(err).Int64("chat", sess.ChatID).Msg("failed to send reply")
	}
}

// edit rewrites the message the pressed keyboard hangs off.
func (e *Engine) edit(ctx context.Context, sess *domain.Session, messageID int, r Reply) {
	if err := e.ch.EditMessage(ctx, sess.ChatID, messageID, r.Text, r.Keyboard); err != nil {
		e.log.Error().Err(err).Int64("chat", sess.ChatID).Msg("failed to edit message")
		// fall back to a fresh message so the user still sees the result
		e.send(ctx, sess, r)
	}
}

// searchCtx bounds one upstream search call.
func (e *Engine) searchCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.opts.SearchTimeout)
}
