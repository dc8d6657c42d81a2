// Package telegram implements the chat channel using the Telegram Bot API
// over long polling.
package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmelis/melodybot/internal/config"
	"github.com/dmelis/melodybot/internal/domain"
	"github.com/dmelis/melodybot/internal/logging"
)

// Channel implements domain.Channel for Telegram.
type Channel struct {
	cfg config.TelegramConfig
	bot *tgbotapi.BotAPI
	log *logging.Logger

	mu      sync.RWMutex
	handler func(ev domain.Event)
	running bool
}

// New creates a Telegram channel from configuration.
func New(cfg config.TelegramConfig, log *logging.Logger) *Channel {
	return &Channel{
		cfg: cfg,
		log: log.Sub("telegram"),
	}
}

func (c *Channel) ID() string { return "telegram" }

func (c *Channel) OnEvent(handler func(ev domain.Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// Start connects to the Bot API and consumes updates until ctx is done.
func (c *Channel) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(c.cfg.Token)
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}
	c.bot = bot

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	c.log.Info().Str("username", bot.Self.UserName).Msg("connected to telegram")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.cfg.PollTimeout
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.dispatch(update)
		}
	}
}

// Stop halts update polling.
func (c *Channel) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bot != nil && c.running {
		c.bot.StopReceivingUpdates()
	}
	c.running = false
	return nil
}

// dispatch converts a Telegram update into a domain event and hands it to
// the registered handler inline, preserving arrival order. The handler is
// expected to stage its own work; it must not block the polling loop.
func (c *Channel) dispatch(update tgbotapi.Update) {
	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()
	if handler == nil {
		return
	}

	switch {
	case update.Message != nil && update.Message.From != nil:
		m := update.Message
		ev := domain.Event{
			Kind:      domain.EventText,
			UserID:    m.From.ID,
			ChatID:    m.Chat.ID,
			Text:      m.Text,
			MessageID: m.MessageID,
		}
		handler(ev)
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		cq := update.CallbackQuery
		ev := domain.Event{
			Kind:       domain.EventCallback,
			UserID:     cq.From.ID,
			Data:       cq.Data,
			CallbackID: cq.ID,
		}
		if cq.Message != nil {
			ev.ChatID = cq.Message.Chat.ID
			ev.MessageID = cq.Message.MessageID
		}
		handler(ev)
	}
}

// SendText delivers a text message with an optional keyboard.
func (c *Channel) SendText(_ context.Context, chatID int64, text string, kb *domain.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup := replyMarkup(kb); markup != nil {
		msg.ReplyMarkup = markup
	}

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("sending message: %w", err)
	}
	return sent.MessageID, nil
}

// EditMessage rewrites an earlier message's text and inline keyboard.
func (c *Channel) EditMessage(_ context.Context, chatID int64, messageID int, text string, kb *domain.Keyboard) error {
	var err error
	if kb != nil && kb.Inline {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, inlineMarkup(kb))
		_, err = c.bot.Send(edit)
	} else {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		_, err = c.bot.Send(edit)
	}
	if err != nil {
		return fmt.Errorf("editing message: %w", err)
	}
	return nil
}

// SendAudio uploads an audio file with title and performer metadata.
func (c *Channel) SendAudio(_ context.Context, chatID int64, audio domain.Audio) error {
	cfg := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(audio.Path))
	cfg.Title = audio.Title
	cfg.Performer = audio.Performer

	if _, err := c.bot.Send(cfg); err != nil {
		return fmt.Errorf("sending audio: %w", err)
	}
	return nil
}

// AckCallback answers a callback query so the client stops its spinner.
func (c *Channel) AckCallback(_ context.Context, callbackID string) error {
	cb := tgbotapi.NewCallback(callbackID, "")
	if _, err := c.bot.Request(cb); err != nil {
		return fmt.Errorf("answering callback: %w", err)
	}
	return nil
}

// replyMarkup converts a domain keyboard to a Telegram markup value.
func replyMarkup(kb *domain.Keyboard) any {
	switch {
	case kb == nil:
		return nil
	case kb.Remove:
		return tgbotapi.NewRemoveKeyboard(true)
	case kb.Inline:
		return inlineMarkup(kb)
	default:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			btns := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, b := range row {
				btns = append(btns, tgbotapi.NewKeyboardButton(b.Label))
			}
			rows = append(rows, btns)
		}
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.ResizeKeyboard = true
		return markup
	}
}

func inlineMarkup(kb *domain.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
