package domain

import "context"

// EventKind distinguishes free-text messages from button-press callbacks.
type EventKind string

const (
	EventText     EventKind = "text"
	EventCallback EventKind = "callback"
)

// Event is an inbound chat event addressed to a user/chat pair.
type Event struct {
	Kind       EventKind
	UserID     int64
	ChatID     int64
	Text       string // set for EventText
	Data       string // callback token, set for EventCallback
	MessageID  int    // message the callback keyboard was attached to
	CallbackID string // transport acknowledgement handle
}

// Button is one pressable element of a keyboard. Data is the callback
// token and is only set on inline keyboards.
type Button struct {
	Label string
	Data  string
}

// Keyboard describes the reply affordances attached to an outbound message.
type Keyboard struct {
	Inline bool
	Remove bool // remove any visible reply keyboard
	Rows   [][]Button
}

// Audio is an audio attachment to deliver to a chat.
type Audio struct {
	Path      string
	Title     string
	Performer string
}

// Channel is the chat transport the conversation engine talks through.
type Channel interface {
	// ID returns the channel identifier (e.g., "telegram").
	ID() string

	// Start connects the channel and begins delivering events.
	Start(ctx context.Context) error

	// Stop gracefully disconnects the channel.
	Stop(ctx context.Context) error

	// SendText delivers a text message, returning the sent message ID.
	SendText(ctx context.Context, chatID int64, text string, kb *Keyboard) (int, error)

	// EditMessage rewrites a previously sent message and its keyboard.
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb *Keyboard) error

	// SendAudio delivers an audio attachment.
	SendAudio(ctx context.Context, chatID int64, audio Audio) error

	// AckCallback acknowledges a button press so the client stops spinning.
	AckCallback(ctx context.Context, callbackID string) error

	// OnEvent registers the handler for inbound events.
	OnEvent(handler func(ev Event))
}
