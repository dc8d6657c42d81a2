package conversation

import (
	"fmt"
	"strings"

	"github.com/dmelis/melodybot/internal/domain"
)

// Reply is a rendering instruction returned by a state handler.
type Reply struct {
	Text     string
	Keyboard *domain.Keyboard
}

// Button labels for the reply keyboards. Handlers match on these
// case-insensitively, so typing the bare word works too.
const (
	labelSearch  = "🔍 Search music"
	labelHistory = "🕑 History"
	labelExit    = "❌ Exit"
	labelCancel  = "cancel"

	labelTrack    = "🎵 Track"
	labelArtist   = "🎤 Artist"
	labelAlbum    = "💿 Album"
	labelPlaylist = "📁 Playlist"
)

const maxButtonLabel = 50

// sourceOption is one selectable provider on the source keyboard.
type sourceOption struct {
	Type  domain.ProviderType
	Label string
}

func sourceLabel(t domain.ProviderType, name string) string {
	switch t {
	case domain.ProviderYouTube:
		return "🎬 " + name
	case domain.ProviderSpotify:
		return "🎧 " + name
	default:
		return "🔗 " + name
	}
}

// renderMenu is the main menu prompt.
func renderMenu() Reply {
	return Reply{
		Text: "What would you like to do?",
		Keyboard: &domain.Keyboard{
			Rows: [][]domain.Button{
				{{Label: labelSearch}},
				{{Label: labelHistory}},
				{{Label: labelExit}},
			},
		},
	}
}

// renderSources lists the enabled providers as buttons.
func renderSources(sources []sourceOption) Reply {
	rows := make([][]domain.Button, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, []domain.Button{{Label: s.Label}})
	}
	return Reply{
		Text:     "Where should I search?",
		Keyboard: &domain.Keyboard{Rows: rows},
	}
}

// renderTypes asks what kind of catalog entry to search for.
func renderTypes() Reply {
	return Reply{
		Text: "What are you looking for?",
		Keyboard: &domain.Keyboard{
			Rows: [][]domain.Button{
				{{Label: labelTrack}, {Label: labelArtist}},
				{{Label: labelAlbum}, {Label: labelPlaylist}},
			},
		},
	}
}

// renderQueryPrompt asks for the search text and drops the reply keyboard.
func renderQueryPrompt(source string) Reply {
	return Reply{
		Text:     fmt.Sprintf("Send me what to search for on %s:", source),
		Keyboard: &domain.Keyboard{Remove: true},
	}
}

// renderResults builds the paginated result keyboard. Every callback token
// carries the page generation so presses on superseded keyboards are
// detectable. Nav buttons only appear when the matching cursor exists.
func renderResults(page *domain.ResultPage, gen int) Reply {
	rows := make([][]domain.Button, 0, len(page.Items)+1)
	for i, item := range page.Items {
		rows = append(rows, []domain.Button{{
			Label: truncate(item.Title, maxButtonLabel),
			Data:  fmt.Sprintf("pick:%d:%d", gen, i),
		}})
	}

	var nav []domain.Button
	if page.PrevCursor != "" {
		nav = append(nav, domain.Button{Label: "⬅️ Prev", Data: fmt.Sprintf("prev:%d", gen)})
	}
	if page.NextCursor != "" {
		nav = append(nav, domain.Button{Label: "Next ➡️", Data: fmt.Sprintf("next:%d", gen)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return Reply{
		Text:     "Here's what I found:",
		Keyboard: &domain.Keyboard{Inline: true, Rows: rows},
	}
}

// renderHistory lists the user's recent queries.
func renderHistory(entries []domain.HistoryEntry) Reply {
	if len(entries) == 0 {
		return Reply{Text: "No history yet."}
	}
	var b strings.Builder
	b.WriteString("Your recent searches:\n")
	for _, e := range entries {
		b.WriteString("- ")
		b.WriteString(e.Query)
		b.WriteString("\n")
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n")}
}

// renderLink delivers a link-only result.
func renderLink(item domain.ResultItem, link string) Reply {
	text := item.Title
	if item.Author != "" {
		text += " - " + item.Author
	}
	return Reply{Text: text + "\n" + link}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
