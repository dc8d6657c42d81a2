package domain

// State identifies a step of the conversation wizard.
type State string

const (
	StateMenu         State = "menu"
	StateChooseSource State = "choose_source"
	StateChooseType   State = "choose_type"
	StateEnterQuery   State = "enter_query"
	StateShowResults  State = "show_results"
	StateEnded        State = "ended"
)

// SearchMode narrows what a query should match.
type SearchMode string

const (
	ModeTitle    SearchMode = "title"
	ModeArtist   SearchMode = "artist"
	ModeAlbum    SearchMode = "album"
	ModePlaylist SearchMode = "playlist"
)

// Session tracks one user's position in the conversation. It is held in
// memory only; a restart resets every session to the menu.
type Session struct {
	UserID int64
	ChatID int64
	State  State

	// Transient search data, replaced on each new search and cleared
	// on cancellation.
	Provider ProviderType
	Mode     SearchMode
	Query    string
	Page     *ResultPage

	// pageGen increments every time Page is replaced. Callback tokens
	// carry the generation they were rendered against, so a press on a
	// superseded keyboard is detected instead of indexing a stale page.
	PageGen int
}

// NewSession creates a session positioned at the menu.
func NewSession(userID, chatID int64) *Session {
	return &Session{UserID: userID, ChatID: chatID, State: StateMenu}
}

// Reset clears transient search data and returns the session to the menu.
func (s *Session) Reset() {
	s.State = StateMenu
	s.Provider = ""
	s.Mode = ""
	s.Query = ""
	s.Page = nil
}

// SetPage installs a new result page and bumps the token generation.
func (s *Session) SetPage(p *ResultPage) {
	s.Page = p
	s.PageGen++
}
