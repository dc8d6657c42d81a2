package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s := NewSession(7, 100)
	assert.Equal(t, int64(7), s.UserID)
	assert.Equal(t, int64(100), s.ChatID)
	assert.Equal(t, StateMenu, s.State)
	assert.Nil(t, s.Page)
}

func TestSetPage_BumpsGeneration(t *testing.T) {
	s := NewSession(7, 100)
	require.Equal(t, 0, s.PageGen)

	s.SetPage(&ResultPage{Items: []ResultItem{{ID: "a"}}})
	assert.Equal(t, 1, s.PageGen)

	s.SetPage(&ResultPage{Items: []ResultItem{{ID: "b"}}})
	assert.Equal(t, 2, s.PageGen)
	assert.Equal(t, "b", s.Page.Items[0].ID)
}

func TestReset_ClearsTransientsKeepsGeneration(t *testing.T) {
	s := NewSession(7, 100)
	s.State = StateShowResults
	s.Provider = ProviderYouTube
	s.Mode = ModeArtist
	s.Query = "daft punk"
	s.SetPage(&ResultPage{Items: []ResultItem{{ID: "a"}}})
	gen := s.PageGen

	s.Reset()

	assert.Equal(t, StateMenu, s.State)
	assert.Empty(t, s.Provider)
	assert.Empty(t, s.Mode)
	assert.Empty(t, s.Query)
	assert.Nil(t, s.Page)
	// tokens minted against the old page must stay distinguishable
	assert.Equal(t, gen, s.PageGen)
}
