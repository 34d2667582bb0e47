package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionChanged MsgKind = iota
	MsgMoviesLoaded
	MsgFavoriteToggled
)

type moviesLoaded struct {
	movies []models.Movie
	err    error
}

type favoriteToggled struct {
	movieID string
	title   string
	result  *tasks.FavoriteResult
	err     error
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]. s is nil after logout.
func sessionChangedMsg(s *models.Session) Msg {
	return Msg{kind: MsgSessionChanged, data: s}
}

// moviesLoadedMsg is the constructor for [MsgMoviesLoaded]
func moviesLoadedMsg(movies []models.Movie, err error) Msg {
	return Msg{kind: MsgMoviesLoaded, data: moviesLoaded{movies, err}}
}

// favoriteToggledMsg is the constructor for [MsgFavoriteToggled]
func favoriteToggledMsg(movieID, title string, result *tasks.FavoriteResult, err error) Msg {
	return Msg{kind: MsgFavoriteToggled, data: favoriteToggled{movieID, title, result, err}}
}
