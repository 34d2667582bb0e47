package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/storage"
	"github.com/desertthunder/flix/internal/tasks"
)

type fakeSource struct {
	movies []models.Movie
	err    error
}

func (f *fakeSource) Movies(context.Context) ([]models.Movie, error) { return f.movies, f.err }

type fakeToggler struct {
	calls []string
	err   error
}

func (f *fakeToggler) Toggle(_ context.Context, id string) (*tasks.FavoriteResult, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	return &tasks.FavoriteResult{MovieID: id, Direction: tasks.Add, Changed: true}, nil
}

var catalog = []models.Movie{
	{ID: "m1", Title: "Alien", Genre: models.Genre{Name: "Horror"}},
	{ID: "m2", Title: "Brazil", Genre: models.Genre{Name: "Comedy"}},
}

func newTestModel(t *testing.T, toggler FavoriteToggler) (*Model, *session.Store) {
	t.Helper()
	logger := shared.NewLogger(io.Discard)
	store := session.NewStore(storage.NewMemory(), logger)
	store.Initialize()

	m := NewModel(context.Background(), store, &fakeSource{movies: catalog}, toggler, logger)
	t.Cleanup(m.Close)
	return m, store
}

func amy(t *testing.T, favorites ...string) *models.Session {
	t.Helper()
	s, err := models.NewSession(models.User{Username: "amy", Favorites: favorites}, "A")
	if err != nil {
		t.Fatalf("failed to build session: %v", err)
	}
	return s
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModelSubscription(t *testing.T) {
	t.Run("Replays Current Session", func(t *testing.T) {
		m, _ := newTestModel(t, &fakeToggler{})

		msg, ok := m.waitForSession()().(Msg)
		if !ok || msg.kind != MsgSessionChanged {
			t.Fatalf("expected session message, got %#v", msg)
		}
		if s, _ := msg.data.(*models.Session); s != nil {
			t.Errorf("expected no session, got %v", s)
		}
	})

	t.Run("Forwards Each Emission", func(t *testing.T) {
		m, store := newTestModel(t, &fakeToggler{})
		m.waitForSession()()

		store.Replace(amy(t, "m1"))
		msg := m.waitForSession()().(Msg)
		if s := msg.data.(*models.Session); s.Username() != "amy" {
			t.Errorf("expected amy, got %v", s)
		}
	})

	t.Run("Forward Never Blocks", func(t *testing.T) {
		m, store := newTestModel(t, &fakeToggler{})

		for i := 0; i < sessionBuffer*2; i++ {
			store.Replace(amy(t, "m1"))
		}
		store.Clear()

		if len(m.sessions) != sessionBuffer {
			t.Fatalf("expected full buffer, got %d", len(m.sessions))
		}
		var last *models.Session
		for len(m.sessions) > 0 {
			last = <-m.sessions
		}
		if last != nil {
			t.Errorf("expected latest emission to be the cleared session, got %v", last)
		}
	})

	t.Run("Close Stops Delivery", func(t *testing.T) {
		m, store := newTestModel(t, &fakeToggler{})
		m.waitForSession()()
		m.Close()

		store.Replace(amy(t))
		if len(m.sessions) != 0 {
			t.Error("expected no delivery after Close")
		}
	})
}

func TestModelProjection(t *testing.T) {
	m, _ := newTestModel(t, &fakeToggler{})

	m.Update(moviesLoadedMsg(catalog, nil))
	m.Update(sessionChangedMsg(amy(t, "m2")))

	if n := len(m.allList.Items()); n != 2 {
		t.Errorf("expected 2 movies, got %d", n)
	}
	favs := m.favList.Items()
	if len(favs) != 1 || favs[0].(movieItem).view.ID != "m2" {
		t.Errorf("unexpected favorites %v", favs)
	}

	m.Update(sessionChangedMsg(nil))
	if len(m.favList.Items()) != 0 {
		t.Error("expected favorites to empty after logout")
	}
	if !m.statusErr || !strings.Contains(m.status, "Signed out") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestModelToggle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		toggler := &fakeToggler{}
		m, _ := newTestModel(t, toggler)
		m.Update(moviesLoadedMsg(catalog, nil))
		m.Update(sessionChangedMsg(amy(t)))

		_, cmd := m.Update(keyPress('f'))
		if cmd == nil {
			t.Fatal("expected toggle command")
		}
		if !m.pending["m1"] {
			t.Error("expected m1 to be pending")
		}

		_, again := m.Update(keyPress('f'))
		if again != nil {
			t.Error("expected no second toggle while one is in flight")
		}

		m.Update(cmd())
		if len(toggler.calls) != 1 || toggler.calls[0] != "m1" {
			t.Errorf("unexpected calls %v", toggler.calls)
		}
		if m.pending["m1"] {
			t.Error("expected pending flag to clear")
		}
		if m.statusErr || !strings.Contains(m.status, "Added Alien") {
			t.Errorf("unexpected status %q", m.status)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		m, _ := newTestModel(t, &fakeToggler{err: shared.ErrRemoteUnavailable})
		m.Update(moviesLoadedMsg(catalog, nil))
		m.Update(sessionChangedMsg(amy(t)))

		_, cmd := m.Update(keyPress('f'))
		m.Update(cmd())
		if !m.statusErr || !strings.Contains(m.status, "Could not update Alien") {
			t.Errorf("unexpected status %q", m.status)
		}
	})
}

func TestModelViews(t *testing.T) {
	m, _ := newTestModel(t, &fakeToggler{})
	m.Update(moviesLoadedMsg(catalog, nil))

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.view != FavoritesView {
		t.Errorf("expected favorites view, got %v", m.view)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != DetailView || m.selected == nil || m.selected.ID != "m1" {
		t.Fatalf("expected detail of m1, got view %v selected %v", m.view, m.selected)
	}
	if !strings.Contains(m.View(), "Alien") {
		t.Error("expected detail to render the title")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.view != MoviesView {
		t.Errorf("expected to return to movies, got %v", m.view)
	}

	t.Run("Load Error", func(t *testing.T) {
		m.Update(moviesLoadedMsg(nil, errors.New("boom")))
		if !m.statusErr || !strings.Contains(m.status, "boom") {
			t.Errorf("unexpected status %q", m.status)
		}
	})
}
