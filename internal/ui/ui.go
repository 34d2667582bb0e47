package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/tasks"
)

const sessionBuffer = 16

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MoviesView ViewState = iota
	FavoritesView
	DetailView
)

// MovieSource lists the catalog.
type MovieSource interface {
	Movies(ctx context.Context) ([]models.Movie, error)
}

// FavoriteToggler flips a movie's favorite state.
type FavoriteToggler interface {
	Toggle(ctx context.Context, movieID string) (*tasks.FavoriteResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	prevView  ViewState
	movies    MovieSource
	favorites FavoriteToggler
	logger    *log.Logger

	sub      *session.Subscription
	sessions chan *models.Session
	current  *models.Session

	catalog  []models.Movie
	pending  map[string]bool
	allList  list.Model
	favList  list.Model
	selected *models.MovieView

	status    string
	statusErr bool
	err       error
	width     int
	height    int
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model subscribed to store.
//
// Call [Model.Close] after the program exits to drop the subscription.
func NewModel(ctx context.Context, store *session.Store, movies MovieSource, favorites FavoriteToggler, logger *log.Logger) *Model {
	m := &Model{
		ctx:       ctx,
		view:      MoviesView,
		movies:    movies,
		favorites: favorites,
		logger:    logger,
		sessions:  make(chan *models.Session, sessionBuffer),
		pending:   make(map[string]bool),
		allList:   list.New(nil, list.NewDefaultDelegate(), 0, 0),
		favList:   list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.allList.Title = "Movies"
	m.favList.Title = "Favorites"
	m.sub = store.Subscribe(m.forward)
	return m
}

// forward runs on the publishing goroutine and must not block it. When the buffer is full the oldest
// pending session is dropped; only the latest one matters for rendering.
func (m *Model) forward(s *models.Session) {
	for {
		select {
		case m.sessions <- s:
			return
		default:
		}
		select {
		case <-m.sessions:
		default:
		}
	}
}

// Close unsubscribes from the session store.
func (m *Model) Close() {
	m.sub.Unsubscribe()
}

// Init waits for the first session emission and loads the catalog.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForSession(), m.fetchMovies())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.allList.SetSize(msg.Width-4, msg.Height-8)
		m.favList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSessionChanged:
		m.current, _ = msg.data.(*models.Session)
		if m.current == nil {
			m.setStatus("Signed out. Run flix auth login to continue.", true)
		}
		m.project()
		return m, m.waitForSession()

	case MsgMoviesLoaded:
		data := msg.data.(moviesLoaded)
		if data.err != nil {
			m.err = data.err
			m.setStatus(fmt.Sprintf("Could not load movies: %v", data.err), true)
			return m, nil
		}
		m.err = nil
		m.catalog = data.movies
		m.project()
		return m, nil

	case MsgFavoriteToggled:
		data := msg.data.(favoriteToggled)
		delete(m.pending, data.movieID)
		switch {
		case data.err != nil:
			m.logger.Warn("favorite toggle failed", "movie", data.movieID, "error", data.err)
			m.setStatus(fmt.Sprintf("Could not update %s: %v", data.title, data.err), true)
		case data.result != nil && data.result.Direction == tasks.Remove:
			m.setStatus(fmt.Sprintf("Removed %s from favorites", data.title), false)
		default:
			m.setStatus(fmt.Sprintf("Added %s to favorites", data.title), false)
		}
		m.project()
		return m, nil
	}
	return m, nil
}

// project recomputes both lists from the catalog and the latest session.
func (m *Model) project() {
	views := models.Project(m.catalog, m.current)
	m.allList.SetItems(movieItems(views, m.pending, false))
	m.favList.SetItems(movieItems(views, m.pending, true))
	m.favList.Title = fmt.Sprintf("Favorites (%d)", m.current.FavoriteSet().Len())

	if m.selected != nil {
		for _, v := range views {
			if v.ID == m.selected.ID {
				m.selected = &v
				break
			}
		}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) activeList() *list.Model {
	if m.view == FavoritesView || (m.view == DetailView && m.prevView == FavoritesView) {
		return &m.favList
	}
	return &m.allList
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view != DetailView && m.activeList().FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab) && m.view != DetailView:
		if m.view == MoviesView {
			m.view = FavoritesView
		} else {
			m.view = MoviesView
		}
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		return m, m.toggleSelected()
	case key.Matches(msg, m.keys.reload):
		m.setStatus("Reloading movies...", false)
		return m, m.fetchMovies()
	case key.Matches(msg, m.keys.enter) && m.view != DetailView:
		if item, ok := m.activeList().SelectedItem().(movieItem); ok {
			view := item.view
			m.selected = &view
			m.prevView = m.view
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.back) && m.view == DetailView:
		m.view = m.prevView
		m.selected = nil
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case MoviesView:
		m.allList, cmd = m.allList.Update(msg)
	case FavoritesView:
		m.favList, cmd = m.favList.Update(msg)
	}
	return m, cmd
}

// toggleSelected starts a toggle for the highlighted movie unless one is already in flight.
func (m *Model) toggleSelected() tea.Cmd {
	var target *models.MovieView
	if m.view == DetailView {
		target = m.selected
	} else if item, ok := m.activeList().SelectedItem().(movieItem); ok {
		target = &item.view
	}
	if target == nil || m.pending[target.ID] {
		return nil
	}

	m.pending[target.ID] = true
	m.project()

	id, title := target.ID, target.Title
	return func() tea.Msg {
		res, err := m.favorites.Toggle(m.ctx, id)
		return favoriteToggledMsg(id, title, res, err)
	}
}

func (m *Model) fetchMovies() tea.Cmd {
	return func() tea.Msg {
		movies, err := m.movies.Movies(m.ctx)
		return moviesLoadedMsg(movies, err)
	}
}

// waitForSession blocks until the store publishes. It is re-armed after every emission.
func (m *Model) waitForSession() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.sessions:
			return sessionChangedMsg(s)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case MoviesView:
		body = m.allList.View()
	case FavoritesView:
		body = m.favList.View()
	case DetailView:
		body = m.renderDetail()
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n%s", m.renderTabs(), body, m.renderStatus(), m.renderHelp())
}

func (m *Model) renderTabs() string {
	user := "not signed in"
	if m.current != nil {
		user = m.current.Username()
	}

	tabs := []string{}
	for _, t := range []struct {
		name string
		view ViewState
	}{{"Movies", MoviesView}, {"Favorites", FavoritesView}} {
		active := m.view == t.view || (m.view == DetailView && m.prevView == t.view)
		if active {
			tabs = append(tabs, styles.activeTab.Render(t.name))
		} else {
			tabs = append(tabs, styles.tab.Render(t.name))
		}
	}
	return fmt.Sprintf("%s  %s", strings.Join(tabs, " "), styles.help.Render(user))
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}
	return fmt.Sprintf("%s\n%s", styles.title.Render("Details"), formatter.MovieDetail(*m.selected))
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return styles.err.Render(m.status)
	}
	return styles.ok.Render(m.status)
}

func (m *Model) renderHelp() string {
	keys := []key.Binding{m.keys.enter, m.keys.favorite, m.keys.tab, m.keys.reload, m.keys.quit}
	if m.view == DetailView {
		keys = []key.Binding{m.keys.favorite, m.keys.back, m.keys.quit}
	}
	return m.help.ShortHelpView(keys)
}
