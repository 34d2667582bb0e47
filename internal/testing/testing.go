// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// Call records one invocation of [FakeMovieService].
type Call struct {
	Method   string
	Username string
	Token    string
	Arg      string
}

// FakeMovieService is an in-memory test double for the movie API.
//
// Errors set on the struct are returned by the matching methods. When Gate is
// non-nil, favorite calls block until a value is received from it, which lets
// tests hold a remote call in flight.
type FakeMovieService struct {
	mu sync.Mutex

	Users     map[string]*models.User
	Passwords map[string]string
	Tokens    map[string]string // token → username
	Catalog   []models.Movie

	// IssueTokenOnRegister controls whether Register returns a token.
	IssueTokenOnRegister bool

	LoginErr    error
	RegisterErr error
	AddErr      error
	RemoveErr   error
	UserErr     error
	EditErr     error
	DeleteErr   error
	MoviesErr   error

	Gate  chan struct{}
	calls []Call
}

// NewFakeMovieService returns a fake with one user "ann" (password "pw", token "T") and a three-movie catalog.
func NewFakeMovieService() *FakeMovieService {
	return &FakeMovieService{
		Users: map[string]*models.User{
			"ann": {ID: "u1", Username: "ann", Email: "ann@example.com", Favorites: []string{}},
		},
		Passwords: map[string]string{"ann": "pw"},
		Tokens:    map[string]string{"T": "ann"},
		Catalog: []models.Movie{
			{ID: "m1", Title: "Alien", Genre: models.Genre{Name: "Horror"}, Director: models.Director{Name: "Ridley Scott"}},
			{ID: "m2", Title: "Brazil", Genre: models.Genre{Name: "Comedy"}, Director: models.Director{Name: "Terry Gilliam"}},
			{ID: "m3", Title: "Cube", Genre: models.Genre{Name: "Thriller"}, Director: models.Director{Name: "Vincenzo Natali"}},
		},
	}
}

// Calls returns a copy of the recorded calls.
func (f *FakeMovieService) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns the number of recorded calls to method.
func (f *FakeMovieService) CallCount(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// ServerFavorites returns the favorites the fake currently holds for username.
func (f *FakeMovieService) ServerFavorites(username string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.Users[username]; ok {
		return append([]string(nil), u.Favorites...)
	}
	return nil
}

func (f *FakeMovieService) record(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *FakeMovieService) wait(ctx context.Context) error {
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeMovieService) authorize(username, token string) error {
	if f.Tokens[token] != username {
		return fmt.Errorf("%w: %w: status 401", shared.ErrRemoteRejected, shared.ErrMissingCredential)
	}
	return nil
}

func (f *FakeMovieService) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	f.record(Call{Method: "Login", Username: creds.Username})
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.Users[creds.Username]
	if !ok || f.Passwords[creds.Username] != creds.Password {
		return nil, fmt.Errorf("%w: incorrect username or password", shared.ErrRemoteRejected)
	}
	token := "T"
	if creds.Username != "ann" {
		token = "T-" + creds.Username
	}
	f.Tokens[token] = creds.Username
	return &models.AuthResult{User: *user, Token: token}, nil
}

func (f *FakeMovieService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	f.record(Call{Method: "Register", Username: req.Username})
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.Users[req.Username]; exists {
		return nil, fmt.Errorf("%w: %s already exists", shared.ErrRemoteRejected, req.Username)
	}
	user := &models.User{ID: "u-" + req.Username, Username: req.Username, Email: req.Email, Birthday: req.Birthday, Favorites: []string{}}
	f.Users[req.Username] = user
	f.Passwords[req.Username] = req.Password

	result := &models.AuthResult{User: *user}
	if f.IssueTokenOnRegister {
		result.Token = "T-" + req.Username
		f.Tokens[result.Token] = req.Username
	}
	return result, nil
}

func (f *FakeMovieService) AddFavorite(ctx context.Context, username, token, movieID string) (*models.User, error) {
	f.record(Call{Method: "AddFavorite", Username: username, Token: token, Arg: movieID})
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.AddErr != nil {
		return nil, f.AddErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(username, token); err != nil {
		return nil, err
	}
	user := f.Users[username]
	for _, id := range user.Favorites {
		if id == movieID {
			out := *user
			return &out, nil
		}
	}
	user.Favorites = append(user.Favorites, movieID)
	out := *user
	return &out, nil
}

func (f *FakeMovieService) RemoveFavorite(ctx context.Context, username, token, movieID string) error {
	f.record(Call{Method: "RemoveFavorite", Username: username, Token: token, Arg: movieID})
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.RemoveErr != nil {
		return f.RemoveErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(username, token); err != nil {
		return err
	}
	user := f.Users[username]
	kept := user.Favorites[:0:0]
	for _, id := range user.Favorites {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	user.Favorites = kept
	return nil
}

func (f *FakeMovieService) User(ctx context.Context, username, token string) (*models.User, error) {
	f.record(Call{Method: "User", Username: username, Token: token})
	if f.UserErr != nil {
		return nil, f.UserErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(username, token); err != nil {
		return nil, err
	}
	out := *f.Users[username]
	out.Favorites = append([]string(nil), out.Favorites...)
	return &out, nil
}

func (f *FakeMovieService) EditProfile(ctx context.Context, username, token string, update models.ProfileUpdate) (*models.User, error) {
	f.record(Call{Method: "EditProfile", Username: username, Token: token})
	if f.EditErr != nil {
		return nil, f.EditErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(username, token); err != nil {
		return nil, err
	}
	user := f.Users[username]
	if update.Email != "" {
		user.Email = update.Email
	}
	if update.Birthday != "" {
		user.Birthday = update.Birthday
	}
	if update.Password != "" {
		f.Passwords[username] = update.Password
	}
	out := *user
	return &out, nil
}

func (f *FakeMovieService) DeleteUser(ctx context.Context, username, token string) error {
	f.record(Call{Method: "DeleteUser", Username: username, Token: token})
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(username, token); err != nil {
		return err
	}
	delete(f.Users, username)
	return nil
}

func (f *FakeMovieService) Movies(ctx context.Context, token string) ([]models.Movie, error) {
	f.record(Call{Method: "Movies", Token: token})
	if f.MoviesErr != nil {
		return nil, f.MoviesErr
	}
	return append([]models.Movie(nil), f.Catalog...), nil
}

func (f *FakeMovieService) Movie(ctx context.Context, token, title string) (*models.Movie, error) {
	f.record(Call{Method: "Movie", Token: token, Arg: title})
	for _, m := range f.Catalog {
		if strings.EqualFold(m.Title, title) {
			out := m
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrMovieNotFound, title)
}

func (f *FakeMovieService) Director(ctx context.Context, token, name string) (*models.Director, error) {
	f.record(Call{Method: "Director", Token: token, Arg: name})
	for _, m := range f.Catalog {
		if m.Director.Name == name {
			out := m.Director
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: director %s not found", shared.ErrRemoteRejected, name)
}

func (f *FakeMovieService) Genre(ctx context.Context, token, name string) (*models.Genre, error) {
	f.record(Call{Method: "Genre", Token: token, Arg: name})
	for _, m := range f.Catalog {
		if m.Genre.Name == name {
			out := m.Genre
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: genre %s not found", shared.ErrRemoteRejected, name)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
