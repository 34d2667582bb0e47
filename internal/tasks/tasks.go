// package tasks implements the favorites synchronizer and the account and catalog workflows.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// FavoritesClient is the remote side of the favorites synchronizer.
type FavoritesClient interface {
	AddFavorite(ctx context.Context, username, token, movieID string) (*models.User, error)
	RemoveFavorite(ctx context.Context, username, token, movieID string) error
	User(ctx context.Context, username, token string) (*models.User, error)
}

// AccountClient is the remote side of [Accounts].
type AccountClient interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)
	EditProfile(ctx context.Context, username, token string, update models.ProfileUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, username, token string) error
}

// CatalogClient is the remote side of [Catalog].
type CatalogClient interface {
	Movies(ctx context.Context, token string) ([]models.Movie, error)
	Movie(ctx context.Context, token, title string) (*models.Movie, error)
	Director(ctx context.Context, token, name string) (*models.Director, error)
	Genre(ctx context.Context, token, name string) (*models.Genre, error)
}

// MovieCache stores the last movie listing. repositories.MovieRepository implements it.
type MovieCache interface {
	ReplaceAll(movies []models.Movie) error
	List() ([]models.Movie, error)
	Get(id string) (*models.Movie, error)
	GetByTitle(title string) (*models.Movie, error)
}

// credentials returns the current session if it can address an authenticated call.
//
// Checks run locally, before any network call.
func credentials(s *models.Session) (*models.Session, error) {
	if s == nil {
		return nil, shared.ErrNoSession
	}
	if s.Token() == "" {
		return nil, shared.ErrMissingCredential
	}
	return s, nil
}

// sameUser reports whether s is still the session of username.
func sameUser(s *models.Session, username string) bool {
	return s != nil && s.Username() == username
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// keyedMutex serializes work per key. Entries are dropped once no goroutine holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func requireArg(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return nil
}
