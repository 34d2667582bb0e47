package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
)

const (
	defaultBatchWorkers = 4
	maxBatchWorkers     = 8
)

// Direction is the kind of favorite change.
type Direction int

const (
	Add Direction = iota
	Remove
)

func (d Direction) String() string {
	if d == Remove {
		return "remove"
	}
	return "add"
}

// Past returns the past-tense verb for display.
func (d Direction) Past() string {
	if d == Remove {
		return "removed"
	}
	return "added"
}

func directionFor(want bool) Direction {
	if want {
		return Add
	}
	return Remove
}

// FavoriteResult describes the outcome of one favorite change.
type FavoriteResult struct {
	MovieID   string
	Direction Direction
	// Changed is false when the movie was already in the wanted state and no call was made.
	Changed bool
	// Session is the session published after the change. It is nil when the
	// originating session was cleared or replaced by another user before the
	// server answered; the store is left untouched in that case.
	Session *models.Session
	Err     error // set only in [BatchResult.Results]
}

// BatchResult summarizes [FavoritesSync.Batch].
type BatchResult struct {
	Total     int
	Changed   int
	Unchanged int
	Failed    int
	Results   []*FavoriteResult
}

// FavoritesSync applies favorite changes remotely and then publishes them through the session store.
type FavoritesSync struct {
	store  *session.Store
	client FavoritesClient
	logger *log.Logger
	locks  keyedMutex
}

// NewFavoritesSync creates a new synchronizer.
func NewFavoritesSync(store *session.Store, client FavoritesClient, logger *log.Logger) *FavoritesSync {
	if logger == nil {
		logger = log.Default()
	}
	return &FavoritesSync{store: store, client: client, logger: logger}
}

// Toggle removes movieID from the favorites if present and adds it otherwise.
//
// The direction is decided from the session current when the toggle starts
// (after any in-flight toggle of the same movie has completed).
func (f *FavoritesSync) Toggle(ctx context.Context, movieID string) (*FavoriteResult, error) {
	if err := requireArg("movie id", movieID); err != nil {
		return nil, err
	}

	unlock := f.locks.Lock(movieID)
	defer unlock()

	current, err := credentials(f.store.Current())
	if err != nil {
		return nil, err
	}

	dir := Add
	if current.HasFavorite(movieID) {
		dir = Remove
	}
	return f.apply(ctx, current, movieID, dir)
}

// Ensure makes movieID a favorite when want is true and removes it otherwise.
//
// No remote call is made when the session already matches.
func (f *FavoritesSync) Ensure(ctx context.Context, movieID string, want bool) (*FavoriteResult, error) {
	if err := requireArg("movie id", movieID); err != nil {
		return nil, err
	}

	unlock := f.locks.Lock(movieID)
	defer unlock()

	current, err := credentials(f.store.Current())
	if err != nil {
		return nil, err
	}

	dir := directionFor(want)
	if current.HasFavorite(movieID) == want {
		f.logger.Debug("favorite already in wanted state", "movie", movieID, "direction", dir)
		return &FavoriteResult{MovieID: movieID, Direction: dir, Session: current}, nil
	}
	return f.apply(ctx, current, movieID, dir)
}

// apply performs exactly one remote call and, on success, publishes the derived session.
//
// A persistence failure is returned together with the result, since the server and the published session already agree.
func (f *FavoritesSync) apply(ctx context.Context, origin *models.Session, movieID string, dir Direction) (*FavoriteResult, error) {
	logger := f.logger.With("movie", movieID, "direction", dir, "username", origin.Username())

	var err error
	switch dir {
	case Add:
		_, err = f.client.AddFavorite(ctx, origin.Username(), origin.Token(), movieID)
	case Remove:
		err = f.client.RemoveFavorite(ctx, origin.Username(), origin.Token(), movieID)
	}
	if err != nil {
		logger.Warn("favorite change failed", "error", err)
		return nil, fmt.Errorf("%s favorite %s: %w", dir, movieID, err)
	}

	result := &FavoriteResult{MovieID: movieID, Direction: dir, Changed: true}

	next, err := f.store.Update(func(s *models.Session) (*models.Session, bool) {
		if !sameUser(s, origin.Username()) {
			return nil, false
		}
		if dir == Add {
			return s.WithFavorite(movieID), true
		}
		return s.WithoutFavorite(movieID), true
	})
	if !sameUser(next, origin.Username()) {
		logger.Info("session changed before the server answered, leaving store untouched")
		return result, nil
	}

	result.Session = next
	if err != nil {
		return result, err
	}

	logger.Debug("favorite change applied", "favorites", len(next.Favorites()))
	return result, nil
}

// Batch runs [FavoritesSync.Ensure] for every id with a small worker pool.
//
// Failures of individual movies are recorded in the result; only a missing
// session or credential aborts the whole batch.
func (f *FavoritesSync) Batch(ctx context.Context, progress chan<- ProgressUpdate, ids []string, want bool, workers int) (*BatchResult, error) {
	if _, err := credentials(f.store.Current()); err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	if workers > maxBatchWorkers {
		workers = maxBatchWorkers
	}

	ids = dedupe(ids)
	result := &BatchResult{Total: len(ids), Results: make([]*FavoriteResult, 0, len(ids))}

	jobs := make(chan string, len(ids))
	results := make(chan *FavoriteResult, len(ids))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go f.batchWorker(ctx, &wg, jobs, results, want)
	}

	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		switch {
		case res.Err != nil:
			result.Failed++
			sendProgress(progress, favoriteFailedUpdate(completed, len(ids), res))
		case res.Changed:
			result.Changed++
			sendProgress(progress, favoriteDoneUpdate(completed, len(ids), res))
		default:
			result.Unchanged++
			sendProgress(progress, favoriteDoneUpdate(completed, len(ids), res))
		}
	}

	return result, nil
}

func (f *FavoritesSync) batchWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan string, results chan<- *FavoriteResult, want bool) {
	defer wg.Done()

	for id := range jobs {
		if err := ctx.Err(); err != nil {
			results <- &FavoriteResult{MovieID: id, Direction: directionFor(want), Err: err}
			continue
		}

		res, err := f.Ensure(ctx, id, want)
		if res == nil {
			res = &FavoriteResult{MovieID: id, Direction: directionFor(want)}
		}
		res.Err = err
		results <- res
	}
}

// Refresh re-reads the user from the server and publishes the server's profile and favorites.
func (f *FavoritesSync) Refresh(ctx context.Context) (*models.Session, error) {
	current, err := credentials(f.store.Current())
	if err != nil {
		return nil, err
	}

	user, err := f.client.User(ctx, current.Username(), current.Token())
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", current.Username(), err)
	}

	next, err := f.store.Update(func(s *models.Session) (*models.Session, bool) {
		if !sameUser(s, current.Username()) {
			return nil, false
		}
		return s.WithProfile(*user).WithFavorites(user.Favorites), true
	})
	if !sameUser(next, current.Username()) {
		return nil, fmt.Errorf("%w: session changed during refresh", shared.ErrNoSession)
	}
	return next, err
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
