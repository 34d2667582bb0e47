package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
)

// Catalog reads the movie catalog on behalf of the current session.
type Catalog struct {
	store  *session.Store
	client CatalogClient
	cache  MovieCache
	logger *log.Logger
}

// NewCatalog creates a catalog workflow. cache may be nil.
func NewCatalog(store *session.Store, client CatalogClient, cache MovieCache, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = log.Default()
	}
	return &Catalog{store: store, client: client, cache: cache, logger: logger}
}

func (c *Catalog) token() (string, error) {
	current, err := credentials(c.store.Current())
	if err != nil {
		return "", err
	}
	return current.Token(), nil
}

// Movies fetches the catalog and refreshes the local cache.
func (c *Catalog) Movies(ctx context.Context) ([]models.Movie, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}

	movies, err := c.client.Movies(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.ReplaceAll(movies); err != nil {
			c.logger.Warn("failed to cache movies", "error", err)
		}
	}
	return movies, nil
}

// Movie fetches one movie by title.
func (c *Catalog) Movie(ctx context.Context, title string) (*models.Movie, error) {
	if err := requireArg("title", title); err != nil {
		return nil, err
	}
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	return c.client.Movie(ctx, token, title)
}

// Director fetches director details.
func (c *Catalog) Director(ctx context.Context, name string) (*models.Director, error) {
	if err := requireArg("director", name); err != nil {
		return nil, err
	}
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	return c.client.Director(ctx, token, name)
}

// Genre fetches genre details.
func (c *Catalog) Genre(ctx context.Context, name string) (*models.Genre, error) {
	if err := requireArg("genre", name); err != nil {
		return nil, err
	}
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	return c.client.Genre(ctx, token, name)
}

// Views fetches the catalog and projects it against the current session.
func (c *Catalog) Views(ctx context.Context) ([]models.MovieView, error) {
	movies, err := c.Movies(ctx)
	if err != nil {
		return nil, err
	}
	return models.Project(movies, c.store.Current()), nil
}

// Favorites returns the catalog movies that belong to the current session's favorites.
func (c *Catalog) Favorites(ctx context.Context) ([]models.Movie, error) {
	movies, err := c.Movies(ctx)
	if err != nil {
		return nil, err
	}
	return models.FilterFavorites(movies, c.store.Current()), nil
}

// Resolve finds a movie by id or title, trying the cache before the catalog.
func (c *Catalog) Resolve(ctx context.Context, ref string) (*models.Movie, error) {
	if err := requireArg("movie", ref); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if m, err := c.cache.Get(ref); err == nil {
			return m, nil
		}
		if m, err := c.cache.GetByTitle(ref); err == nil {
			return m, nil
		}
	}

	movies, err := c.Movies(ctx)
	if err != nil {
		return nil, err
	}
	if m := findMovie(movies, ref); m != nil {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrMovieNotFound, ref)
}

// ResolveIDs maps references to movie ids. References that cannot be resolved are returned as-is.
func (c *Catalog) ResolveIDs(ctx context.Context, refs []string) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		m, err := c.Resolve(ctx, ref)
		if err != nil {
			if !errors.Is(err, shared.ErrMovieNotFound) {
				c.logger.Debug("could not resolve movie", "ref", ref, "error", err)
			}
			ids = append(ids, ref)
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids
}

// Title returns a display title for movieID using the cache, falling back to the id.
func (c *Catalog) Title(movieID string) string {
	if c.cache == nil {
		return movieID
	}
	m, err := c.cache.Get(movieID)
	if err != nil || m.Title == "" {
		return movieID
	}
	return m.Title
}

func findMovie(movies []models.Movie, ref string) *models.Movie {
	for i := range movies {
		if movies[i].ID == ref {
			return &movies[i]
		}
	}
	for i := range movies {
		if strings.EqualFold(movies[i].Title, ref) {
			return &movies[i]
		}
	}
	return nil
}
