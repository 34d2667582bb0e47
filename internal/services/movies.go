package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// Login exchanges credentials for the user record and a bearer token.
func (a *MovieAPI) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	body, err := a.call(ctx, http.MethodPost, "/login", "", creds)
	if err != nil {
		return nil, err
	}

	user, token, err := decodeUser(body)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("%w: login response has no token", shared.ErrRemoteRejected)
	}
	return &models.AuthResult{User: user, Token: token}, nil
}

// Register creates an account. The result's Token is empty when the server does not issue one.
func (a *MovieAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	body, err := a.call(ctx, http.MethodPost, "/users", "", req)
	if err != nil {
		return nil, err
	}

	user, token, err := decodeUser(body)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{User: user, Token: token}, nil
}

// Movies lists the catalog.
func (a *MovieAPI) Movies(ctx context.Context, token string) ([]models.Movie, error) {
	body, err := a.authed(ctx, http.MethodGet, "/movies", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[[]models.Movie](body, "movies")
}

// Movie fetches one movie by title. A 404 also matches [shared.ErrMovieNotFound].
func (a *MovieAPI) Movie(ctx context.Context, token, title string) (*models.Movie, error) {
	body, err := a.authed(ctx, http.MethodGet, segment("movies", title), token, nil)
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", shared.ErrMovieNotFound, title, err)
		}
		return nil, err
	}

	movie, err := decodeInto[models.Movie](body, "movie")
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// Director fetches director details by name.
func (a *MovieAPI) Director(ctx context.Context, token, name string) (*models.Director, error) {
	body, err := a.authed(ctx, http.MethodGet, segment("directors", name), token, nil)
	if err != nil {
		return nil, err
	}

	director, err := decodeInto[models.Director](body, "director")
	if err != nil {
		return nil, err
	}
	return &director, nil
}

// Genre fetches genre details by name.
func (a *MovieAPI) Genre(ctx context.Context, token, name string) (*models.Genre, error) {
	body, err := a.authed(ctx, http.MethodGet, segment("genres", name), token, nil)
	if err != nil {
		return nil, err
	}

	genre, err := decodeInto[models.Genre](body, "genre")
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

// User fetches the server's record for username.
func (a *MovieAPI) User(ctx context.Context, username, token string) (*models.User, error) {
	body, err := a.authed(ctx, http.MethodGet, segment("users", username), token, nil)
	if err != nil {
		return nil, err
	}

	user, _, err := decodeUser(body)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddFavorite adds movieID to the user's favorites.
//
// The returned user is nil when the server answers with a plain acknowledgement.
func (a *MovieAPI) AddFavorite(ctx context.Context, username, token, movieID string) (*models.User, error) {
	body, err := a.authed(ctx, http.MethodPost, segment("users", username, "movies", movieID), token, nil)
	if err != nil {
		return nil, err
	}

	user, _, err := decodeUser(body)
	if err != nil {
		a.logger.Debug("add favorite returned no user record", "movie", movieID)
		return nil, nil
	}
	return &user, nil
}

// RemoveFavorite removes movieID from the user's favorites.
func (a *MovieAPI) RemoveFavorite(ctx context.Context, username, token, movieID string) error {
	_, err := a.authed(ctx, http.MethodDelete, segment("users", username, "movies", movieID), token, nil)
	return err
}

// EditProfile updates the mutable profile fields and returns the server's user record.
func (a *MovieAPI) EditProfile(ctx context.Context, username, token string, update models.ProfileUpdate) (*models.User, error) {
	body, err := a.authed(ctx, http.MethodPut, segment("users", username), token, update)
	if err != nil {
		return nil, err
	}

	user, _, err := decodeUser(body)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes the account.
func (a *MovieAPI) DeleteUser(ctx context.Context, username, token string) error {
	_, err := a.authed(ctx, http.MethodDelete, segment("users", username), token, nil)
	return err
}
