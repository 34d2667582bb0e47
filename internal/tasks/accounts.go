package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
)

// Accounts handles authentication and profile changes.
type Accounts struct {
	store  *session.Store
	client AccountClient
	logger *log.Logger
}

// NewAccounts creates a new account workflow.
func NewAccounts(store *session.Store, client AccountClient, logger *log.Logger) *Accounts {
	if logger == nil {
		logger = log.Default()
	}
	return &Accounts{store: store, client: client, logger: logger}
}

// Login authenticates and publishes the resulting session.
func (a *Accounts) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if err := requireArg("username", creds.Username); err != nil {
		return nil, err
	}
	if err := requireArg("password", creds.Password); err != nil {
		return nil, err
	}

	result, err := a.client.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return a.publish(result.User, result.Token)
}

// Register creates an account and publishes its session.
//
// When the server does not return a token, Register logs in with the same credentials to obtain one.
func (a *Accounts) Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	for _, arg := range [][2]string{{"username", req.Username}, {"password", req.Password}, {"email", req.Email}} {
		if err := requireArg(arg[0], arg[1]); err != nil {
			return nil, err
		}
	}

	result, err := a.client.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if result.Token == "" {
		a.logger.Debug("registration returned no token, logging in", "username", req.Username)
		return a.Login(ctx, req.Credentials())
	}
	return a.publish(result.User, result.Token)
}

func (a *Accounts) publish(user models.User, token string) (*models.Session, error) {
	s, err := models.NewSession(user, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrRemoteRejected, err)
	}
	if err := a.store.Replace(s); err != nil {
		return s, err
	}

	a.logger.Info("logged in", "username", s.Username())
	return s, nil
}

// Logout clears the session and its persisted copy.
func (a *Accounts) Logout() error {
	current := a.store.Current()
	if err := a.store.Clear(); err != nil {
		return err
	}
	if current != nil {
		a.logger.Info("logged out", "username", current.Username())
	}
	return nil
}

// EditProfile sends the update and publishes the server's user record.
//
// Only the user record is taken from the response; the username and token are kept.
func (a *Accounts) EditProfile(ctx context.Context, update models.ProfileUpdate) (*models.Session, error) {
	if update == (models.ProfileUpdate{}) {
		return nil, fmt.Errorf("%w: nothing to update", shared.ErrInvalidInput)
	}

	current, err := credentials(a.store.Current())
	if err != nil {
		return nil, err
	}

	user, err := a.client.EditProfile(ctx, current.Username(), current.Token(), update)
	if err != nil {
		return nil, fmt.Errorf("edit profile: %w", err)
	}

	next, err := a.store.Update(func(s *models.Session) (*models.Session, bool) {
		if !sameUser(s, current.Username()) {
			return nil, false
		}
		return s.WithProfile(*user), true
	})
	if !sameUser(next, current.Username()) {
		return nil, fmt.Errorf("%w: session changed during profile edit", shared.ErrNoSession)
	}
	return next, err
}

// DeleteAccount deletes the account remotely and then clears the session.
func (a *Accounts) DeleteAccount(ctx context.Context) error {
	current, err := credentials(a.store.Current())
	if err != nil {
		return err
	}

	if err := a.client.DeleteUser(ctx, current.Username(), current.Token()); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	a.logger.Info("account deleted", "username", current.Username())
	return a.store.Clear()
}
