package models

import (
	"encoding/json"
	"fmt"
)

// Session is the logged-in user as seen by the client.
//
// Values are immutable once constructed; a nil *Session means "no session".
// All read methods are safe on a nil receiver.
type Session struct {
	id        string
	username  string
	email     string
	birthday  string
	favorites FavoriteSet
	token     string
}

// NewSession builds a session from a decoded user record and its bearer token.
func NewSession(u User, token string) (*Session, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		id:        u.ID,
		username:  u.Username,
		email:     u.Email,
		birthday:  u.Birthday,
		favorites: NewFavoriteSet(u.Favorites...),
		token:     token,
	}, nil
}

// ParseSession decodes the persisted user record. Malformed JSON or a record without a username is an error.
func ParseSession(userJSON, token string) (*Session, error) {
	var u User
	if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}
	return NewSession(u, token)
}

func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

func (s *Session) Username() string {
	if s == nil {
		return ""
	}
	return s.username
}

func (s *Session) Email() string {
	if s == nil {
		return ""
	}
	return s.email
}

func (s *Session) Birthday() string {
	if s == nil {
		return ""
	}
	return s.birthday
}

// Token returns the opaque bearer credential, empty when absent.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

// Favorites returns the favorite movie ids in sorted order.
func (s *Session) Favorites() []string {
	if s == nil {
		return nil
	}
	return s.favorites.Slice()
}

// FavoriteSet returns the session's favorite set.
func (s *Session) FavoriteSet() FavoriteSet {
	if s == nil {
		return NewFavoriteSet()
	}
	return s.favorites
}

func (s *Session) HasFavorite(movieID string) bool {
	if s == nil {
		return false
	}
	return s.favorites.Has(movieID)
}

// User returns the wire record persisted under the "user" key.
func (s *Session) User() User {
	if s == nil {
		return User{}
	}
	return User{
		ID:        s.id,
		Username:  s.username,
		Email:     s.email,
		Birthday:  s.birthday,
		Favorites: s.favorites.Slice(),
	}
}

// MarshalUser encodes the user record for persistence.
func (s *Session) MarshalUser() (string, error) {
	data, err := json.Marshal(s.User())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WithFavorite returns a copy whose favorite set includes movieID.
func (s *Session) WithFavorite(movieID string) *Session {
	out := *s
	out.favorites = s.favorites.With(movieID)
	return &out
}

// WithoutFavorite returns a copy whose favorite set excludes movieID.
func (s *Session) WithoutFavorite(movieID string) *Session {
	out := *s
	out.favorites = s.favorites.Without(movieID)
	return &out
}

// WithFavorites returns a copy with the favorite set replaced.
func (s *Session) WithFavorites(ids []string) *Session {
	out := *s
	out.favorites = NewFavoriteSet(ids...)
	return &out
}

// WithProfile returns a copy carrying the mutable profile fields of u.
// Username and token are kept.
func (s *Session) WithProfile(u User) *Session {
	out := *s
	if u.ID != "" {
		out.id = u.ID
	}
	out.email = u.Email
	out.birthday = u.Birthday
	if u.Favorites != nil {
		out.favorites = NewFavoriteSet(u.Favorites...)
	}
	return &out
}

// Equal compares all fields including the token.
func (s *Session) Equal(o *Session) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.id == o.id &&
		s.username == o.username &&
		s.email == o.email &&
		s.birthday == o.birthday &&
		s.token == o.token &&
		s.favorites.Equal(o.favorites)
}

func (s *Session) String() string {
	if s == nil {
		return "<no session>"
	}
	return fmt.Sprintf("%s (%d favorites)", s.username, s.favorites.Len())
}

// ProfileUpdate holds the editable profile fields. Username cannot be changed.
type ProfileUpdate struct {
	Password string `json:"Password,omitempty"`
	Email    string `json:"Email,omitempty"`
	Birthday string `json:"Birthday,omitempty"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
}

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
	Email    string `json:"Email"`
	Birthday string `json:"Birthday,omitempty"`
}

func (r RegisterRequest) Credentials() Credentials {
	return Credentials{Username: r.Username, Password: r.Password}
}

// AuthResult is the outcome of login or registration. Token may be empty after registration.
type AuthResult struct {
	User  User
	Token string
}
