package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey int

const usernameKey ctxKey = iota

// StubOptions configures a [Stub].
type StubOptions struct {
	Movies     []models.Movie // defaults to [DefaultMovies]
	BcryptCost int            // defaults to [bcrypt.DefaultCost]
	Logger     *log.Logger
}

type account struct {
	user models.User
	hash []byte
}

// Stub is an in-memory movie API.
type Stub struct {
	mu       sync.RWMutex
	accounts map[string]*account
	tokens   map[string]string // token -> username
	movies   []models.Movie
	cost     int
	logger   *log.Logger

	failStatus int
	failTimes  int // remaining injected failures, negative for unlimited
}

// NewStub creates an empty stub serving opts.Movies.
func NewStub(opts StubOptions) *Stub {
	if opts.Movies == nil {
		opts.Movies = DefaultMovies()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Stub{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		movies:   slices.Clone(opts.Movies),
		cost:     opts.BcryptCost,
		logger:   opts.Logger,
	}
}

// DefaultMovies returns the catalog served when none is configured.
func DefaultMovies() []models.Movie {
	drama := models.Genre{Name: "Drama", Description: "Serious, plot-driven stories about realistic characters."}
	scifi := models.Genre{Name: "Science Fiction", Description: "Speculative stories built on imagined science and technology."}
	thriller := models.Genre{Name: "Thriller", Description: "Stories that sustain suspense and anticipation."}

	nolan := models.Director{Name: "Christopher Nolan", Bio: "British-American filmmaker.", Birth: "1970"}
	scott := models.Director{Name: "Ridley Scott", Bio: "English filmmaker.", Birth: "1937"}
	fincher := models.Director{Name: "David Fincher", Bio: "American filmmaker.", Birth: "1962"}
	darabont := models.Director{Name: "Frank Darabont", Bio: "American filmmaker.", Birth: "1959"}

	return []models.Movie{
		{ID: "5c3bd189515a081b363cb7e3", Title: "Inception", Genre: scifi, Director: nolan, Featured: true,
			Description: "A thief who steals secrets through dream-sharing is given the task of planting an idea.",
			ImagePath:   "https://images.example.com/inception.jpg"},
		{ID: "5c3bd189515a081b363cb7e4", Title: "Blade Runner", Genre: scifi, Director: scott,
			Description: "A blade runner must pursue and terminate four replicants.",
			ImagePath:   "https://images.example.com/blade-runner.jpg"},
		{ID: "5c3bd189515a081b363cb7e5", Title: "Se7en", Genre: thriller, Director: fincher,
			Description: "Two detectives hunt a serial killer who uses the seven deadly sins as his motives.",
			ImagePath:   "https://images.example.com/se7en.jpg"},
		{ID: "5c3bd189515a081b363cb7e6", Title: "The Shawshank Redemption", Genre: drama, Director: darabont, Featured: true,
			Description: "Two imprisoned men bond over a number of years.",
			ImagePath:   "https://images.example.com/shawshank.jpg"},
		{ID: "5c3bd189515a081b363cb7e7", Title: "The Prestige", Genre: drama, Director: nolan,
			Description: "Two stage magicians engage in a battle to create the ultimate illusion.",
			ImagePath:   "https://images.example.com/prestige.jpg"},
	}
}

// AddUser creates an account directly, bypassing the registration endpoint.
func (s *Stub) AddUser(req models.RegisterRequest) (models.User, error) {
	if req.Username == "" || req.Password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", shared.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[req.Username]; exists {
		return models.User{}, fmt.Errorf("%w: %s already exists", shared.ErrInvalidInput, req.Username)
	}

	user := models.User{
		ID:        shared.GenerateID(),
		Username:  req.Username,
		Email:     req.Email,
		Birthday:  req.Birthday,
		Favorites: []string{},
	}
	s.accounts[req.Username] = &account{user: user, hash: hash}
	return user, nil
}

// IssueToken creates a bearer token for an existing user.
func (s *Stub) IssueToken(username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[username]; !ok {
		return "", fmt.Errorf("%w: unknown user %s", shared.ErrInvalidInput, username)
	}
	token := shared.GenerateID()
	s.tokens[token] = username
	return token, nil
}

// User returns a copy of the stored record.
func (s *Stub) User(username string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[username]
	if !ok {
		return models.User{}, false
	}
	return cloneUser(acct.user), true
}

// RevokeTokens invalidates every token issued to username.
func (s *Stub) RevokeTokens(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokeLocked(username)
}

func (s *Stub) revokeLocked(username string) {
	for token, owner := range s.tokens {
		if owner == username {
			delete(s.tokens, token)
		}
	}
}

// FailFavorites makes the next times favorites requests answer with status. A negative count fails every
// request until reset with FailFavorites(0, 0).
func (s *Stub) FailFavorites(status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failTimes = times
}

func (s *Stub) injectedFailure() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failTimes == 0 || s.failStatus == 0 {
		return 0
	}
	if s.failTimes > 0 {
		s.failTimes--
	}
	return s.failStatus
}

// Mount registers every API endpoint on r.
func (s *Stub) Mount(r Router) {
	r.Handle(http.MethodPost, "/login", http.HandlerFunc(s.login))
	r.Handle(http.MethodPost, "/users", http.HandlerFunc(s.register))

	r.Handle(http.MethodGet, "/movies", s.requireBearer(s.listMovies))
	r.Handle(http.MethodGet, "/movies/{title}", s.requireBearer(s.getMovie))
	r.Handle(http.MethodGet, "/directors/{name}", s.requireBearer(s.getDirector))
	r.Handle(http.MethodGet, "/genres/{name}", s.requireBearer(s.getGenre))

	r.Handle(http.MethodGet, "/users/{username}", s.requireOwner(s.getUser))
	r.Handle(http.MethodPut, "/users/{username}", s.requireOwner(s.editUser))
	r.Handle(http.MethodDelete, "/users/{username}", s.requireOwner(s.deleteUser))
	r.Handle(http.MethodPost, "/users/{username}/movies/{movieID}", s.requireOwner(s.addFavorite))
	r.Handle(http.MethodDelete, "/users/{username}/movies/{movieID}", s.requireOwner(s.removeFavorite))
}

// NewStubRouter builds a router serving the stub with request logging, panic recovery and a health check.
func NewStubRouter(s *Stub) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recoverer(s.logger), RequestLogger(s.logger))
	router.Handler(HealthHandler{})
	s.Mount(router)
	return router
}

// HealthHandler answers liveness probes.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (HealthHandler) Routes() []string {
	return []string{"GET /health"}
}

func (HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Stub) requireBearer(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		s.mu.RLock()
		username, ok := s.tokens[token]
		s.mu.RUnlock()
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), usernameKey, username)))
	})
}

// requireOwner also checks that the path's {username} belongs to the token.
func (s *Stub) requireOwner(next http.HandlerFunc) http.Handler {
	return s.requireBearer(func(w http.ResponseWriter, r *http.Request) {
		if caller, _ := r.Context().Value(usernameKey).(string); caller != r.PathValue("username") {
			writeMessage(w, http.StatusForbidden, "Not allowed to access another user")
			return
		}
		next(w, r)
	})
}

func (s *Stub) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed login request")
		return
	}

	s.mu.RLock()
	acct, ok := s.accounts[creds.Username]
	var hash []byte
	if ok {
		hash = acct.hash
	}
	s.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) != nil {
		writeMessage(w, http.StatusBadRequest, "Incorrect username or password")
		return
	}

	token, err := s.IssueToken(creds.Username)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Incorrect username or password")
		return
	}

	user, _ := s.User(creds.Username)
	s.logger.Debug("issued token", "username", creds.Username)
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

// register answers with the user only; clients log in afterwards to obtain a token.
func (s *Stub) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed registration request")
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" {
		writeMessage(w, http.StatusUnprocessableEntity, "Username, Password and Email are required")
		return
	}

	user, err := s.AddUser(req)
	if err != nil {
		writeMessage(w, http.StatusConflict, req.Username+" already exists")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *Stub) listMovies(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	movies := slices.Clone(s.movies)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, movies)
}

func (s *Stub) getMovie(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	m, ok := s.findMovie(func(m models.Movie) bool { return strings.EqualFold(m.Title, title) })
	if !ok {
		writeMessage(w, http.StatusNotFound, "Movie not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Stub) getDirector(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	m, ok := s.findMovie(func(m models.Movie) bool { return strings.EqualFold(m.Director.Name, name) })
	if !ok {
		writeMessage(w, http.StatusNotFound, "Director not found")
		return
	}
	writeJSON(w, http.StatusOK, m.Director)
}

func (s *Stub) getGenre(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	m, ok := s.findMovie(func(m models.Movie) bool { return strings.EqualFold(m.Genre.Name, name) })
	if !ok {
		writeMessage(w, http.StatusNotFound, "Genre not found")
		return
	}
	writeJSON(w, http.StatusOK, m.Genre)
}

func (s *Stub) findMovie(match func(models.Movie) bool) (models.Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.movies {
		if match(m) {
			return m, true
		}
	}
	return models.Movie{}, false
}

func (s *Stub) getUser(w http.ResponseWriter, r *http.Request) {
	user, ok := s.User(r.PathValue("username"))
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Stub) editUser(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed profile update")
		return
	}

	var hash []byte
	if update.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(update.Password), s.cost)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "Could not update password")
			return
		}
		hash = h
	}

	username := r.PathValue("username")
	s.mu.Lock()
	acct, ok := s.accounts[username]
	if ok {
		if hash != nil {
			acct.hash = hash
		}
		if update.Email != "" {
			acct.user.Email = update.Email
		}
		if update.Birthday != "" {
			acct.user.Birthday = update.Birthday
		}
	}
	s.mu.Unlock()

	user, ok := s.User(username)
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Stub) deleteUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	s.mu.Lock()
	_, ok := s.accounts[username]
	delete(s.accounts, username)
	s.revokeLocked(username)
	s.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeText(w, http.StatusOK, username+" was deleted.")
}

func (s *Stub) addFavorite(w http.ResponseWriter, r *http.Request) {
	s.changeFavorite(w, r, true)
}

func (s *Stub) removeFavorite(w http.ResponseWriter, r *http.Request) {
	s.changeFavorite(w, r, false)
}

// changeFavorite answers additions with the updated user and removals with a plain acknowledgement.
func (s *Stub) changeFavorite(w http.ResponseWriter, r *http.Request, add bool) {
	if status := s.injectedFailure(); status != 0 {
		writeMessage(w, status, "Injected failure")
		return
	}

	username, movieID := r.PathValue("username"), r.PathValue("movieID")
	if _, ok := s.findMovie(func(m models.Movie) bool { return m.ID == movieID }); !ok {
		writeMessage(w, http.StatusNotFound, "Movie not found")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[username]
	if ok {
		favorites := models.NewFavoriteSet(acct.user.Favorites...)
		if add {
			favorites = favorites.With(movieID)
		} else {
			favorites = favorites.Without(movieID)
		}
		acct.user.Favorites = favorites.Slice()
	}
	s.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}

	if !add {
		writeText(w, http.StatusOK, "Movie removed from favorites")
		return
	}
	user, _ := s.User(username)
	writeJSON(w, http.StatusOK, user)
}

func cloneUser(u models.User) models.User {
	u.Favorites = slices.Clone(u.Favorites)
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	return u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
