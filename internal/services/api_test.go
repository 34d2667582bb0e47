package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	tu "github.com/desertthunder/flix/internal/testing"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *MovieAPI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewMovieAPI(Options{BaseURL: server.URL})
}

func TestNewMovieAPI(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		api := NewMovieAPI(Options{})
		if api.baseURL != "http://localhost:8080" {
			t.Errorf("expected default baseURL, got %s", api.baseURL)
		}
		if api.httpClient != http.DefaultClient {
			t.Error("expected http.DefaultClient to be used")
		}
	})

	t.Run("Trims Trailing Slash", func(t *testing.T) {
		api := NewMovieAPI(Options{BaseURL: "https://example.com/"})
		if api.BaseURL() != "https://example.com" {
			t.Errorf("unexpected baseURL %s", api.BaseURL())
		}
	})

	t.Run("From Config", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		api := NewMovieAPI(OptionsFromConfig(cfg.API, nil))
		if api.httpClient.Timeout != cfg.API.Timeout() {
			t.Errorf("expected timeout %v, got %v", cfg.API.Timeout(), api.httpClient.Timeout)
		}
		if api.userAgent != cfg.API.UserAgent {
			t.Errorf("expected user agent %s, got %s", cfg.API.UserAgent, api.userAgent)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("Decodes User And Token", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/login" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if r.Header.Get("Authorization") != "" {
				t.Error("login must not send a bearer token")
			}

			var creds models.Credentials
			json.NewDecoder(r.Body).Decode(&creds)
			if creds.Username != "ann" || creds.Password != "pw" {
				t.Errorf("unexpected credentials %+v", creds)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"user":{"_id":"u1","Username":"ann","Favorites":["m1"]},"token":"T"}`))
		})

		result, err := api.Login(context.Background(), models.Credentials{Username: "ann", Password: "pw"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Token != "T" || result.User.Username != "ann" || len(result.User.Favorites) != 1 {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("Bad Credentials", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Incorrect username or password."}`))
		})

		_, err := api.Login(context.Background(), models.Credentials{Username: "ann"})
		if !errors.Is(err, shared.ErrRemoteRejected) {
			t.Fatalf("expected ErrRemoteRejected, got %v", err)
		}

		var re *RemoteError
		if !errors.As(err, &re) || re.Message != "Incorrect username or password." {
			t.Errorf("expected server message, got %v", err)
		}
	})

	t.Run("Missing Token", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"user":{"Username":"ann"}}`))
		})

		if _, err := api.Login(context.Background(), models.Credentials{Username: "ann"}); err == nil {
			t.Error("expected error when the token is missing")
		}
	})
}

func TestRegister(t *testing.T) {
	for name, body := range map[string]string{
		"Enveloped": `{"user":{"Username":"ann","Email":"a@example.com"}}`,
		"Bare":      `{"Username":"ann","Email":"a@example.com","Favorites":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/users" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(body))
			})

			result, err := api.Register(context.Background(), models.RegisterRequest{Username: "ann", Password: "pw", Email: "a@example.com"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Token != "" || result.User.Email != "a@example.com" {
				t.Errorf("unexpected result %+v", result)
			}
		})
	}
}

func TestAuthenticatedCalls(t *testing.T) {
	t.Run("Sends Bearer Token And Request ID", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer T" {
				t.Errorf("expected bearer header, got %q", got)
			}
			if r.Header.Get("X-Request-ID") == "" {
				t.Error("expected request id header")
			}
			w.Write([]byte(`[{"_id":"m1","Title":"Alien","Genre":{"Name":"Horror"},"Director":{"Name":"Ridley Scott"}}]`))
		})

		movies, err := api.Movies(context.Background(), "T")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(movies) != 1 || movies[0].Director.Name != "Ridley Scott" {
			t.Errorf("unexpected movies %+v", movies)
		}
	})

	t.Run("Missing Token Fails Before Network", func(t *testing.T) {
		called := false
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) { called = true })

		if _, err := api.Movies(context.Background(), ""); !errors.Is(err, shared.ErrMissingCredential) {
			t.Errorf("expected ErrMissingCredential, got %v", err)
		}
		if err := api.RemoveFavorite(context.Background(), "ann", "", "m1"); !errors.Is(err, shared.ErrMissingCredential) {
			t.Errorf("expected ErrMissingCredential, got %v", err)
		}
		if called {
			t.Error("no request should be made without a token")
		}
	})

	t.Run("Unauthorized Maps To Both Errors", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized"))
		})

		_, err := api.Movies(context.Background(), "expired")
		if !errors.Is(err, shared.ErrRemoteRejected) || !errors.Is(err, shared.ErrMissingCredential) {
			t.Errorf("expected rejected and missing credential, got %v", err)
		}
		if !IsStatus(err, http.StatusUnauthorized) {
			t.Error("expected status 401")
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		api := NewMovieAPI(Options{
			BaseURL: "http://movies.invalid",
			Client:  &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
		})

		_, err := api.AddFavorite(context.Background(), "ann", "T", "m1")
		if !errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Errorf("expected ErrRemoteUnavailable, got %v", err)
		}
	})

	t.Run("Body Read Failure", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
		api := NewMovieAPI(Options{
			BaseURL: "http://movies.invalid",
			Client:  &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)},
		})

		if _, err := api.Movies(context.Background(), "T"); !errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Errorf("expected ErrRemoteUnavailable, got %v", err)
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := api.DeleteUser(ctx, "ann", "T"); !errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Errorf("expected ErrRemoteUnavailable, got %v", err)
		}
	})
}

func TestFavorites(t *testing.T) {
	t.Run("Add Escapes Path Segments", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.EscapedPath() != "/users/ann%20lee/movies/m1" {
				t.Errorf("unexpected path %s", r.URL.EscapedPath())
			}
			w.Write([]byte(`{"Username":"ann lee","Favorites":["m1"]}`))
		})

		user, err := api.AddFavorite(context.Background(), "ann lee", "T", "m1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user == nil || user.Favorites[0] != "m1" {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("Add Accepts Plain Acknowledgement", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		user, err := api.AddFavorite(context.Background(), "ann", "T", "m1")
		if err != nil || user != nil {
			t.Errorf("expected ack without user, got %+v %v", user, err)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/users/ann/movies/m1" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		})

		if err := api.RemoveFavorite(context.Background(), "ann", "T", "m1"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Server Error Message", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(strings.Repeat("x", 500)))
		})

		err := api.RemoveFavorite(context.Background(), "ann", "T", "m1")
		var re *RemoteError
		if !errors.As(err, &re) {
			t.Fatalf("expected RemoteError, got %v", err)
		}
		if len(re.Message) != maxMessageLen+3 {
			t.Errorf("expected truncated message, got %d chars", len(re.Message))
		}
		if errors.Is(err, shared.ErrMissingCredential) {
			t.Error("500 should not be a credential error")
		}
	})
}

func TestCatalogCalls(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movies/Alien":
			w.Write([]byte(`{"_id":"m1","Title":"Alien"}`))
		case "/directors/Ridley Scott":
			w.Write([]byte(`{"Name":"Ridley Scott","Birth":"1937"}`))
		case "/genres/Horror":
			w.Write([]byte(`{"Name":"Horror","Description":"Scary"}`))
		case "/users/ann":
			w.Write([]byte(`{"Username":"ann","Favorites":["m1","m2"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	t.Run("Movie", func(t *testing.T) {
		movie, err := api.Movie(ctx, "T", "Alien")
		if err != nil || movie.ID != "m1" {
			t.Errorf("unexpected movie %+v err=%v", movie, err)
		}

		_, err = api.Movie(ctx, "T", "Missing")
		if !errors.Is(err, shared.ErrMovieNotFound) || !errors.Is(err, shared.ErrRemoteRejected) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("Director", func(t *testing.T) {
		director, err := api.Director(ctx, "T", "Ridley Scott")
		if err != nil || director.Birth != "1937" {
			t.Errorf("unexpected director %+v err=%v", director, err)
		}
	})

	t.Run("Genre", func(t *testing.T) {
		genre, err := api.Genre(ctx, "T", "Horror")
		if err != nil || genre.Description != "Scary" {
			t.Errorf("unexpected genre %+v err=%v", genre, err)
		}
	})

	t.Run("User", func(t *testing.T) {
		user, err := api.User(ctx, "ann", "T")
		if err != nil || len(user.Favorites) != 2 {
			t.Errorf("unexpected user %+v err=%v", user, err)
		}
	})
}

func TestEditProfile(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/users/ann" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var update models.ProfileUpdate
		json.NewDecoder(r.Body).Decode(&update)
		w.Write([]byte(`{"user":{"Username":"ann","Email":"` + update.Email + `"},"token":"ignored"}`))
	})

	user, err := api.EditProfile(context.Background(), "ann", "T", models.ProfileUpdate{Email: "new@example.com"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Email != "new@example.com" {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestDo(t *testing.T) {
	t.Run("Non-2xx Is Not An Error", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/movies" {
				t.Errorf("expected leading slash to be added, got %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusTeapot)
			w.Write([]byte(`{"status":"teapot"}`))
		})

		resp, err := api.Get(context.Background(), "movies", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusTeapot || !resp.IsJSON {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("Post Sends Body", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"a":1}` {
				t.Errorf("unexpected body %s", body)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Error("expected JSON content type")
			}
			w.Write([]byte("plain"))
		})

		resp, err := api.Post(context.Background(), "/echo", "", []byte(`{"a":1}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.IsJSON || string(resp.Body) != "plain" {
			t.Errorf("unexpected response %+v", resp)
		}
	})
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"json message", `{"message":"nope"}`, "nope"},
		{"json error", `{"error":"bad"}`, "bad"},
		{"plain text", "  Permission denied \n", "Permission denied"},
		{"json without message", `{"code":3}`, ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("extractMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
