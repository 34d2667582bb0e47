package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/flix/internal/shared"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Method Patterns Share A Path", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodGet, "/users/{username}", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("get " + r.PathValue("username")))
		})
		router.HandleFunc(http.MethodPut, "/users/{username}", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("put " + r.PathValue("username")))
		})

		for _, method := range []string{http.MethodGet, http.MethodPut} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(method, "/users/ann", nil))
			want := strings.ToLower(method) + " ann"
			if rec.Body.String() != want {
				t.Errorf("expected %q, got %q", want, rec.Body.String())
			}
		}
	})

	t.Run("Unregistered Method", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodGet, "/movies", func(w http.ResponseWriter, r *http.Request) {})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/movies", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("Custom Handler", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(HealthHandler{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
		}
	})
}

func TestRecoverer(t *testing.T) {
	router := NewBasicRouter()
	router.Use(Recoverer(shared.NewLogger(io.Discard)))
	router.HandleFunc(http.MethodGet, "/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf strings.Builder
	router := NewBasicRouter()
	router.Use(RequestLogger(shared.NewLogger(&buf)))
	router.HandleFunc(http.MethodGet, "/teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{"/teapot", "418", "req-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %q, got %q", want, out)
		}
	}
}

func TestServer(t *testing.T) {
	t.Run("Shuts Down On Cancel", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}

		router := NewBasicRouter()
		router.Handler(HealthHandler{})
		srv := New(ln.Addr().String(), router, shared.NewLogger(io.Discard))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Serve(ctx, ln) }()

		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			t.Fatalf("health request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected clean shutdown, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
		}
	})

	t.Run("Listen Failure", func(t *testing.T) {
		srv := New("256.0.0.1:99999", NewBasicRouter(), shared.NewLogger(io.Discard))
		if err := srv.Run(context.Background()); err == nil {
			t.Error("expected listen error")
		}
	})
}
