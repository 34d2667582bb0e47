package formatter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	th "github.com/desertthunder/flix/internal/testing"
)

func testViews() []models.MovieView {
	return []models.MovieView{
		{
			Movie: models.Movie{
				ID:          "m1",
				Title:       "Alien",
				Description: "In space no one can hear you scream.",
				Genre:       models.Genre{Name: "Horror", Description: "Scary"},
				Director:    models.Director{Name: "Ridley Scott", Birth: "1937"},
				Featured:    true,
			},
			IsFavorited: true,
		},
		{
			Movie: models.Movie{ID: "m2", Title: "Brazil, the Movie", Director: models.Director{Name: "Terry Gilliam"}},
		},
	}
}

func TestRenderers(t *testing.T) {
	t.Run("ViewsToCSV", func(t *testing.T) {
		data, err := ViewsToCSV(testViews())
		if err != nil {
			t.Fatalf("ViewsToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Title,Genre,Director,Featured,Favorite") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "m1,Alien,Horror,Ridley Scott,true,true") {
			t.Errorf("CSV missing first row, got: %s", output)
		}
		if !strings.Contains(output, `"Brazil, the Movie"`) {
			t.Errorf("CSV should quote titles with commas, got: %s", output)
		}
	})

	t.Run("ViewsToMarkdown", func(t *testing.T) {
		data, err := ViewsToMarkdown("Catalog", testViews())
		if err != nil {
			t.Fatalf("ViewsToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"# Catalog", "**Movies**: 2", "1. ★ **Alien** (Horror) by Ridley Scott", "2. **Brazil, the Movie** by Terry Gilliam"} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ViewsToText", func(t *testing.T) {
		data, err := ViewsToText(testViews())
		if err != nil {
			t.Fatalf("ViewsToText failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		if !strings.Contains(lines[0], "★ Alien") || !strings.HasSuffix(lines[0], "[m1]") {
			t.Errorf("unexpected first line %q", lines[0])
		}
		if strings.Contains(lines[1], "★") {
			t.Errorf("second movie is not a favorite: %q", lines[1])
		}
	})

	t.Run("MovieDetail", func(t *testing.T) {
		out := MovieDetail(testViews()[0])
		for _, want := range []string{"★ Alien", "ID: m1", "Genre: Horror", "Director: Ridley Scott (b. 1937)", "Featured"} {
			if !strings.Contains(out, want) {
				t.Errorf("detail missing %q, got: %s", want, out)
			}
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		_, err := DownloadImage("")
		if err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		if _, err := DownloadImage(server.URL + "/missing.jpg"); err == nil {
			t.Error("expected error for 404")
		}
	})

	t.Run("WritePoster", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("fake-image"))
		}))
		defer server.Close()

		dir := t.TempDir()
		path, err := WritePoster(models.Movie{Title: "Alien: Director's Cut", ImagePath: server.URL + "/alien.png"}, dir)
		if err != nil {
			t.Fatalf("WritePoster failed: %v", err)
		}
		if path != filepath.Join(dir, "alien-director-s-cut.png") {
			t.Errorf("unexpected path %s", path)
		}
		if th.MustReadFile(t, path) != "fake-image" {
			t.Error("unexpected poster content")
		}
	})
}

func TestWriteExport(t *testing.T) {
	s, _ := models.NewSession(models.User{Username: "Ann Lee", Favorites: []string{"m1"}}, "T")
	movies := []models.Movie{testViews()[0].Movie, testViews()[1].Movie}
	export := NewFavoritesExport(s, movies)

	if len(export.Movies) != 1 || !export.Movies[0].IsFavorited {
		t.Fatalf("expected only favorites in export, got %+v", export.Movies)
	}

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "favs.json")
		written, err := WriteExport(export, FormatJSON, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		var decoded FavoritesExport
		if err := json.Unmarshal([]byte(th.MustReadFile(t, written)), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Username != "Ann Lee" || decoded.Movies[0].ID != "m1" {
			t.Errorf("unexpected export %+v", decoded)
		}
	})

	for _, format := range []string{FormatCSV, FormatMarkdown, FormatText} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "favs."+format)
			written, err := WriteExport(export, format, path)
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			th.AssertFileExists(t, written)
			if !strings.Contains(th.MustReadFile(t, written), "Alien") {
				t.Error("export should contain the favorite title")
			}
		})
	}

	t.Run("DefaultPath", func(t *testing.T) {
		t.Chdir(t.TempDir())
		written, err := WriteExport(export, FormatText, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != "ann-lee_favorites.txt" {
			t.Errorf("unexpected default path %s", written)
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		if _, err := WriteExport(export, "xml", ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
