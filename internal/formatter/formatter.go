// package formatter renders movie listings and favorites exports as CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// Supported export formats
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// FavoritesExport is a snapshot of a user's favorite movies.
type FavoritesExport struct {
	Username   string             `json:"username"`
	ExportedAt time.Time          `json:"exported_at"`
	Movies     []models.MovieView `json:"movies"`
}

// NewFavoritesExport builds an export from the favorite movies of s.
func NewFavoritesExport(s *models.Session, movies []models.Movie) *FavoritesExport {
	return &FavoritesExport{
		Username:   s.Username(),
		ExportedAt: time.Now().UTC(),
		Movies:     models.Project(models.FilterFavorites(movies, s), s),
	}
}

// ViewsToCSV converts movie views to CSV with columns: ID, Title, Genre, Director, Featured, Favorite
func ViewsToCSV(views []models.MovieView) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Genre", "Director", "Featured", "Favorite"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, v := range views {
		record := []string{
			v.ID,
			v.Title,
			v.Genre.Name,
			v.Director.Name,
			strconv.FormatBool(v.Featured),
			strconv.FormatBool(v.IsFavorited),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ViewsToMarkdown renders views as a Markdown document headed by title.
func ViewsToMarkdown(title string, views []models.MovieView) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Movies**: %d\n\n", len(views)))

	for i, v := range views {
		buf.WriteString(fmt.Sprintf("%d. %s**%s**", i+1, favoriteMark(v.IsFavorited), v.Title))
		if v.Genre.Name != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", v.Genre.Name))
		}
		if v.Director.Name != "" {
			buf.WriteString(fmt.Sprintf(" by %s", v.Director.Name))
		}
		buf.WriteString("\n")
		if v.Description != "" {
			buf.WriteString(fmt.Sprintf("   %s\n", v.Description))
		}
	}

	return buf.Bytes(), nil
}

// ViewsToText renders one line per movie, marking favorites with a star.
func ViewsToText(views []models.MovieView) ([]byte, error) {
	var buf bytes.Buffer

	for i, v := range views {
		line := fmt.Sprintf("%2d. %s%s", i+1, favoriteMark(v.IsFavorited), v.Title)
		if v.Genre.Name != "" {
			line += " · " + v.Genre.Name
		}
		if v.Director.Name != "" {
			line += " · " + v.Director.Name
		}
		buf.WriteString(fmt.Sprintf("%s  [%s]\n", line, v.ID))
	}

	return buf.Bytes(), nil
}

// MovieDetail renders a single movie with its genre and director details.
func MovieDetail(v models.MovieView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s%s\n", favoriteMark(v.IsFavorited), v.Title)
	fmt.Fprintf(&b, "ID: %s\n", v.ID)
	if v.Description != "" {
		fmt.Fprintf(&b, "\n%s\n\n", v.Description)
	}
	if v.Genre.Name != "" {
		fmt.Fprintf(&b, "Genre: %s\n", v.Genre.Name)
		if v.Genre.Description != "" {
			fmt.Fprintf(&b, "  %s\n", v.Genre.Description)
		}
	}
	if v.Director.Name != "" {
		fmt.Fprintf(&b, "Director: %s%s\n", v.Director.Name, lifespan(v.Director))
		if v.Director.Bio != "" {
			fmt.Fprintf(&b, "  %s\n", v.Director.Bio)
		}
	}
	if v.ImagePath != "" {
		fmt.Fprintf(&b, "Poster: %s\n", v.ImagePath)
	}
	if v.Featured {
		b.WriteString("Featured\n")
	}

	return b.String()
}

func lifespan(d models.Director) string {
	switch {
	case d.Birth != "" && d.Death != "":
		return fmt.Sprintf(" (%s–%s)", d.Birth, d.Death)
	case d.Birth != "":
		return fmt.Sprintf(" (b. %s)", d.Birth)
	default:
		return ""
	}
}

func favoriteMark(favorited bool) string {
	if favorited {
		return "★ "
	}
	return ""
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WritePoster downloads the movie's poster into dir and returns the file path.
func WritePoster(m models.Movie, dir string) (string, error) {
	data, err := DownloadImage(m.ImagePath)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(m.ImagePath)
	if ext == "" || len(ext) > 5 || strings.ContainsAny(ext, "?&/") {
		ext = ".jpg"
	}
	path := filepath.Join(dir, slug(m.Title)+ext)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write poster: %w", err)
	}
	return path, nil
}

// WriteExport writes the export in format to path and returns the path written.
//
// An empty path defaults to {username}_favorites.{ext}.
func WriteExport(export *FavoritesExport, format, path string) (string, error) {
	var (
		data []byte
		ext  string
		err  error
	)

	switch format {
	case FormatCSV:
		data, err = ViewsToCSV(export.Movies)
		ext = "csv"
	case FormatMarkdown:
		data, err = ViewsToMarkdown(fmt.Sprintf("%s's favorites", export.Username), export.Movies)
		ext = "md"
	case FormatText:
		data, err = ViewsToText(export.Movies)
		ext = "txt"
	case FormatJSON, "":
		data, err = shared.MarshalJSON(export, true)
		ext = "json"
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render %s export: %w", ext, err)
	}

	if path == "" {
		path = fmt.Sprintf("%s_favorites.%s", slug(export.Username), ext)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "untitled"
	}
	return out
}
