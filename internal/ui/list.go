package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/flix/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.MovieView] to implement [list.Item].
type movieItem struct {
	view    models.MovieView
	pending bool
}

func (i movieItem) FilterValue() string { return i.view.Title }

func (i movieItem) Title() string {
	mark := "☆"
	if i.view.IsFavorited {
		mark = "★"
	}
	if i.pending {
		mark = "…"
	}
	return fmt.Sprintf("%s %s", mark, i.view.Title)
}

func (i movieItem) Description() string {
	desc := i.view.Genre.Name
	if i.view.Director.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.view.Director.Name)
	}
	return desc
}

func movieItems(views []models.MovieView, pending map[string]bool, favoritesOnly bool) []list.Item {
	items := make([]list.Item, 0, len(views))
	for _, v := range views {
		if favoritesOnly && !v.IsFavorited {
			continue
		}
		items = append(items, movieItem{view: v, pending: pending[v.ID]})
	}
	return items
}
