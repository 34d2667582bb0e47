// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [MoviesView] : the whole catalog, favorites marked with ★
//  2. [FavoritesView] : only the session's favorite movies
//  3. [DetailView] : details for the selected movie
//
// The [Model] subscribes to the session store when it is created. Every published session is forwarded
// through a buffered channel and read back by a re-armed command, so the list projections are recomputed
// on each emission: toggling a favorite here, or from another goroutine, updates both lists.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, f, r, q) with contextual help displayed via
// charmbracelet/bubbles/help. Toggle results are shown on a status line below the list.
package ui
