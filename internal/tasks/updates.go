package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, a *FavoriteResult for favorite phases
}

// Operation phase enumeration
type Phase int

const (
	AddFavorite Phase = iota
	RemoveFavorite
	SkipFavorite
)

func (p Phase) String() string {
	switch p {
	case AddFavorite:
		return "add_favorite"
	case RemoveFavorite:
		return "remove_favorite"
	case SkipFavorite:
		return "skip_favorite"
	default:
		return ""
	}
}

func favoriteDoneUpdate(step, total int, res *FavoriteResult) ProgressUpdate {
	phase := AddFavorite
	if res.Direction == Remove {
		phase = RemoveFavorite
	}
	if !res.Changed {
		phase = SkipFavorite
	}

	verb := res.Direction.Past()
	if !res.Changed {
		verb = "unchanged"
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s %s", step, total, res.MovieID, verb),
		Data:    res,
	}
}

func favoriteFailedUpdate(step, total int, res *FavoriteResult) ProgressUpdate {
	phase := AddFavorite
	if res.Direction == Remove {
		phase = RemoveFavorite
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.MovieID, res.Err),
		Data:    res,
	}
}
