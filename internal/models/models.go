// package models defines the data model for the movie catalog client
package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// User is the account record exchanged with the movie API and persisted under the "user" storage key.
type User struct {
	ID        string   `json:"_id,omitempty"`
	Username  string   `json:"Username"`
	Email     string   `json:"Email,omitempty"`
	Birthday  string   `json:"Birthday,omitempty"`
	Favorites []string `json:"Favorites"`
}

// Validate reports whether the record is usable as a session identity.
func (u User) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("user record has no username")
	}
	return nil
}

// Genre describes a movie genre.
type Genre struct {
	Name        string `json:"Name"`
	Description string `json:"Description,omitempty"`
}

// Director describes a movie director.
type Director struct {
	Name  string `json:"Name"`
	Bio   string `json:"Bio,omitempty"`
	Birth string `json:"Birth,omitempty"`
	Death string `json:"Death,omitempty"`
}

// Movie is a catalog entry. Only ID matters to favorites; the rest is display metadata.
type Movie struct {
	ID          string   `json:"_id"`
	Title       string   `json:"Title"`
	Description string   `json:"Description,omitempty"`
	Genre       Genre    `json:"Genre"`
	Director    Director `json:"Director"`
	ImagePath   string   `json:"ImagePath,omitempty"`
	Featured    bool     `json:"Featured,omitempty"`
}

// MovieView pairs a [Movie] with whether the current session has it as a favorite.
type MovieView struct {
	Movie
	IsFavorited bool `json:"isFavorited"`
}

// Project computes the favorite flag for every movie against s.
//
// A nil session yields all-false views. The result is recomputed on every session emission and never stored.
func Project(movies []Movie, s *Session) []MovieView {
	views := make([]MovieView, len(movies))
	for i, m := range movies {
		views[i] = MovieView{Movie: m, IsFavorited: s.HasFavorite(m.ID)}
	}
	return views
}

// FilterFavorites returns the movies that belong to the session's favorite set, preserving catalog order.
func FilterFavorites(movies []Movie, s *Session) []Movie {
	var out []Movie
	for _, m := range movies {
		if s.HasFavorite(m.ID) {
			out = append(out, m)
		}
	}
	return out
}

// FavoriteSet is an immutable set of movie identifiers.
type FavoriteSet struct {
	ids map[string]struct{}
}

// NewFavoriteSet builds a set from ids, collapsing duplicates and dropping empty strings.
func NewFavoriteSet(ids ...string) FavoriteSet {
	set := FavoriteSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			set.ids[id] = struct{}{}
		}
	}
	return set
}

func (f FavoriteSet) Has(id string) bool {
	_, ok := f.ids[id]
	return ok
}

func (f FavoriteSet) Len() int { return len(f.ids) }

// With returns a copy of the set including id.
func (f FavoriteSet) With(id string) FavoriteSet {
	out := f.clone()
	if id != "" {
		out.ids[id] = struct{}{}
	}
	return out
}

// Without returns a copy of the set excluding id.
func (f FavoriteSet) Without(id string) FavoriteSet {
	out := f.clone()
	delete(out.ids, id)
	return out
}

// Slice returns the identifiers in sorted order.
func (f FavoriteSet) Slice() []string {
	out := make([]string, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same identifiers.
func (f FavoriteSet) Equal(o FavoriteSet) bool {
	if len(f.ids) != len(o.ids) {
		return false
	}
	for id := range f.ids {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

func (f FavoriteSet) clone() FavoriteSet {
	out := FavoriteSet{ids: make(map[string]struct{}, len(f.ids)+1)}
	for id := range f.ids {
		out.ids[id] = struct{}{}
	}
	return out
}

func (f FavoriteSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Slice())
}

func (f *FavoriteSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*f = NewFavoriteSet(ids...)
	return nil
}
