// Package models defines the domain values shared by the flix client.
//
// The package contains two categories of types:
//
// 1. Wire records: structs decoded from and encoded to the movie API
//   - [User] : account record as returned by login, registration and profile edits
//   - [Movie] : catalog entry with [Genre] and [Director] metadata
//
// 2. Client state: immutable values owned by the session store
//   - [Session] : the logged-in user, their favorite set and bearer token
//   - [FavoriteSet] : set of movie identifiers with copy-on-write mutators
//   - [MovieView] : a [Movie] projected against a [Session]
//
// A [Session] is never modified in place. [Session.WithFavorite], [Session.WithoutFavorite] and [Session.WithProfile] return new values,
// so references held by different views never observe a partial update.
package models
