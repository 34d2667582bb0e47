// Package tasks implements the client workflows on top of the session store and the movie API.
//
// # Favorites Synchronizer
//
// [FavoritesSync] keeps the session's favorite set consistent with the server:
//
//  1. [FavoritesSync.Toggle] : remove the movie if it is a favorite, add it otherwise
//  2. [FavoritesSync.Ensure] : move the movie to a wanted state, skipping the call when already there
//  3. [FavoritesSync.Batch] : Ensure over many movies with a worker pool and progress updates
//  4. [FavoritesSync.Refresh] : re-read the user from the server and publish its favorites
//
// Exactly one remote call is made per change. The session store is updated
// only after the server confirms; on failure nothing is published. Changes to
// the same movie are serialized, changes to different movies run concurrently
// and are merged into the session current at completion time.
//
// # Accounts and Catalog
//
// [Accounts] covers login, registration, logout, profile edits and account
// deletion. [Catalog] lists and looks up movies, projects them against the
// current session and keeps an optional local cache of the last listing.
//
// # Progress Reporting
//
// Long operations accept a progress channel. Updates are sent with select and
// default so reporting never blocks the operation.
package tasks
