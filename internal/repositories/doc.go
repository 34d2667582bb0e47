// Package repositories implements SQLite persistence for the flix client.
//
// Key Implementations:
//   - [KeyValueRepository] : the default backend of the session mirror ("user" and "token" slots)
//   - [MovieRepository] : cache of the last movie listing, used to resolve titles and label favorites
//
// Both expect a database migrated with [shared.RunMigrations].
package repositories
