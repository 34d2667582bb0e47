// Package server provides HTTP routing, middleware and a local in-memory implementation of the movie API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so several methods can share a path
// ("GET /users/{username}" and "PUT /users/{username}").
//
// # Stub API
//
// [Stub] serves every endpoint the client uses: login, registration, the movie catalog, directors, genres,
// profile edits, account deletion and the favorites endpoints. Passwords are stored as bcrypt hashes and
// bearer tokens are random UUIDs. Favorites failures can be injected with [Stub.FailFavorites] to exercise
// client error handling.
//
// The stub backs `flix dev stub` for local runs and the end-to-end CLI tests.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
