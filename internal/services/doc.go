// Package services implements the client for the remote movie API.
//
// # Movie API
//
// [MovieAPI] covers every endpoint the client needs: login and registration,
// the movie catalog (movies, directors, genres), the user record, favorites
// and profile edits.
//
// Authenticated calls take the bearer token explicitly. The token is attached
// by an [oauth2.Transport] built from [oauth2.StaticTokenSource], and an
// empty token fails with [shared.ErrMissingCredential] before any request is made.
//
// Outgoing requests are throttled by a [rate.Limiter] and carry an X-Request-ID header.
//
// # Error Handling
//
// Failures are normalized to the sentinels in the shared package:
//   - [shared.ErrRemoteUnavailable] : the request never produced a response (network, timeout, cancellation)
//   - [shared.ErrRemoteRejected] : the server answered with a non-2xx status, see [RemoteError]
//   - [shared.ErrMissingCredential] : no token, or the server answered 401
//
// # Raw Requests
//
// [MovieAPI.Do] returns an [APIResponse] without status interpretation. It backs the `flix api` debugging commands.
package services
