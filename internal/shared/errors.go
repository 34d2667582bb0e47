package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors, detected locally before any network call
	ErrNoSession         = fmt.Errorf("no active session")
	ErrMissingCredential = fmt.Errorf("missing credential: log in again")

	// Remote service errors
	ErrRemoteUnavailable = fmt.Errorf("remote service unavailable")
	ErrRemoteRejected    = fmt.Errorf("remote service rejected request")
	ErrMovieNotFound     = fmt.Errorf("movie not found")

	// Local persistence errors
	ErrStorage = fmt.Errorf("storage failure")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
