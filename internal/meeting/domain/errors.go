package domain

import "github.com/m-mizutani/goerr/v2"

// Typed outcomes threaded through the extraction, sync and API layers.
// Wrap them with goerr and test with errors.Is.
var (
	ErrMeetingNotFound = goerr.New("no meeting found")
	ErrNetwork         = goerr.New("network error")
	ErrUnauthorized    = goerr.New("unauthorized")
	ErrQuotaExceeded   = goerr.New("brief limit exceeded")
	ErrForbidden       = goerr.New("forbidden")
	ErrNotFound        = goerr.New("not found")
	ErrInvalidInput    = goerr.New("invalid input")
	ErrNoRemoteID      = goerr.New("This brief cannot be deleted as it was not saved to the database.")
)
