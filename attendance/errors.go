package attendance

import "errors"

// Business outcomes of a scan. Handlers map these onto HTTP statuses;
// none of them are retried.
var (
	ErrNotFound         = errors.New("invalid scan code")
	ErrOutOfWindow      = errors.New("scanning is outside operating hours")
	ErrTooEarly         = errors.New("too early to scan out")
	ErrAlreadyCompleted = errors.New("attendance for this session already completed")

	// ErrConflict means a concurrent write won the race; callers re-read
	// once, then give up with ErrUnavailable.
	ErrConflict    = errors.New("concurrent attendance update")
	ErrUnavailable = errors.New("attendance store unavailable")
)
