package types

import "github.com/pkg/errors"

// Error taxonomy. Fatal categories abort a run; item categories end up
// in a Failure Result instead of being returned.
var (
	ErrInputFormat   = errors.New("input format error")
	ErrConfiguration = errors.New("configuration error")
	ErrFilesystem    = errors.New("filesystem error")
	ErrExternalTool  = errors.New("external tool failure")
	ErrWorkerCrash   = errors.New("worker crash")
)

// IsFatal reports whether err aborts the whole run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInputFormat) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrFilesystem)
}
