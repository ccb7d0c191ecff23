package usecase

import "errors"

// Validation errors are detected before any step list is created and before
// any network call is made.
var (
	ErrMissingAPIKey   = errors.New("api key is required")
	ErrMissingJobText  = errors.New("job description is required")
	ErrUnknownModel    = errors.New("unknown model identifier")
	ErrNothingToExport = errors.New("nothing to export")
	ErrUnknownFormat   = errors.New("unknown export format")
)
