package governor

import "codeberg.org/mutker/perfctl/internal/errors"

const (
	ErrNotInitialized  = errors.ErrorCode("governor_not_initialized")
	ErrInvalidInterval = errors.ErrorCode("governor_invalid_interval")
)
