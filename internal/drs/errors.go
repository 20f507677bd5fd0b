package drs

import "codeberg.org/mutker/perfctl/internal/errors"

const (
	ErrNotInitialized = errors.ErrorCode("drs_not_initialized")
	ErrInvalidTarget  = errors.ErrorCode("drs_invalid_target_fps")
)
