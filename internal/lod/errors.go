package lod

import "codeberg.org/mutker/perfctl/internal/errors"

const (
	ErrNotInitialized = errors.ErrorCode("lod_not_initialized")
	ErrInvalidRatio   = errors.ErrorCode("lod_invalid_ratio")
)
