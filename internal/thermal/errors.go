package thermal

import "codeberg.org/mutker/perfctl/internal/errors"

const (
	ErrNotInitialized  = errors.ErrorCode("thermal_not_initialized")
	ErrInvalidStrength = errors.ErrorCode("thermal_invalid_strength")
)
