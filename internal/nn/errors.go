package nn

import "errors"

// Common errors.
var (
	ErrInvalidShape       = errors.New("nn: invalid network shape")
	ErrInputSize          = errors.New("nn: input size mismatch")
	ErrInvalidCheckpoint  = errors.New("nn: invalid checkpoint")
	ErrChecksumMismatch   = errors.New("nn: checksum mismatch: checkpoint may be corrupted")
	ErrUnsupportedVersion = errors.New("nn: unsupported checkpoint version")
)
