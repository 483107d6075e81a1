package nullmodem

import "errors"

// Predefined error types for robust error handling
var (
	ErrInvalidIndex     = errors.New("endpoint index out of range")
	ErrNotOpen          = errors.New("endpoint is not open")
	ErrPortClosed       = errors.New("port handle is closed")
	ErrRegistryClosed   = errors.New("registry has been shut down")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrInvalidPortCount = errors.New("port count must be a positive even number")

	// Signal wait errors
	ErrInterrupted       = errors.New("signal wait interrupted")
	ErrNoChange          = errors.New("woken with no signal transitions recorded")
	ErrSignalTimeout     = errors.New("timeout waiting for signal change")
	ErrInvalidSignalMask = errors.New("invalid signal mask")
)
