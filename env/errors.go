// Package env describes the function environment that the analyzer resolves calls against:
// the standard library shipped with Silex plus any user-provided declarations.
package env

import (
	"gitlab.com/tozd/go/errors"
)

// Sentinel errors for environment loading.
var (
	// ErrInvalidFunction is returned when a declaration is missing its name or has a negative arity.
	ErrInvalidFunction = errors.New("env: invalid function declaration")

	// ErrParseError is returned when an environment file fails to parse.
	ErrParseError = errors.New("env: parse error")
)

// LoadError provides details about a failed environment load.
type LoadError struct {
	// Path is the environment file being loaded.
	Path string
	// Cause is the underlying error.
	Cause error
}

func (e *LoadError) Error() string {
	return "env: load " + e.Path + ": " + e.Cause.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
