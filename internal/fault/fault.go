// Package fault defines the error kinds a cleanup run can end with.
// Callers match them with errors.Is; only main turns them into exit codes.
package fault

import "errors"

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrManifestNotFound = errors.New("manifest not found")
	ErrIO               = errors.New("i/o error")
	ErrDeletion         = errors.New("deletion failed")
	ErrEnvironment      = errors.New("environment error")
	ErrSafetyViolation  = errors.New("safety violation")
)

// ArgumentError reports a command-line token that could not be parsed.
// It matches ErrInvalidArgument.
type ArgumentError struct {
	Token string
	Err   error
}

func (e *ArgumentError) Error() string {
	if e.Token == "" && e.Err != nil {
		return "invalid flags provided: " + e.Err.Error()
	}
	return "invalid flags provided: " + e.Token
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}
