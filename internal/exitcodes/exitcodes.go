package exitcodes

import (
	"errors"

	"dircleaner/internal/fault"
)

// Exit codes for dircleaner
// Scripts wrapping the tool can tell failure kinds apart by these values
const (
	Success          = 0 // Run completed, including the nothing-to-remove case
	Failure          = 1 // Error without a more specific kind
	InvalidArgument  = 2 // Unrecognized command-line token
	ManifestNotFound = 3 // Manifest file missing
	IOError          = 4 // Manifest unreadable or size indeterminable
	DeletionError    = 5 // Recursive delete failed
	EnvironmentError = 6 // Working directory or environment settings unusable
	SafetyViolation  = 7 // Target would remove the working directory or the filesystem root
)

// FromError maps an error returned by a run to its exit code.
func FromError(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, fault.ErrInvalidArgument):
		return InvalidArgument
	case errors.Is(err, fault.ErrManifestNotFound):
		return ManifestNotFound
	case errors.Is(err, fault.ErrIO):
		return IOError
	case errors.Is(err, fault.ErrDeletion):
		return DeletionError
	case errors.Is(err, fault.ErrEnvironment):
		return EnvironmentError
	case errors.Is(err, fault.ErrSafetyViolation):
		return SafetyViolation
	default:
		return Failure
	}
}
