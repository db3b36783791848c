package cmd

import (
	"errors"

	"github.com/thiagokokada/git-bstat/internal/report"
)

const (
	ExitSuccess        = 0 // Success
	ExitError          = 1 // General error (git failure, invalid flags)
	ExitConfigError    = 2 // Configuration file unreadable or invalid
	ExitBranchNotFound = 3 // Requested branch unknown or ignored
)

// ExitCode maps an error returned by Run to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errConfig):
		return ExitConfigError
	case errors.Is(err, report.ErrBranchNotFound):
		return ExitBranchNotFound
	default:
		return ExitError
	}
}
