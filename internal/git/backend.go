package git

import (
	"fmt"
	"strings"
)

// Backend abstracts access to repository data.
//
// The default implementation shells out to the git executable; the native one reads the
// repository with go-git. Every method reports failures as errors so an unreadable repository
// never looks like one without branches or commits.
type Backend interface {
	RepoPath() string
	GitDir() string

	// HeadBranch returns the checked out branch. ok is false for a detached HEAD.
	HeadBranch() (name string, ok bool, err error)
	ListRefs() ([]Ref, error)
	RemoteURLs() (map[string]string, error)
	TrackingConfig() (map[string]Tracking, error)

	// CommitsBetween lists commits reachable from tip but not from base, newest first.
	CommitsBetween(base, tip string) ([]Commit, error)
	LocalChangesStatus() (LocalChanges, error)
}

type BackendKind int

const (
	BackendCLI BackendKind = iota
	BackendNative
)

func (k BackendKind) String() string {
	switch k {
	case BackendNative:
		return "native"
	default:
		return "cli"
	}
}

func ParseBackendKind(raw string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", BackendCLI.String():
		return BackendCLI, nil
	case BackendNative.String():
		return BackendNative, nil
	default:
		return BackendCLI, fmt.Errorf("unknown backend %q (valid: cli, native)", raw)
	}
}
