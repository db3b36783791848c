package git

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD does not point at a branch.
var ErrDetachedHead = errors.New("HEAD is detached")

type Service struct {
	backend Backend
}

// Open opens the repository containing repoPath with the requested backend.
func Open(repoPath string, kind BackendKind) (*Service, error) {
	var (
		backend Backend
		err     error
	)
	switch kind {
	case BackendNative:
		backend, err = openNative(repoPath)
	default:
		backend, err = openCLI(repoPath)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("repository opened",
		slog.String("backend", kind.String()),
		slog.String("root", backend.RepoPath()),
		slog.String("git_dir", backend.GitDir()),
	)
	return NewWithBackend(backend), nil
}

func NewWithBackend(backend Backend) *Service {
	return &Service{backend: backend}
}

func (s *Service) ready() error {
	if s.backend == nil || s.backend.RepoPath() == "" {
		return fmt.Errorf("repository root not set")
	}
	return nil
}

func (s *Service) RepoPath() string {
	if s.backend == nil {
		return ""
	}
	return s.backend.RepoPath()
}

func (s *Service) GitDir() string {
	if s.backend == nil {
		return ""
	}
	return s.backend.GitDir()
}

func (s *Service) CurrentBranch() (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	name, ok, err := s.backend.HeadBranch()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrDetachedHead
	}
	return name, nil
}

// Branches returns every local branch, sorted by name, joined with its remote name, remote
// URL and remote-tracking ref.
func (s *Service) Branches() ([]Branch, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	refs, err := s.backend.ListRefs()
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	urls, err := s.backend.RemoteURLs()
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	tracking, err := s.backend.TrackingConfig()
	if err != nil {
		return nil, fmt.Errorf("read tracking config: %w", err)
	}

	existing := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		existing[ref.FullName()] = struct{}{}
	}

	var branches []Branch
	for _, ref := range refs {
		if ref.Kind != RefKindBranch {
			continue
		}
		b := Branch{Name: ref.Name, Ref: ref.FullName(), Hash: ref.Hash}
		if t, ok := tracking[ref.Name]; ok && t.Remote != "" && t.Merge != "" {
			b.Remote = t.Remote
			b.RemoteURL = urls[t.Remote]
			b.RemoteRef = remoteTrackingRef(t)
			if _, ok := existing[b.RemoteRef]; !ok {
				b.Gone = true
			}
		}
		branches = append(branches, b)
	}
	slices.SortFunc(branches, func(a, b Branch) int {
		return strings.Compare(a.Name, b.Name)
	})
	return branches, nil
}

// remoteTrackingRef maps branch.<name>.merge on a remote to the local ref that mirrors it.
// This assumes the default refspec (+refs/heads/*:refs/remotes/<remote>/*).
func remoteTrackingRef(t Tracking) string {
	if t.Remote == "." {
		return t.Merge
	}
	return remotesPrefix + t.Remote + "/" + strings.TrimPrefix(t.Merge, headsPrefix)
}

func (s *Service) CommitsBetween(base, tip string) ([]Commit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.backend.CommitsBetween(base, tip)
}

func (s *Service) LocalChanges() (LocalChanges, error) {
	if err := s.ready(); err != nil {
		return LocalChanges{}, err
	}
	return s.backend.LocalChangesStatus()
}
