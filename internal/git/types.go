package git

import (
	"strings"
	"time"
)

const (
	headsPrefix   = "refs/heads/"
	remotesPrefix = "refs/remotes/"
)

type RefKind uint8

const (
	RefKindBranch RefKind = iota
	RefKindRemoteBranch
)

type Ref struct {
	Hash string
	Kind RefKind
	Name string // short name: main, origin/main
}

// FullName returns the fully qualified ref name, e.g. refs/heads/main.
func (r Ref) FullName() string {
	if r.Kind == RefKindRemoteBranch {
		return remotesPrefix + r.Name
	}
	return headsPrefix + r.Name
}

// Tracking is the upstream configuration of a local branch as stored in
// branch.<name>.remote and branch.<name>.merge.
type Tracking struct {
	Remote string
	Merge  string // refs/heads/<name> on the remote side
}

// Branch is a local branch joined with its upstream information.
type Branch struct {
	Name string
	Ref  string // refs/heads/<name>
	Hash string

	Remote    string // remote name, "." for a local upstream
	RemoteURL string
	RemoteRef string // refs/remotes/<remote>/<branch>, or a local ref when Remote is "."
	// Gone is set when tracking is configured but RemoteRef does not exist.
	Gone bool
}

func (b Branch) HasRemote() bool {
	return b.RemoteRef != ""
}

// RemoteName returns the short name of the upstream ref, e.g. origin/main.
func (b Branch) RemoteName() string {
	return ShortRefName(b.RemoteRef)
}

type Signature struct {
	Name string
	When time.Time
}

type Commit struct {
	Hash      string
	ShortHash string
	Author    Signature
	Subject   string
}

type LocalChanges struct {
	Staged     int
	Unstaged   int
	Untracked  int
	Conflicted int
}

func (c LocalChanges) Clean() bool {
	return c == LocalChanges{}
}

// ShortRefName strips refs/heads/ or refs/remotes/ from name.
func ShortRefName(name string) string {
	switch {
	case strings.HasPrefix(name, headsPrefix):
		return strings.TrimPrefix(name, headsPrefix)
	case strings.HasPrefix(name, remotesPrefix):
		return strings.TrimPrefix(name, remotesPrefix)
	}
	return name
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func subjectLine(message string) string {
	subject, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return strings.TrimSpace(subject)
}
