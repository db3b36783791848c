// Package report compares branches and renders the result as a checklist.
package report

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/thiagokokada/git-bstat/internal/config"
	"github.com/thiagokokada/git-bstat/internal/git"
)

// ErrBranchNotFound is returned when a requested branch is unknown or ignored.
var ErrBranchNotFound = errors.New("branch not found")

type Kind int

const (
	Feature Kind = iota
	Version
)

func (k Kind) String() string {
	if k == Version {
		return "version"
	}
	return "feature"
}

// Complement is the kind a branch of kind k is compared against.
func (k Kind) Complement() Kind {
	if k == Version {
		return Feature
	}
	return Version
}

// Inventory partitions the repository's local branches into version and feature branches.
// Ignored branches are dropped entirely.
type Inventory struct {
	branches map[string]git.Branch
	ignored  map[string]struct{}
	version  []string
	feature  []string
}

func normalizeName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "refs/heads/")
}

func NewInventory(branches []git.Branch, cfg config.Config) *Inventory {
	inv := &Inventory{
		branches: make(map[string]git.Branch, len(branches)),
		ignored:  make(map[string]struct{}, len(cfg.Ignore)),
	}
	for _, name := range cfg.Ignore {
		inv.ignored[normalizeName(name)] = struct{}{}
	}
	for _, b := range branches {
		if _, skip := inv.ignored[b.Name]; skip {
			continue
		}
		inv.branches[b.Name] = b
	}
	// Version branches keep the configured order; feature branches are sorted by name.
	seen := map[string]struct{}{}
	for _, name := range cfg.VersionBranches {
		name = normalizeName(name)
		if _, ok := inv.branches[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		inv.version = append(inv.version, name)
	}
	for name := range inv.branches {
		if _, ok := seen[name]; !ok {
			inv.feature = append(inv.feature, name)
		}
	}
	slices.Sort(inv.feature)
	return inv
}

// Lookup returns the branch called name (short or refs/heads/ form) and its kind.
func (inv *Inventory) Lookup(name string) (git.Branch, Kind, error) {
	short := normalizeName(name)
	if _, ok := inv.ignored[short]; ok {
		return git.Branch{}, Feature, fmt.Errorf("%w: %s (ignored by configuration)", ErrBranchNotFound, short)
	}
	b, ok := inv.branches[short]
	if !ok {
		return git.Branch{}, Feature, fmt.Errorf("%w: %s", ErrBranchNotFound, short)
	}
	return b, inv.kindOf(short), nil
}

func (inv *Inventory) kindOf(name string) Kind {
	if slices.Contains(inv.version, name) {
		return Version
	}
	return Feature
}

// Branches returns the branches of the given kind.
func (inv *Inventory) Branches(kind Kind) []git.Branch {
	names := inv.feature
	if kind == Version {
		names = inv.version
	}
	out := make([]git.Branch, 0, len(names))
	for _, name := range names {
		out = append(out, inv.branches[name])
	}
	return out
}

func (inv *Inventory) Len() int {
	return len(inv.branches)
}
