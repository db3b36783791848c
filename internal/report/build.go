package report

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/thiagokokada/git-bstat/internal/config"
	"github.com/thiagokokada/git-bstat/internal/git"
)

// CommitSource answers the range and working tree queries a report needs.
type CommitSource interface {
	CommitsBetween(base, tip string) ([]git.Commit, error)
	LocalChanges() (git.LocalChanges, error)
}

// Repository is what Collect needs from git.Service.
type Repository interface {
	CommitSource
	Branches() ([]git.Branch, error)
	CurrentBranch() (string, error)
}

// Comparison relates the reported branch to Other.
type Comparison struct {
	Other string
	// Ahead holds commits on the reported branch missing from Other.
	Ahead []git.Commit
	// Behind holds commits on Other missing from the reported branch.
	Behind []git.Commit
}

func (c Comparison) InSync() bool {
	return len(c.Ahead) == 0 && len(c.Behind) == 0
}

func (c Comparison) Diverged() bool {
	return len(c.Ahead) > 0 && len(c.Behind) > 0
}

type BranchReport struct {
	Branch  git.Branch
	Kind    Kind
	Current bool
	// Remote is nil when the branch has no upstream or the upstream is gone.
	Remote  *Comparison
	Related []Comparison
	// Local is only set for the checked out branch.
	Local *git.LocalChanges
}

func compare(src CommitSource, tipRef, otherRef, otherName string) (Comparison, error) {
	ahead, err := src.CommitsBetween(otherRef, tipRef)
	if err != nil {
		return Comparison{}, fmt.Errorf("compare with %s: %w", otherName, err)
	}
	behind, err := src.CommitsBetween(tipRef, otherRef)
	if err != nil {
		return Comparison{}, fmt.Errorf("compare with %s: %w", otherName, err)
	}
	return Comparison{Other: otherName, Ahead: ahead, Behind: behind}, nil
}

// Build compares the named branch with its upstream and with every branch of the
// complementary kind. current is the checked out branch name, or empty when detached.
func Build(src CommitSource, inv *Inventory, name, current string) (BranchReport, error) {
	branch, kind, err := inv.Lookup(name)
	if err != nil {
		return BranchReport{}, err
	}
	rep := BranchReport{Branch: branch, Kind: kind, Current: branch.Name == current}

	if branch.HasRemote() && !branch.Gone {
		cmp, err := compare(src, branch.Ref, branch.RemoteRef, branch.RemoteName())
		if err != nil {
			return BranchReport{}, err
		}
		rep.Remote = &cmp
	}

	for _, other := range inv.Branches(kind.Complement()) {
		cmp, err := compare(src, branch.Ref, other.Ref, other.Name)
		if err != nil {
			return BranchReport{}, err
		}
		rep.Related = append(rep.Related, cmp)
	}

	if rep.Current {
		local, err := src.LocalChanges()
		if err != nil {
			return BranchReport{}, fmt.Errorf("local changes: %w", err)
		}
		rep.Local = &local
	}
	return rep, nil
}

// Collect builds reports for names, or for the checked out branch when names is empty.
// Every name is resolved before any comparison runs so an unknown branch fails fast.
func Collect(repo Repository, cfg config.Config, names []string) ([]BranchReport, error) {
	branches, err := repo.Branches()
	if err != nil {
		return nil, err
	}
	inv := NewInventory(branches, cfg)
	slog.Debug("inventory built",
		slog.Int("branches", inv.Len()),
		slog.Int("version", len(inv.version)),
		slog.Int("feature", len(inv.feature)),
	)

	current, err := repo.CurrentBranch()
	switch {
	case errors.Is(err, git.ErrDetachedHead):
		if len(names) == 0 {
			return nil, fmt.Errorf("%w; name a branch to report on", err)
		}
		current = ""
	case err != nil:
		return nil, err
	}
	if len(names) == 0 {
		names = []string{current}
	}

	for _, name := range names {
		if _, _, err := inv.Lookup(name); err != nil {
			return nil, err
		}
	}

	reports := make([]BranchReport, 0, len(names))
	for _, name := range names {
		rep, err := Build(repo, inv, name, current)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
