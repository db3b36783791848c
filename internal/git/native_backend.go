package git

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

type nativeRepo struct {
	*gitlib.Repository
	path   string
	gitDir string
}

func openNative(repoPath string) (*nativeRepo, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	n := &nativeRepo{Repository: repo, path: abs}
	if wt, err := repo.Worktree(); err == nil {
		n.path = wt.Filesystem.Root()
	}
	if fs, ok := repo.Storer.(*filesystem.Storage); ok {
		n.gitDir = fs.Filesystem().Root()
	} else {
		n.gitDir = filepath.Join(n.path, gitlib.GitDirName)
	}
	return n, nil
}

func (n *nativeRepo) RepoPath() string {
	return n.path
}

func (n *nativeRepo) GitDir() string {
	return n.gitDir
}

func (n *nativeRepo) HeadBranch() (string, bool, error) {
	head, err := n.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", false, fmt.Errorf("resolve HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", false, nil
	}
	return head.Target().Short(), true, nil
}

func (n *nativeRepo) ListRefs() ([]Ref, error) {
	iter, err := n.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer iter.Close()
	var refs []Ref
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		switch {
		case name.IsBranch():
			refs = append(refs, Ref{Hash: ref.Hash().String(), Kind: RefKindBranch, Name: name.Short()})
		case name.IsRemote():
			short := ShortRefName(name.String())
			if strings.HasSuffix(short, "/HEAD") {
				return nil
			}
			refs = append(refs, Ref{Hash: ref.Hash().String(), Kind: RefKindRemoteBranch, Name: short})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	return refs, nil
}

func (n *nativeRepo) RemoteURLs() (map[string]string, error) {
	cfg, err := n.Config()
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	urls := make(map[string]string, len(cfg.Remotes))
	for name, remote := range cfg.Remotes {
		if len(remote.URLs) == 0 {
			continue
		}
		urls[name] = remote.URLs[0]
	}
	return urls, nil
}

func (n *nativeRepo) TrackingConfig() (map[string]Tracking, error) {
	cfg, err := n.Config()
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	tracking := make(map[string]Tracking, len(cfg.Branches))
	for name, branch := range cfg.Branches {
		if branch.Remote == "" && branch.Merge == "" {
			continue
		}
		tracking[name] = Tracking{Remote: branch.Remote, Merge: branch.Merge.String()}
	}
	return tracking, nil
}

func (n *nativeRepo) resolveCommit(rev string) (*object.Commit, error) {
	hash, err := n.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rev, err)
	}
	commit, err := n.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", rev, err)
	}
	return commit, nil
}

func (n *nativeRepo) CommitsBetween(base, tip string) ([]Commit, error) {
	base = strings.TrimSpace(base)
	tip = strings.TrimSpace(tip)
	if base == "" || tip == "" {
		return nil, fmt.Errorf("commit range not specified")
	}
	baseCommit, err := n.resolveCommit(base)
	if err != nil {
		return nil, err
	}
	tipCommit, err := n.resolveCommit(tip)
	if err != nil {
		return nil, err
	}

	excluded := map[plumbing.Hash]bool{}
	err = object.NewCommitPreorderIter(baseCommit, nil, nil).ForEach(func(c *object.Commit) error {
		excluded[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", base, err)
	}

	var found []*object.Commit
	err = object.NewCommitPreorderIter(tipCommit, excluded, nil).ForEach(func(c *object.Commit) error {
		found = append(found, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", tip, err)
	}
	// git log orders by committer date, newest first.
	slices.SortStableFunc(found, func(a, b *object.Commit) int {
		return b.Committer.When.Compare(a.Committer.When)
	})

	commits := make([]Commit, 0, len(found))
	for _, c := range found {
		hash := c.Hash.String()
		commits = append(commits, Commit{
			Hash:      hash,
			ShortHash: shortHash(hash),
			Author:    Signature{Name: c.Author.Name, When: c.Author.When},
			Subject:   subjectLine(c.Message),
		})
	}
	return commits, nil
}

func (n *nativeRepo) LocalChangesStatus() (LocalChanges, error) {
	var res LocalChanges
	wt, err := n.Worktree()
	if err != nil {
		return res, fmt.Errorf("open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return res, fmt.Errorf("worktree status: %w", err)
	}
	for _, st := range status {
		switch {
		case st.Staging == gitlib.UpdatedButUnmerged || st.Worktree == gitlib.UpdatedButUnmerged:
			res.Conflicted++
		case st.Worktree == gitlib.Untracked:
			res.Untracked++
		default:
			if st.Staging != gitlib.Unmodified {
				res.Staged++
			}
			if st.Worktree != gitlib.Unmodified {
				res.Unstaged++
			}
		}
	}
	return res, nil
}
