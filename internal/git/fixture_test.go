package git

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// fixture builds small repositories with go-git so tests do not depend on a git binary.
type fixture struct {
	t     *testing.T
	dir   string
	repo  *gitlib.Repository
	wt    *gitlib.Worktree
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	repo, err := gitlib.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &fixture{
		t:     t,
		dir:   dir,
		repo:  repo,
		wt:    wt,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) writeFile(name, content string) {
	f.t.Helper()
	if err := os.WriteFile(filepath.Join(f.dir, name), []byte(content), 0o644); err != nil {
		f.t.Fatalf("write %s: %v", name, err)
	}
}

// commit writes a file named after msg and commits it on the checked out branch.
func (f *fixture) commit(msg string) plumbing.Hash {
	f.t.Helper()
	name := msg + ".txt"
	f.writeFile(name, msg+"\n")
	if _, err := f.wt.Add(name); err != nil {
		f.t.Fatalf("add %s: %v", name, err)
	}
	f.clock = f.clock.Add(time.Minute)
	sig := &object.Signature{Name: "Alice", Email: "alice@example.com", When: f.clock}
	hash, err := f.wt.Commit(msg, &gitlib.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		f.t.Fatalf("commit %s: %v", msg, err)
	}
	return hash
}

func (f *fixture) head() string {
	f.t.Helper()
	ref, err := f.repo.Head()
	if err != nil {
		f.t.Fatalf("Head: %v", err)
	}
	return ref.Name().Short()
}

func (f *fixture) setRef(name plumbing.ReferenceName, hash plumbing.Hash) {
	f.t.Helper()
	if err := f.repo.Storer.SetReference(plumbing.NewHashReference(name, hash)); err != nil {
		f.t.Fatalf("set %s: %v", name, err)
	}
}

func (f *fixture) branch(name string, hash plumbing.Hash) {
	f.t.Helper()
	f.setRef(plumbing.NewBranchReferenceName(name), hash)
}

func (f *fixture) remoteBranch(remote, name string, hash plumbing.Hash) {
	f.t.Helper()
	f.setRef(plumbing.NewRemoteReferenceName(remote, name), hash)
}

func (f *fixture) checkout(name string) {
	f.t.Helper()
	err := f.wt.Checkout(&gitlib.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(name)})
	if err != nil {
		f.t.Fatalf("checkout %s: %v", name, err)
	}
}

func (f *fixture) track(branch, remote, url string) {
	f.t.Helper()
	_, err := f.repo.CreateRemote(&config.RemoteConfig{Name: remote, URLs: []string{url}})
	if err != nil && !errors.Is(err, gitlib.ErrRemoteExists) {
		f.t.Fatalf("create remote %s: %v", remote, err)
	}
	err = f.repo.CreateBranch(&config.Branch{
		Name:   branch,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(branch),
	})
	if err != nil {
		f.t.Fatalf("track %s: %v", branch, err)
	}
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	if err := ensureMinGitVersion(); err != nil {
		t.Skipf("git unusable: %v", err)
	}
}

// openBackends returns every backend that can read dir.
func openBackends(t *testing.T, dir string) map[string]Backend {
	t.Helper()
	backends := map[string]Backend{}
	native, err := openNative(dir)
	if err != nil {
		t.Fatalf("openNative: %v", err)
	}
	backends[BackendNative.String()] = native
	if _, err := exec.LookPath("git"); err == nil && ensureMinGitVersion() == nil {
		cli, err := openCLI(dir)
		if err != nil {
			t.Fatalf("openCLI: %v", err)
		}
		backends[BackendCLI.String()] = cli
	}
	return backends
}
