package git

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

type gitCLI struct {
	path   string
	gitDir string
}

func openCLI(repoPath string) (*gitCLI, error) {
	if err := ensureMinGitVersion(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	tmp := &gitCLI{path: abs}
	out, err := tmp.runGitCommand(
		[]string{"rev-parse", "--show-toplevel", "--absolute-git-dir"},
		false,
		"git rev-parse",
	)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("open repository: unexpected git rev-parse output: %q", out)
	}
	return &gitCLI{
		path:   strings.TrimSpace(lines[0]),
		gitDir: strings.TrimSpace(lines[1]),
	}, nil
}

func (g *gitCLI) RepoPath() string {
	return g.path
}

func (g *gitCLI) GitDir() string {
	return g.gitDir
}

// runGitCommand runs git inside the repository and returns stdout. With allowExit1, an exit
// status of 1 with empty stderr is treated as "nothing found" and returns the (usually empty)
// output; git config --get-regexp and show-ref report empty results that way.
func (g *gitCLI) runGitCommand(args []string, allowExit1 bool, context string) (string, error) {
	if g.path == "" {
		return "", fmt.Errorf("repository root not set")
	}
	cmdArgs := append([]string{"-C", g.path}, args...)
	cmd := exec.Command("git", cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	start := time.Now()
	err := cmd.Run()
	slog.Debug("git command",
		slog.Any("args", args),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("ok", err == nil),
	)
	if err != nil {
		var exitErr *exec.ExitError
		if allowExit1 && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			return stdout.String(), nil
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("%s: %v: %s", context, err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%s: %w", context, err)
	}
	return stdout.String(), nil
}
