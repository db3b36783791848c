package git

import (
	"fmt"
	"strings"
)

// commitFormat separates fields with the ASCII unit separator so subjects may contain any
// printable character.
const commitFormat = "--format=%H%x1f%h%x1f%an%x1f%at%x1f%s"

func (g *gitCLI) HeadBranch() (string, bool, error) {
	out, err := g.runGitCommand([]string{"symbolic-ref", "-q", "--short", "HEAD"}, true, "git symbolic-ref")
	if err != nil {
		return "", false, err
	}
	name := strings.TrimSpace(out)
	if name == "" {
		return "", false, nil
	}
	return name, true, nil
}

func (g *gitCLI) ListRefs() ([]Ref, error) {
	out, err := g.runGitCommand([]string{"--no-pager", "show-ref"}, true, "git show-ref")
	if err != nil {
		return nil, err
	}
	return parseRefsFromShowRef(out)
}

func (g *gitCLI) RemoteURLs() (map[string]string, error) {
	out, err := g.runGitCommand(
		[]string{"config", "--get-regexp", `^remote\..*\.url$`},
		true,
		"git config",
	)
	if err != nil {
		return nil, err
	}
	return parseRemoteURLs(out)
}

func (g *gitCLI) TrackingConfig() (map[string]Tracking, error) {
	out, err := g.runGitCommand(
		[]string{"config", "--get-regexp", `^branch\..*\.(remote|merge)$`},
		true,
		"git config",
	)
	if err != nil {
		return nil, err
	}
	return parseTrackingConfig(out)
}

// logArgs lists base..tip one line per commit. User settings such as log.showSignature
// would otherwise add lines parseLog rejects.
func logArgs(base, tip string) []string {
	return []string{
		"--no-pager", "log",
		"--no-color", "--no-show-signature", "--no-notes", "--no-decorate",
		commitFormat, base + ".." + tip, "--",
	}
}

func (g *gitCLI) CommitsBetween(base, tip string) ([]Commit, error) {
	base = strings.TrimSpace(base)
	tip = strings.TrimSpace(tip)
	if base == "" || tip == "" {
		return nil, fmt.Errorf("commit range not specified")
	}
	out, err := g.runGitCommand(logArgs(base, tip), false, "git log")
	if err != nil {
		return nil, err
	}
	commits, err := parseLog(out)
	if err != nil {
		return nil, fmt.Errorf("parse git log %s..%s: %w", base, tip, err)
	}
	return commits, nil
}

func (g *gitCLI) LocalChangesStatus() (LocalChanges, error) {
	out, err := g.runGitCommand([]string{"status", "--porcelain=v2"}, false, "git status")
	if err != nil {
		return LocalChanges{}, err
	}
	res, err := parseStatusPorcelainV2(strings.NewReader(out))
	if err != nil {
		return res, fmt.Errorf("parse git status: %w", err)
	}
	return res, nil
}
