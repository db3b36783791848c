package git

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

func nonEmptyLines(out string) []string {
	var lines []string
	for _, rawLine := range strings.Split(out, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseRefsFromShowRef keeps local and remote-tracking branches. Symbolic remote HEADs
// (origin/HEAD) are not branches and are skipped.
func parseRefsFromShowRef(out string) ([]Ref, error) {
	var refs []Ref
	for _, line := range nonEmptyLines(out) {
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("unexpected show-ref output line: %q", line)
		}
		hash, refName := parts[0], parts[1]
		switch {
		case strings.HasPrefix(refName, headsPrefix):
			short := strings.TrimPrefix(refName, headsPrefix)
			if short == "" {
				continue
			}
			refs = append(refs, Ref{Hash: hash, Kind: RefKindBranch, Name: short})
		case strings.HasPrefix(refName, remotesPrefix):
			short := strings.TrimPrefix(refName, remotesPrefix)
			if short == "" || strings.HasSuffix(short, "/HEAD") {
				continue
			}
			refs = append(refs, Ref{Hash: hash, Kind: RefKindRemoteBranch, Name: short})
		}
	}
	return refs, nil
}

// splitConfigLine splits "section.<subsection>.key value" as printed by
// git config --get-regexp. The subsection may itself contain dots.
func splitConfigLine(line, section string) (sub, key, value string, err error) {
	name, value, _ := strings.Cut(line, " ")
	rest, ok := strings.CutPrefix(name, section+".")
	if !ok {
		return "", "", "", fmt.Errorf("unexpected config line: %q", line)
	}
	idx := strings.LastIndex(rest, ".")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", "", fmt.Errorf("unexpected config line: %q", line)
	}
	return rest[:idx], rest[idx+1:], strings.TrimSpace(value), nil
}

func parseRemoteURLs(out string) (map[string]string, error) {
	urls := map[string]string{}
	for _, line := range nonEmptyLines(out) {
		remote, key, value, err := splitConfigLine(line, "remote")
		if err != nil {
			return nil, err
		}
		if key != "url" {
			continue
		}
		// git uses the first url when a remote lists several.
		if _, seen := urls[remote]; !seen {
			urls[remote] = value
		}
	}
	return urls, nil
}

func parseTrackingConfig(out string) (map[string]Tracking, error) {
	tracking := map[string]Tracking{}
	for _, line := range nonEmptyLines(out) {
		branch, key, value, err := splitConfigLine(line, "branch")
		if err != nil {
			return nil, err
		}
		t := tracking[branch]
		switch key {
		case "remote":
			t.Remote = value
		case "merge":
			t.Merge = value
		default:
			continue
		}
		tracking[branch] = t
	}
	return tracking, nil
}

const commitFields = 5

func parseLog(out string) ([]Commit, error) {
	var commits []Commit
	for _, line := range nonEmptyLines(out) {
		fields := strings.Split(line, "\x1f")
		if len(fields) != commitFields {
			return nil, fmt.Errorf("unexpected log line: %q", line)
		}
		unix, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid author date %q: %w", fields[3], err)
		}
		commits = append(commits, Commit{
			Hash:      fields[0],
			ShortHash: fields[1],
			Author:    Signature{Name: fields[2], When: time.Unix(unix, 0)},
			Subject:   fields[4],
		})
	}
	return commits, nil
}

func parseStatusPorcelainV2(r io.Reader) (LocalChanges, error) {
	var res LocalChanges
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 2 {
			continue
		}
		switch line[0] {
		case '1', '2':
			if len(line) < 4 {
				continue
			}
			if line[2] != '.' {
				res.Staged++
			}
			if line[3] != '.' {
				res.Unstaged++
			}
		case 'u':
			res.Conflicted++
		case '?':
			res.Untracked++
		default:
			// '#' headers, '!' ignored
		}
	}
	return res, scanner.Err()
}
