package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// isolateGlobal points the global config at an empty temporary directory.
func isolateGlobal(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, GlobalConfigDir, GlobalConfigFile)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if !reflect.DeepEqual([]string(cfg.VersionBranches), []string{"main", "master"}) {
		t.Errorf("VersionBranches = %v", cfg.VersionBranches)
	}
	if cfg.Ignore == nil || len(cfg.Ignore) != 0 {
		t.Errorf("Ignore = %#v, want empty non-nil", cfg.Ignore)
	}
	if cfg.MaxCommits != DefaultMaxCommits {
		t.Errorf("MaxCommits = %d", cfg.MaxCommits)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	want := filepath.Join("/xdg", "git-bstat", "config.yml")
	if got := GlobalConfigPath(); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestFind(t *testing.T) {
	tmpDir := t.TempDir()
	repoDir := filepath.Join(tmpDir, "repo")
	nestedDir := filepath.Join(repoDir, "src", "pkg")
	if err := os.MkdirAll(nestedDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := filepath.Join(repoDir, FileName)
	writeFile(t, want, "max_commits: 3\n")

	for _, start := range []string{nestedDir, repoDir} {
		got, err := Find(start)
		if err != nil {
			t.Fatalf("Find(%q) error = %v", start, err)
		}
		if got != want {
			t.Errorf("Find(%q) = %q, want %q", start, got, want)
		}
	}
}

func TestFind_DirectoryIsNotAConfig(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, FileName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := Find(tmpDir)
	if err == nil && got == filepath.Join(tmpDir, FileName) {
		t.Fatalf("Find() returned a directory: %q", got)
	}
}

func TestResolve_NoFiles(t *testing.T) {
	isolateGlobal(t)

	cfg, sources, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("sources = %v, want none", sources)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Resolve() = %+v, want defaults", cfg)
	}
}

func TestResolve_LayersOverrideOnlyPresentKeys(t *testing.T) {
	global := isolateGlobal(t)
	writeFile(t, global, "ignore: [scratch]\nmax_commits: 10\n")

	root := t.TempDir()
	project := filepath.Join(root, FileName)
	writeFile(t, project, "version_branches:\n  - develop\n  - release\nmax_commits: 2\n")

	cfg, sources, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := Config{
		VersionBranches: StringList{"develop", "release"},
		Ignore:          StringList{"scratch"},
		MaxCommits:      2,
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Resolve() = %+v, want %+v", cfg, want)
	}
	if !reflect.DeepEqual(sources, []string{global, project}) {
		t.Errorf("sources = %v", sources)
	}
}

func TestResolve_ScalarCoercedToList(t *testing.T) {
	isolateGlobal(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "version_branches: trunk\nignore: wip\n")

	cfg, _, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !reflect.DeepEqual(cfg.VersionBranches, StringList{"trunk"}) || !reflect.DeepEqual(cfg.Ignore, StringList{"wip"}) {
		t.Errorf("Resolve() = %+v", cfg)
	}
}

func TestResolve_NullClearsList(t *testing.T) {
	global := isolateGlobal(t)
	writeFile(t, global, "ignore: [scratch]\n")
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "version_branches:\nignore: ~\nmax_commits: null\n")

	cfg, _, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := Config{VersionBranches: StringList{}, Ignore: StringList{}, MaxCommits: DefaultMaxCommits}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Resolve() = %#v, want %#v", cfg, want)
	}
}

func TestResolve_EmptyFileKeepsDefaults(t *testing.T) {
	isolateGlobal(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "\n")

	cfg, sources, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Resolve() = %+v, want defaults", cfg)
	}
	if len(sources) != 1 {
		t.Errorf("sources = %v, want the empty project file", sources)
	}
}

func TestResolve_NegativeMaxCommitsClamped(t *testing.T) {
	isolateGlobal(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "max_commits: -4\n")

	cfg, _, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.MaxCommits != 0 {
		t.Errorf("MaxCommits = %d, want 0", cfg.MaxCommits)
	}
}

func TestResolve_InvalidFile(t *testing.T) {
	isolateGlobal(t)

	tests := map[string]string{
		"syntax":   "version_branches: [main\n",
		"type":     "max_commits: lots\n",
		"map_list": "ignore:\n  key: value\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, filepath.Join(root, FileName), content)
			if _, _, err := Resolve(root); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDump_RoundTrip(t *testing.T) {
	isolateGlobal(t)

	configs := map[string]Config{
		"defaults": Default(),
		"custom": {
			VersionBranches: StringList{"develop", "release/2.x"},
			Ignore:          StringList{"tmp", "wip: experiments"},
			MaxCommits:      12,
		},
		"empty_lists": {
			VersionBranches: StringList{},
			Ignore:          StringList{},
			MaxCommits:      0,
		},
	}
	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Dump(&buf, cfg); err != nil {
				t.Fatalf("Dump() error = %v", err)
			}
			root := t.TempDir()
			writeFile(t, filepath.Join(root, FileName), buf.String())

			got, _, err := Resolve(root)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !reflect.DeepEqual(got, cfg) {
				t.Errorf("round trip = %+v, want %+v\nyaml:\n%s", got, cfg, buf.String())
			}
		})
	}
}

func TestDiff(t *testing.T) {
	same, err := Diff(Default(), Default())
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if same != "" {
		t.Errorf("Diff(defaults, defaults) = %q, want empty", same)
	}

	cfg := Default()
	cfg.MaxCommits = 9
	diff, err := Diff(Default(), cfg)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	for _, want := range []string{"--- defaults", "+++ effective", "-max_commits: 5", "+max_commits: 9"} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff missing %q:\n%s", want, diff)
		}
	}
}

func TestHighlight(t *testing.T) {
	var buf bytes.Buffer
	if err := Highlight(&buf, "max_commits: 5\n", "yaml", "github"); err != nil {
		t.Fatalf("Highlight() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "max_commits") || !strings.Contains(out, "\x1b[") {
		t.Errorf("expected escape codes around content, got %q", out)
	}
}

func TestFind_NotFound(t *testing.T) {
	_, err := Find(t.TempDir())
	if err != nil && !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find() error = %v, want ErrNotFound", err)
	}
}
