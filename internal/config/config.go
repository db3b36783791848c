// Package config resolves git-bstat settings from built-in defaults, the user-global file and
// the nearest project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the project config file looked up from the working directory upwards.
	FileName = ".git-bstat.yml"
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "git-bstat"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yml"

	DefaultMaxCommits = 5
)

// ErrNotFound is returned by Find when no project config exists above the start directory.
var ErrNotFound = errors.New("config file not found")

// Config is the effective configuration.
type Config struct {
	VersionBranches StringList `yaml:"version_branches"`
	Ignore          StringList `yaml:"ignore"`
	MaxCommits      int        `yaml:"max_commits"`
}

// fileConfig mirrors Config with pointers so absent keys do not override lower layers.
type fileConfig struct {
	VersionBranches *StringList `yaml:"version_branches"`
	Ignore          *StringList `yaml:"ignore"`
	MaxCommits      *int        `yaml:"max_commits"`
}

// UnmarshalYAML treats an explicit null list as empty so a file can clear a list set by a
// lower layer. yaml.v3 leaves pointer fields nil for null values without consulting
// StringList, so nulls are handled on the mapping itself.
func (f *fileConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain fileConfig
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*f = fileConfig(p)
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode || value.Tag != "!!null" {
			continue
		}
		switch key.Value {
		case "version_branches":
			f.VersionBranches = &StringList{}
		case "ignore":
			f.Ignore = &StringList{}
		}
	}
	return nil
}

// StringList decodes either a YAML sequence or a single scalar.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = StringList(items)
		return nil
	default:
		return fmt.Errorf("line %d: expected a list of branch names", node.Line)
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		VersionBranches: StringList{"main", "master"},
		Ignore:          StringList{},
		MaxCommits:      DefaultMaxCommits,
	}
}

func (c Config) clone() Config {
	c.VersionBranches = slices.Clone(c.VersionBranches)
	c.Ignore = slices.Clone(c.Ignore)
	return c
}

func (c Config) normalized() Config {
	if c.VersionBranches == nil {
		c.VersionBranches = StringList{}
	}
	if c.Ignore == nil {
		c.Ignore = StringList{}
	}
	if c.MaxCommits < 0 {
		c.MaxCommits = 0
	}
	return c
}

func (c Config) merge(f fileConfig) Config {
	out := c.clone()
	if f.VersionBranches != nil {
		out.VersionBranches = slices.Clone(*f.VersionBranches)
	}
	if f.Ignore != nil {
		out.Ignore = slices.Clone(*f.Ignore)
	}
	if f.MaxCommits != nil {
		out.MaxCommits = *f.MaxCommits
	}
	return out.normalized()
}

// GlobalConfigPath returns the path to the user-global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/git-bstat/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// Find walks up from start and returns the path of the first project config file.
func Find(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for {
		candidate := filepath.Join(abs, FileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotFound
		}
		abs = parent
	}
}

func readFile(path string) (fileConfig, bool, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, false, nil
		}
		return fc, false, fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return fc, true, nil
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fc, true, nil
}

// LoadFile merges a single config file over base. A missing file leaves base unchanged.
func LoadFile(base Config, path string) (Config, bool, error) {
	fc, ok, err := readFile(path)
	if err != nil || !ok {
		return base.normalized(), false, err
	}
	return base.merge(fc), true, nil
}

// Resolve merges defaults, the global file and the nearest project file above start.
// It returns the effective config and the files that contributed to it, lowest priority first.
func Resolve(start string) (Config, []string, error) {
	cfg := Default()
	var sources []string

	if global := GlobalConfigPath(); global != "" {
		var (
			ok  bool
			err error
		)
		cfg, ok, err = LoadFile(cfg, global)
		if err != nil {
			return Config{}, nil, err
		}
		if ok {
			sources = append(sources, global)
		}
	}

	project, err := Find(start)
	switch {
	case errors.Is(err, ErrNotFound):
		return cfg, sources, nil
	case err != nil:
		return Config{}, nil, err
	}
	cfg, ok, err := LoadFile(cfg, project)
	if err != nil {
		return Config{}, nil, err
	}
	if ok {
		sources = append(sources, project)
	}
	return cfg, sources, nil
}
