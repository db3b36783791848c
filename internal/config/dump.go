package config

import (
	"bytes"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"
)

// Marshal renders cfg as a YAML document usable as a project config file.
func Marshal(cfg Config) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.normalized()); err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return buf.String(), nil
}

// Dump writes cfg as YAML. Resolving the output as a project file yields cfg again.
func Dump(w io.Writer, cfg Config) error {
	out, err := Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Diff returns a unified diff from base to cfg, empty when they render identically.
func Diff(base, cfg Config) (string, error) {
	a, err := Marshal(base)
	if err != nil {
		return "", err
	}
	b, err := Marshal(cfg)
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "defaults",
		ToFile:   "effective",
		Context:  3,
	})
}

// Highlight writes src with terminal colors using the given chroma lexer and style.
func Highlight(w io.Writer, src, lexer, style string) error {
	if err := quick.Highlight(w, src, lexer, "terminal256", style); err != nil {
		return fmt.Errorf("highlight %s: %w", lexer, err)
	}
	return nil
}
