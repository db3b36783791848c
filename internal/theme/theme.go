// Package theme picks terminal colors for reports and highlighted config output.
package theme

import (
	"log/slog"
	"strings"

	darkmode "github.com/thiagokokada/dark-mode-go"
)

type Preference int

const (
	Auto Preference = iota
	Light
	Dark
)

func (p Preference) String() string {
	switch p {
	case Light:
		return "light"
	case Dark:
		return "dark"
	default:
		return "auto"
	}
}

func PreferenceFromString(raw string) Preference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case Dark.String():
		return Dark
	case Light.String():
		return Light
	default:
		return Auto
	}
}

// Palette holds hex colors for report elements and the chroma style for YAML output.
type Palette struct {
	Name        string
	Done        string
	Pending     string
	Warning     string
	Header      string
	Muted       string
	ChromaStyle string
}

var (
	LightPalette = Palette{
		Name:        "light",
		Done:        "#1a7f37",
		Pending:     "#9a6700",
		Warning:     "#cf222e",
		Header:      "#0550ae",
		Muted:       "#6e7781",
		ChromaStyle: "github",
	}
	DarkPalette = Palette{
		Name:        "dark",
		Done:        "#3fb950",
		Pending:     "#d29922",
		Warning:     "#f85149",
		Header:      "#79c0ff",
		Muted:       "#8b949e",
		ChromaStyle: "github-dark",
	}
	detectDarkMode = darkmode.IsDarkMode
)

func (p Palette) IsDark() bool {
	return p.Name == DarkPalette.Name
}

// PaletteFor resolves a preference; Auto asks the desktop environment and falls back to
// the light palette when detection fails.
func PaletteFor(pref Preference) Palette {
	switch pref {
	case Dark:
		return DarkPalette
	case Light:
		return LightPalette
	}
	if detectDarkMode != nil {
		dark, err := detectDarkMode()
		if err == nil {
			if dark {
				return DarkPalette
			}
			return LightPalette
		}
		slog.Debug("detect dark-mode", slog.Any("error", err))
	}
	return LightPalette
}
