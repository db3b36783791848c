package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/thiagokokada/git-bstat/internal/git"
	"github.com/thiagokokada/git-bstat/internal/theme"
)

const (
	itemIndent   = "  "
	commitIndent = "      "
	dateLayout   = "2006-01-02"
)

type Options struct {
	Long       bool
	All        bool
	MaxCommits int
	Color      bool
	Palette    theme.Palette
}

type styles struct {
	header  lipgloss.Style
	done    lipgloss.Style
	pending lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, p theme.Palette) styles {
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Header)),
		done:    r.NewStyle().Foreground(lipgloss.Color(p.Done)),
		pending: r.NewStyle().Foreground(lipgloss.Color(p.Pending)),
		warning: r.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Warning)),
		muted:   r.NewStyle().Foreground(lipgloss.Color(p.Muted)),
	}
}

// Renderer writes branch reports as checklists.
type Renderer struct {
	w      io.Writer
	opts   Options
	styles styles
}

func NewRenderer(w io.Writer, opts Options) *Renderer {
	lr := lipgloss.NewRenderer(w)
	if opts.Color {
		lr.SetColorProfile(termenv.TrueColor)
		lr.SetHasDarkBackground(opts.Palette.IsDark())
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}
	if opts.MaxCommits < 0 {
		opts.MaxCommits = 0
	}
	return &Renderer{w: w, opts: opts, styles: newStyles(lr, opts.Palette)}
}

// RenderAll writes reports separated by blank lines.
func (r *Renderer) RenderAll(reports []BranchReport) error {
	for i, rep := range reports {
		if i > 0 {
			if _, err := io.WriteString(r.w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(rep); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) Render(rep BranchReport) error {
	var b strings.Builder
	r.writeHeader(&b, rep)
	r.writeRemote(&b, rep)
	r.writeRelated(&b, rep)
	r.writeLocal(&b, rep)
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) writeHeader(b *strings.Builder, rep BranchReport) {
	b.WriteString(r.styles.header.Render(rep.Branch.Name))
	b.WriteString(r.styles.muted.Render(" (" + rep.Kind.String() + " branch)"))
	if rep.Current {
		b.WriteString(r.styles.muted.Render(" *"))
	}
	if rep.Branch.Remote != "" && rep.Branch.Remote != "." {
		remote := rep.Branch.Remote
		if rep.Branch.RemoteURL != "" {
			remote += " " + rep.Branch.RemoteURL
		}
		b.WriteString(r.styles.muted.Render(" " + remote))
	}
	b.WriteString("\n")
}

func (r *Renderer) check(b *strings.Builder, done bool, text string) {
	b.WriteString(itemIndent)
	if done {
		b.WriteString(r.styles.done.Render("[x]"))
	} else {
		b.WriteString(r.styles.pending.Render("[ ]"))
	}
	b.WriteString(" " + text + "\n")
}

func (r *Renderer) warn(b *strings.Builder, text string) {
	b.WriteString(itemIndent)
	b.WriteString(r.styles.warning.Render("!"))
	b.WriteString(" " + text + "\n")
}

func (r *Renderer) writeRemote(b *strings.Builder, rep BranchReport) {
	if !rep.Branch.HasRemote() {
		return
	}
	if rep.Branch.Gone || rep.Remote == nil {
		r.check(b, false, rep.Branch.RemoteName()+" is gone")
		return
	}
	cmp := rep.Remote
	if cmp.InSync() {
		r.check(b, true, "in sync with "+cmp.Other)
		return
	}
	if len(cmp.Ahead) > 0 {
		r.check(b, false, fmt.Sprintf("%s to push to %s", commits(len(cmp.Ahead)), cmp.Other))
		r.writeCommits(b, cmp.Ahead)
	}
	if len(cmp.Behind) > 0 {
		r.check(b, false, fmt.Sprintf("%s to pull from %s", commits(len(cmp.Behind)), cmp.Other))
		r.writeCommits(b, cmp.Behind)
	}
	if cmp.Diverged() {
		r.warn(b, fmt.Sprintf("%s and %s have diverged", rep.Branch.Name, cmp.Other))
	}
}

func (r *Renderer) writeRelated(b *strings.Builder, rep BranchReport) {
	for _, cmp := range rep.Related {
		if rep.Kind == Version {
			r.writeFeatureOf(b, rep.Branch.Name, cmp)
		} else {
			r.writeVersionOf(b, cmp)
		}
	}
}

// writeVersionOf reports a feature branch against version branch cmp.Other.
func (r *Renderer) writeVersionOf(b *strings.Builder, cmp Comparison) {
	newer := ""
	if len(cmp.Behind) > 0 {
		newer = r.styles.muted.Render(fmt.Sprintf(" (%s has %s)", cmp.Other, plural(len(cmp.Behind), "newer commit", "newer commits")))
	}
	switch {
	case cmp.InSync():
		r.check(b, true, "in sync with "+cmp.Other)
	case len(cmp.Ahead) == 0:
		r.check(b, true, "merged into "+cmp.Other+newer)
	default:
		r.check(b, false, fmt.Sprintf("%s not merged into %s%s", commits(len(cmp.Ahead)), cmp.Other, newer))
		r.writeCommits(b, cmp.Ahead)
	}
}

// writeFeatureOf reports feature branch cmp.Other from its own side against version branch name.
func (r *Renderer) writeFeatureOf(b *strings.Builder, name string, cmp Comparison) {
	newer := ""
	if len(cmp.Ahead) > 0 {
		newer = r.styles.muted.Render(fmt.Sprintf(" (%s has %s)", name, plural(len(cmp.Ahead), "newer commit", "newer commits")))
	}
	switch {
	case cmp.InSync():
		r.check(b, true, cmp.Other+" in sync with "+name)
	case len(cmp.Behind) == 0:
		r.check(b, true, cmp.Other+" merged into "+name+newer)
	default:
		r.check(b, false, fmt.Sprintf("%s: %s not merged into %s%s", cmp.Other, commits(len(cmp.Behind)), name, newer))
		r.writeCommits(b, cmp.Behind)
	}
}

func (r *Renderer) writeCommits(b *strings.Builder, list []git.Commit) {
	shown := visibleCommits(len(list), r.opts.MaxCommits, r.opts.All)
	for _, c := range list[:shown] {
		b.WriteString(commitIndent)
		b.WriteString(r.styles.muted.Render(c.ShortHash))
		if r.opts.Long {
			b.WriteString(" " + c.Author.When.Format(dateLayout) + " " + c.Author.Name + ":")
		}
		b.WriteString(" " + c.Subject + "\n")
	}
	// With a zero limit a lone commit is already counted on the line above.
	if hidden := len(list) - shown; hidden > 1 {
		b.WriteString(commitIndent)
		b.WriteString(r.styles.muted.Render(fmt.Sprintf("... and %d more", hidden)))
		b.WriteString("\n")
	}
}

func (r *Renderer) writeLocal(b *strings.Builder, rep BranchReport) {
	if rep.Local == nil {
		return
	}
	local := *rep.Local
	if local.Clean() {
		r.check(b, true, "working tree clean")
		return
	}
	var parts []string
	if local.Staged > 0 {
		parts = append(parts, plural(local.Staged, "staged change", "staged changes"))
	}
	if local.Unstaged > 0 {
		parts = append(parts, plural(local.Unstaged, "unstaged change", "unstaged changes"))
	}
	if local.Untracked > 0 {
		parts = append(parts, plural(local.Untracked, "untracked file", "untracked files"))
	}
	if len(parts) > 0 {
		r.check(b, false, strings.Join(parts, ", "))
	}
	if local.Conflicted > 0 {
		r.warn(b, plural(local.Conflicted, "conflicted file", "conflicted files")+" to resolve")
	}
}
