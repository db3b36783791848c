package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thiagokokada/git-bstat/internal/buildinfo"
	"github.com/thiagokokada/git-bstat/internal/config"
	"github.com/thiagokokada/git-bstat/internal/git"
	"github.com/thiagokokada/git-bstat/internal/report"
	"github.com/thiagokokada/git-bstat/internal/theme"
	"github.com/thiagokokada/git-bstat/internal/watch"
)

type options struct {
	long       bool
	all        bool
	dumpConfig bool
	diff       bool
	repo       string
	backend    *choiceValue
	color      *choiceValue
	mode       *choiceValue
	watch      bool
	verbose    bool
}

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := options{
		backend: newChoice(git.BackendCLI.String(), git.BackendCLI.String(), git.BackendNative.String()),
		color:   newChoice("auto", "auto", "always", "never"),
		mode:    newChoice(theme.Auto.String(), theme.Auto.String(), theme.Light.String(), theme.Dark.String()),
	}
	root := &cobra.Command{
		Use:   "git-bstat [flags] [branch...]",
		Short: "Summarize how branches relate to their upstream and to version branches",
		Long: `git-bstat compares a branch with its remote-tracking branch and with the
complementary set of branches: a feature branch against every version branch,
a version branch against every feature branch.

Version branches and ignored branches come from .git-bstat.yml, looked up from
the repository upward, layered over $XDG_CONFIG_HOME/git-bstat/config.yml.`,
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), opts, args, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("git-bstat {{.Version}}\n")

	flags := root.Flags()
	flags.BoolVarP(&opts.long, "long", "l", false, "include author and date for each commit")
	flags.BoolVarP(&opts.all, "all", "a", false, "do not truncate commit lists")
	flags.BoolVar(&opts.dumpConfig, "dump-config", false, "print the effective configuration and exit")
	flags.BoolVar(&opts.diff, "diff", false, "with --dump-config, print a diff against the defaults")
	flags.StringVarP(&opts.repo, "repo", "C", ".", "path inside the repository")
	choiceFlag(flags, "backend", "git backend", opts.backend)
	choiceFlag(flags, "color", "colorize output", opts.color)
	choiceFlag(flags, "mode", "color palette", opts.mode)
	flags.BoolVarP(&opts.watch, "watch", "w", false, "re-render when the repository changes")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	return root
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTerminal(w)
}

func execute(ctx context.Context, opts options, names []string, stdout, stderr io.Writer) error {
	setupLogging(stderr, opts.verbose)

	color := useColor(opts.color.String(), stdout)
	palette := theme.PaletteFor(theme.PreferenceFromString(opts.mode.String()))

	start, err := filepath.Abs(opts.repo)
	if err != nil {
		return err
	}
	cfg, sources, err := config.Resolve(start)
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}
	slog.Debug("configuration resolved", slog.Any("sources", sources))

	if opts.dumpConfig || opts.diff {
		return dumpConfig(stdout, cfg, opts.diff, color, palette)
	}

	kind, err := git.ParseBackendKind(opts.backend.String())
	if err != nil {
		return err
	}
	svc, err := git.Open(start, kind)
	if err != nil {
		return err
	}

	renderer := report.NewRenderer(stdout, report.Options{
		Long:       opts.long,
		All:        opts.all,
		MaxCommits: cfg.MaxCommits,
		Color:      color,
		Palette:    palette,
	})
	if !opts.watch {
		return renderOnce(svc, cfg, names, renderer)
	}
	return watchLoop(ctx, svc, cfg, names, renderer, stdout)
}

func renderOnce(svc *git.Service, cfg config.Config, names []string, renderer *report.Renderer) error {
	reports, err := report.Collect(svc, cfg, names)
	if err != nil {
		return err
	}
	return renderer.RenderAll(reports)
}

func watchLoop(ctx context.Context, svc *git.Service, cfg config.Config, names []string, renderer *report.Renderer, stdout io.Writer) error {
	out := termenv.NewOutput(stdout)
	tty := isTerminal(stdout)
	clearScreen := func() {
		if tty {
			out.ClearScreen()
		}
	}
	clearScreen()
	if err := renderOnce(svc, cfg, names, renderer); err != nil {
		return err
	}
	refresh := func() {
		clearScreen()
		// Refs are briefly inconsistent during rebases and fetches; keep watching.
		if err := renderOnce(svc, cfg, names, renderer); err != nil {
			slog.Error("render", slog.Any("error", err))
		}
	}
	paths := watch.Paths(svc.RepoPath(), svc.GitDir())
	return watch.Run(ctx, paths, watch.DefaultDelay, refresh)
}

func dumpConfig(w io.Writer, cfg config.Config, diff, color bool, palette theme.Palette) error {
	var (
		text  string
		lexer = "yaml"
		err   error
	)
	if diff {
		text, err = config.Diff(config.Default(), cfg)
		lexer = "diff"
	} else {
		text, err = config.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	if color && text != "" {
		return config.Highlight(w, text, lexer, palette.ChromaStyle)
	}
	_, err = io.WriteString(w, text)
	return err
}

// errConfig marks failures to read or parse configuration files.
var errConfig = errors.New("configuration error")
