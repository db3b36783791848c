// Package watch re-runs a callback when a repository changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/git-bstat/internal/debounce"
)

const DefaultDelay = 350 * time.Millisecond

// Paths returns the directories to watch: the work tree root, the git dir and every
// directory below refs/, since fsnotify does not recurse.
func Paths(root, gitDir string) []string {
	seen := map[string]struct{}{}
	add := func(p string) {
		if p == "" {
			return
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			seen[filepath.Clean(p)] = struct{}{}
		}
	}
	add(root)
	add(gitDir)
	if gitDir != "" {
		_ = filepath.WalkDir(filepath.Join(gitDir, "refs"), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				add(path)
			}
			return nil
		})
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func shouldIgnore(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".lock" || ext == ".ipc"
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return !shouldIgnore(ev.Name)
}

// Run calls onChange after every burst of changes under paths settles for delay.
// onChange runs on the caller's goroutine. Run returns nil when ctx is cancelled.
func Run(ctx context.Context, paths []string, delay time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			slog.Error("watcher close", slog.Any("error", err))
		}
	}()
	for _, path := range paths {
		slog.Debug("adding path to FS watcher", slog.String("path", path))
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	changed := make(chan struct{}, 1)
	d := debounce.New(delay, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if !relevant(ev) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			// New ref namespaces, e.g. the first branch under feature/.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						slog.Debug("watch new directory", slog.String("path", ev.Name), slog.Any("error", err))
					}
				}
			}
			d.Trigger()
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		case <-changed:
			onChange()
		}
	}
}
