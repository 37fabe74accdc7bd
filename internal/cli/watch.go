package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is how long Watch waits after the last file event
// before rendering again.
var DebounceInterval = 100 * time.Millisecond

// Watch renders the tree at path, then renders again whenever the tree file
// or a grammar file changes, until ctx is done. Render errors are reported
// on w and the watch goes on.
func Watch(ctx context.Context, w io.Writer, path string, opts Options) error {
	if path == "-" {
		return fmt.Errorf("cannot watch stdin")
	}
	logger := createLogger(opts.Debug)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files instead of writing them, so the parent
	// directories are watched and events filtered by name.
	targets := map[string]bool{}
	for _, p := range watchedFiles(path, opts) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch path: %w", err)
		}
	}

	render := func() {
		if err := Render(ctx, w, path, opts); err != nil {
			fmt.Fprintf(w, ">>> Error: %v\n", err)
		}
	}

	logger.Info("Starting Watcher", "path", path)
	render()
	fmt.Fprintln(w, ">>> Waiting for changes...")

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		changed string
	)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping watcher", "reason", ctx.Err())
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			abs, _ := filepath.Abs(event.Name)
			if !targets[abs] || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("File event detected", "path", event.Name, "op", event.Op.String())
			changed = event.Name
			if timer == nil {
				timer = time.NewTimer(DebounceInterval)
			} else {
				timer.Reset(DebounceInterval)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			fmt.Fprintf(w, ">>> Change detected in '%s'.\n", changed)
			render()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("File watcher error", "err", err)
		}
	}
}

// watchedFiles returns the tree file and the grammar files the render
// depends on.
func watchedFiles(path string, opts Options) []string {
	files := []string{path}
	if info, err := os.Stat(opts.Grammar); err == nil && !info.IsDir() {
		files = append(files, opts.Grammar)
	}
	if opts.Grammars != "" {
		entries, _ := os.ReadDir(opts.Grammars)
		for _, entry := range entries {
			if !entry.IsDir() {
				files = append(files, filepath.Join(opts.Grammars, entry.Name()))
			}
		}
	}
	return files
}
