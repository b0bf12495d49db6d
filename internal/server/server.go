// Package server runs the development server: it serves the built site,
// rebuilds when sources change and tells open browsers to reload.
package server

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/verkaro/nibl/internal/builder"
	"github.com/verkaro/nibl/internal/logging"
)

// BuildFunc rebuilds the site.
type BuildFunc func(builder.BuildOptions) error

// Options configures Run.
type Options struct {
	Port int
	// PublicDir is served over HTTP.
	PublicDir string
	// WatchPaths are the directories and files that trigger a rebuild.
	WatchPaths []string
	// Debounce is how long the watcher waits for changes to settle.
	Debounce time.Duration
	// Out receives the startup banner. Defaults to os.Stdout.
	Out io.Writer
}

// Run does a clean build, then serves PublicDir and rebuilds on change
// until ctx is cancelled.
func Run(ctx context.Context, opts Options, build BuildFunc, buildOpts builder.BuildOptions) error {
	logger := logging.GetLogger("server")
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	buildOpts.CleanDestination = true
	if err := build(buildOpts); err != nil {
		return errors.Wrap(err, "initial build failed")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "could not create file watcher")
	}
	defer watcher.Close()
	if err := watchAll(watcher, opts.WatchPaths, logger); err != nil {
		return err
	}

	hub := newHub(logger)
	buildOpts.CleanDestination = false
	go watchForChanges(ctx, watcher, opts.Debounce, func() {
		if err := build(buildOpts); err != nil {
			logger.Error().Err(err).Msg("Rebuild failed")
			return
		}
		logger.Info().Msg("Site rebuilt, reloading browsers")
		hub.broadcast([]byte("reload"))
	}, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/", liveReload(http.FileServer(http.Dir(opts.PublicDir))))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(opts.Out, "Serving site on http://localhost%s\n", srv.Addr)
	fmt.Fprintln(opts.Out, "Press Ctrl+C to stop")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// watchAll adds every directory under the given paths. Files are watched
// through their parent directory so editors that save by rename still
// trigger events. Missing paths are skipped.
func watchAll(watcher *fsnotify.Watcher, paths []string, logger zerolog.Logger) error {
	watched := make(map[string]bool)
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if watched[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("Could not watch directory")
			return
		}
		watched[dir] = true
		logger.Debug().Str("dir", dir).Msg("Watching directory")
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "could not stat path %s", p)
		}
		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		err = filepath.WalkDir(p, func(walkPath string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(walkPath)
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "failed to watch directory %s", p)
		}
	}
	return nil
}

// watchForChanges calls rebuild once events have been quiet for debounce.
func watchForChanges(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, rebuild func(), logger zerolog.Logger) {
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Change detected")
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(debounce)
			pending = true
		case <-timer.C:
			pending = false
			rebuild()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}
