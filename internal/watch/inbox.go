// Package watch imports skins dropped into an inbox directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"gbadb/internal/database/sqlc"
	"gbadb/internal/fs"
	"gbadb/internal/gba"
)

// DefaultDebounce is how long a file must be quiet before it is imported.
const DefaultDebounce = 500 * time.Millisecond

// SkinImporter imports a resolved skin file.
type SkinImporter interface {
	ImportSkin(path *gba.Path) (*sqlc.Skin, error)
}

// Result reports the outcome of one inbox import.
type Result struct {
	Path   string
	Record *sqlc.Skin
	Err    error
}

// SkinInbox watches a directory and imports every .deltaskin that appears
// in it. Imports run one at a time on the Run goroutine.
type SkinInbox struct {
	dir      string
	fsmgr    gba.FilesystemManager
	importer SkinImporter
	logger   gba.Logger
	debounce time.Duration

	// OnResult, if set, is called after each import attempt.
	OnResult func(Result)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewSkinInbox creates an inbox for dir. A zero debounce uses DefaultDebounce.
func NewSkinInbox(dir string, fsmgr gba.FilesystemManager, importer SkinImporter, logger gba.Logger, debounce time.Duration) *SkinInbox {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &SkinInbox{
		dir:      dir,
		fsmgr:    fsmgr,
		importer: importer,
		logger:   logger,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// Run imports skins already in the inbox, then watches for new ones until
// ctx is cancelled.
func (w *SkinInbox) Run(ctx context.Context) error {
	ignore, err := fs.LoadIgnoreMatcher(w.dir)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.logger.Info("watching skin inbox", "dir", w.dir)

	ready := make(chan string)
	done := make(chan struct{})
	defer w.stopTimers()
	defer close(done)

	if err := w.scan(ignore); err != nil {
		w.logger.Warn("initial inbox scan failed", "dir", w.dir, "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.wanted(event.Name, ignore) {
				continue
			}
			w.logger.Debug("inbox event", "op", event.Op.String(), "file", event.Name)
			w.schedule(done, event.Name, ready)
		case path := <-ready:
			w.importFile(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("inbox watcher error", "error", err)
		}
	}
}

func (w *SkinInbox) scan(ignore *fs.IgnoreMatcher) error {
	dir, err := w.fsmgr.Resolve(w.dir)
	if err != nil {
		return err
	}
	files, err := w.fsmgr.FindFiles(dir, false)
	if err != nil {
		return err
	}
	for _, f := range files {
		if w.wanted(f.String(), ignore) {
			w.importFile(f.String())
		}
	}
	return nil
}

func (w *SkinInbox) wanted(path string, ignore *fs.IgnoreMatcher) bool {
	if !strings.EqualFold(filepath.Ext(path), gba.SkinExtension) {
		return false
	}
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return !ignore.Match(rel)
}

// schedule (re)arms the debounce timer for path. When it fires the path is
// handed to the Run loop, unless done is closed first.
func (w *SkinInbox) schedule(done <-chan struct{}, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.timers[path]; exists {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.timers[path] == timer {
			delete(w.timers, path)
		}
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-done:
		}
	})
	w.timers[path] = timer
}

func (w *SkinInbox) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

func (w *SkinInbox) importFile(path string) {
	result := Result{Path: path}
	resolved, err := w.fsmgr.Resolve(path)
	if err != nil {
		result.Err = err
	} else {
		result.Record, result.Err = w.importer.ImportSkin(resolved)
	}

	if result.Err != nil {
		w.logger.Error("inbox skin import failed", "file", path, "error", result.Err)
	} else {
		w.logger.Info("inbox skin imported", "file", path, "identifier", result.Record.Identifier)
	}
	if w.OnResult != nil {
		w.OnResult(result)
	}
}
