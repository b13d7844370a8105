package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/code-intel/pkg/finder"
	"github.com/ritzau/code-intel/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	// ChangeTypeSource means source file contents changed
	ChangeTypeSource ChangeType = iota
	// ChangeTypeTree means directories appeared or vanished and the watch
	// set needs rebuilding
	ChangeTypeTree
)

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches a workspace for source file changes. fsnotify watches
// are not recursive, so every directory under the workspace is registered
// individually and new directories are picked up as they appear.
type FileWatcher struct {
	watcher    *fsnotify.Watcher
	workspace  string
	ignoreDirs map[string]bool
	events     chan ChangeEvent
	closeOnce  sync.Once
}

// NewFileWatcher creates a new file system watcher for a workspace.
// ignoreDirs defaults to the finder's ignore list when nil.
func NewFileWatcher(workspace string, ignoreDirs []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if ignoreDirs == nil {
		ignoreDirs = finder.DefaultIgnoreDirs
	}
	ignore := make(map[string]bool, len(ignoreDirs))
	for _, d := range ignoreDirs {
		ignore[d] = true
	}

	fw := &FileWatcher{
		watcher:    watcher,
		workspace:  workspace,
		ignoreDirs: ignore,
		events:     make(chan ChangeEvent, 100),
	}

	return fw, nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watchSourceDirs(); err != nil {
		logging.Warn("failed to register workspace directories", "error", err)
	}

	logging.Info("started watching workspace", "path", fw.workspace)

	go fw.processEvents(ctx)

	return nil
}

// watchSourceDirs registers every directory under the workspace, pruning the
// ignore list
func (fw *FileWatcher) watchSourceDirs() error {
	count := 0
	err := filepath.Walk(fw.workspace, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip entries we can't access
		}
		if !info.IsDir() {
			return nil
		}
		if fw.ignoreDirs[info.Name()] {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			logging.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk workspace: %w", err)
	}

	logging.Info("monitoring directories", "count", count)
	return nil
}

// processEvents filters raw fsnotify events down to source files and batches
// them so one save does not trigger a burst of re-analysis
func (fw *FileWatcher) processEvents(ctx context.Context) {
	var sourcePaths []string
	var treePaths []string

	flushTimer := time.NewTimer(100 * time.Millisecond)
	flushTimer.Stop()

	flush := func() {
		if len(treePaths) > 0 {
			fw.events <- ChangeEvent{
				Type:      ChangeTypeTree,
				Paths:     treePaths,
				Timestamp: time.Now(),
			}
			treePaths = nil
		}
		if len(sourcePaths) > 0 {
			fw.events <- ChangeEvent{
				Type:      ChangeTypeSource,
				Paths:     sourcePaths,
				Timestamp: time.Now(),
			}
			sourcePaths = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			fw.Stop()
			close(fw.events)
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				close(fw.events)
				return
			}

			if fw.isNewDirectory(event) {
				// Register the directory so files created inside it are seen
				if err := fw.watcher.Add(event.Name); err != nil {
					logging.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
				treePaths = append(treePaths, event.Name)
				flushTimer.Reset(100 * time.Millisecond)
				continue
			}

			if finder.SupportedExtensions[filepath.Ext(event.Name)] {
				sourcePaths = append(sourcePaths, event.Name)
				flushTimer.Reset(100 * time.Millisecond)
			}

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				close(fw.events)
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// isNewDirectory reports whether a create event points at a directory that
// is not on the ignore list
func (fw *FileWatcher) isNewDirectory(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return false
	}
	return !fw.ignoreDirs[filepath.Base(event.Name)]
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop closes the underlying fsnotify watcher. The event channel closes once
// the processing goroutine drains out; safe to combine with context
// cancellation.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.closeOnce.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}
