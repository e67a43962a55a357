// Package watcher monitors the content type directory and signals when the
// definitions need to be reloaded.
//
// Only the directory itself is watched (definitions are not nested), and only
// events on definition files (*.yaml, *.yml) count. Editors write through
// swap files and atomic renames, so a save typically produces a burst of
// events; bursts are coalesced by the debounce window.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is sent when definition files changed.
type Event struct{}

// Watch monitors dir and sends an Event on the returned channel after every
// burst of relevant changes. Errors from the underlying watcher are sent on
// errs (buffered, dropped when full).
//
// Call the returned stop function to tear down the watcher. The channel is
// closed afterwards.
func Watch(dir string, debounce time.Duration, errs chan<- error) (<-chan Event, func(), error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("watching %s: not a directory", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	ch := make(chan Event, 1)
	done := make(chan struct{})

	go func() {
		defer close(ch)
		var timer *time.Timer

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !relevant(ev) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
			case <-timerChan(timer):
				timer = nil
				select {
				case ch <- Event{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if errs != nil && !errors.Is(err, fsnotify.ErrEventOverflow) {
					select {
					case errs <- err:
					default:
					}
				}
			case <-done:
				if timer != nil {
					timer.Stop()
				}
				return
			}
		}
	}()

	stop := func() {
		close(done)
		_ = w.Close()
	}

	return ch, stop, nil
}

// timerChan returns the timer's channel, or a nil channel if timer is nil.
func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return !shouldIgnore(ev.Name)
}

// shouldIgnore returns true for paths that are not content type definitions.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)

	// Hidden files, including editor backups like .#faq.yaml.
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor swap/temp files.
	if strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swo") ||
		strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".tmp") {
		return true
	}

	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml":
		return false
	default:
		return true
	}
}
