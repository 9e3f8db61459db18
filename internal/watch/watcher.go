// Package watch validates payloads dropped into a folder.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jacoelho/proligent/internal/ledger"
	"github.com/jacoelho/proligent/internal/logging"
	"github.com/jacoelho/proligent/validator"
)

// DefaultDebounce is the quiet period after the last write to a file before
// it is validated.
const DefaultDebounce = 100 * time.Millisecond

// Event is the outcome of validating one dropped file.
type Event struct {
	Err    error // ledger failure; Result is still set
	File   string
	Result validator.Result
	// Replay reports that the document fingerprint was already recorded.
	Replay bool
}

// Options configures a Watcher. Zero values pick defaults; a nil Ledger
// disables replay detection.
type Options struct {
	Ledger       ledger.Ledger
	Logger       *slog.Logger
	Debounce     time.Duration
	ScanExisting bool
}

// Watcher validates every *.xml file created or written in Dir.
type Watcher struct {
	Dir    string
	Events <-chan Event // Read-only external channel

	events    chan Event
	done      chan struct{}
	watcher   *fsnotify.Watcher
	validator *validator.Validator
	ledger    ledger.Ledger
	logger    *slog.Logger
	debounce  time.Duration
	scan      bool

	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a watcher for dir. It does not watch until Start.
func New(dir string, v *validator.Validator, opts Options) (*Watcher, error) {
	if v == nil {
		return nil, fmt.Errorf("watch %s: nil validator", dir)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	ch := make(chan Event, 16)
	return &Watcher{
		Dir:       dir,
		Events:    ch,
		events:    ch,
		done:      make(chan struct{}),
		watcher:   fw,
		validator: v,
		ledger:    opts.Ledger,
		logger:    opts.Logger,
		debounce:  opts.Debounce,
		scan:      opts.ScanExisting,
	}, nil
}

// Start begins watching. ctx bounds ledger calls made by the loop and
// delivery on Events; once it is done, events nobody reads are dropped.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started || w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watch %s: already started or stopped", w.Dir)
	}
	w.started = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.Dir); err != nil {
		w.abort()
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}
	var initial []string
	if w.scan {
		existing, err := w.existing()
		if err != nil {
			w.abort()
			return err
		}
		initial = existing
	}
	w.logger.Info("watching", "dir", w.Dir, "debounce", w.debounce)
	go w.loop(ctx, initial)
	return nil
}

// abort releases the watcher when Start fails so Stop does not block.
func (w *Watcher) abort() {
	_ = w.watcher.Close()
	close(w.done)
}

// Stop closes the watcher, flushes pending files and closes Events. It may
// be called before Start and more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	w.mu.Unlock()

	_ = w.watcher.Close()
	if started {
		<-w.done // Wait for loop to exit
	}
	close(w.events)
}

func (w *Watcher) loop(ctx context.Context, initial []string) {
	defer close(w.done)

	pending := make(map[string]time.Time)
	for _, file := range initial {
		w.emit(ctx, file)
	}
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for _, file := range sortedKeys(pending) {
					w.emit(ctx, file)
				}
				return
			}
			if !isPayload(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending[event.Name] = time.Now()
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				delete(pending, event.Name)
			}

		case <-ticker.C:
			now := time.Now()
			for _, file := range sortedKeys(pending) {
				if now.Sub(pending[file]) >= w.debounce {
					delete(pending, file)
					w.emit(ctx, file)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "dir", w.Dir, "err", err)
		}
	}
}

func (w *Watcher) emit(ctx context.Context, file string) {
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		return
	}
	ev := Event{File: file, Result: w.validator.ValidateSafe(file)}
	if w.ledger != nil && ev.Result.Fingerprint != "" {
		fresh, err := w.ledger.Record(ctx, ledger.Entry{
			Fingerprint: ev.Result.Fingerprint,
			Source:      filepath.Base(file),
			Valid:       ev.Result.IsValid,
		})
		ev.Replay = err == nil && !fresh
		ev.Err = err
	}
	w.log(ev)
	select {
	case w.events <- ev:
	case <-ctx.Done():
		w.logger.Warn("event dropped", "file", file, "err", ctx.Err())
	}
}

func (w *Watcher) log(ev Event) {
	attrs := []any{"file", ev.File, "valid", ev.Result.IsValid, "fingerprint", ev.Result.Fingerprint}
	switch {
	case ev.Err != nil:
		w.logger.Error("ledger", append(attrs, "err", ev.Err)...)
	case !ev.Result.IsValid:
		w.logger.Warn("validation failed", append(attrs, "path", ev.Result.Path, "line", ev.Result.Line, "reason", ev.Result.Message)...)
	case ev.Replay:
		w.logger.Warn("replayed payload", attrs...)
	default:
		w.logger.Info("validated", attrs...)
	}
}

func (w *Watcher) existing() ([]string, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", w.Dir, err)
	}
	var files []string
	for _, e := range entries {
		name := filepath.Join(w.Dir, e.Name())
		if !e.IsDir() && isPayload(name) {
			files = append(files, name)
		}
	}
	return files, nil
}

// isPayload accepts visible *.xml files.
func isPayload(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".xml")
}

func sortedKeys(m map[string]time.Time) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
