// Package watcher feeds documents dropped into the inbox directory through the
// processing pipeline, with fsnotify events debounced per file.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/nutrigen/nutrigen/internal/config"
	"github.com/nutrigen/nutrigen/internal/extract"
	"github.com/nutrigen/nutrigen/internal/models"
)

// Ingestor processes documents from disk into a session.
type Ingestor interface {
	ProcessPaths(ctx context.Context, sessionID string, paths []string) (*models.StructuredData, error)
}

// Sessions is the slice of session management the inbox needs: find the inbox
// session by name or create it.
type Sessions interface {
	List(ctx context.Context) ([]*models.Session, error)
	Create(ctx context.Context, name string) (*models.Session, error)
}

// Inbox watches one directory and processes every supported document dropped
// into it, all into a single named session.
type Inbox struct {
	dir         string
	sessionName string
	debounce    time.Duration
	ingestor    Ingestor
	sessions    Sessions
	logger      *zap.Logger

	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	debounceMap map[string]*time.Timer
	sessionID   string
	started     bool
	done        chan struct{}
	stopOnce    sync.Once
}

// InboxOption configures an Inbox.
type InboxOption func(*Inbox)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) InboxOption {
	return func(i *Inbox) { i.logger = l }
}

// NewInbox creates an inbox watcher from config.
func NewInbox(cfg *config.InboxConfig, ingestor Ingestor, sessions Sessions, opts ...InboxOption) *Inbox {
	i := &Inbox{
		dir:         cfg.Directory,
		sessionName: cfg.Session,
		debounce:    time.Duration(cfg.DebounceMs) * time.Millisecond,
		ingestor:    ingestor,
		sessions:    sessions,
		logger:      zap.NewNop(),
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Start resolves the inbox session, begins watching the directory, and returns.
// The directory is created when missing. Runs until ctx is cancelled or Stop is
// called.
func (i *Inbox) Start(ctx context.Context) error {
	i.mu.Lock()
	if i.started {
		i.mu.Unlock()
		return nil
	}
	i.mu.Unlock()

	sessionID, err := i.ensureSession(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(i.dir, 0755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(i.dir); err != nil {
		_ = watcher.Close()
		return err
	}

	i.mu.Lock()
	i.watcher = watcher
	i.sessionID = sessionID
	i.started = true
	i.mu.Unlock()

	i.logger.Info("inbox watching",
		zap.String("dir", i.dir),
		zap.String("session", i.sessionName))
	go i.run(ctx)
	return nil
}

// ensureSession finds the configured inbox session by name or creates it.
func (i *Inbox) ensureSession(ctx context.Context) (string, error) {
	existing, err := i.sessions.List(ctx)
	if err != nil {
		return "", err
	}
	for _, s := range existing {
		if s.Name == i.sessionName {
			return s.ID, nil
		}
	}
	sess, err := i.sessions.Create(ctx, i.sessionName)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

func (i *Inbox) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			i.Stop()
			return
		case <-i.done:
			return
		case ev, ok := <-i.watcher.Events:
			if !ok {
				return
			}
			i.handleEvent(ctx, ev)
		case err, ok := <-i.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				i.logger.Debug("inbox watcher error", zap.Error(err))
			}
		}
	}
}

func (i *Inbox) handleEvent(ctx context.Context, ev fsnotify.Event) {
	path := ev.Name
	switch {
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return
		}
		if !extract.IsSupported(path) {
			return
		}
		i.debounceProcess(ctx, path)
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		i.cancelDebounce(path)
	}
}

// debounceProcess schedules processing after the debounce window; a later write
// to the same file resets the timer so half-copied files are not picked up.
func (i *Inbox) debounceProcess(ctx context.Context, path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if t, ok := i.debounceMap[path]; ok {
		t.Stop()
	}
	i.debounceMap[path] = time.AfterFunc(i.debounce, func() {
		i.mu.Lock()
		delete(i.debounceMap, path)
		i.mu.Unlock()
		i.process(ctx, path)
	})
}

func (i *Inbox) cancelDebounce(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if t, ok := i.debounceMap[path]; ok {
		t.Stop()
		delete(i.debounceMap, path)
	}
}

func (i *Inbox) process(ctx context.Context, path string) {
	i.mu.Lock()
	sessionID := i.sessionID
	i.mu.Unlock()
	i.logger.Debug("inbox processing file", zap.String("path", path))
	if _, err := i.ingestor.ProcessPaths(ctx, sessionID, []string{path}); err != nil {
		i.logger.Error("inbox processing failed", zap.String("path", path), zap.Error(err))
		return
	}
	i.logger.Info("inbox processed file", zap.String("path", path))
}

// SyncExistingFiles processes every supported file already in the inbox. Call
// after Start to pick up documents dropped while the server was down.
func (i *Inbox) SyncExistingFiles(ctx context.Context) {
	i.logger.Debug("inbox syncing existing files", zap.String("dir", i.dir))
	_ = filepath.WalkDir(i.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if extract.IsSupported(path) {
			i.process(ctx, path)
		}
		return nil
	})
}

// Stop stops the watcher and releases resources.
func (i *Inbox) Stop() {
	i.mu.Lock()
	if !i.started || i.watcher == nil {
		i.mu.Unlock()
		return
	}
	for path, t := range i.debounceMap {
		t.Stop()
		delete(i.debounceMap, path)
	}
	_ = i.watcher.Close()
	i.watcher = nil
	i.started = false
	i.mu.Unlock()
	i.stopOnce.Do(func() { close(i.done) })
}
