package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nutrigen/nutrigen/internal/config"
	"github.com/nutrigen/nutrigen/internal/models"
)

type stubIngestor struct {
	mu    sync.Mutex
	paths []string
}

func (s *stubIngestor) ProcessPaths(_ context.Context, _ string, paths []string) (*models.StructuredData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, paths...)
	return &models.StructuredData{}, nil
}

func (s *stubIngestor) processed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

type stubSessions struct {
	mu       sync.Mutex
	sessions []*models.Session
	creates  int
}

func (s *stubSessions) List(_ context.Context) ([]*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Session(nil), s.sessions...), nil
}

func (s *stubSessions) Create(_ context.Context, name string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	sess := &models.Session{ID: "sess-" + name, Name: name}
	s.sessions = append(s.sessions, sess)
	return sess, nil
}

func newTestInbox(t *testing.T) (*Inbox, *stubIngestor, *stubSessions, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "inbox")
	cfg := &config.InboxConfig{Directory: dir, Session: "inbox", DebounceMs: 50}
	ingestor := &stubIngestor{}
	sessions := &stubSessions{}
	return NewInbox(cfg, ingestor, sessions), ingestor, sessions, dir
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestStart_CreatesDirectoryAndSession(t *testing.T) {
	inbox, _, sessions, dir := newTestInbox(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := inbox.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer inbox.Stop()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("inbox directory should exist: %v", err)
	}
	if sessions.creates != 1 {
		t.Errorf("creates = %d, want 1", sessions.creates)
	}
}

func TestStart_ReusesExistingSession(t *testing.T) {
	inbox, _, sessions, _ := newTestInbox(t)
	sessions.sessions = []*models.Session{{ID: "existing", Name: "inbox"}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := inbox.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer inbox.Stop()
	if sessions.creates != 0 {
		t.Errorf("creates = %d, want 0", sessions.creates)
	}
	if inbox.sessionID != "existing" {
		t.Errorf("sessionID = %q", inbox.sessionID)
	}
}

func TestDroppedFileIsProcessed(t *testing.T) {
	inbox, ingestor, _, dir := newTestInbox(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := inbox.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer inbox.Stop()

	path := filepath.Join(dir, "avaliacao.txt")
	if err := os.WriteFile(path, []byte("Peso 80.5"), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 3*time.Second, func() bool { return len(ingestor.processed()) > 0 }) {
		t.Fatal("file was not processed")
	}
	if got := ingestor.processed()[0]; got != path {
		t.Errorf("processed %q, want %q", got, path)
	}
}

func TestUnsupportedFileIsIgnored(t *testing.T) {
	inbox, ingestor, _, dir := newTestInbox(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := inbox.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer inbox.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notas.xyz"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := ingestor.processed(); len(got) != 0 {
		t.Errorf("unsupported file processed: %v", got)
	}
}

func TestSyncExistingFiles(t *testing.T) {
	inbox, ingestor, _, dir := newTestInbox(t)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "antigo.txt"), []byte("Peso 82"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignorado.xyz"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := inbox.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer inbox.Stop()

	inbox.SyncExistingFiles(ctx)
	got := ingestor.processed()
	if len(got) != 1 || filepath.Base(got[0]) != "antigo.txt" {
		t.Errorf("processed = %v", got)
	}
}

func TestStop_Idempotent(t *testing.T) {
	inbox, _, _, _ := newTestInbox(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := inbox.Start(ctx); err != nil {
		t.Fatal(err)
	}
	inbox.Stop()
	inbox.Stop()
}

func TestRemovedFileCancelsDebounce(t *testing.T) {
	inbox, ingestor, _, dir := newTestInbox(t)
	inbox.debounce = 500 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := inbox.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer inbox.Stop()

	path := filepath.Join(dir, "temporario.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	// Remove before the debounce window fires.
	time.Sleep(100 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(800 * time.Millisecond)
	if got := ingestor.processed(); len(got) != 0 {
		t.Errorf("removed file should not be processed: %v", got)
	}
}
