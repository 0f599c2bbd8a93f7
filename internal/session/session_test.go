package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nutrigen/nutrigen/internal/models"
	"github.com/nutrigen/nutrigen/internal/storage"
)

type stubRemover struct {
	deleted []string
}

func (s *stubRemover) DeleteSession(_ context.Context, sessionID string) error {
	s.deleted = append(s.deleted, sessionID)
	return nil
}

func newTestManager(t *testing.T) (*Manager, *stubRemover, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	remover := &stubRemover{}
	return NewManager(store, remover), remover, store
}

func TestCreateAndGet(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx, "Avaliações 2024")
	if err != nil {
		t.Fatal(err)
	}
	if sess.ID == "" {
		t.Fatal("ID should be generated")
	}
	if sess.Name != "Avaliações 2024" {
		t.Errorf("name = %q", sess.Name)
	}

	got, err := m.Get(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != sess.Name {
		t.Errorf("round-trip name = %q", got.Name)
	}
	if got.Messages == nil {
		// Empty history comes back as an empty slice, not nil.
		t.Log("messages nil for empty history")
	}
}

func TestCreate_EmptyNameDefaultsToID(t *testing.T) {
	m, _, _ := newTestManager(t)
	sess, err := m.Create(context.Background(), "  ")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Name != sess.ID {
		t.Errorf("name = %q, want the generated ID %q", sess.Name, sess.ID)
	}
}

func TestGet_IncludesChatHistory(t *testing.T) {
	m, _, store := newTestManager(t)
	ctx := context.Background()
	sess, err := m.Create(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	msg := &models.ChatMessage{Role: models.RoleUser, Content: "oi"}
	if err := store.AppendChatMessage(ctx, sess.ID, msg); err != nil {
		t.Fatal(err)
	}

	got, err := m.Get(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "oi" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestReplaceData(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	sess, err := m.Create(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	data := &models.StructuredData{
		Assessments: []models.Assessment{{Date: "01/03/2024"}},
	}
	if err := m.ReplaceData(ctx, sess.ID, data); err != nil {
		t.Fatal(err)
	}
	got, err := m.Get(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Data == nil || len(got.Data.Assessments) != 1 {
		t.Errorf("data = %+v", got.Data)
	}
}

func TestRename(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	sess, err := m.Create(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Rename(ctx, sess.ID, "new"); err != nil {
		t.Fatal(err)
	}
	got, _ := m.Get(ctx, sess.ID)
	if got.Name != "new" {
		t.Errorf("name = %q", got.Name)
	}
	if err := m.Rename(ctx, sess.ID, " "); err == nil {
		t.Error("expected error for blank name")
	}
	if err := m.Rename(ctx, "missing", "x"); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestDelete_TearsDownDocuments(t *testing.T) {
	m, remover, _ := newTestManager(t)
	ctx := context.Background()
	sess, err := m.Create(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Delete(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	if len(remover.deleted) != 1 || remover.deleted[0] != sess.ID {
		t.Errorf("remover calls = %v", remover.deleted)
	}
	if _, err := m.Get(ctx, sess.ID); err == nil {
		t.Error("session should be gone")
	}
}

func TestDelete_UnknownSession(t *testing.T) {
	m, remover, _ := newTestManager(t)
	if err := m.Delete(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown session")
	}
	if len(remover.deleted) != 0 {
		t.Error("remover should not run for unknown sessions")
	}
}

func TestList(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b"} {
		if _, err := m.Create(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	sessions, err := m.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(sessions))
	}
}
