package session

import (
	"path/filepath"
	"testing"

	"github.com/sentinellite/sentinel/internal/model"
)

func testUser() model.User {
	return model.User{
		ID:     "u-1",
		Name:   "Jane Doe",
		Email:  "admin@sentinel.lite",
		Role:   model.RoleAdmin,
		Avatar: "JD",
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := openTempStore(t)

	if err := s.Save("tok-abc", testUser()); err != nil {
		t.Fatal(err)
	}

	if got := s.Token(); got != "tok-abc" {
		t.Errorf("token = %q", got)
	}
	user, ok := s.CurrentUser()
	if !ok {
		t.Fatal("saved user not found")
	}
	if user != testUser() {
		t.Errorf("user round-trip mismatch: %+v", user)
	}
}

func TestSessionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save("tok-persist", testUser()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if got := s.Token(); got != "tok-persist" {
		t.Errorf("token after reopen = %q", got)
	}
	if _, ok := s.CurrentUser(); !ok {
		t.Error("user lost across reopen")
	}
}

func TestSaveReplacesPreviousSession(t *testing.T) {
	s := openTempStore(t)

	if err := s.Save("tok-1", testUser()); err != nil {
		t.Fatal(err)
	}
	second := model.User{ID: "u-2", Name: "John Smith", Email: "analyst@sentinel.lite", Role: model.RoleAnalyst}
	if err := s.Save("tok-2", second); err != nil {
		t.Fatal(err)
	}

	if got := s.Token(); got != "tok-2" {
		t.Errorf("token = %q, want tok-2", got)
	}
	user, ok := s.CurrentUser()
	if !ok || user.ID != "u-2" {
		t.Errorf("user = %+v ok=%v", user, ok)
	}
}

func TestEmptyStore(t *testing.T) {
	s := openTempStore(t)

	if got := s.Token(); got != "" {
		t.Errorf("token on empty store = %q", got)
	}
	if _, ok := s.CurrentUser(); ok {
		t.Error("empty store reported a user")
	}
}

func TestClear(t *testing.T) {
	s := openTempStore(t)

	if err := s.Save("tok-x", testUser()); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}

	if got := s.Token(); got != "" {
		t.Errorf("token survives Clear: %q", got)
	}
	if _, ok := s.CurrentUser(); ok {
		t.Error("user survives Clear")
	}

	// Clearing an already-empty store is not an error.
	if err := s.Clear(); err != nil {
		t.Errorf("double clear: %v", err)
	}
}

func TestCurrentUser_FailsSoftOnMalformedRecord(t *testing.T) {
	s := openTempStore(t)

	const upsert = `INSERT INTO session (key, value) VALUES (?, ?)
	                ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.Exec(upsert, keyUser, "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.CurrentUser(); ok {
		t.Error("malformed record should yield no user")
	}

	// A structurally valid record without an id is equally unusable.
	if _, err := s.db.Exec(upsert, keyUser, `{"name":"ghost"}`); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.CurrentUser(); ok {
		t.Error("record without id should yield no user")
	}
}
