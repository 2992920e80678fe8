package session

import (
	"path/filepath"
	"testing"

	"github.com/jpalma/trak/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenAt(filepath.Join(t.TempDir(), "trak.db"))
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveRestore(t *testing.T) {
	s := openTestStore(t)

	if _, _, ok := s.Restore(); ok {
		t.Fatal("fresh store should not restore a session")
	}

	user := &models.User{ID: 7, Email: "ana@example.com", Name: "Ana"}
	if err := s.Save("tok-123", user); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tok, got, ok := s.Restore()
	if !ok {
		t.Fatal("Restore should succeed after Save")
	}
	if tok != "tok-123" {
		t.Errorf("restored token = %q, expected tok-123", tok)
	}
	if got.ID != 7 || got.Email != "ana@example.com" {
		t.Errorf("restored user = %+v", got)
	}

	if s.Token() != "tok-123" {
		t.Errorf("Token() = %q", s.Token())
	}
}

func TestStore_Clear(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save("tok", &models.User{ID: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, _, ok := s.Restore(); ok {
		t.Error("Restore should fail after Clear")
	}
	if s.Token() != "" {
		t.Errorf("Token() after Clear = %q", s.Token())
	}

	// Clearing twice is fine
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestStore_Settings(t *testing.T) {
	s := openTestStore(t)

	v, err := s.GetSetting("last_screen")
	if err != nil || v != "" {
		t.Fatalf("GetSetting on missing key = %q, %v", v, err)
	}

	if err := s.SetSetting("last_screen", "tasks"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := s.SetSetting("last_screen", "projects"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}

	v, err = s.GetSetting("last_screen")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != "projects" {
		t.Errorf("GetSetting = %q, expected projects", v)
	}

	// Settings survive independently of the session keys
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if v, _ := s.GetSetting("last_screen"); v != "projects" {
		t.Errorf("setting lost on session Clear: %q", v)
	}
}
