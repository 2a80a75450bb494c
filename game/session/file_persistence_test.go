package session

import (
	"testing"

	"github.com/worldwalk/georoutes/game/atlas"
	"github.com/worldwalk/georoutes/game/config"
	"github.com/worldwalk/georoutes/game/engine"
)

func testPersistence(t *testing.T) *FilePersistence {
	t.Helper()

	world := atlas.New(testBorders())
	packs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create pack manager: %v", err)
	}

	fp, err := NewFilePersistence(t.TempDir(), world, packs)
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	return fp
}

func TestFilePersistence_SaveLoadRoundTrip(t *testing.T) {
	fp := testPersistence(t)

	sess := testSession("ab12")
	sess.Engine.AddCountry("B")
	sess.Engine.RecordWrongGuess()
	sess.RoundsPlayed = 2
	sess.TotalScore = 9

	if err := fp.Save(sess); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if !fp.Exists("ab12") {
		t.Fatal("Expected session file to exist after save")
	}

	loaded, err := fp.Load("ab12")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	if loaded.ID != "ab12" || loaded.RoundsPlayed != 2 || loaded.TotalScore != 9 {
		t.Errorf("Session metadata mismatch: %+v", loaded)
	}

	progress := loaded.Engine.Progress()
	if len(progress.Route) != 2 || progress.Route[1] != "B" {
		t.Errorf("Expected restored route [A B], got %v", progress.Route)
	}
	if loaded.Engine.WrongGuesses() != 1 {
		t.Errorf("Expected 1 wrong guess after restore, got %d", loaded.Engine.WrongGuesses())
	}

	// The restored engine keeps playing: C borders D, so the round
	// auto-completes.
	res := loaded.Engine.AddCountry("C")
	if res.Action != engine.ActionComplete {
		t.Errorf("Expected restored engine to complete, got %s", res.Action)
	}
}

func TestFilePersistence_LoadMissing(t *testing.T) {
	fp := testPersistence(t)
	if _, err := fp.Load("none"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestFilePersistence_Delete(t *testing.T) {
	fp := testPersistence(t)
	sess := testSession("ab12")

	if err := fp.Save(sess); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if err := fp.Delete("ab12"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if fp.Exists("ab12") {
		t.Error("Expected session file gone after delete")
	}
	if err := fp.Delete("ab12"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound on double delete, got %v", err)
	}
}

func TestFilePersistence_ListAll(t *testing.T) {
	fp := testPersistence(t)

	fp.Save(testSession("aaaa"))
	fp.Save(testSession("bbbb"))

	ids, err := fp.ListAll()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 persisted sessions, got %d: %v", len(ids), ids)
	}
}

func TestManagerWithPersistence_LoadOnMiss(t *testing.T) {
	fp := testPersistence(t)

	// Persist directly, then retrieve through a fresh manager.
	if err := fp.Save(testSession("ab12")); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	m := NewManagerWithPersistence(fp)
	sess, err := m.Get("ab12")
	if err != nil {
		t.Fatalf("Expected manager to load persisted session: %v", err)
	}
	if sess.Engine == nil {
		t.Fatal("Expected restored session to carry a live engine")
	}
	if m.Count() != 1 {
		t.Errorf("Expected session cached in memory after load, count=%d", m.Count())
	}
}

func TestManagerWithPersistence_LoadAll(t *testing.T) {
	fp := testPersistence(t)
	fp.Save(testSession("aaaa"))
	fp.Save(testSession("bbbb"))

	m := NewManagerWithPersistence(fp)
	if err := m.LoadPersistedSessions(); err != nil {
		t.Fatalf("Failed to load persisted sessions: %v", err)
	}
	if m.Count() != 2 {
		t.Errorf("Expected 2 sessions loaded, got %d", m.Count())
	}
}
