package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/worldwalk/georoutes/game/atlas"
	"github.com/worldwalk/georoutes/game/engine"
	"github.com/worldwalk/georoutes/game/service"
)

// FilePersistence implements SessionPersistence using one JSON file per
// session. Restoring a session needs the border graph and the pack it was
// playing, so the persistence layer holds the atlas and pack manager.
type FilePersistence struct {
	sessionsDir string
	world       *atlas.Atlas
	packs       service.PackManager
}

// NewFilePersistence creates a file-based session persistence layer,
// creating the directory if needed.
func NewFilePersistence(sessionsDir string, world *atlas.Atlas, packs service.PackManager) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		sessionsDir: sessionsDir,
		world:       world,
		packs:       packs,
	}, nil
}

// Save writes the session to its JSON file.
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := PersistedSessionData{
		ID:             session.ID,
		PackID:         session.PackID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Round:          session.Engine.State(),
		RoundsPlayed:   session.RoundsPlayed,
		TotalScore:     session.TotalScore,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	if err := os.WriteFile(fp.filePath(session.ID), jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load restores a session from its JSON file, rebuilding the engine from
// the stored round state and the current atlas.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	path := fp.filePath(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}

	jsonData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	eng, err := engine.NewRouteEngineFromState(fp.world.Borders(), data.Round)
	if err != nil {
		return nil, fmt.Errorf("failed to restore engine: %w", err)
	}

	pack := fp.packs.GetDefault()
	if data.PackID != "" && data.PackID != "default" {
		loaded, err := fp.packs.LoadPack(data.PackID)
		if err != nil {
			return nil, fmt.Errorf("failed to load pack '%s': %w", data.PackID, err)
		}
		pack = loaded
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         eng,
		Pack:           pack,
		PackID:         data.PackID,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
		RoundsPlayed:   data.RoundsPlayed,
		TotalScore:     data.TotalScore,
	}, nil
}

// Delete removes the session's file.
func (fp *FilePersistence) Delete(id string) error {
	path := fp.filePath(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ErrSessionNotFound
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// Exists reports whether a file exists for the session ID.
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.filePath(id))
	return err == nil
}

// ListAll returns the IDs of every persisted session.
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

func (fp *FilePersistence) filePath(id string) string {
	return filepath.Join(fp.sessionsDir, strings.ToLower(id)+".json")
}
