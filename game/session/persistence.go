package session

import (
	"time"

	"github.com/worldwalk/georoutes/game/engine"
	"github.com/worldwalk/georoutes/game/service"
)

// SessionPersistence abstracts how sessions survive restarts.
type SessionPersistence interface {
	Save(session *service.Session) error
	Load(id string) (*service.Session, error)
	Delete(id string) error
	Exists(id string) bool
	ListAll() ([]string, error)
}

// PersistedSessionData is the on-disk representation of a session. The
// engine is stored as its RoundState; the border graph is not persisted and
// is re-supplied from the atlas on load.
type PersistedSessionData struct {
	ID             string             `json:"id"`
	PackID         string             `json:"pack_id"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Round          *engine.RoundState `json:"round"`
	RoundsPlayed   int                `json:"rounds_played"`
	TotalScore     int                `json:"total_score"`
}
