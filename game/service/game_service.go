package service

import (
	"context"

	"github.com/worldwalk/georoutes/game/config"
)

// RouteService provides the main interface for game operations, consumed by
// the REST, WebSocket, and MCP transports.
type RouteService interface {
	// Session management
	CreateSession(ctx context.Context, packID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Round operations
	Guess(ctx context.Context, sessionID, country string) (*GuessOutcome, error)
	Undo(ctx context.Context, sessionID string) (*UndoOutcome, error)
	Hint(ctx context.Context, sessionID string) (*HintOutcome, error)
	GiveUp(ctx context.Context, sessionID string) (*TerminalOutcome, error)
	Timeout(ctx context.Context, sessionID string) (*TerminalOutcome, error)
	NewRound(ctx context.Context, sessionID string) (*SessionInfo, error)
	Progress(ctx context.Context, sessionID string) (*ProgressOutcome, error)

	// Packs and geography
	ListPacks(ctx context.Context) ([]*config.PackInfo, error)
	LoadPack(ctx context.Context, name string) (*config.RoutePack, error)
	SavePack(ctx context.Context, name string, pack *config.RoutePack) error
	Countries(ctx context.Context) []string
}

// SessionManager handles session lifecycle, implemented by game/session.
type SessionManager interface {
	Create(session *Session) error
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
	GenerateID() string
}

// PackManager handles route pack loading, implemented by game/config.
type PackManager interface {
	LoadPack(name string) (*config.RoutePack, error)
	ListPacks() ([]*config.PackInfo, error)
	SavePack(name string, pack *config.RoutePack) error
	GetDefault() *config.RoutePack
}
