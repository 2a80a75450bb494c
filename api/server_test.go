package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/worldwalk/georoutes/game/atlas"
	"github.com/worldwalk/georoutes/game/config"
	"github.com/worldwalk/georoutes/game/daily"
	"github.com/worldwalk/georoutes/game/engine"
	"github.com/worldwalk/georoutes/game/service"
	"github.com/worldwalk/georoutes/transport/websocket"
)

// MockRouteService implements service.RouteService for testing
type MockRouteService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, packID string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Round Operations
	GuessFunc    func(ctx context.Context, sessionID, country string) (*service.GuessOutcome, error)
	UndoFunc     func(ctx context.Context, sessionID string) (*service.UndoOutcome, error)
	HintFunc     func(ctx context.Context, sessionID string) (*service.HintOutcome, error)
	GiveUpFunc   func(ctx context.Context, sessionID string) (*service.TerminalOutcome, error)
	TimeoutFunc  func(ctx context.Context, sessionID string) (*service.TerminalOutcome, error)
	NewRoundFunc func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ProgressFunc func(ctx context.Context, sessionID string) (*service.ProgressOutcome, error)

	// Packs and geography
	ListPacksFunc func(ctx context.Context) ([]*config.PackInfo, error)
	LoadPackFunc  func(ctx context.Context, name string) (*config.RoutePack, error)
	SavePackFunc  func(ctx context.Context, name string, pack *config.RoutePack) error
	CountriesFunc func(ctx context.Context) []string
}

func (m *MockRouteService) CreateSession(ctx context.Context, packID string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, packID)
	}
	return &service.SessionInfo{
		ID:        "test-session",
		PackID:    packID,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockRouteService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:        sessionID,
		PackID:    "classic",
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockRouteService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockRouteService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockRouteService) Guess(ctx context.Context, sessionID, country string) (*service.GuessOutcome, error) {
	if m.GuessFunc != nil {
		return m.GuessFunc(ctx, sessionID, country)
	}
	return &service.GuessOutcome{
		GuessResult: engine.GuessResult{Action: engine.ActionAdded, Country: country},
	}, nil
}

func (m *MockRouteService) Undo(ctx context.Context, sessionID string) (*service.UndoOutcome, error) {
	if m.UndoFunc != nil {
		return m.UndoFunc(ctx, sessionID)
	}
	return &service.UndoOutcome{
		UndoResult: engine.UndoResult{Action: engine.ActionUndone},
	}, nil
}

func (m *MockRouteService) Hint(ctx context.Context, sessionID string) (*service.HintOutcome, error) {
	if m.HintFunc != nil {
		return m.HintFunc(ctx, sessionID)
	}
	return &service.HintOutcome{
		HintResult: engine.HintResult{Action: engine.ActionHint, HintsRemaining: 2},
	}, nil
}

func (m *MockRouteService) GiveUp(ctx context.Context, sessionID string) (*service.TerminalOutcome, error) {
	if m.GiveUpFunc != nil {
		return m.GiveUpFunc(ctx, sessionID)
	}
	return &service.TerminalOutcome{
		TerminalResult: engine.TerminalResult{Action: engine.ActionGaveUp},
	}, nil
}

func (m *MockRouteService) Timeout(ctx context.Context, sessionID string) (*service.TerminalOutcome, error) {
	if m.TimeoutFunc != nil {
		return m.TimeoutFunc(ctx, sessionID)
	}
	return &service.TerminalOutcome{
		TerminalResult: engine.TerminalResult{Action: engine.ActionGaveUp},
	}, nil
}

func (m *MockRouteService) NewRound(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.NewRoundFunc != nil {
		return m.NewRoundFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID}, nil
}

func (m *MockRouteService) Progress(ctx context.Context, sessionID string) (*service.ProgressOutcome, error) {
	if m.ProgressFunc != nil {
		return m.ProgressFunc(ctx, sessionID)
	}
	return &service.ProgressOutcome{}, nil
}

func (m *MockRouteService) ListPacks(ctx context.Context) ([]*config.PackInfo, error) {
	if m.ListPacksFunc != nil {
		return m.ListPacksFunc(ctx)
	}
	return []*config.PackInfo{}, nil
}

func (m *MockRouteService) LoadPack(ctx context.Context, name string) (*config.RoutePack, error) {
	if m.LoadPackFunc != nil {
		return m.LoadPackFunc(ctx, name)
	}
	return &config.RoutePack{Name: name}, nil
}

func (m *MockRouteService) SavePack(ctx context.Context, name string, pack *config.RoutePack) error {
	if m.SavePackFunc != nil {
		return m.SavePackFunc(ctx, name, pack)
	}
	return nil
}

func (m *MockRouteService) Countries(ctx context.Context) []string {
	if m.CountriesFunc != nil {
		return m.CountriesFunc(ctx)
	}
	return []string{"Austria", "Brazil"}
}

// Test helpers
func setupTestServer(mockService *MockRouteService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, nil, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockRouteService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default pack",
			requestBody: nil,
			setupMock: func(m *MockRouteService) {
				m.CreateSessionFunc = func(ctx context.Context, packID string) (*service.SessionInfo, error) {
					return &service.SessionInfo{
						ID:             "sess-123",
						PackID:         "default",
						CreatedAt:      time.Now(),
						LastAccessedAt: time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with specific pack",
			requestBody: map[string]string{"pack_id": "europe"},
			setupMock: func(m *MockRouteService) {
				m.CreateSessionFunc = func(ctx context.Context, packID string) (*service.SessionInfo, error) {
					if packID != "europe" {
						t.Errorf("Expected pack ID 'europe', got %s", packID)
					}
					return &service.SessionInfo{
						ID:        "sess-456",
						PackID:    packID,
						CreatedAt: time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.PackID != "europe" {
					t.Errorf("Expected pack ID 'europe', got %s", resp.PackID)
				}
			},
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockRouteService) {
				m.CreateSessionFunc = func(ctx context.Context, packID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockRouteService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions", tt.requestBody)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockRouteService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "List multiple sessions",
			setupMock: func(m *MockRouteService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return []*service.SessionInfo{
						{ID: "sess-1", PackID: "classic"},
						{ID: "sess-2", PackID: "europe"},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 2 {
					t.Errorf("Expected count 2, got %v", resp["count"])
				}
				sessions := resp["sessions"].([]interface{})
				if len(sessions) != 2 {
					t.Errorf("Expected 2 sessions, got %d", len(sessions))
				}
			},
		},
		{
			name: "Handle empty session list",
			setupMock: func(m *MockRouteService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return []*service.SessionInfo{}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 0 {
					t.Errorf("Expected count 0, got %v", resp["count"])
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockRouteService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return nil, fmt.Errorf("database error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "database error" {
					t.Errorf("Expected error 'database error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockRouteService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions", nil)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessionsSorting(t *testing.T) {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	mockService := &MockRouteService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: base, LastAccessedAt: base},
				{ID: "new", CreatedAt: base.Add(time.Hour), LastAccessedAt: base.Add(2 * time.Hour)},
			}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("GET", "/api/sessions?sort=created&order=asc&limit=1", nil)

	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	parseResponse(t, w, &resp)
	if resp.Count != 1 {
		t.Errorf("Expected 1 session after limit, got %d", resp.Count)
	}
	if len(resp.Sessions) != 1 || resp.Sessions[0].ID != "old" {
		t.Error("Expected oldest session first with asc order on created")
	}
}

func TestGetSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockRouteService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Get existing session",
			sessionID: "sess-123",
			setupMock: func(m *MockRouteService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					if sessionID != "sess-123" {
						return nil, fmt.Errorf("session not found")
					}
					return &service.SessionInfo{
						ID:        sessionID,
						PackID:    "classic",
						CreatedAt: time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:      "Session not found",
			sessionID: "nonexistent",
			setupMock: func(m *MockRouteService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockRouteService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions/"+tt.sessionID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGetSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	mockService := &MockRouteService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "sess-123" {
				return fmt.Errorf("session not found")
			}
			return nil
		},
	}

	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	req := makeRequest("DELETE", "/api/sessions/sess-123", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})
	server.handleDeleteSession(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = makeRequest("DELETE", "/api/sessions/nonexistent", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "nonexistent"})
	server.handleDeleteSession(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// Round Operations Tests

func TestGuess(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		requestBody    map[string]interface{}
		setupMock      func(*MockRouteService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Valid guess added to route",
			sessionID:   "sess-123",
			requestBody: map[string]interface{}{"country": "Austria"},
			setupMock: func(m *MockRouteService) {
				m.GuessFunc = func(ctx context.Context, sessionID, country string) (*service.GuessOutcome, error) {
					if country != "Austria" {
						t.Errorf("Expected country 'Austria', got %s", country)
					}
					return &service.GuessOutcome{
						GuessResult: engine.GuessResult{
							Action:  engine.ActionAdded,
							Country: "Austria",
							Route:   []string{"Germany", "Austria"},
						},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.GuessOutcome
				parseResponse(t, w, &resp)
				if resp.Action != engine.ActionAdded {
					t.Errorf("Expected action 'added', got %s", resp.Action)
				}
				if len(resp.Route) != 2 {
					t.Errorf("Expected route of 2 countries, got %d", len(resp.Route))
				}
			},
		},
		{
			name:        "Completing guess carries score",
			sessionID:   "sess-123",
			requestBody: map[string]interface{}{"country": "Italy"},
			setupMock: func(m *MockRouteService) {
				m.GuessFunc = func(ctx context.Context, sessionID, country string) (*service.GuessOutcome, error) {
					return &service.GuessOutcome{
						GuessResult: engine.GuessResult{
							Action:  engine.ActionComplete,
							Country: "Italy",
							Steps:   2,
							Par:     2,
						},
						FirstTry: true,
						Score:    7,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.GuessOutcome
				parseResponse(t, w, &resp)
				if resp.Action != engine.ActionComplete {
					t.Errorf("Expected action 'complete', got %s", resp.Action)
				}
				if resp.Score != 7 {
					t.Errorf("Expected score 7, got %d", resp.Score)
				}
			},
		},
		{
			name:           "Missing country",
			sessionID:      "sess-123",
			requestBody:    map[string]interface{}{"country": ""},
			setupMock:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Session not found",
			sessionID:   "nonexistent",
			requestBody: map[string]interface{}{"country": "Austria"},
			setupMock: func(m *MockRouteService) {
				m.GuessFunc = func(ctx context.Context, sessionID, country string) (*service.GuessOutcome, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockRouteService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/"+tt.sessionID+"/guess", tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGuess(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestUndoAndHint(t *testing.T) {
	mockService := &MockRouteService{
		UndoFunc: func(ctx context.Context, sessionID string) (*service.UndoOutcome, error) {
			return &service.UndoOutcome{
				UndoResult: engine.UndoResult{
					Action:  engine.ActionUndone,
					Removed: "Austria",
					Route:   []string{"Germany"},
				},
			}, nil
		},
		HintFunc: func(ctx context.Context, sessionID string) (*service.HintOutcome, error) {
			return &service.HintOutcome{
				HintResult: engine.HintResult{
					Action:         engine.ActionHint,
					Country:        "Switzerland",
					HintsRemaining: 2,
				},
			}, nil
		},
	}

	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	req := makeRequest("POST", "/api/sessions/sess-123/undo", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})
	server.handleUndo(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for undo, got %d", w.Code)
	}
	var undoResp service.UndoOutcome
	parseResponse(t, w, &undoResp)
	if undoResp.Removed != "Austria" {
		t.Errorf("Expected removed country Austria, got %s", undoResp.Removed)
	}

	w = httptest.NewRecorder()
	req = makeRequest("POST", "/api/sessions/sess-123/hint", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})
	server.handleHint(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for hint, got %d", w.Code)
	}
	var hintResp service.HintOutcome
	parseResponse(t, w, &hintResp)
	if hintResp.Country != "Switzerland" {
		t.Errorf("Expected hint country Switzerland, got %s", hintResp.Country)
	}
	if hintResp.HintsRemaining != 2 {
		t.Errorf("Expected 2 hints remaining, got %d", hintResp.HintsRemaining)
	}
}

func TestGiveUpAndTimeout(t *testing.T) {
	terminal := &service.TerminalOutcome{
		TerminalResult: engine.TerminalResult{
			Action:      engine.ActionGaveUp,
			OptimalPath: []string{"Germany", "Austria", "Italy"},
			Par:         1,
		},
	}

	mockService := &MockRouteService{
		GiveUpFunc: func(ctx context.Context, sessionID string) (*service.TerminalOutcome, error) {
			return terminal, nil
		},
		TimeoutFunc: func(ctx context.Context, sessionID string) (*service.TerminalOutcome, error) {
			return terminal, nil
		},
	}

	server := setupTestServer(mockService)

	for _, op := range []string{"give-up", "timeout"} {
		w := httptest.NewRecorder()
		req := makeRequest("POST", "/api/sessions/sess-123/"+op, nil)
		req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})

		if op == "give-up" {
			server.handleGiveUp(w, req)
		} else {
			server.handleTimeout(w, req)
		}

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200 for %s, got %d", op, w.Code)
		}
		var resp service.TerminalOutcome
		parseResponse(t, w, &resp)
		if resp.Action != engine.ActionGaveUp {
			t.Errorf("Expected action 'gave_up' for %s, got %s", op, resp.Action)
		}
		if len(resp.OptimalPath) != 3 {
			t.Errorf("Expected revealed optimal path for %s", op)
		}
	}
}

func TestNewRound(t *testing.T) {
	mockService := &MockRouteService{
		NewRoundFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return &service.SessionInfo{
				ID:           sessionID,
				RoundsPlayed: 3,
				Route:        engine.RouteInfo{Start: "Chile", End: "Guyana", Par: 4},
			}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("POST", "/api/sessions/sess-123/new-round", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})

	server.handleNewRound(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.SessionInfo
	parseResponse(t, w, &resp)
	if resp.Route.Start != "Chile" || resp.Route.Par != 4 {
		t.Error("New round route not returned")
	}
}

func TestProgressEndpoint(t *testing.T) {
	mockService := &MockRouteService{
		ProgressFunc: func(ctx context.Context, sessionID string) (*service.ProgressOutcome, error) {
			return &service.ProgressOutcome{
				Progress: engine.Progress{
					Route:          []string{"Germany", "Austria"},
					Steps:          1,
					Par:            2,
					HintsRemaining: 3,
				},
			}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("GET", "/api/sessions/sess-123/progress", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})

	server.handleProgress(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.ProgressOutcome
	parseResponse(t, w, &resp)
	if resp.Steps != 1 || resp.HintsRemaining != 3 {
		t.Error("Progress not correctly returned")
	}
}

// Pack Tests

func TestListPacks(t *testing.T) {
	mockService := &MockRouteService{
		ListPacksFunc: func(ctx context.Context) ([]*config.PackInfo, error) {
			return []*config.PackInfo{
				{PackID: "classic", Name: "Classic"},
				{PackID: "europe", Name: "Grand Tour"},
			}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("GET", "/api/packs", nil)

	server.handleListPacks(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp []*config.PackInfo
	parseResponse(t, w, &resp)
	if len(resp) != 2 {
		t.Errorf("Expected 2 packs, got %d", len(resp))
	}
}

func TestGetPack(t *testing.T) {
	mockService := &MockRouteService{
		LoadPackFunc: func(ctx context.Context, name string) (*config.RoutePack, error) {
			if name != "europe" {
				t.Errorf("Expected pack name 'europe' (without .json), got %s", name)
			}
			return &config.RoutePack{Name: "Grand Tour"}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("GET", "/api/packs/europe.json", nil)
	req = mux.SetURLVars(req, map[string]string{"name": "europe.json"})

	server.handleGetPack(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp config.RoutePack
	parseResponse(t, w, &resp)
	if resp.Name != "Grand Tour" {
		t.Errorf("Expected pack 'Grand Tour', got %s", resp.Name)
	}
}

func TestCreatePack(t *testing.T) {
	saved := false
	mockService := &MockRouteService{
		SavePackFunc: func(ctx context.Context, name string, pack *config.RoutePack) error {
			saved = true
			if name != "Americas" {
				t.Errorf("Expected pack name 'Americas', got %s", name)
			}
			return nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("POST", "/api/packs", map[string]interface{}{
		"name":    "Americas",
		"min_par": 2,
		"max_par": 5,
	})

	server.handleCreatePack(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	if !saved {
		t.Error("Expected pack to be saved")
	}

	// Missing name is rejected
	w = httptest.NewRecorder()
	req = makeRequest("POST", "/api/packs", map[string]interface{}{"min_par": 2})
	server.handleCreatePack(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing name, got %d", w.Code)
	}
}

func TestCountries(t *testing.T) {
	mockService := &MockRouteService{
		CountriesFunc: func(ctx context.Context) []string {
			return []string{"Argentina", "Bolivia", "Chile"}
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("GET", "/api/countries", nil)

	server.handleCountries(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Count     int      `json:"count"`
		Countries []string `json:"countries"`
	}
	parseResponse(t, w, &resp)
	if resp.Count != 3 || len(resp.Countries) != 3 {
		t.Error("Countries not correctly returned")
	}
}

// Daily Challenge Tests

func setupDailyServer(t *testing.T) *Server {
	t.Helper()

	store, err := daily.OpenStore(filepath.Join(t.TempDir(), "daily.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	names := []string{"Ava", "Bex", "Cor", "Dun", "Eli", "Fay", "Gil", "Hod"}
	borders := engine.Borders{}
	for i, name := range names {
		if i > 0 {
			borders[name] = append(borders[name], names[i-1])
		}
		if i < len(names)-1 {
			borders[name] = append(borders[name], names[i+1])
		}
	}

	challenge := daily.NewChallenge(store, atlas.New(borders), "test-salt")

	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(&MockRouteService{}, challenge, hub)
}

func TestDailyRoute(t *testing.T) {
	server := setupDailyServer(t)

	w := httptest.NewRecorder()
	req := makeRequest("GET", "/api/daily?date=2025-05-01", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var route daily.Route
	parseResponse(t, w, &route)
	if route.Date != "2025-05-01" {
		t.Errorf("Expected date 2025-05-01, got %s", route.Date)
	}
	if route.Start == "" || route.End == "" {
		t.Error("Expected start and end countries")
	}

	// Same date returns the same route
	w2 := httptest.NewRecorder()
	server.ServeHTTP(w2, makeRequest("GET", "/api/daily?date=2025-05-01", nil))
	var route2 daily.Route
	parseResponse(t, w2, &route2)
	if route != route2 {
		t.Error("Expected identical route for the same date")
	}

	// Bad date format rejected
	w3 := httptest.NewRecorder()
	server.ServeHTTP(w3, makeRequest("GET", "/api/daily?date=May-1st", nil))
	if w3.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad date, got %d", w3.Code)
	}
}

func TestDailySubmitAndLeaderboard(t *testing.T) {
	server := setupDailyServer(t)

	body := map[string]interface{}{
		"player_id":  "mara",
		"completed":  true,
		"par_diff":   0,
		"hints_used": 1,
		"elapsed_ms": 45000,
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/daily/results?date=2025-05-01", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var result daily.Result
	parseResponse(t, w, &result)
	if result.Stars != 5 {
		t.Errorf("Expected 5 stars for par finish, got %d", result.Stars)
	}

	// Second submission is rejected
	w2 := httptest.NewRecorder()
	server.ServeHTTP(w2, makeRequest("POST", "/api/daily/results?date=2025-05-01", body))
	if w2.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for repeat submission, got %d", w2.Code)
	}

	// Missing player_id is rejected
	w3 := httptest.NewRecorder()
	server.ServeHTTP(w3, makeRequest("POST", "/api/daily/results?date=2025-05-01", map[string]interface{}{"completed": true}))
	if w3.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing player, got %d", w3.Code)
	}

	// Leaderboard has the one result
	w4 := httptest.NewRecorder()
	server.ServeHTTP(w4, makeRequest("GET", "/api/daily/leaderboard?date=2025-05-01", nil))
	if w4.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for leaderboard, got %d", w4.Code)
	}
	var board struct {
		Date    string                 `json:"date"`
		Count   int                    `json:"count"`
		Results []daily.LeaderboardRow `json:"results"`
	}
	parseResponse(t, w4, &board)
	if board.Count != 1 || board.Results[0].PlayerID != "mara" {
		t.Error("Leaderboard missing submitted result")
	}

	// Streak endpoint responds
	w5 := httptest.NewRecorder()
	server.ServeHTTP(w5, makeRequest("GET", "/api/daily/streak/mara", nil))
	if w5.Code != http.StatusOK {
		t.Errorf("Expected status 200 for streak, got %d", w5.Code)
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(&MockRouteService{})
	w := httptest.NewRecorder()
	req := makeRequest("GET", "/api/health", nil)

	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", resp["status"])
	}
}

func TestWebSocketEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockRouteService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			setupMock:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockRouteService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockRouteService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ws"+tt.queryParams, nil)

			server.handleWebSocket(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
