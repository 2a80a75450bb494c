package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/worldwalk/georoutes/game/daily"
	"github.com/worldwalk/georoutes/game/engine"
	"github.com/worldwalk/georoutes/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Geo Routes Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Geo Routes Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Build a land route between two countries by naming bordering countries one
at a time. Finish in as few countries as possible; the shortest possible
route sets par.

AVAILABLE TOOLS:
- create_session: Create new game session (optional route pack)
- list_sessions: List all active sessions
- get_session: Get session details
- get_progress: Current route, steps vs par, hints remaining
- guess_country: Name a country to extend the route - requires intent explanation
- undo: Remove the most recently added country
- get_hint: Spend one of three hints (names the next country, or tells you to undo)
- give_up: Concede and reveal the optimal route
- new_round: Start a fresh route in the same session
- list_packs: List available route packs
- daily_route: Get the shared route of the day
- game_instructions: Get comprehensive game instructions and rules

NOTE: The 'intent' parameter on guess_country serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional route pack selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pack_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the route pack to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Round operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_progress",
		Description: "Get the current route progress for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetProgress)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "guess_country",
		Description: "Name a country to extend the route. Valid if it borders any country already on the route; the round completes automatically when the guess borders the destination.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"country": map[string]interface{}{
					"type":        "string",
					"description": "Country name to add to the route",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this guess (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "country"},
		},
	}, c.handleGuess)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "undo",
		Description: "Remove the most recently added country from the route. Wrong guesses are not refunded, and hints are never refunded.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleUndo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_hint",
		Description: "Spend one of three hints. If you are still on the shortest route the hint names the next country; if you have drifted off it, the hint tells you how many steps to undo.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "give_up",
		Description: "Concede the round and reveal the optimal route",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGiveUp)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_round",
		Description: "Start a fresh route in an existing session, keeping cumulative totals",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleNewRound)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_packs",
		Description: "List available route packs",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPacks)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "daily_route",
		Description: "Get the shared route of the day",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"date": map[string]interface{}{
					"type":        "string",
					"description": "Challenge date as YYYY-MM-DD (optional, defaults to today)",
				},
			},
		},
	}, c.handleDailyRoute)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	packID, _ := args["pack_id"].(string)

	body := map[string]string{}
	if packID != "" {
		body["pack_id"] = packID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Pack: %s, Route: %s → %s, Created: %s)\n",
			s.ID, s.PackID, s.Route.Start, s.Route.End, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var progress service.ProgressOutcome
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/progress", sessionID), nil, &progress)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatProgress(&progress)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGuess(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	country, _ := args["country"].(string)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"country": country,
	}

	var result service.GuessOutcome
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/guess", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatGuessOutcome(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.UndoOutcome
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/undo", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response string
	switch result.Action {
	case engine.ActionUndone:
		response = fmt.Sprintf("✓ Removed %s\nRoute: %s", result.Removed, strings.Join(result.Route, " → "))
	case engine.ActionCannotUndo:
		response = "✗ Nothing to undo, only the start country remains"
	default:
		response = "Round already ended, undo ignored"
	}

	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.HintOutcome
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/hint", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("%s\nHints remaining: %d", result.Message, result.HintsRemaining)
	if result.Country != "" {
		response = fmt.Sprintf("Hint: %s\n%s", result.Country, response)
	}

	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleGiveUp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.TerminalOutcome
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/give-up", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("Round over.\nYour route: %s\nOptimal route: %s\nPar: %d | Hints used: %d | Time: %.0fs",
		strings.Join(result.Route, " → "),
		strings.Join(result.OptimalPath, " → "),
		result.Par, result.HintsUsed, result.TimeSeconds)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleNewRound(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/new-round", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListPacks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var packs []struct {
		PackID           string `json:"pack_id"`
		Name             string `json:"name"`
		Description      string `json:"description"`
		FixedRoutes      int    `json:"fixed_routes"`
		TimeLimitSeconds int    `json:"time_limit_seconds"`
		MaxHints         int    `json:"max_hints"`
	}
	err := c.apiCall("GET", "/api/packs", nil, &packs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Route Packs:\n\n"
	for _, pack := range packs {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Fixed routes: %d, Time limit: %ds, Hints: %d\n\n",
			pack.Name, pack.PackID, pack.Description, pack.FixedRoutes, pack.TimeLimitSeconds, pack.MaxHints)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDailyRoute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	date, _ := args["date"].(string)

	path := "/api/daily"
	if date != "" {
		path += "?date=" + date
	}

	var route daily.Route
	err := c.apiCall("GET", path, nil, &route)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Route of the day (%s):\n%s → %s\nPar: %d",
		route.Date, route.Start, route.End, route.Par)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🌍 Geo Routes Game - Complete Instructions

GAME OBJECTIVE:
Build a land route from a start country to a destination country by naming
bordering countries one at a time. The shortest possible route sets par;
finish at or under par for the best score.

GAME MECHANICS:
• Guessing: A guess is valid if it borders ANY country already on your
  route, not just the last one. You can branch from an earlier country.
• Auto-completion: When a valid guess borders the destination, the round
  completes immediately with the destination appended for you.
• Par: The number of intermediate countries on the shortest route. Your
  steps are counted the same way, so matching par means a perfect round.
• Undo: Removes the most recently added country. Wrong-guess counts are
  restored to what they were at that point, but hints are never refunded.
• Hints: You get 3 per round. On the shortest route, a hint names the next
  country. Off it, the hint tells you how many steps to undo - it will not
  name a country.
• Give up / timeout: Ends the round and reveals the optimal route. Your
  partial route is left exactly as it was.

SCORING:
• Base 5 points for completing a route at or under par
• +1 bonus for no wrong guesses, +1 bonus for finishing under 30 seconds
• Over par: 5 minus the overage, floor of 1
• Each hint used costs 1 point; gave-up rounds score 0

🤖 AI AGENTS - SUCCESS STRATEGIES:

1. **Think in borders, not geography trivia**: the only question that
   matters is "does X share a land border with something on my route?"

2. **Branch deliberately**: if you hit a dead end, you do not have to undo
   immediately - any country on your route is a valid branch point.

3. **Spend hints early when lost**: a hint on the optimal path names the
   exact next country. A hint after drifting only tells you to undo, which
   is less information for the same cost.

4. **Watch steps vs par**: get_progress shows both. If steps exceed par
   you can still finish, but the score drops per extra step.

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has a unique 4-character ID
- Sessions maintain independent state and cumulative score
- new_round keeps totals and deals a fresh route

DAILY CHALLENGE:
- daily_route returns the shared route everyone plays on a given date
- One scored attempt per player per day; stars are based on par difference

Good luck building your route! 🗺️`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Session: %s\nPack: %s\nCreated: %s\n",
		session.ID, session.PackID,
		session.CreatedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Route: %s → %s (par %d)\n",
		session.Route.Start, session.Route.End, session.Route.Par))
	if session.TimeLimitSeconds > 0 {
		b.WriteString(fmt.Sprintf("Time limit: %ds\n", session.TimeLimitSeconds))
	}
	b.WriteString(fmt.Sprintf("Rounds played: %d | Total score: %d\n",
		session.RoundsPlayed, session.TotalScore))
	b.WriteString("\n")
	b.WriteString(formatEngineProgress(session.Route, session.Progress))
	return b.String()
}

func formatProgress(progress *service.ProgressOutcome) string {
	return formatEngineProgress(progress.Route, progress.Progress)
}

func formatEngineProgress(route engine.RouteInfo, p engine.Progress) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Destination: %s\n", route.End))
	b.WriteString(fmt.Sprintf("Current route: %s\n", strings.Join(p.Route, " → ")))
	b.WriteString(fmt.Sprintf("Steps: %d | Par: %d | Hints: %d used, %d remaining\n",
		p.Steps, p.Par, p.HintsUsed, p.HintsRemaining))

	if p.RoundEnded {
		b.WriteString("\nRound ended.")
	}

	return b.String()
}

func formatGuessOutcome(result *service.GuessOutcome) string {
	switch result.Action {
	case engine.ActionAdded:
		return fmt.Sprintf("✓ Added %s\nRoute: %s",
			result.Country, strings.Join(result.Route, " → "))
	case engine.ActionComplete:
		response := fmt.Sprintf("🎉 Route complete!\nRoute: %s\nSteps: %d | Par: %d (%+d) | Hints used: %d | Time: %.0fs",
			strings.Join(result.Route, " → "),
			result.Steps, result.Par, result.ParDiff, result.HintsUsed, result.TimeSeconds)
		if result.Score > 0 {
			response += fmt.Sprintf("\nScore: %d", result.Score)
			if result.FirstTry {
				response += " (no wrong guesses)"
			}
		}
		return response
	case engine.ActionInvalid:
		return fmt.Sprintf("✗ %s\nWrong guesses so far: %d", result.Message, result.WrongGuesses)
	default:
		return "Round already ended, guess ignored"
	}
}
