// Package mcp provides Model Context Protocol server implementation for the Geo Routes Game.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for route-building operations
//   - Session-aware command execution
//   - Stdio transport mode, proxying the REST API
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session: Create new game session with route pack selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - get_progress: Current route, steps vs par, hint budget
//   - guess_country: Extend the route with a bordering country
//   - undo: Remove the most recently added country
//   - get_hint: Spend one hint
//   - give_up: Concede and reveal the optimal route
//   - new_round: Start a fresh route in the same session
//   - list_packs: List available route packs
//   - daily_route: Get the shared route of the day
//   - game_instructions: Complete rules and strategy notes
//
// Architecture:
//
// The client is a thin proxy: every tool handler issues an HTTP request to
// the REST API server and formats the JSON response as readable text. Game
// rules live entirely on the server side, so the MCP surface never drifts
// from the REST behavior.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Autonomously play route-building rounds
//   - Manage multiple concurrent game sessions
//   - Spend hints and undos strategically
//   - Compete on the daily challenge
package mcp
