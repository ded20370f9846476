// Package mcp exposes the trivia game to AI agents over the Model Context
// Protocol.
//
// The package is a thin client: every tool call is proxied to the REST API,
// so the MCP surface and the web surface always agree on game rules.
//
// MCP Tools:
//   - create_game: Create a game and become its host
//   - join_game: Join a game by its 4-character code
//   - start_game: Move a lobby into the first question
//   - submit_vote: Answer the current question with a confidence token
//   - change_phase: Drive the round flow (voting, reveal, question, results)
//   - get_game: Full game snapshot rendered as text
//   - list_games: List all live games
//   - game_instructions: Complete game rules
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: direct stdio communication for local MCP clients
//   - HTTP: streamable HTTP endpoint for remote MCP integration
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	httpServer := server.NewStreamableHTTPServer(client.GetMCPServer())
//	httpServer.Start(":8081")
package mcp
