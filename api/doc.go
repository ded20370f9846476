// Package api provides the HTTP REST surface of the trivia game server.
//
// Endpoints:
//
// Lifecycle:
//   - POST /api/games - Create a game; body {"hostName": "..."}
//   - POST /api/games/join - Join by code; body {"code": "...", "playerName": "..."}
//   - GET /api/games - List live games, most recently active first
//   - GET /api/games/{id} - Full game snapshot
//   - DELETE /api/games/{id} - Remove a game immediately
//
// Gameplay:
//   - POST /api/games/{id}/start - Lobby to first question
//   - POST /api/games/{id}/phase - Drive the state machine; body {"phase": "voting|reveal|question|results"}
//   - POST /api/games/{id}/vote - Lock in an answer; body {"playerId": "...", "answer": <number|bool>, "token": 1-10}
//
// Realtime:
//   - GET /ws?gameId=...&playerId=... - WebSocket upgrade for state push
//   - GET /health - Liveness probe
//
// Request/Response Format:
//
// All endpoints accept and return JSON. The answer field is a bare number
// (option index or numerical guess) or a boolean for true-false questions.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{"error": "message"}
//
// 404 unknown game, 400 malformed input, 409 game-rule violation (wrong
// phase, full lobby, spent token), 502 question sources unavailable.
package api
