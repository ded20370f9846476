// Package service is the orchestration layer between the transports and the
// game engine. It owns the session store, sources questions for new games,
// and fans out state snapshots to connected clients after every mutation.
//
// All transports (REST, WebSocket, MCP) call the same GameService interface,
// so game rules are enforced in exactly one place. Mutations run under the
// store's per-session lock; the snapshot handed to the Broadcaster is a deep
// clone taken inside that lock, so subscribers never observe a half-applied
// update and never share memory with the live session.
//
// Events published to the Broadcaster:
//
//	game-created    a new session exists (lobby)
//	player-joined   a player entered the lobby
//	game-started    first question is live
//	phase-<name>    the session moved to phase <name>
//	vote-submitted  a player locked in an answer
//	player-connected, player-disconnected
//	                a player's realtime link changed state
package service
