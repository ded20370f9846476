// Package websocket pushes live game state to connected players.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections grouped by game ID. Each connection is handled by a
// pair of goroutines for reading and writing; all shared state lives inside
// the hub's Run loop, so the package needs no locks.
//
// Message Protocol:
//
// The link is one-directional: clients never send gameplay messages, they
// mutate games through the REST API and receive full state snapshots here.
// Every outgoing message is a JSON envelope:
//
//	{"gameId": "session_...", "event": "vote-submitted", "game": {...}, "timestamp": "..."}
//
// On connect the client immediately receives an "init" envelope carrying the
// current snapshot (or no game field when the game does not exist).
//
// Connection Lifecycle:
//
// 1. Client connects with ?gameId=...&playerId=...
// 2. Player is marked connected and the hub registers the client
// 3. Initial snapshot pushed
// 4. Mutations elsewhere fan out through Publish
// 5. Disconnect marks the player offline and unregisters the client
//
// The server pings every 15 seconds; a peer that misses pongs for 60 seconds
// is dropped, as is any peer whose send buffer stays full during a fan-out.
//
// Usage:
//
//	hub := websocket.NewHub(snapshotFn, gameService)
//	go hub.Run()
//	// hand hub to service.NewGameService as the Broadcaster
package websocket
