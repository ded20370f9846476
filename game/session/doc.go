// Package session owns the in-memory registry of live game sessions and the
// background reaper that expires abandoned ones.
//
// # Store
//
// Store maps session IDs to sessions and keeps a secondary index from join
// code to session ID. Codes are matched case-insensitively. All mutation of
// a session's state goes through WithLock, which serializes writers on a
// per-session mutex so two sessions never contend with each other:
//
//	store := session.NewStore()
//	err := store.WithLock(id, func(gs *engine.GameSession) error {
//	    return gs.SubmitVote(playerID, answer, token)
//	})
//
// Read access uses Get/GetByCode, which return the live pointer; callers
// that publish state outside a lock must snapshot with Clone first.
//
// # Reaper
//
// Reaper periodically sweeps sessions whose last activity is older than a
// configured threshold. Start it once at boot and Stop it on shutdown.
package session
