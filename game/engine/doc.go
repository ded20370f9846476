// Package engine provides the core game logic for Confident Trivia.
//
// The engine package implements the session state machine including:
//   - Session lifecycle (create, join, start)
//   - Phase transitions (lobby, question, voting, reveal, results)
//   - Confidence-token vote collection and settlement
//   - Question variants and answer checking
//   - Identifier generation (game codes, player and session ids)
//
// Core Types:
//
// GameSession is the aggregate root: it owns the player list, the current
// question, the collected votes and the phase state machine. Player tracks
// score and the confidence tokens (1-10) still available to wager. Question
// is a tagged union over the four supported variants.
//
// State Machine:
//
// Sessions move through lobby → question → voting → reveal, looping back to
// question until the final round ends in results. Transitions are validated
// against an explicit successor table; illegal transitions return
// ErrInvalidPhase. Settlement (scoring all votes and retiring the wagered
// tokens) happens exactly once per round: either automatically when the last
// player votes, or when the host triggers the reveal.
//
// Usage:
//
//	sess, err := engine.NewSession("Alice", 10)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	player, err := sess.Join("Bob")
//	err = sess.Start(questions)
//	err = sess.SubmitVote(player.ID, engine.NumberAnswer(2), 5)
//
// Concurrency:
//
// GameSession methods are pure transitions with no internal locking. All
// mutation must happen inside the session store's per-session lock; see the
// session package.
package engine
