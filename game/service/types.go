package service

import (
	"time"

	"github.com/ankitpasayat/confident-trivia/game/engine"
)

// CreateResult is returned from CreateGame. PlayerID identifies the host in
// the newly created session.
type CreateResult struct {
	Game     *engine.GameSession `json:"game"`
	PlayerID string              `json:"playerId"`
}

// JoinResult is returned from JoinGame. PlayerID identifies the player that
// was just added.
type JoinResult struct {
	Game     *engine.GameSession `json:"game"`
	PlayerID string              `json:"playerId"`
}

// VoteResult is returned from SubmitVote. RoundSettled is true when this
// vote was the last outstanding one and the round auto-advanced to reveal.
type VoteResult struct {
	Game         *engine.GameSession `json:"game"`
	RoundSettled bool                `json:"roundSettled"`
}

// GameInfo is the compact listing row for ListGames.
type GameInfo struct {
	ID           string       `json:"id"`
	Code         string       `json:"code"`
	Phase        engine.Phase `json:"phase"`
	PlayerCount  int          `json:"playerCount"`
	CurrentRound int          `json:"currentRound"`
	TotalRounds  int          `json:"totalRounds"`
	CreatedAt    time.Time    `json:"createdAt"`
	LastActivity time.Time    `json:"lastActivity"`
}
