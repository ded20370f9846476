package service

import (
	"context"

	"github.com/ankitpasayat/confident-trivia/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Lifecycle
	CreateGame(ctx context.Context, hostName string) (*CreateResult, error)
	JoinGame(ctx context.Context, code, playerName string) (*JoinResult, error)
	StartGame(ctx context.Context, gameID string) (*engine.GameSession, error)
	DeleteGame(ctx context.Context, gameID string) error

	// Gameplay
	SubmitVote(ctx context.Context, gameID, playerID string, answer engine.Answer, token int) (*VoteResult, error)
	AdvancePhase(ctx context.Context, gameID string, target engine.Phase) (*engine.GameSession, error)

	// Queries
	GetGame(ctx context.Context, gameID string) (*engine.GameSession, error)
	GetGameByCode(ctx context.Context, code string) (*engine.GameSession, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)

	// Presence
	SetConnected(ctx context.Context, gameID, playerID string, connected bool) error
}

// Broadcaster receives state snapshots after every successful mutation. The
// snapshot is a deep clone; implementations may retain it freely.
type Broadcaster interface {
	Publish(gameID, event string, snapshot *engine.GameSession)
}

// NopBroadcaster discards all events. Useful for tests and offline tools.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(string, string, *engine.GameSession) {}
