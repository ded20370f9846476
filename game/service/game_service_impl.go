package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ankitpasayat/confident-trivia/game/engine"
	"github.com/ankitpasayat/confident-trivia/game/questions"
	"github.com/ankitpasayat/confident-trivia/game/session"
)

// codeRetries bounds how many fresh join codes are tried when the generated
// one collides with a live session.
const codeRetries = 5

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	store       *session.Store
	source      questions.Source
	broadcaster Broadcaster
	totalRounds int
}

// NewGameService creates a new game service instance. totalRounds <= 0 uses
// the engine default.
func NewGameService(store *session.Store, source questions.Source, broadcaster Broadcaster, totalRounds int) GameService {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	return &gameServiceImpl{
		store:       store,
		source:      source,
		broadcaster: broadcaster,
		totalRounds: totalRounds,
	}
}

// CreateGame creates a new lobby with the given host.
func (s *gameServiceImpl) CreateGame(ctx context.Context, hostName string) (*CreateResult, error) {
	gs, err := engine.NewSession(hostName, s.totalRounds)
	if err != nil {
		return nil, err
	}

	// Join codes are short, so collisions with live games happen. Re-roll a
	// bounded number of times before giving up.
	for attempt := 0; ; attempt++ {
		err = s.store.Insert(gs)
		if err == nil {
			break
		}
		if !errors.Is(err, session.ErrCodeTaken) || attempt >= codeRetries {
			return nil, fmt.Errorf("failed to register game: %w", err)
		}
		gs.Code = engine.GameCode()
	}

	log.Printf("[GAME] Created game %s with code %s (host %s)", gs.ID, gs.Code, gs.HostID)

	snapshot := gs.Clone()
	s.broadcaster.Publish(gs.ID, "game-created", snapshot)
	return &CreateResult{Game: snapshot, PlayerID: gs.HostID}, nil
}

// JoinGame adds a player to the lobby identified by its join code.
func (s *gameServiceImpl) JoinGame(ctx context.Context, code, playerName string) (*JoinResult, error) {
	gs, err := s.store.GetByCode(code)
	if err != nil {
		return nil, err
	}

	var playerID string
	var snapshot *engine.GameSession
	err = s.store.WithLock(gs.ID, func(live *engine.GameSession) error {
		player, err := live.Join(playerName)
		if err != nil {
			return err
		}
		playerID = player.ID
		snapshot = live.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[GAME] Player %s joined game %s", playerID, gs.ID)
	s.broadcaster.Publish(gs.ID, "player-joined", snapshot)
	return &JoinResult{Game: snapshot, PlayerID: playerID}, nil
}

// StartGame sources a question set and moves the lobby into the first round.
// Question generation happens before the session lock is taken so a slow
// generator never stalls other operations on the game.
func (s *gameServiceImpl) StartGame(ctx context.Context, gameID string) (*engine.GameSession, error) {
	// Round count is read under the lock; Start clamps it under the same
	// lock, so a bare read off the live pointer would race.
	var totalRounds int
	if err := s.store.WithLock(gameID, func(live *engine.GameSession) error {
		totalRounds = live.TotalRounds
		return nil
	}); err != nil {
		return nil, err
	}

	qs, err := s.source.Generate(ctx, totalRounds, questions.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to source questions: %w", err)
	}

	var snapshot *engine.GameSession
	err = s.store.WithLock(gameID, func(live *engine.GameSession) error {
		if err := live.Start(qs); err != nil {
			return err
		}
		snapshot = live.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[GAME] Started game %s with %d rounds", gameID, snapshot.TotalRounds)
	s.broadcaster.Publish(gameID, "game-started", snapshot)
	return snapshot, nil
}

// SubmitVote records a player's answer and confidence token. When the vote
// completes the round the session settles to reveal and an extra phase event
// is published.
func (s *gameServiceImpl) SubmitVote(ctx context.Context, gameID, playerID string, answer engine.Answer, token int) (*VoteResult, error) {
	var snapshot *engine.GameSession
	var settled bool
	err := s.store.WithLock(gameID, func(live *engine.GameSession) error {
		if err := live.SubmitVote(playerID, answer, token); err != nil {
			return err
		}
		settled = live.CurrentPhase == engine.PhaseReveal
		snapshot = live.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(gameID, "vote-submitted", snapshot)
	if settled {
		log.Printf("[GAME] Round %d settled in game %s", snapshot.CurrentRound, gameID)
		s.broadcaster.Publish(gameID, "phase-reveal", snapshot)
	}
	return &VoteResult{Game: snapshot, RoundSettled: settled}, nil
}

// AdvancePhase drives the session state machine toward the requested phase.
// Targets with round side effects route through the dedicated operations;
// anything else is a plain validated switch.
func (s *gameServiceImpl) AdvancePhase(ctx context.Context, gameID string, target engine.Phase) (*engine.GameSession, error) {
	var snapshot *engine.GameSession
	err := s.store.WithLock(gameID, func(live *engine.GameSession) error {
		var err error
		switch target {
		case engine.PhaseReveal:
			err = live.ProcessRoundResults()
		case engine.PhaseQuestion:
			// From reveal, "next question" either advances the round or ends
			// the game, so the session may land in results instead.
			if live.CurrentPhase == engine.PhaseReveal {
				err = live.NextRound()
			} else {
				err = live.ChangePhase(target)
			}
		default:
			err = live.ChangePhase(target)
		}
		if err != nil {
			return err
		}
		snapshot = live.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := "phase-" + string(snapshot.CurrentPhase)
	log.Printf("[GAME] Game %s moved to phase %s", gameID, snapshot.CurrentPhase)
	s.broadcaster.Publish(gameID, event, snapshot)
	return snapshot, nil
}

// GetGame returns a snapshot of the session.
func (s *gameServiceImpl) GetGame(ctx context.Context, gameID string) (*engine.GameSession, error) {
	var snapshot *engine.GameSession
	err := s.store.WithLock(gameID, func(live *engine.GameSession) error {
		snapshot = live.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// GetGameByCode returns a snapshot of the session with the given join code.
func (s *gameServiceImpl) GetGameByCode(ctx context.Context, code string) (*engine.GameSession, error) {
	gs, err := s.store.GetByCode(code)
	if err != nil {
		return nil, err
	}
	return s.GetGame(ctx, gs.ID)
}

// ListGames returns a compact listing of all live sessions.
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*GameInfo, error) {
	live := s.store.List()
	result := make([]*GameInfo, 0, len(live))
	for _, gs := range live {
		info := &GameInfo{}
		err := s.store.WithLock(gs.ID, func(l *engine.GameSession) error {
			*info = GameInfo{
				ID:           l.ID,
				Code:         l.Code,
				Phase:        l.CurrentPhase,
				PlayerCount:  len(l.Players),
				CurrentRound: l.CurrentRound,
				TotalRounds:  l.TotalRounds,
				CreatedAt:    l.CreatedAt,
				LastActivity: l.LastActivity,
			}
			return nil
		})
		if err != nil {
			// Session was removed between List and the lock; skip it.
			continue
		}
		result = append(result, info)
	}
	return result, nil
}

// DeleteGame removes a session immediately.
func (s *gameServiceImpl) DeleteGame(ctx context.Context, gameID string) error {
	if err := s.store.Remove(gameID); err != nil {
		return err
	}
	log.Printf("[GAME] Deleted game %s", gameID)
	return nil
}

// SetConnected flags a player's connection state and notifies subscribers.
func (s *gameServiceImpl) SetConnected(ctx context.Context, gameID, playerID string, connected bool) error {
	var snapshot *engine.GameSession
	err := s.store.WithLock(gameID, func(live *engine.GameSession) error {
		live.SetConnected(playerID, connected)
		snapshot = live.Clone()
		return nil
	})
	if err != nil {
		return err
	}

	event := "player-disconnected"
	if connected {
		event = "player-connected"
	}
	s.broadcaster.Publish(gameID, event, snapshot)
	return nil
}
