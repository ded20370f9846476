package engine

import (
	"fmt"
	"strings"
	"time"
)

// NewSession builds a fresh session in the lobby phase with the host as its
// first player. totalRounds <= 0 selects the default round count.
func NewSession(hostName string, totalRounds int) (*GameSession, error) {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		return nil, ErrEmptyName
	}
	if totalRounds <= 0 {
		totalRounds = DefaultTotalRounds
	}

	now := time.Now()
	host := &Player{
		ID:              PlayerID(),
		Name:            hostName,
		Color:           PlayerColors[0],
		AvailableTokens: fullTokenSet(),
		UsedTokens:      []int{},
		IsHost:          true,
		IsConnected:     true,
	}

	return &GameSession{
		ID:           SessionID(),
		Code:         GameCode(),
		HostID:       host.ID,
		Players:      []*Player{host},
		CurrentPhase: PhaseLobby,
		CurrentRound: 0,
		TotalRounds:  totalRounds,
		Votes:        []PlayerVote{},
		CreatedAt:    now,
		LastActivity: now,
	}, nil
}

// Join appends a new player while the session is still in the lobby. Colors
// are assigned round-robin over the fixed palette.
func (s *GameSession) Join(playerName string) (*Player, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, ErrEmptyName
	}
	if s.CurrentPhase != PhaseLobby {
		return nil, fmt.Errorf("%w: cannot join in %s", ErrInvalidPhase, s.CurrentPhase)
	}
	if len(s.Players) >= MaxPlayers {
		return nil, ErrGameFull
	}

	player := &Player{
		ID:              PlayerID(),
		Name:            playerName,
		Color:           PlayerColors[len(s.Players)%len(PlayerColors)],
		AvailableTokens: fullTokenSet(),
		UsedTokens:      []int{},
		IsConnected:     true,
	}
	s.Players = append(s.Players, player)
	s.Touch()
	return player, nil
}

// Start commits the question list and moves the session into the first
// round. The caller fetches questions before taking the session lock; Start
// only validates and commits. TotalRounds is clamped to the questions
// actually supplied.
func (s *GameSession) Start(questions []Question) error {
	if s.CurrentPhase != PhaseLobby {
		return fmt.Errorf("%w: game already started", ErrInvalidPhase)
	}
	if len(s.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	if len(questions) < s.TotalRounds {
		s.TotalRounds = len(questions)
	}

	s.QuestionHistory = questions
	s.CurrentRound = 1
	q := questions[0]
	s.CurrentQuestion = &q
	s.CurrentPhase = PhaseQuestion
	s.Touch()
	return nil
}

// SubmitVote upserts the player's vote for the current round: a second
// submission from the same player replaces the first while voting is open.
// When the last player's vote lands, the round settles immediately in the
// same transition, so the all-voted check and the phase change are atomic
// under the caller's session lock.
func (s *GameSession) SubmitVote(playerID string, answer Answer, token int) error {
	if s.CurrentPhase != PhaseVoting {
		return fmt.Errorf("%w: voting is not open", ErrInvalidPhase)
	}
	player := s.Player(playerID)
	if player == nil {
		return ErrUnknownPlayer
	}
	if !player.HasToken(token) {
		return fmt.Errorf("%w: token %d", ErrTokenUnavailable, token)
	}

	vote := PlayerVote{
		PlayerID:    playerID,
		Answer:      answer,
		Token:       token,
		SubmittedAt: time.Now(),
	}
	replaced := false
	for i := range s.Votes {
		if s.Votes[i].PlayerID == playerID {
			s.Votes[i] = vote
			replaced = true
			break
		}
	}
	if !replaced {
		s.Votes = append(s.Votes, vote)
	}
	s.Touch()

	if len(s.Votes) == len(s.Players) {
		s.settle()
	}
	return nil
}

// ProcessRoundResults is the host-triggered settlement path, used when the
// reveal happens before everyone voted. Calling it after the round already
// settled is a no-op, so votes are never scored twice.
func (s *GameSession) ProcessRoundResults() error {
	switch s.CurrentPhase {
	case PhaseVoting:
		s.settle()
	case PhaseReveal:
		// already settled
	default:
		return fmt.Errorf("%w: nothing to reveal in %s", ErrInvalidPhase, s.CurrentPhase)
	}
	s.Touch()
	return nil
}

// settle moves the session to reveal and scores every collected vote: the
// wagered token always leaves the player's available set; on a correct
// answer the token's value is added to the score and the token is retired
// into usedTokens.
func (s *GameSession) settle() {
	s.CurrentPhase = PhaseReveal

	for _, vote := range s.Votes {
		player := s.Player(vote.PlayerID)
		if player == nil {
			continue
		}

		remaining := player.AvailableTokens[:0]
		for _, t := range player.AvailableTokens {
			if t != vote.Token {
				remaining = append(remaining, t)
			}
		}
		player.AvailableTokens = remaining

		if s.CurrentQuestion != nil && s.CurrentQuestion.IsCorrect(vote.Answer) {
			player.Score += vote.Token
			player.UsedTokens = append(player.UsedTokens, vote.Token)
		}
	}
}

// NextRound clears the round's votes and either advances to the next
// question or, after the final round, ends the game in results.
func (s *GameSession) NextRound() error {
	if s.CurrentPhase != PhaseReveal {
		return fmt.Errorf("%w: round not settled", ErrInvalidPhase)
	}

	s.Votes = []PlayerVote{}
	if s.CurrentRound >= s.TotalRounds {
		s.CurrentPhase = PhaseResults
		s.CurrentQuestion = nil
	} else {
		s.CurrentRound++
		q := s.QuestionHistory[s.CurrentRound-1]
		s.CurrentQuestion = &q
		s.CurrentPhase = PhaseQuestion
	}
	s.Touch()
	return nil
}

// ChangePhase applies a plain phase switch with no settlement or round side
// effects, validated against the transition table. Targets that carry side
// effects (reveal, question) are routed to ProcessRoundResults and NextRound
// by the service layer.
func (s *GameSession) ChangePhase(target Phase) error {
	if !s.CurrentPhase.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPhase, s.CurrentPhase, target)
	}
	s.CurrentPhase = target
	s.Touch()
	return nil
}

// SetConnected tracks a player's push-subscription liveness. Unknown players
// are ignored: a stale reconnect must not error.
func (s *GameSession) SetConnected(playerID string, connected bool) {
	if player := s.Player(playerID); player != nil {
		player.IsConnected = connected
		s.Touch()
	}
}
