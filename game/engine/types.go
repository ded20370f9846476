package engine

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyName        = errors.New("name must not be empty")
	ErrInvalidPhase     = errors.New("not allowed in current phase")
	ErrGameFull         = errors.New("game is full")
	ErrNotEnoughPlayers = errors.New("at least two players required")
	ErrUnknownPlayer    = errors.New("player not found")
	ErrTokenUnavailable = errors.New("token not available")
	ErrNoQuestions      = errors.New("no questions supplied")
)

// Phase is the coarse state of a session's state machine.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseQuestion Phase = "question"
	PhaseVoting   Phase = "voting"
	PhaseReveal   Phase = "reveal"
	PhaseResults  Phase = "results"
)

// phaseSuccessors is the explicit transition table. Reveal fans out: back to
// question for the next round, or to results after the final round.
var phaseSuccessors = map[Phase][]Phase{
	PhaseLobby:    {PhaseQuestion},
	PhaseQuestion: {PhaseVoting},
	PhaseVoting:   {PhaseReveal},
	PhaseReveal:   {PhaseQuestion, PhaseResults},
	PhaseResults:  {},
}

// ParsePhase validates a phase received from a caller.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(s); p {
	case PhaseLobby, PhaseQuestion, PhaseVoting, PhaseReveal, PhaseResults:
		return p, nil
	}
	return "", fmt.Errorf("unknown phase %q", s)
}

// CanTransitionTo reports whether target is a legal successor of p.
func (p Phase) CanTransitionTo(target Phase) bool {
	for _, next := range phaseSuccessors[p] {
		if next == target {
			return true
		}
	}
	return false
}

// Session limits and defaults.
const (
	MinPlayers         = 2
	MaxPlayers         = 6
	DefaultTotalRounds = 10
	TokenCount         = 10
)

// PlayerColors is the fixed palette assigned round-robin as players join.
var PlayerColors = []string{
	"#EF4444", // red
	"#3B82F6", // blue
	"#10B981", // green
	"#F59E0B", // amber
	"#8B5CF6", // purple
	"#EC4899", // pink
}

// Player is one participant in a session. AvailableTokens holds the
// confidence tokens (1-10) not yet wagered; UsedTokens the ones that were
// wagered on a correct answer. A token never appears in both.
type Player struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Color           string `json:"color"`
	Score           int    `json:"score"`
	AvailableTokens []int  `json:"availableTokens"`
	UsedTokens      []int  `json:"usedTokens"`
	IsHost          bool   `json:"isHost"`
	IsConnected     bool   `json:"isConnected"`
}

// HasToken reports whether the token is still available to wager.
func (p *Player) HasToken(token int) bool {
	for _, t := range p.AvailableTokens {
		if t == token {
			return true
		}
	}
	return false
}

// PlayerVote records one player's answer for the current round together with
// the confidence token wagered on it.
type PlayerVote struct {
	PlayerID    string    `json:"playerId"`
	Answer      Answer    `json:"answer"`
	Token       int       `json:"token"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// GameSession is the aggregate root for one game from lobby to results.
type GameSession struct {
	ID              string       `json:"id"`
	Code            string       `json:"code"`
	HostID          string       `json:"hostId"`
	Players         []*Player    `json:"players"`
	CurrentPhase    Phase        `json:"currentPhase"`
	CurrentRound    int          `json:"currentRound"`
	TotalRounds     int          `json:"totalRounds"`
	CurrentQuestion *Question    `json:"currentQuestion"`
	Votes           []PlayerVote `json:"votes"`
	QuestionHistory []Question   `json:"questionHistory"`
	CreatedAt       time.Time    `json:"createdAt"`
	LastActivity    time.Time    `json:"lastActivity"`
}

// Player returns the player with the given id, or nil.
func (s *GameSession) Player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Touch records activity for the session reaper.
func (s *GameSession) Touch() {
	s.LastActivity = time.Now()
}

// Clone returns a deep copy of the session, safe to hand to broadcast
// subscribers while the original keeps mutating under its lock.
func (s *GameSession) Clone() *GameSession {
	c := *s

	c.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		cp.AvailableTokens = append([]int(nil), p.AvailableTokens...)
		cp.UsedTokens = append([]int(nil), p.UsedTokens...)
		c.Players[i] = &cp
	}

	c.Votes = append([]PlayerVote(nil), s.Votes...)
	c.QuestionHistory = append([]Question(nil), s.QuestionHistory...)
	for i := range c.QuestionHistory {
		c.QuestionHistory[i].Options = append([]string(nil), s.QuestionHistory[i].Options...)
	}
	if s.CurrentQuestion != nil {
		q := *s.CurrentQuestion
		q.Options = append([]string(nil), s.CurrentQuestion.Options...)
		c.CurrentQuestion = &q
	}

	return &c
}

// fullTokenSet builds the 1..TokenCount token pool a player starts with.
func fullTokenSet() []int {
	tokens := make([]int, TokenCount)
	for i := range tokens {
		tokens[i] = i + 1
	}
	return tokens
}
