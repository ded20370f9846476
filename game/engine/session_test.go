package engine

import (
	"errors"
	"fmt"
	"testing"
)

func testQuestions(n int) []Question {
	questions := make([]Question, n)
	for i := range questions {
		questions[i] = Question{
			ID:            fmt.Sprintf("q%d", i+1),
			Type:          MultipleChoice,
			Text:          fmt.Sprintf("Question %d?", i+1),
			Category:      "Testing",
			Difficulty:    Easy,
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: NumberAnswer(0),
			Explanation:   "Option A is correct.",
		}
	}
	return questions
}

// votingSession builds a started two-player session in the voting phase and
// returns it together with the host and the second player.
func votingSession(t *testing.T) (*GameSession, *Player, *Player) {
	t.Helper()

	sess, err := NewSession("Alice", 3)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	bob, err := sess.Join("Bob")
	if err != nil {
		t.Fatalf("Failed to join: %v", err)
	}
	if err := sess.Start(testQuestions(3)); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if err := sess.ChangePhase(PhaseVoting); err != nil {
		t.Fatalf("Failed to open voting: %v", err)
	}
	return sess, sess.Player(sess.HostID), bob
}

// checkTokenInvariant verifies that available and used tokens are disjoint
// and both subsets of 1..10 for every player.
func checkTokenInvariant(t *testing.T, sess *GameSession) {
	t.Helper()
	for _, p := range sess.Players {
		seen := map[int]string{}
		for _, tok := range p.AvailableTokens {
			if tok < 1 || tok > TokenCount {
				t.Errorf("Player %s: available token %d out of range", p.Name, tok)
			}
			seen[tok] = "available"
		}
		for _, tok := range p.UsedTokens {
			if tok < 1 || tok > TokenCount {
				t.Errorf("Player %s: used token %d out of range", p.Name, tok)
			}
			if where, dup := seen[tok]; dup {
				t.Errorf("Player %s: token %d in both %s and used sets", p.Name, tok, where)
			}
			seen[tok] = "used"
		}
	}
}

func TestNewSession(t *testing.T) {
	sess, err := NewSession("Alice", 0)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if sess.CurrentPhase != PhaseLobby {
		t.Errorf("Expected phase %s, got %s", PhaseLobby, sess.CurrentPhase)
	}
	if sess.CurrentRound != 0 {
		t.Errorf("Expected round 0 before start, got %d", sess.CurrentRound)
	}
	if sess.TotalRounds != DefaultTotalRounds {
		t.Errorf("Expected default %d rounds, got %d", DefaultTotalRounds, sess.TotalRounds)
	}
	if len(sess.Code) != 4 {
		t.Errorf("Expected 4-character code, got %q", sess.Code)
	}
	if len(sess.Players) != 1 {
		t.Fatalf("Expected 1 player (host), got %d", len(sess.Players))
	}

	host := sess.Players[0]
	if host.ID != sess.HostID {
		t.Error("Host id mismatch")
	}
	if !host.IsHost {
		t.Error("Expected host flag set")
	}
	if !host.IsConnected {
		t.Error("Expected host to start connected")
	}
	if host.Color != PlayerColors[0] {
		t.Errorf("Expected host color %s, got %s", PlayerColors[0], host.Color)
	}
	if len(host.AvailableTokens) != TokenCount {
		t.Errorf("Expected %d available tokens, got %d", TokenCount, len(host.AvailableTokens))
	}
	if len(host.UsedTokens) != 0 {
		t.Errorf("Expected no used tokens, got %d", len(host.UsedTokens))
	}
	checkTokenInvariant(t, sess)
}

func TestNewSession_EmptyName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t"} {
		if _, err := NewSession(name, 10); !errors.Is(err, ErrEmptyName) {
			t.Errorf("NewSession(%q): expected ErrEmptyName, got %v", name, err)
		}
	}
}

func TestJoin(t *testing.T) {
	sess, _ := NewSession("Alice", 10)

	bob, err := sess.Join("Bob")
	if err != nil {
		t.Fatalf("Failed to join: %v", err)
	}
	if bob.IsHost {
		t.Error("Joined player must not be host")
	}
	if bob.Color != PlayerColors[1] {
		t.Errorf("Expected second color %s, got %s", PlayerColors[1], bob.Color)
	}
	if len(sess.Players) != 2 {
		t.Errorf("Expected 2 players, got %d", len(sess.Players))
	}

	t.Run("empty name", func(t *testing.T) {
		if _, err := sess.Join("  "); !errors.Is(err, ErrEmptyName) {
			t.Errorf("Expected ErrEmptyName, got %v", err)
		}
	})

	t.Run("colors wrap around palette", func(t *testing.T) {
		for i := 2; i < MaxPlayers; i++ {
			p, err := sess.Join(fmt.Sprintf("Player%d", i))
			if err != nil {
				t.Fatalf("Join %d failed: %v", i, err)
			}
			if p.Color != PlayerColors[i%len(PlayerColors)] {
				t.Errorf("Player %d: expected color %s, got %s", i, PlayerColors[i%len(PlayerColors)], p.Color)
			}
		}
	})

	t.Run("full game rejects seventh player", func(t *testing.T) {
		if len(sess.Players) != MaxPlayers {
			t.Fatalf("Setup expected %d players, got %d", MaxPlayers, len(sess.Players))
		}
		if _, err := sess.Join("Grace"); !errors.Is(err, ErrGameFull) {
			t.Errorf("Expected ErrGameFull, got %v", err)
		}
		if len(sess.Players) != MaxPlayers {
			t.Errorf("Failed join must not mutate players, got %d", len(sess.Players))
		}
	})
}

func TestJoin_AfterStart(t *testing.T) {
	sess, _ := NewSession("Alice", 3)
	sess.Join("Bob")
	if err := sess.Start(testQuestions(3)); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}

	if _, err := sess.Join("Carol"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase, got %v", err)
	}
}

func TestStart(t *testing.T) {
	sess, _ := NewSession("Alice", 10)

	t.Run("needs two players", func(t *testing.T) {
		if err := sess.Start(testQuestions(10)); !errors.Is(err, ErrNotEnoughPlayers) {
			t.Errorf("Expected ErrNotEnoughPlayers, got %v", err)
		}
	})

	sess.Join("Bob")

	t.Run("needs questions", func(t *testing.T) {
		if err := sess.Start(nil); !errors.Is(err, ErrNoQuestions) {
			t.Errorf("Expected ErrNoQuestions, got %v", err)
		}
	})

	if err := sess.Start(testQuestions(10)); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if sess.CurrentPhase != PhaseQuestion {
		t.Errorf("Expected phase %s, got %s", PhaseQuestion, sess.CurrentPhase)
	}
	if sess.CurrentRound != 1 {
		t.Errorf("Expected round 1, got %d", sess.CurrentRound)
	}
	if len(sess.QuestionHistory) != sess.TotalRounds {
		t.Errorf("Expected %d questions, got %d", sess.TotalRounds, len(sess.QuestionHistory))
	}
	if sess.CurrentQuestion == nil || sess.CurrentQuestion.ID != "q1" {
		t.Errorf("Expected first question, got %+v", sess.CurrentQuestion)
	}

	t.Run("double start", func(t *testing.T) {
		if err := sess.Start(testQuestions(10)); !errors.Is(err, ErrInvalidPhase) {
			t.Errorf("Expected ErrInvalidPhase on double start, got %v", err)
		}
	})
}

func TestStart_ClampsRoundsToQuestions(t *testing.T) {
	sess, _ := NewSession("Alice", 10)
	sess.Join("Bob")

	if err := sess.Start(testQuestions(4)); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if sess.TotalRounds != 4 {
		t.Errorf("Expected rounds clamped to 4, got %d", sess.TotalRounds)
	}
}

func TestSubmitVote_PhaseAndValidation(t *testing.T) {
	sess, _ := NewSession("Alice", 3)
	bob, _ := sess.Join("Bob")
	sess.Start(testQuestions(3))

	t.Run("outside voting phase", func(t *testing.T) {
		err := sess.SubmitVote(bob.ID, NumberAnswer(0), 5)
		if !errors.Is(err, ErrInvalidPhase) {
			t.Errorf("Expected ErrInvalidPhase, got %v", err)
		}
		if len(sess.Votes) != 0 {
			t.Error("Failed vote must not be recorded")
		}
	})

	sess.ChangePhase(PhaseVoting)

	t.Run("unknown player", func(t *testing.T) {
		err := sess.SubmitVote("player_nobody", NumberAnswer(0), 5)
		if !errors.Is(err, ErrUnknownPlayer) {
			t.Errorf("Expected ErrUnknownPlayer, got %v", err)
		}
	})

	t.Run("token out of pool", func(t *testing.T) {
		err := sess.SubmitVote(bob.ID, NumberAnswer(0), 11)
		if !errors.Is(err, ErrTokenUnavailable) {
			t.Errorf("Expected ErrTokenUnavailable, got %v", err)
		}
		if len(sess.Votes) != 0 {
			t.Error("Failed vote must not be recorded")
		}
	})
}

func TestSubmitVote_ReplacesPriorVote(t *testing.T) {
	sess, _, bob := votingSession(t)

	if err := sess.SubmitVote(bob.ID, NumberAnswer(1), 3); err != nil {
		t.Fatalf("First vote failed: %v", err)
	}
	if err := sess.SubmitVote(bob.ID, NumberAnswer(0), 8); err != nil {
		t.Fatalf("Second vote failed: %v", err)
	}

	if len(sess.Votes) != 1 {
		t.Fatalf("Expected exactly 1 vote for the player, got %d", len(sess.Votes))
	}
	vote := sess.Votes[0]
	if vote.Token != 8 || vote.Answer.Number != 0 {
		t.Errorf("Expected second vote to win, got token=%d answer=%v", vote.Token, vote.Answer.Number)
	}
	if sess.CurrentPhase != PhaseVoting {
		t.Errorf("Round must stay open with one of two votes in, got %s", sess.CurrentPhase)
	}
}

func TestSubmitVote_LastVoteSettlesRound(t *testing.T) {
	sess, alice, bob := votingSession(t)

	// 0 is the correct index; Bob answers wrong.
	if err := sess.SubmitVote(alice.ID, NumberAnswer(0), 5); err != nil {
		t.Fatalf("Alice's vote failed: %v", err)
	}
	if err := sess.SubmitVote(bob.ID, NumberAnswer(2), 7); err != nil {
		t.Fatalf("Bob's vote failed: %v", err)
	}

	if sess.CurrentPhase != PhaseReveal {
		t.Fatalf("Expected auto-advance to %s, got %s", PhaseReveal, sess.CurrentPhase)
	}
	if alice.Score != 5 {
		t.Errorf("Expected Alice's score 5, got %d", alice.Score)
	}
	if bob.Score != 0 {
		t.Errorf("Expected Bob's score 0, got %d", bob.Score)
	}
	if alice.HasToken(5) {
		t.Error("Alice's token 5 must leave the available set")
	}
	if bob.HasToken(7) {
		t.Error("Bob's token 7 must leave the available set")
	}
	if len(alice.UsedTokens) != 1 || alice.UsedTokens[0] != 5 {
		t.Errorf("Expected Alice's used tokens [5], got %v", alice.UsedTokens)
	}
	if len(bob.UsedTokens) != 0 {
		t.Errorf("Wrong answer must not retire the token into used, got %v", bob.UsedTokens)
	}
	checkTokenInvariant(t, sess)

	t.Run("reveal after settlement is a no-op", func(t *testing.T) {
		if err := sess.ProcessRoundResults(); err != nil {
			t.Fatalf("ProcessRoundResults failed: %v", err)
		}
		if alice.Score != 5 || bob.Score != 0 {
			t.Errorf("Scores double-counted: alice=%d bob=%d", alice.Score, bob.Score)
		}
		if len(alice.UsedTokens) != 1 {
			t.Errorf("Used tokens double-counted: %v", alice.UsedTokens)
		}
	})
}

func TestSubmitVote_BothCorrect(t *testing.T) {
	sess, alice, bob := votingSession(t)

	sess.SubmitVote(alice.ID, NumberAnswer(0), 5)
	sess.SubmitVote(bob.ID, NumberAnswer(0), 7)

	if sess.CurrentPhase != PhaseReveal {
		t.Fatalf("Expected %s, got %s", PhaseReveal, sess.CurrentPhase)
	}
	if alice.Score != 5 {
		t.Errorf("Expected Alice +5, got %d", alice.Score)
	}
	if bob.Score != 7 {
		t.Errorf("Expected Bob +7, got %d", bob.Score)
	}
	checkTokenInvariant(t, sess)
}

func TestProcessRoundResults_HostTriggered(t *testing.T) {
	sess, alice, _ := votingSession(t)

	// Only one of two players voted; host forces the reveal.
	sess.SubmitVote(alice.ID, NumberAnswer(0), 10)
	if sess.CurrentPhase != PhaseVoting {
		t.Fatalf("Round should still be open, got %s", sess.CurrentPhase)
	}

	if err := sess.ProcessRoundResults(); err != nil {
		t.Fatalf("ProcessRoundResults failed: %v", err)
	}
	if sess.CurrentPhase != PhaseReveal {
		t.Errorf("Expected %s, got %s", PhaseReveal, sess.CurrentPhase)
	}
	if alice.Score != 10 {
		t.Errorf("Expected score 10, got %d", alice.Score)
	}
	checkTokenInvariant(t, sess)
}

func TestProcessRoundResults_WrongPhase(t *testing.T) {
	sess, _ := NewSession("Alice", 3)
	if err := sess.ProcessRoundResults(); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase in lobby, got %v", err)
	}
}

func TestNextRound(t *testing.T) {
	sess, alice, bob := votingSession(t)
	sess.SubmitVote(alice.ID, NumberAnswer(0), 1)
	sess.SubmitVote(bob.ID, NumberAnswer(0), 2)

	if err := sess.NextRound(); err != nil {
		t.Fatalf("NextRound failed: %v", err)
	}
	if sess.CurrentRound != 2 {
		t.Errorf("Expected round 2, got %d", sess.CurrentRound)
	}
	if sess.CurrentPhase != PhaseQuestion {
		t.Errorf("Expected phase %s, got %s", PhaseQuestion, sess.CurrentPhase)
	}
	if sess.CurrentQuestion == nil || sess.CurrentQuestion.ID != "q2" {
		t.Errorf("Expected question q2, got %+v", sess.CurrentQuestion)
	}
	if len(sess.Votes) != 0 {
		t.Errorf("Expected votes cleared, got %d", len(sess.Votes))
	}
}

func TestNextRound_FinalRoundEndsGame(t *testing.T) {
	sess, alice, bob := votingSession(t)
	sess.TotalRounds = 1

	sess.SubmitVote(alice.ID, NumberAnswer(0), 1)
	sess.SubmitVote(bob.ID, NumberAnswer(0), 2)

	if err := sess.NextRound(); err != nil {
		t.Fatalf("NextRound failed: %v", err)
	}
	if sess.CurrentPhase != PhaseResults {
		t.Errorf("Expected %s, got %s", PhaseResults, sess.CurrentPhase)
	}
	if sess.CurrentQuestion != nil {
		t.Errorf("Expected no current question in results, got %+v", sess.CurrentQuestion)
	}
}

func TestNextRound_RequiresReveal(t *testing.T) {
	sess, _ := NewSession("Alice", 3)
	sess.Join("Bob")
	sess.Start(testQuestions(3))

	if err := sess.NextRound(); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase from question phase, got %v", err)
	}
}

func TestChangePhase_TransitionTable(t *testing.T) {
	legal := []struct {
		from Phase
		to   Phase
	}{
		{PhaseLobby, PhaseQuestion},
		{PhaseQuestion, PhaseVoting},
		{PhaseVoting, PhaseReveal},
		{PhaseReveal, PhaseQuestion},
		{PhaseReveal, PhaseResults},
	}
	for _, tc := range legal {
		sess, _ := NewSession("Alice", 3)
		sess.CurrentPhase = tc.from
		if err := sess.ChangePhase(tc.to); err != nil {
			t.Errorf("%s -> %s should be legal: %v", tc.from, tc.to, err)
		}
	}

	illegal := []struct {
		from Phase
		to   Phase
	}{
		{PhaseLobby, PhaseVoting},
		{PhaseLobby, PhaseResults},
		{PhaseQuestion, PhaseReveal},
		{PhaseQuestion, PhaseLobby},
		{PhaseVoting, PhaseQuestion},
		{PhaseVoting, PhaseResults},
		{PhaseReveal, PhaseVoting},
		{PhaseResults, PhaseLobby},
		{PhaseResults, PhaseQuestion},
	}
	for _, tc := range illegal {
		sess, _ := NewSession("Alice", 3)
		sess.CurrentPhase = tc.from
		if err := sess.ChangePhase(tc.to); !errors.Is(err, ErrInvalidPhase) {
			t.Errorf("%s -> %s should be rejected, got %v", tc.from, tc.to, err)
		}
		if sess.CurrentPhase != tc.from {
			t.Errorf("Rejected transition must not change phase, got %s", sess.CurrentPhase)
		}
	}
}

func TestSetConnected(t *testing.T) {
	sess, _ := NewSession("Alice", 3)
	host := sess.Players[0]

	sess.SetConnected(host.ID, false)
	if host.IsConnected {
		t.Error("Expected host marked disconnected")
	}
	sess.SetConnected(host.ID, true)
	if !host.IsConnected {
		t.Error("Expected host marked connected")
	}

	// Unknown player is a silent no-op.
	sess.SetConnected("player_ghost", true)
}

func TestClone_IsDeep(t *testing.T) {
	sess, alice, bob := votingSession(t)
	sess.SubmitVote(alice.ID, NumberAnswer(0), 5)

	snap := sess.Clone()

	sess.SubmitVote(bob.ID, NumberAnswer(0), 7) // settles the round

	if len(snap.Votes) != 1 {
		t.Errorf("Snapshot votes mutated: got %d", len(snap.Votes))
	}
	if snap.CurrentPhase != PhaseVoting {
		t.Errorf("Snapshot phase mutated: got %s", snap.CurrentPhase)
	}
	if snap.Player(alice.ID).Score != 0 {
		t.Errorf("Snapshot score mutated: got %d", snap.Player(alice.ID).Score)
	}
	if !snap.Player(alice.ID).HasToken(5) {
		t.Error("Snapshot token set mutated")
	}
}
