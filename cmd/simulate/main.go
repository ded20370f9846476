// Command simulate runs an offline bot game against the trivia engine.
// It is useful for eyeballing scoring behavior and phase flow without
// standing up the HTTP server: bots join a session, wager random confidence
// tokens on random answers, and the final standings are printed per round.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/ankitpasayat/confident-trivia/game/engine"
	"github.com/ankitpasayat/confident-trivia/game/questions"
)

var (
	players = flag.Int("players", 4, "Number of bot players (2-6)")
	rounds  = flag.Int("rounds", 5, "Number of rounds to play")
	seed    = flag.Int64("seed", 0, "Random seed (0 = time-based)")
	verbose = flag.Bool("v", false, "Print every vote")
)

func main() {
	flag.Parse()

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}

	if err := run(*players, *rounds, s, *verbose, os.Stdout); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}

// run plays one full game with bot players and writes a report to out.
func run(playerCount, totalRounds int, seed int64, verbose bool, out io.Writer) error {
	if playerCount < engine.MinPlayers || playerCount > engine.MaxPlayers {
		return fmt.Errorf("player count must be between %d and %d", engine.MinPlayers, engine.MaxPlayers)
	}
	if totalRounds < 1 || totalRounds > engine.TokenCount {
		return fmt.Errorf("rounds must be between 1 and %d, each round spends a token", engine.TokenCount)
	}

	rng := rand.New(rand.NewSource(seed))

	gs, err := engine.NewSession("Bot 1", totalRounds)
	if err != nil {
		return err
	}
	for i := 2; i <= playerCount; i++ {
		if _, err := gs.Join(fmt.Sprintf("Bot %d", i)); err != nil {
			return err
		}
	}

	bank := questions.NewBank()
	qs, err := bank.Generate(context.Background(), totalRounds, questions.Options{})
	if err != nil {
		return err
	}
	if err := gs.Start(qs); err != nil {
		return err
	}

	fmt.Fprintf(out, "Simulating %d players over %d rounds (seed %d)\n", playerCount, totalRounds, seed)

	for gs.CurrentPhase != engine.PhaseResults {
		q := gs.CurrentQuestion
		fmt.Fprintf(out, "\nRound %d/%d: %s\n", gs.CurrentRound, gs.TotalRounds, q.Text)

		if err := gs.ChangePhase(engine.PhaseVoting); err != nil {
			return err
		}

		// Every bot votes; the last vote settles the round.
		for _, p := range gs.Players {
			answer := pickAnswer(rng, q)
			token := p.AvailableTokens[rng.Intn(len(p.AvailableTokens))]
			if err := gs.SubmitVote(p.ID, answer, token); err != nil {
				return fmt.Errorf("vote for %s: %w", p.Name, err)
			}
			if verbose {
				fmt.Fprintf(out, "  %s wagers %d\n", p.Name, token)
			}
		}
		if gs.CurrentPhase != engine.PhaseReveal {
			return fmt.Errorf("round did not settle: phase %s", gs.CurrentPhase)
		}

		for _, p := range gs.Players {
			fmt.Fprintf(out, "  %-8s %4d pts\n", p.Name, p.Score)
		}

		if err := gs.NextRound(); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\nFinal standings:")
	standings := make([]*engine.Player, len(gs.Players))
	copy(standings, gs.Players)
	sort.Slice(standings, func(i, j int) bool { return standings[i].Score > standings[j].Score })
	for i, p := range standings {
		fmt.Fprintf(out, "  %d. %-8s %4d pts\n", i+1, p.Name, p.Score)
	}
	return nil
}

// pickAnswer returns a random plausible answer for the question type.
// Numerical guesses are perturbed around the correct value so some land
// inside the acceptable range and some do not.
func pickAnswer(rng *rand.Rand, q *engine.Question) engine.Answer {
	switch q.Type {
	case engine.MultipleChoice:
		return engine.NumberAnswer(float64(rng.Intn(len(q.Options))))
	case engine.TrueFalse:
		return engine.BoolAnswer(rng.Intn(2) == 0)
	case engine.MoreOrLess:
		return engine.NumberAnswer(float64(rng.Intn(2)))
	case engine.Numerical:
		guess := q.CorrectAnswer.Number * (0.7 + 0.6*rng.Float64())
		return engine.NumberAnswer(guess)
	default:
		return engine.NumberAnswer(0)
	}
}
