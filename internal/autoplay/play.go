package autoplay

import (
	"context"
	"fmt"
	"math/rand"

	"escalator/internal/game"
	"escalator/internal/game/escalator"
)

// Summary describes one played deal.
type Summary struct {
	Seed     int64       `json:"seed"`
	Turns    int         `json:"turns"`
	Captures int         `json:"captures"`
	Score    int         `json:"score"`
	Status   game.Status `json:"status"`
}

// Play asks policy for moves until the deal ends, ctx is cancelled or
// maxTurns moves have been made. maxTurns <= 0 means no cap; an Escalator
// deal always ends because every move shrinks the stock or the tableau.
func Play(ctx context.Context, s game.Solitaire, policy Policy, maxTurns int) (Summary, error) {
	var sum Summary
	finish := func() Summary {
		sum.Score = s.Score()
		sum.Status = s.Status()
		return sum
	}
	for s.Status() == game.InProgress {
		if maxTurns > 0 && sum.Turns >= maxTurns {
			break
		}
		if err := ctx.Err(); err != nil {
			return finish(), err
		}
		dest, err := policy.Choose(s)
		if err != nil {
			return finish(), fmt.Errorf("choose move: %w", err)
		}
		reward, err := s.Move(dest)
		if err != nil {
			return finish(), err
		}
		sum.Turns++
		sum.Captures += reward
	}
	return finish(), nil
}

// Report aggregates a batch of played deals.
type Report struct {
	Games     int       `json:"games"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	BestScore int       `json:"bestScore"`
	MeanScore float64   `json:"meanScore"`
	Deals     []Summary `json:"deals"`
}

// WinRate is the fraction of games won.
func (r Report) WinRate() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Games)
}

// Run plays games fresh deals seeded seed, seed+1, ... so that any deal can
// be replayed as a session with the same seed. Scores in the report
// include the scoring adjustment.
func Run(ctx context.Context, policy Policy, games int, seed int64, scoring game.Scoring) (Report, error) {
	var r Report
	total := 0
	for i := 0; i < games; i++ {
		dealSeed := seed + int64(i)
		b := escalator.NewBoard()
		b.Deal(rand.New(rand.NewSource(dealSeed)))

		sum, err := Play(ctx, b, policy, 0)
		if err != nil {
			return r, fmt.Errorf("deal %d: %w", dealSeed, err)
		}
		sum.Seed = dealSeed
		sum.Score = scoring.Adjust(sum.Score, sum.Status)

		r.Games++
		switch sum.Status {
		case game.Won:
			r.Wins++
		case game.Lost:
			r.Losses++
		}
		if r.Games == 1 || sum.Score > r.BestScore {
			r.BestScore = sum.Score
		}
		total += sum.Score
		r.Deals = append(r.Deals, sum)
	}
	if r.Games > 0 {
		r.MeanScore = float64(total) / float64(r.Games)
	}
	return r, nil
}
