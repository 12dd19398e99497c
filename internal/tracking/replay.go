package tracking

import (
	"errors"

	"github.com/google/uuid"

	"github.com/sstent/walktime-go/internal/models"
)

var ErrEmptyTrace = errors.New("trace has no positions")

// ReplayResult is the outcome of feeding a recorded trace through the filter.
type ReplayResult struct {
	Session  *Session
	Outcomes map[Outcome]int
	Walk     *models.WalkRecord
}

// Replay runs a recorded trace through a fresh session that starts at the
// first fix and finalizes at the last one. Positions must be in time order.
func Replay(cfg Config, positions []models.Position, terrain float64, route string) (ReplayResult, error) {
	if len(positions) == 0 {
		return ReplayResult{}, ErrEmptyTrace
	}

	first := positions[0]
	last := positions[len(positions)-1]

	result := ReplayResult{
		Session:  NewSession(uuid.NewString(), first.Timestamp, 0),
		Outcomes: make(map[Outcome]int),
	}
	for _, p := range positions {
		update := result.Session.Apply(cfg, p)
		result.Outcomes[update.Outcome]++
	}

	walk, err := result.Session.Finalize(cfg, last.Timestamp, terrain, route)
	if err != nil {
		return result, err
	}
	result.Walk = walk
	return result, nil
}
