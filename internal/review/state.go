package review

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/vetintake/internal/common"
)

// State is a stage of the review workflow.
type State string

const (
	StateIdle       State = "idle"
	StateExtracted  State = "extracted"
	StateReviewing  State = "reviewing"
	StateCommitting State = "committing"
	StateDone       State = "done"
)

// DefaultMaxHistory caps the transition log; the oldest tenth is evicted
// when it fills up.
const DefaultMaxHistory = 1000

var allowed = map[State][]State{
	StateIdle:       {StateExtracted},
	StateExtracted:  {StateIdle, StateReviewing},
	StateReviewing:  {StateIdle, StateCommitting},
	StateCommitting: {StateDone, StateReviewing},
	StateDone:       {StateExtracted, StateIdle},
}

// Transition is one recorded state change.
type Transition struct {
	From    State
	To      State
	Trigger string
	At      time.Time
}

func canTransition(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

func invalidTransition(from, to State) error {
	return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, from, to)
}
