package sale

import (
	"sync"

	"github.com/google/uuid"

	"github.com/latsops/pos-backend/pkg/db/models"
)

// Status is the run's position in the pipeline state machine.
type Status string

const (
	StatusValidating         Status = "validating"
	StatusCreating           Status = "creating"
	StatusItemizingLines     Status = "itemizing_lines"
	StatusAdjustingInventory Status = "adjusting_inventory"
	StatusProcessingPayment  Status = "processing_payment"
	StatusFinalizing         Status = "finalizing"
	StatusSucceeded          Status = "succeeded"
	StatusFailed             Status = "failed"
)

// Terminal reports whether the status ends the state machine.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Run is one execution attempt of the pipeline for a given Input. It is
// owned exclusively by the engine for its lifetime and never persisted.
// Identifiers produced by completed steps (notably the created order id)
// survive across Execute calls so a retry skips already-committed work.
//
// Concurrent Execute calls on the same Run serialize on its mutex: the
// second caller waits, then observes the terminal state the first one
// produced.
type Run struct {
	mu sync.Mutex

	ID     uuid.UUID
	Input  Input
	Status Status

	// CurrentStepLabel freezes at the failing step's description on failure.
	CurrentStepLabel string

	createdOrderID    *uuid.UUID
	order             *models.SaleOrder
	operator          *Operator
	inventoryAdjusted bool
	warnings          []string
	err               *Error
}

// CreatedOrderID returns the memoized order id, or uuid.Nil before the
// create-order step has succeeded.
func (r *Run) CreatedOrderID() uuid.UUID {
	if r.createdOrderID == nil {
		return uuid.Nil
	}
	return *r.createdOrderID
}

// Err returns the classified failure of the latest Execute, if any.
func (r *Run) Err() *Error {
	return r.err
}

// Transition is one observable state change, emitted before each step runs
// and once more on reaching a terminal state.
type Transition struct {
	RunID  uuid.UUID
	Step   string
	Label  string
	Status Status
}

// Observer receives progress transitions. This is cooperative progress
// reporting, not cancellation: observers cannot stop a run.
type Observer func(Transition)
