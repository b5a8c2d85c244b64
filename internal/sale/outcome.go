package sale

import (
	"github.com/google/uuid"

	"github.com/latsops/pos-backend/pkg/db/models"
)

// OutcomeKind tags the terminal result variant.
type OutcomeKind string

const (
	OutcomeSucceeded OutcomeKind = "succeeded"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome is the single terminal result a run produces per Execute call.
type Outcome struct {
	Kind OutcomeKind

	// Succeeded fields.
	Order   *models.SaleOrder
	Receipt *Receipt

	// Failed fields.
	Reason    ErrorKind
	Message   string
	Resumable bool

	// StepLabel is where progress stopped; on failure the UI keeps showing it.
	StepLabel string
}

// Receipt is the payload handed to the result presenter after a successful
// run: the created order plus the original checkout context it was built
// from, and any non-fatal warnings collected while finalizing.
type Receipt struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Lines      []CartLine
	Totals     Totals
	Warnings   []string
}

func succeededOutcome(r *Run) Outcome {
	return Outcome{
		Kind:  OutcomeSucceeded,
		Order: r.order,
		Receipt: &Receipt{
			OrderID:    r.order.ID,
			CustomerID: r.Input.CustomerID,
			Lines:      r.Input.Lines,
			Totals:     r.Input.Totals,
			Warnings:   r.warnings,
		},
		StepLabel: r.CurrentStepLabel,
	}
}

func failedOutcome(r *Run) Outcome {
	return Outcome{
		Kind:      OutcomeFailed,
		Reason:    r.err.Kind,
		Message:   r.err.Message,
		Resumable: r.err.Kind.Resumable(),
		StepLabel: r.CurrentStepLabel,
	}
}
