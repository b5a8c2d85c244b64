package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/latsops/pos-backend/pkg/logger"
	"github.com/latsops/pos-backend/pkg/metrics"
)

// Engine executes the fixed step sequence against one Input per run,
// producing exactly one terminal Outcome per Execute call. Steps run
// strictly sequentially; the engine awaits each gateway call to completion
// before the next step begins, and halts on the first failure without
// rolling back effects of steps that already succeeded.
type Engine struct {
	gateway        Gateway
	logger         *logger.Logger
	metrics        *metrics.PipelineMetrics
	observer       Observer
	steps          []step
	costMargin     decimal.Decimal
	loyaltyDivisor int
}

// Options tunes engine construction. Zero values fall back to defaults.
type Options struct {
	Logger         *logger.Logger
	Metrics        *metrics.PipelineMetrics
	Observer       Observer
	LoyaltyDivisor int
}

// NewEngine builds a pipeline engine over the provided gateway.
func NewEngine(gateway Gateway, opts Options) (*Engine, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	divisor := opts.LoyaltyDivisor
	if divisor <= 0 {
		divisor = 100
	}
	return &Engine{
		gateway:        gateway,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
		observer:       opts.Observer,
		steps:          pipelineSteps(),
		costMargin:     defaultCostMargin,
		loyaltyDivisor: divisor,
	}, nil
}

// NewRun creates a fresh run for the input. The run keeps identifiers
// produced by completed steps, so re-Executing it after a resumable failure
// skips already-committed work.
func (e *Engine) NewRun(input Input) *Run {
	return &Run{
		ID:     uuid.New(),
		Input:  input,
		Status: StatusValidating,
	}
}

// Run is the one-shot convenience: a fresh run executed immediately. Callers
// that want the retry contract should hold the *Run from NewRun (or use a
// Registry) and Execute it again.
func (e *Engine) Run(ctx context.Context, input Input) Outcome {
	return e.Execute(ctx, e.NewRun(input))
}

// Execute drives the run to a terminal state. Calling it again after a
// resumable failure is safe: steps detect prior completion and no-op.
// Terminal runs are returned unchanged. Concurrent calls with the same run
// serialize, so a double-submitted cart produces one set of effects and
// both callers see the same outcome.
func (e *Engine) Execute(ctx context.Context, r *Run) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status == StatusSucceeded {
		return succeededOutcome(r)
	}
	// A failed run re-enters the machine only through this explicit call.
	r.Status = StatusValidating
	r.err = nil
	r.warnings = nil

	ctx = e.withRunFields(ctx, r)

	for _, s := range e.steps {
		r.Status = s.status
		r.CurrentStepLabel = s.label
		e.notify(r, s)
		e.logf(ctx, r, "sale.step."+s.name)

		start := time.Now()
		err := s.run(ctx, e, r)
		failed := err != nil
		e.metrics.ObserveStep(s.name, time.Since(start), failed)

		if failed {
			r.Status = StatusFailed
			r.err = classify(err, s.kind)
			e.notify(r, s)
			e.metrics.ObserveRun(string(OutcomeFailed))
			if e.logger != nil {
				e.logger.Error(ctx, "sale.step.failed", r.err)
			}
			return failedOutcome(r)
		}
	}

	r.Status = StatusSucceeded
	e.notify(r, step{name: "done", label: r.CurrentStepLabel})
	e.metrics.ObserveRun(string(OutcomeSucceeded))
	e.logf(ctx, r, "sale.run.succeeded")
	return succeededOutcome(r)
}

func classify(err error, fallback ErrorKind) *Error {
	if typed, ok := err.(*Error); ok {
		return typed
	}
	return wrapError(fallback, err, err.Error())
}

func (e *Engine) notify(r *Run, s step) {
	if e.observer == nil {
		return
	}
	e.observer(Transition{
		RunID:  r.ID,
		Step:   s.name,
		Label:  r.CurrentStepLabel,
		Status: r.Status,
	})
}

func (e *Engine) withRunFields(ctx context.Context, r *Run) context.Context {
	if e.logger == nil {
		return ctx
	}
	return e.logger.WithSaleRunID(ctx, r.ID.String())
}

func (e *Engine) logf(ctx context.Context, _ *Run, msg string) {
	if e.logger == nil {
		return
	}
	e.logger.Info(ctx, msg)
}
