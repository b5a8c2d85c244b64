package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/latsops/pos-backend/internal/sale"
	"github.com/latsops/pos-backend/pkg/db"
	"github.com/latsops/pos-backend/pkg/db/models"
	pkgerrors "github.com/latsops/pos-backend/pkg/errors"
)

type orderReader interface {
	GetOrderDetail(ctx context.Context, id uuid.UUID) (*models.SaleOrder, error)
}

// Service fronts the sale pipeline for the HTTP layer: it keys runs by the
// caller's checkout reference so a retried request resumes the original run,
// and serves the confirmation read after a sale lands.
type Service struct {
	engine   *sale.Engine
	registry *sale.Registry
	reader   orderReader
}

// NewService builds the checkout service over a pipeline engine.
func NewService(engine *sale.Engine, registry *sale.Registry, reader orderReader) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine required")
	}
	if registry == nil {
		registry = sale.NewRegistry()
	}
	return &Service{engine: engine, registry: registry, reader: reader}, nil
}

// Process runs the pipeline for the input. A non-empty reference makes
// retries resumable: the same reference with the same input re-enters the
// original run instead of starting over.
func (s *Service) Process(ctx context.Context, reference string, input sale.Input) sale.Outcome {
	if reference == "" {
		return s.engine.Run(ctx, input)
	}

	run := s.registry.RunFor(s.engine, reference, input)
	outcome := s.engine.Execute(ctx, run)
	s.registry.Settle(reference, run)
	return outcome
}

// Confirmation loads the persisted order, items, and payments for the
// post-sale receipt view.
func (s *Service) Confirmation(ctx context.Context, orderID uuid.UUID) (*models.SaleOrder, error) {
	order, err := s.reader.GetOrderDetail(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale order")
	}
	return order, nil
}
