package customers

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/salon-concierge/pkg/logging"
)

var customersTracer = otel.Tracer("salon.internal.customers")

// Service saves customer profiles on behalf of the chat dialog.
type Service struct {
	repo   Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewService constructs a customers service.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("customers: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Save validates and stores a profile.
func (s *Service) Save(ctx context.Context, req SaveRequest) (*Customer, error) {
	ctx, span := customersTracer.Start(ctx, "customers.save")
	defer span.End()

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	c, err := s.repo.Create(ctx, &Customer{
		Name:      req.Name,
		Phone:     req.Phone,
		Gender:    req.Gender,
		Age:       req.Age,
		SkinTone:  req.SkinTone,
		FaceShape: req.FaceShape,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("salon.customer_id", c.ID))
	s.logger.Info("customer profile saved", "customer_id", c.ID, "name", c.Name)
	return c, nil
}
