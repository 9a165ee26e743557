package bookings

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/salon-concierge/pkg/logging"
)

var bookingsTracer = otel.Tracer("salon.internal.bookings")

const notifyTimeout = 10 * time.Second

// Notifier is told about every booking after it is stored.
type Notifier interface {
	BookingCreated(ctx context.Context, b *Booking) error
}

// Service creates tentative bookings on behalf of the chat dialog.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time
	pending  sync.WaitGroup
}

// NewService constructs a bookings service. notifier may be nil.
func NewService(repo Repository, notifier Notifier, logger *logging.Logger) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// CreateTentative stores a booking with status "tentative". The notifier runs
// in the background so a slow mail provider never holds up the chat turn;
// its failures are logged and never fail the call.
func (s *Service) CreateTentative(ctx context.Context, req CreateRequest) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create_tentative")
	defer span.End()
	span.SetAttributes(
		attribute.String("salon.service", req.Service),
		attribute.String("salon.date", req.Date),
	)

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	b, err := s.repo.Create(ctx, &Booking{
		Name:      req.Name,
		Phone:     req.Phone,
		Gender:    req.Gender,
		Age:       req.Age,
		Service:   req.Service,
		Date:      req.Date,
		Time:      req.Time,
		Status:    StatusTentative,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("salon.booking_id", b.ID))
	s.logger.Info("tentative booking created", "booking_id", b.ID, "service", b.Service, "date", b.Date, "time", b.Time)

	if s.notifier != nil {
		snapshot := *b
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
			defer cancel()
			if err := s.notifier.BookingCreated(notifyCtx, &snapshot); err != nil {
				s.logger.Warn("booking notification failed", "booking_id", snapshot.ID, "error", err)
			}
		}()
	}
	return b, nil
}

// Wait blocks until every in-flight booking notification has returned.
func (s *Service) Wait() {
	s.pending.Wait()
}

// Get returns one booking.
func (s *Service) Get(ctx context.Context, id int64) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

// ListRecent returns the newest bookings first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Booking, error) {
	return s.repo.ListRecent(ctx, limit)
}
