package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/salon-concierge/internal/audit"
	"github.com/wolfman30/salon-concierge/internal/bookings"
	"github.com/wolfman30/salon-concierge/internal/customers"
	"github.com/wolfman30/salon-concierge/internal/extract"
	"github.com/wolfman30/salon-concierge/internal/observability/metrics"
	"github.com/wolfman30/salon-concierge/internal/session"
	"github.com/wolfman30/salon-concierge/internal/transcript"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

var dialogTracer = otel.Tracer("salon.internal.dialog")

// DefaultSessionID is used when a caller sends no session id.
const DefaultSessionID = "anon"

// BookingCreator persists tentative bookings.
type BookingCreator interface {
	CreateTentative(ctx context.Context, req bookings.CreateRequest) (*bookings.Booking, error)
}

// CustomerSaver persists styling profiles.
type CustomerSaver interface {
	Save(ctx context.Context, req customers.SaveRequest) (*customers.Customer, error)
}

// TurnRecorder receives every handled turn.
type TurnRecorder interface {
	RecordTurn(ctx context.Context, t audit.Turn) error
}

// Result is the reply to one message.
type Result struct {
	OK         bool     `json:"ok"`
	Reply      string   `json:"reply"`
	Intent     Intent   `json:"intent"`
	SessionID  string   `json:"session_id"`
	Missing    []string `json:"missing,omitempty"`
	BookingID  int64    `json:"booking_id,omitempty"`
	CustomerID int64    `json:"customer_id,omitempty"`
}

// Engine handles chat messages. It is safe for concurrent use; turns for the
// same session are serialized through the Locker.
type Engine struct {
	sessions   session.Store
	locker     session.Locker
	bookings   BookingCreator
	customers  CustomerSaver
	extractors extract.Set
	recorder   TurnRecorder
	history    transcript.Store
	metrics    *metrics.ChatMetrics
	logger     *logging.Logger
	anonID     string
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocker overrides the per-session lock. By default the session store is
// used when it implements session.Locker, else an in-process keyed mutex.
func WithLocker(l session.Locker) Option {
	return func(e *Engine) {
		if l != nil {
			e.locker = l
		}
	}
}

// WithExtractors swaps individual field extractors.
func WithExtractors(s extract.Set) Option {
	return func(e *Engine) {
		e.extractors = s
	}
}

// WithTurnRecorder records each turn, for example to the audit log.
func WithTurnRecorder(r TurnRecorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithTranscript appends every user message and reply to a transcript store.
func WithTranscript(s transcript.Store) Option {
	return func(e *Engine) {
		e.history = s
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *metrics.ChatMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithAnonymousSessionID changes the id used for requests without one.
func WithAnonymousSessionID(id string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(id) != "" {
			e.anonID = id
		}
	}
}

// NewEngine builds an engine over the given session store and persistence.
func NewEngine(sessions session.Store, bookingSvc BookingCreator, customerSvc CustomerSaver, opts ...Option) *Engine {
	if sessions == nil {
		panic("dialog: session store required")
	}
	if bookingSvc == nil {
		panic("dialog: booking creator required")
	}
	if customerSvc == nil {
		panic("dialog: customer saver required")
	}
	e := &Engine{
		sessions:   sessions,
		bookings:   bookingSvc,
		customers:  customerSvc,
		extractors: extract.DefaultSet(),
		logger:     logging.Default(),
		anonID:     DefaultSessionID,
		now:        time.Now,
	}
	if l, ok := sessions.(session.Locker); ok {
		e.locker = l
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.locker == nil {
		e.locker = session.NewKeyedMutex()
	}
	return e
}

// faultError tags an error with the stage where the turn broke.
type faultError struct {
	stage string
	err   error
}

func (f *faultError) Error() string { return f.stage + ": " + f.err.Error() }
func (f *faultError) Unwrap() error { return f.err }

func fault(stage string, err error) error {
	return &faultError{stage: stage, err: err}
}

// HandleMessage runs one turn. It never returns an error: failures produce a
// Result with OK false and leave the session as it was before the call.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, message string) Result {
	start := e.now()
	if strings.TrimSpace(sessionID) == "" {
		sessionID = e.anonID
	}
	text := strings.TrimSpace(message)
	if text == "" {
		res := Result{OK: false, Reply: ReplyEmpty, Intent: IntentEmpty, SessionID: sessionID}
		e.metrics.ObserveTurn(string(res.Intent), res.OK, e.now().Sub(start))
		return res
	}

	ctx, span := dialogTracer.Start(ctx, "dialog.handle_message")
	defer span.End()
	span.SetAttributes(attribute.String("salon.session_id", sessionID))

	res, err := e.turn(ctx, sessionID, text)
	if err != nil {
		span.RecordError(err)
		stage := "unknown"
		var fe *faultError
		if errors.As(err, &fe) {
			stage = fe.stage
		}
		e.metrics.Fault(stage)
		e.logger.Error("chat turn failed", "session_id", sessionID, "intent", res.Intent, "stage", stage, "error", err)
		res = Result{OK: false, Reply: ReplyFault, Intent: res.Intent, SessionID: sessionID}
	}
	res.SessionID = sessionID
	span.SetAttributes(
		attribute.String("salon.intent", string(res.Intent)),
		attribute.Bool("salon.ok", res.OK),
	)

	e.metrics.ObserveTurn(string(res.Intent), res.OK, e.now().Sub(start))
	e.record(ctx, sessionID, text, res)
	return res
}

// Classify returns the intent a message would be handled as in the given
// session state, without persisting anything. Only the phone is extracted,
// to tell a profile save from a styling request.
func Classify(message string, state session.State) Intent {
	text := strings.TrimSpace(message)
	if text == "" {
		return IntentEmpty
	}
	t := newTurnInput(text, state)
	for _, r := range rules {
		if r.match(t) {
			return r.intent
		}
	}
	return IntentFallback
}

func (e *Engine) turn(ctx context.Context, sessionID, text string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fault("panic", fmt.Errorf("dialog: panic: %v", r))
		}
	}()

	unlock, err := e.locker.Lock(ctx, sessionID)
	if err != nil {
		return res, fault("session_lock", err)
	}
	defer unlock()

	state, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return res, fault("session_load", err)
	}

	t := newTurnInput(text, state)
	for _, r := range rules {
		if !r.match(t) {
			continue
		}
		res.Intent = r.intent
		out, err := r.handle(e, ctx, t)
		if err != nil {
			return res, fault(string(r.intent), err)
		}
		// Writing back even an unchanged state refreshes the session TTL.
		if err := e.sessions.Put(ctx, sessionID, out.next); err != nil {
			return res, fault("session_save", err)
		}
		res.OK = true
		res.Reply = out.reply
		res.Missing = out.missing
		res.BookingID = out.bookingID
		res.CustomerID = out.customerID
		return res, nil
	}
	return res, fault("classify", errors.New("dialog: no rule matched"))
}

func (e *Engine) record(ctx context.Context, sessionID, text string, res Result) {
	if e.recorder != nil {
		recordID := res.BookingID
		if recordID == 0 {
			recordID = res.CustomerID
		}
		err := e.recorder.RecordTurn(ctx, audit.Turn{
			SessionID:   sessionID,
			Intent:      string(res.Intent),
			OK:          res.OK,
			Missing:     res.Missing,
			RecordID:    recordID,
			UserMessage: text,
			Reply:       res.Reply,
		})
		if err != nil {
			e.logger.Warn("failed to record chat turn", "session_id", sessionID, "error", err)
		}
	}
	if e.history != nil {
		err := e.history.Append(ctx, sessionID,
			transcript.Message{Role: transcript.RoleUser, Text: text},
			transcript.Message{Role: transcript.RoleAssistant, Text: res.Reply, Intent: string(res.Intent)},
		)
		if err != nil {
			e.logger.Warn("failed to append transcript", "session_id", sessionID, "error", err)
		}
	}
}
