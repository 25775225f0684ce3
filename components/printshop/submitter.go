package printshop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSubmissionInFlight is returned when a submit arrives while the previous
// one is still waiting on its delay.
var ErrSubmissionInFlight = errors.New("printshop: order submission already in progress")

// DefaultSubmitDelay is the artificial latency of a simulated submission.
const DefaultSubmitDelay = 2 * time.Second

// SubmitState is the state of the order form's submit control.
type SubmitState int

const (
	StateIdle SubmitState = iota
	StateSubmitting
)

func (s SubmitState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Delay simulates network latency. Implementations block until the delay
// elapses or ctx is done.
type Delay interface {
	Wait(ctx context.Context) error
}

// DelayFunc adapts a function into a Delay.
type DelayFunc func(ctx context.Context) error

// Wait calls f(ctx).
func (f DelayFunc) Wait(ctx context.Context) error {
	return f(ctx)
}

// TimerDelay waits for a fixed duration.
type TimerDelay time.Duration

// Wait blocks for the configured duration.
func (d TimerDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OrderSubmittedToast is the notification shown after a successful submit.
func OrderSubmittedToast() Toast {
	return Toast{
		Title:       "Order Submitted",
		Description: "Your printing order has been successfully submitted.",
	}
}

// OrderReceipt is returned for a completed submission.
type OrderReceipt struct {
	Order OrderSubmission `json:"order"`
	Toast Toast           `json:"toast"`
}

// SubmitterOptions configures a Submitter.
type SubmitterOptions struct {
	Delay     Delay
	Notifier  Notifier
	Logger    *zap.Logger
	Telemetry Telemetry
}

// Submitter drives the idle -> submitting -> idle cycle of one order form.
type Submitter struct {
	mu    sync.Mutex
	state SubmitState
	opts  SubmitterOptions
}

// NewSubmitter builds a submitter. A nil delay uses DefaultSubmitDelay.
func NewSubmitter(opts SubmitterOptions) *Submitter {
	if opts.Delay == nil {
		opts.Delay = TimerDelay(DefaultSubmitDelay)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Submitter{opts: opts}
}

// State reports whether the submit control is currently disabled.
func (s *Submitter) State() SubmitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit waits for the simulated delay, logs the order and emits exactly one
// toast. The submitter is back to idle when Submit returns.
func (s *Submitter) Submit(ctx context.Context, order OrderSubmission) (OrderReceipt, error) {
	if !s.begin() {
		return OrderReceipt{}, ErrSubmissionInFlight
	}
	defer s.finish()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	s.opts.Telemetry.Record(ctx, "printshop.order.submitting", map[string]any{"order_id": order.ID})
	if err := s.opts.Delay.Wait(ctx); err != nil {
		return OrderReceipt{}, err
	}

	s.opts.Logger.Info("order submitted",
		zap.String("order_id", order.ID),
		zap.String("name", order.Name),
		zap.String("phone_number", order.PhoneNumber),
		zap.String("document", order.Document.Filename),
		zap.String("content_type", order.Document.ContentType),
		zap.Int64("size", order.Document.Size),
		zap.Int("copies", order.Copies),
		zap.String("print_type", string(order.PrintType)),
	)

	toast := OrderSubmittedToast()
	if s.opts.Notifier != nil {
		if err := s.opts.Notifier.Notify(ctx, toast); err != nil {
			s.opts.Logger.Warn("toast delivery failed", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	s.opts.Telemetry.Record(ctx, "printshop.order.submitted", map[string]any{
		"order_id": order.ID,
		"copies":   order.Copies,
	})
	return OrderReceipt{Order: order, Toast: toast}, nil
}

func (s *Submitter) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return false
	}
	s.state = StateSubmitting
	return true
}

func (s *Submitter) finish() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}

// Submitters hands out one Submitter per session. A session only holds a
// Submitter while a submit for it is running, so idle browsers cost nothing.
type Submitters struct {
	mu   sync.Mutex
	opts SubmitterOptions
	byID map[string]*submitterRef
}

type submitterRef struct {
	sub  *Submitter
	refs int
}

// NewSubmitters builds a per-session submitter set sharing opts.
func NewSubmitters(opts SubmitterOptions) *Submitters {
	return &Submitters{opts: opts, byID: make(map[string]*submitterRef)}
}

// Submit runs order through the submitter owned by sessionID. A second
// submit for the same session while one is pending gets
// ErrSubmissionInFlight.
func (s *Submitters) Submit(ctx context.Context, sessionID string, order OrderSubmission) (OrderReceipt, error) {
	sub := s.acquire(sessionID)
	defer s.release(sessionID)
	return sub.Submit(ctx, order)
}

// State reports the session's submit state without allocating anything.
func (s *Submitters) State(sessionID string) SubmitState {
	s.mu.Lock()
	ref, ok := s.byID[sessionID]
	s.mu.Unlock()
	if !ok {
		return StateIdle
	}
	return ref.sub.State()
}

// Len reports how many sessions currently hold a submitter.
func (s *Submitters) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Submitters) acquire(sessionID string) *Submitter {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.byID[sessionID]
	if !ok {
		ref = &submitterRef{sub: NewSubmitter(s.opts)}
		s.byID[sessionID] = ref
	}
	ref.refs++
	return ref.sub
}

func (s *Submitters) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.byID[sessionID]
	if !ok {
		return
	}
	ref.refs--
	if ref.refs <= 0 {
		delete(s.byID, sessionID)
	}
}
