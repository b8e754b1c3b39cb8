package stream

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-reactor/pkg/logging/logfields"
	"go-reactor/pkg/metrics"
)

// ============================================================================
// SUBSCRIPTION LIFECYCLE
// ============================================================================

// State is the lifecycle state of a Subscription.
type State int32

const (
	StateCreated State = iota
	StateActive
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s is absorbing.
func (s State) IsTerminal() bool {
	return s >= StateCompleted
}

// Subscription is the live execution of a Stream against an Observer.
// Values may only be delivered while it is Active; terminal states are absorbing.
type Subscription struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
	state  atomic.Int32
	done   chan struct{}
	err    error
	log    *logrus.Entry
}

func newSubscription(parent context.Context, op string) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.New()
	return &Subscription{
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		log: log.WithFields(logrus.Fields{
			logfields.SubscriptionID: id.String(),
			logfields.Operator:       op,
		}),
	}
}

// ID returns the unique identifier of the subscription.
func (s *Subscription) ID() string {
	return s.id.String()
}

// State returns the current lifecycle state.
func (s *Subscription) State() State {
	return State(s.state.Load())
}

// Cancel stops future deliveries and releases every goroutine and timer the
// subscription started. Values already delivered are not affected. A value
// whose delivery is in flight when Cancel is called may still arrive.
func (s *Subscription) Cancel() {
	s.cancel()
	if s.state.CompareAndSwap(int32(StateCreated), int32(StateCancelled)) {
		s.log.Debug("Subscription cancelled before activation")
		s.finish(context.Canceled)
	}
}

// Done returns a channel that is closed once the subscription reached a terminal state.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns the terminal error: nil while running or after completion, the
// failure after an error, context.Canceled after cancellation.
func (s *Subscription) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Wait blocks until the subscription terminates or ctx ends.
func (s *Subscription) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Subscription) activate() bool {
	if !s.state.CompareAndSwap(int32(StateCreated), int32(StateActive)) {
		return false
	}
	metrics.Engine.SubscriptionsStarted.Inc()
	metrics.Engine.ActiveSubscriptions.Inc()
	s.log.Debug("Subscription activated")
	return true
}

// terminate moves an active subscription to its terminal state and emits the
// matching terminal signal.
func (s *Subscription) terminate(err error, onComplete func(), onError func(error)) {
	next := StateCompleted
	switch {
	case err == nil:
	case s.ctx.Err() != nil:
		next = StateCancelled
		err = context.Canceled
	default:
		next = StateFailed
	}
	if !s.state.CompareAndSwap(int32(StateActive), int32(next)) {
		return
	}
	metrics.Engine.ActiveSubscriptions.Dec()
	metrics.Engine.SubscriptionsFinished.WithLabelValues(next.String()).Inc()

	scopedLog := s.log.WithField(logfields.State, next.String())
	switch next {
	case StateCompleted:
		scopedLog.Debug("Subscription completed")
		onComplete()
	case StateFailed:
		scopedLog.WithError(err).Debug("Subscription failed")
		onError(err)
	default:
		scopedLog.Debug("Subscription cancelled")
	}
	s.finish(err)
}

// reject fails a subscription that could not be activated.
func (s *Subscription) reject(err error, onError func(error)) {
	if isContextErr(err) || s.ctx.Err() != nil {
		s.Cancel()
		return
	}
	if !s.state.CompareAndSwap(int32(StateCreated), int32(StateFailed)) {
		return
	}
	metrics.Engine.SubscriptionsFinished.WithLabelValues(StateFailed.String()).Inc()
	s.log.WithError(err).Warning("Subscription could not be activated")
	onError(err)
	s.finish(err)
}

func (s *Subscription) finish(err error) {
	s.err = err
	close(s.done)
	s.cancel()
}
