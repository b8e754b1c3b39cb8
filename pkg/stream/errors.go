package stream

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies stream failures.
type ErrorKind int

const (
	// KindInvalidArgument reports bad construction parameters.
	KindInvalidArgument ErrorKind = iota
	// KindUpstreamFailure reports a failure raised by a source.
	KindUpstreamFailure
	// KindTransformFailure reports a failure raised inside a user-supplied function.
	KindTransformFailure
	// KindTimeout reports that a verification did not reach a terminal signal in time.
	KindTimeout
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindUpstreamFailure:
		return "upstream failure"
	case KindTransformFailure:
		return "transform failure"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUpstreamFailure   = errors.New("upstream failure")
	ErrTransformFailure  = errors.New("transform failure")
	ErrTimeout           = errors.New("timeout")
	ErrSchedulerShutdown = errors.New("scheduler is shut down")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindUpstreamFailure:
		return ErrUpstreamFailure
	case KindTransformFailure:
		return ErrTransformFailure
	case KindTimeout:
		return ErrTimeout
	}
	return nil
}

// Error is a classified stream failure.
type Error struct {
	Kind ErrorKind
	// Op is the operator that raised the failure.
	Op  string
	Err error
}

// NewError builds a classified error. It returns nil if err is nil.
func NewError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error of e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

func invalidArgument(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Err: fmt.Errorf(format, args...)}
}

// classify wraps err with kind unless it is already classified, a context
// error, or a stop signal travelling back up to the operator that raised it.
func classify(kind ErrorKind, op string, err error) error {
	if err == nil || isContextErr(err) || isStop(err) {
		return err
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// stopSignal is returned by a Receiver to end its upstream early. Each
// operator run allocates its own signal and only swallows that exact value.
type stopSignal struct {
	op string
}

func newStop(op string) *stopSignal {
	return &stopSignal{op: op}
}

func (s *stopSignal) Error() string {
	return s.op + ": stop"
}

// swallow turns s back into a normal completion. Any other error passes through.
func (s *stopSignal) swallow(err error) error {
	if errors.Is(err, s) {
		return nil
	}
	return err
}

func isStop(err error) bool {
	var s *stopSignal
	return errors.As(err, &s)
}

// recoverTransform converts a panic in a user-supplied function into a
// KindTransformFailure error stored in *errp.
func recoverTransform(op string, errp *error) {
	if r := recover(); r != nil {
		var err error
		switch v := r.(type) {
		case error:
			err = v
		default:
			err = fmt.Errorf("panic: %v", v)
		}
		*errp = &Error{Kind: KindTransformFailure, Op: op, Err: err}
	}
}
