package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/client/cache"
	"github.com/dmitrijs2005/daybook/internal/client/keyqueue"
	"github.com/dmitrijs2005/daybook/internal/common"
)

// State is the lifecycle of one optimistic mutation.
type State int

const (
	StateIdle State = iota
	StatePending
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled-back"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Kind groups failures by what the caller can do about them.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransient
	KindUnauthorized
	KindValidation
	KindNotFound
	KindCorrupted
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindCorrupted:
		return "corrupted"
	}
	return "unknown"
}

// Error is returned by every coordinator operation that did not commit.
type Error struct {
	Op    string
	Kind  Kind
	State State
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.State, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Classify maps an error to its Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, common.ErrValidation):
		return KindValidation
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrorForbidden):
		return KindUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return KindNotFound
	case errors.Is(err, cache.ErrCorrupted):
		return KindCorrupted
	case errors.Is(err, common.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, keyqueue.ErrQueueFull):
		return KindTransient
	}
	return KindUnknown
}

func newError(op string, state State, err error) *Error {
	return &Error{Op: op, Kind: Classify(err), State: state, Err: err}
}
