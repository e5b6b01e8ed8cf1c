package rpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/daybook/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatus converts a service error into a gRPC status error. Errors that
// already carry a status are passed through. Unknown errors become Internal
// without leaking their text.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, common.ErrorForbidden.Error())
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.ErrorNotFound.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, common.ErrorAlreadyExists.Error())
	case errors.Is(err, common.ErrUnavailable):
		return status.Error(codes.Unavailable, common.ErrUnavailable.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

// FromStatus converts a gRPC error back into the matching sentinel, keeping
// the server message as context.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.OK:
		return nil
	case codes.Unauthenticated:
		if st.Message() == common.ErrTokenExpired.Error() {
			return errors.Join(common.ErrorUnauthorized, common.ErrTokenExpired)
		}
		return common.ErrorUnauthorized
	case codes.PermissionDenied:
		return common.ErrorForbidden
	case codes.InvalidArgument:
		return &remoteError{sentinel: common.ErrValidation, msg: st.Message()}
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return &remoteError{sentinel: common.ErrUnavailable, msg: st.Message()}
	case codes.Canceled:
		return context.Canceled
	default:
		return &remoteError{sentinel: common.ErrorInternal, msg: st.Message()}
	}
}

type remoteError struct {
	sentinel error
	msg      string
}

func (e *remoteError) Error() string {
	switch {
	case e.msg == "":
		return e.sentinel.Error()
	case strings.HasPrefix(e.msg, e.sentinel.Error()):
		return e.msg
	}
	return e.sentinel.Error() + ": " + e.msg
}

func (e *remoteError) Unwrap() error { return e.sentinel }
