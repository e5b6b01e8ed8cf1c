package client

import (
	"github.com/dmitrijs2005/daybook/internal/rpc"
	"google.golang.org/grpc/status"
)

// mapError turns gRPC status errors into common sentinels. Other errors,
// such as context cancellation before the call starts, pass through.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); !ok {
		return err
	}
	return rpc.FromStatus(err)
}
