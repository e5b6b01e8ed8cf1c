// Package rpc describes the Daybook gRPC service: the wire messages, a JSON
// codec, the service descriptor, a typed client, and the mapping between
// gRPC status codes and the sentinel errors in package common.
//
// Messages are plain Go structs, not protobuf, so every call must carry the
// "json" content-subtype (application/grpc+json). DaybookClient sets it on
// each call; other clients pass grpc.CallContentSubtype(CodecName) or dial
// with grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)).
// A call sent with the default proto codec fails with codes.Internal.
package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype carried as application/grpc+json.
const CodecName = "json"

// Codec marshals messages as JSON.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal %T: %w", v, err)
	}
	return b, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpc: unmarshal %T: %w", v, err)
	}
	return nil
}

func init() {
	encoding.RegisterCodec(Codec{})
}
