package grpcprov

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName is registered as a gRPC content-subtype so Provider can
// call FindLibrary/GetDependencies without protoc-generated message types:
// every request/response is a plain JSON-tagged Go struct, carried over
// grpc.ClientConn.Invoke via grpc.CallContentSubtype(jsonCodecName).
const jsonCodecName = "depresolve-json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string { return jsonCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
