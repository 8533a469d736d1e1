package nodeclient

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName is the gRPC call content-subtype this package registers and
// uses exclusively. There are no generated .pb.go stubs for NodeService (no
// protoc toolchain in this build); messages are plain JSON-tagged structs
// carried over gRPC's codec plumbing instead of protobuf wire encoding.
const jsonCodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return jsonCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
