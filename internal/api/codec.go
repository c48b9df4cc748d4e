// Package api defines the diary.DiaryService wire contract shared by the
// server and its clients: plain message structs, a JSON codec registered
// with gRPC, and a hand-written service descriptor and client.
package api

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype of the diary service messages.
const CodecName = "json"

// jsonCodec carries plain Go structs over gRPC as JSON.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
