package codec

import (
	jsoniter "github.com/json-iterator/go"
)

// jsonAPI matches encoding/json behavior: struct fields encode in
// declaration order and nil pointers encode as null. Both properties are
// load-bearing for the Person wire contract.
var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONCodec encodes values as JSON.
type JSONCodec struct{}

var _ Codec = JSONCodec{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return jsonAPI.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return jsonAPI.Unmarshal(data, v)
}

func (JSONCodec) ContentType() string {
	return "application/json"
}

// MarshalIndent is a convenience for human-facing output such as CLI
// --json flags.
func MarshalIndent(v any) ([]byte, error) {
	return jsonAPI.MarshalIndent(v, "", "  ")
}
