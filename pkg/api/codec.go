// Package api defines the request and response messages of the warrior.v1
// RPC services. Messages are plain structs carried as JSON by Codec.
package api

import (
	"encoding/json"
)

// CodecName is registered for the application/json content type.
const CodecName = "json"

// Codec is a connect.Codec for plain Go structs. It replaces Connect's
// protobuf-JSON codec, which only accepts generated messages.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal treats an empty body as an empty message.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// IsBinary reports false; payloads are text.
func (Codec) IsBinary() bool { return false }
