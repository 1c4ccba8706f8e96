// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import "encoding/json"

// JSONCodec encodes/decodes call arguments as JSON. It is the default
// Codec for Call/Notify's structured path.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }

var defaultCodec Codec = JSONCodec{}

// BinaryCodec passes []byte values through unchanged and falls back to
// JSON for anything else, for callers that mix raw and structured
// payloads on the same Client.
type BinaryCodec struct{}

func (BinaryCodec) Encode(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case *[]byte:
		return *b, nil
	default:
		return json.Marshal(v)
	}
}

func (BinaryCodec) Decode(data []byte, v any) error {
	if b, ok := v.(*[]byte); ok {
		*b = data
		return nil
	}
	return json.Unmarshal(data, v)
}

// Binary is a Codec that passes bytes through unchanged.
var Binary Codec = BinaryCodec{}
