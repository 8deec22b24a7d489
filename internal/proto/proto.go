// Package proto defines the JSON wire protocol: the envelope, the client
// intent set, and the server event set. The transport decodes envelopes;
// handlers dispatch on Envelope.Type.
package proto

import (
	"encoding/json"
	"fmt"
)

// Envelope wraps every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode builds an envelope around a payload.
func Encode(msgType string, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", msgType, err)
		}
		raw = b
	}
	return json.Marshal(Envelope{Type: msgType, Data: raw})
}

// Decode parses an envelope from raw bytes.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("decode envelope: missing type")
	}
	return &env, nil
}

// Bind unmarshals the envelope payload into dst.
func (e *Envelope) Bind(dst any) error {
	if len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
