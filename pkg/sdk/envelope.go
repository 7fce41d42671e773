package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EnvelopeKind tells whether a response payload arrived under a data key.
type EnvelopeKind int

const (
	EnvelopeBare EnvelopeKind = iota
	EnvelopeWrapped
)

// Envelope is a normalized response body. Some endpoints wrap their payload
// as {"data": ...} and some return it bare; Payload is the inner value in
// both cases.
type Envelope struct {
	Kind    EnvelopeKind
	Payload json.RawMessage
	Message string
}

// decodeEnvelope resolves body into an Envelope. This is the only place that
// distinguishes the wrapped and bare shapes.
func decodeEnvelope(body []byte) (Envelope, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Envelope{Kind: EnvelopeBare}, nil
	}

	if !json.Valid(body) {
		return Envelope{}, fmt.Errorf("failed to decode response body: invalid JSON")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		// Arrays and scalars can only be bare.
		return Envelope{Kind: EnvelopeBare, Payload: json.RawMessage(body)}, nil
	}

	env := Envelope{Kind: EnvelopeBare, Payload: json.RawMessage(body)}
	if data, ok := top["data"]; ok && !isJSONNull(data) {
		env.Kind = EnvelopeWrapped
		env.Payload = data
	}

	env.Message = messageOf(top)
	if env.Message == "" && env.Kind == EnvelopeWrapped {
		var inner map[string]json.RawMessage
		if json.Unmarshal(env.Payload, &inner) == nil {
			env.Message = messageOf(inner)
		}
	}
	return env, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode response payload: %w", err)
	}
	return nil
}

// TokenPair extracts a token pair from the payload. Tokens may sit directly
// in the payload or under a nested "tokens" object.
func (e Envelope) TokenPair() (TokenPair, bool) {
	var payload struct {
		TokenPair
		Tokens *TokenPair `json:"tokens"`
	}
	if err := e.Decode(&payload); err != nil {
		return TokenPair{}, false
	}
	if payload.Tokens != nil && payload.Tokens.Complete() {
		return *payload.Tokens, true
	}
	if payload.TokenPair.Complete() {
		return payload.TokenPair, true
	}
	return TokenPair{}, false
}

func messageOf(fields map[string]json.RawMessage) string {
	raw, ok := fields["message"]
	if !ok {
		return ""
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ""
	}
	return msg
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
