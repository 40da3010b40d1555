package inplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
)

var errMissingData = errors.New(`reply message has no "data" field`)

// Request is the envelope sent to the relay. Name selects the relay handler
// and Body carries the adapter-built payload.
type Request struct {
	Name ServiceID       `json:"name"`
	Body json.RawMessage `json:"body"`
}

// Reply is the envelope returned by the relay. Message holds a JSON-encoded
// Envelope.
type Reply struct {
	Message string `json:"message"`
}

// Envelope is the decoded content of a reply message.
type Envelope struct {
	Data string `json:"data"`
}

// Channel delivers one request to the relay and waits for its reply.
// A returned error is a transport failure; backend failures arrive as
// ordinary replies carrying FailureMarkup.
type Channel interface {
	Send(ctx context.Context, req Request) (Reply, error)
}

// ChannelFunc adapts a function to the Channel interface.
type ChannelFunc func(ctx context.Context, req Request) (Reply, error)

// Send calls f.
func (f ChannelFunc) Send(ctx context.Context, req Request) (Reply, error) {
	return f(ctx, req)
}

// NewReply builds a reply whose message is {"data": <data>}.
func NewReply(data string) Reply {
	encoded, err := marshalJSON(data)
	if err != nil {
		// Strings always encode; keep the envelope well formed regardless.
		encoded = []byte(`""`)
	}
	return Reply{Message: `{"data": ` + string(encoded) + `}`}
}

// Decode parses the reply message. A message without a data field is an
// error.
func (r Reply) Decode() (Envelope, error) {
	var raw struct {
		Data *string `json:"data"`
	}
	if err := json.Unmarshal([]byte(r.Message), &raw); err != nil {
		return Envelope{}, err
	}
	if raw.Data == nil {
		return Envelope{}, errMissingData
	}
	return Envelope{Data: *raw.Data}, nil
}

// marshalJSON encodes v without escaping HTML characters, matching what a
// browser-side JSON.stringify produces for markup.
func marshalJSON(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
