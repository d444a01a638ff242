package domain

import (
	"fmt"
	"time"
)

// FieldDecoder decodes a message's serialized payload into a flat field map.
// A decoder is only valid until the source that produced it advances to the
// next message.
type FieldDecoder interface {
	Decode(into map[string]interface{}) error
}

// Message is one (topic, message, timestamp) triple read from a bag, in
// arrival order. The payload stays encoded until Fields is called, so
// messages that the sampling policy drops never pay for field decoding.
type Message struct {
	Topic string
	Type  string
	Time  time.Time
	Raw   FieldDecoder
}

// Fields decodes the message payload into a field-name → value map.
func (m Message) Fields() (map[string]interface{}, error) {
	data := make(map[string]interface{})
	if err := m.Raw.Decode(data); err != nil {
		return nil, fmt.Errorf("decode %s message on %s: %w", m.Type, m.Topic, err)
	}
	return data, nil
}
