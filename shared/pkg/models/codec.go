package models

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// EncodeOrderCreated serializes the event for transport.
func EncodeOrderCreated(evt OrderCreatedEvent) ([]byte, error) {
	return json.Marshal(evt)
}

// DecodeOrderCreated parses a transport payload. A literal JSON null decodes
// to (nil, nil); consumers treat that as an empty payload and commit it
// without action.
func DecodeOrderCreated(body []byte) (*OrderCreatedEvent, error) {
	if bytes.Equal(bytes.TrimSpace(body), jsonNull) {
		return nil, nil
	}
	var evt OrderCreatedEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
