package stream

import (
	"encoding/json"
)

// Message kinds carried on the per-register feed. The wire format is a JSON
// object with a "tipo" discriminator and a "data" payload.
const (
	KindSnapshot = "snapshot"
	KindCreated  = "created"
	KindUpdated  = "updated"
	KindDeleted  = "deleted"
)

type Message struct {
	Tipo string          `json:"tipo"`
	Data json.RawMessage `json:"data"`
}

// Deleted is the payload of a deletion event.
type Deleted struct {
	ID int64 `json:"id"`
}

// Encode marshals a feed message for one payload.
func Encode(kind string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Tipo: kind, Data: raw})
}
