package amqp

import (
	"encoding/json"
	"time"
)

// CostAddedMessage announces a newly persisted cost record. It carries only
// the record id; consumers fetch the full record from the store, so the
// message stays small and never goes stale.
type CostAddedMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCostAddedMessage creates a message for a stored cost record.
func NewCostAddedMessage(id int64) *CostAddedMessage {
	return &CostAddedMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CostAddedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CostAddedMessageFromJSON creates a message from JSON bytes
func CostAddedMessageFromJSON(data []byte) (*CostAddedMessage, error) {
	var msg CostAddedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
