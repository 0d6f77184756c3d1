package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage notifies consumers that the ledger mutated.
// It carries only the revision; consumers fetch the current snapshot
// themselves, so stale messages are harmless.
type LedgerChangedMessage struct {
	Revision  uint64    `json:"revision"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a change notification for a revision
func NewLedgerChangedMessage(revision uint64, operation string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Revision:  revision,
		Operation: operation,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
