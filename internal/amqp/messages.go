package amqp

import (
	"encoding/json"
	"time"
)

// TransactionCreatedMessage announces a newly archived transaction.
// It carries only identifiers; consumers fetch the full row from the
// archive themselves.
type TransactionCreatedMessage struct {
	ID         string    `json:"id"`
	SessionKey string    `json:"sessionKey"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(id, sessionKey string) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:         id,
		SessionKey: sessionKey,
		Timestamp:  time.Now(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
