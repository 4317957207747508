package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"paghetta/internal/core"
)

// ChoreRecordedMessage announces one persisted chore event.
type ChoreRecordedMessage struct {
	ID        string    `json:"id"`
	Timestamp string    `json:"timestamp"`
	Task      string    `json:"task"`
	Amount    int64     `json:"amount"`
	Person    string    `json:"person"`
	Ref       string    `json:"ref"`
	SentAt    time.Time `json:"sent_at"`
}

// NewChoreRecordedMessage builds the message for an event stored under ref.
// Each message gets a fresh ID so consumers can drop redeliveries.
func NewChoreRecordedMessage(e core.ChoreEvent, ref string) *ChoreRecordedMessage {
	return &ChoreRecordedMessage{
		ID:        uuid.NewString(),
		Timestamp: core.FormatTimestamp(e.Timestamp),
		Task:      e.Task,
		Amount:    e.Amount,
		Person:    e.Person,
		Ref:       ref,
		SentAt:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChoreRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
