package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExpenseCandidateMessage is what the bank-email scraper publishes for every
// notification it parses. The consumer resolves the user by email and turns
// the candidate into an expense row in the user's current cycle. The ID is
// the idempotency key: redelivered candidates never insert twice.
type ExpenseCandidateMessage struct {
	ID          string    `json:"id"`
	UserEmail   string    `json:"user_email"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Source      string    `json:"source"`
	Date        time.Time `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseCandidateMessage stamps a fresh candidate with a unique id.
func NewExpenseCandidateMessage(userEmail, description, amount, source string, date time.Time) *ExpenseCandidateMessage {
	return &ExpenseCandidateMessage{
		ID:          uuid.NewString(),
		UserEmail:   userEmail,
		Description: description,
		Amount:      amount,
		Source:      source,
		Date:        date,
		Timestamp:   time.Now(),
	}
}

func (m *ExpenseCandidateMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseCandidateFromJSON(data []byte) (*ExpenseCandidateMessage, error) {
	var msg ExpenseCandidateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
