package amqp

import (
	"encoding/json"
	"time"
)

// TransactionCreatedMessage notifies external consumers that a transaction
// was recorded. Amounts travel as integer cents.
type TransactionCreatedMessage struct {
	ID          int64     `json:"id"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	AmountCents int64     `json:"amount_cents"`
	Account     string    `json:"account"`
	Category    string    `json:"category"`
	Unexpected  bool      `json:"unexpected"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(id int64, month, year int, amountCents int64, account, category string, unexpected bool) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:          id,
		Month:       month,
		Year:        year,
		AmountCents: amountCents,
		Account:     account,
		Category:    category,
		Unexpected:  unexpected,
		Timestamp:   time.Now().UTC(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var m TransactionCreatedMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
