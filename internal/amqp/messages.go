package amqp

import (
	"encoding/json"
	"time"
)

const (
	AlertBillClosed  = "BILL_CLOSED"
	AlertBillOverdue = "BILL_OVERDUE"
)

// BillAlertMessage is a lightweight notification about a bill event.
// Consumers fetch the full bill from the database using BillID.
type BillAlertMessage struct {
	Kind       string    `json:"kind"`
	BillID     int64     `json:"bill_id"`
	CardID     int64     `json:"card_id"`
	TotalCents int64     `json:"total_cents"`
	DueDate    string    `json:"due_date"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewBillAlertMessage creates an alert for a bill event
func NewBillAlertMessage(kind string, billID, cardID, totalCents int64, dueDate string) *BillAlertMessage {
	return &BillAlertMessage{
		Kind:       kind,
		BillID:     billID,
		CardID:     cardID,
		TotalCents: totalCents,
		DueDate:    dueDate,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BillAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillAlertMessageFromJSON creates a message from JSON bytes
func BillAlertMessageFromJSON(data []byte) (*BillAlertMessage, error) {
	var msg BillAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
