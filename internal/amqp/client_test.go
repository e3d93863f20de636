package amqp

import (
	"testing"
	"time"
)

func TestNewBillAlertMessage(t *testing.T) {
	msg := NewBillAlertMessage(AlertBillOverdue, 42, 7, 123450, "2025-11-10")

	if msg.Kind != AlertBillOverdue {
		t.Errorf("NewBillAlertMessage() Kind = %v, want %v", msg.Kind, AlertBillOverdue)
	}
	if msg.BillID != 42 {
		t.Errorf("NewBillAlertMessage() BillID = %v, want 42", msg.BillID)
	}
	if msg.CardID != 7 {
		t.Errorf("NewBillAlertMessage() CardID = %v, want 7", msg.CardID)
	}
	if msg.TotalCents != 123450 {
		t.Errorf("NewBillAlertMessage() TotalCents = %v, want 123450", msg.TotalCents)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewBillAlertMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewBillAlertMessage() Timestamp should be recent")
	}
}

func TestBillAlertMessage_JSON(t *testing.T) {
	timestamp := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	msg := &BillAlertMessage{
		Kind:       AlertBillClosed,
		BillID:     12345,
		CardID:     2,
		TotalCents: 99900,
		DueDate:    "2025-11-10",
		Timestamp:  timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsedMsg, err := BillAlertMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("BillAlertMessageFromJSON() error = %v", err)
	}

	if parsedMsg.Kind != msg.Kind {
		t.Errorf("Parsed Kind = %v, want %v", parsedMsg.Kind, msg.Kind)
	}
	if parsedMsg.BillID != msg.BillID {
		t.Errorf("Parsed BillID = %v, want %v", parsedMsg.BillID, msg.BillID)
	}
	if parsedMsg.DueDate != msg.DueDate {
		t.Errorf("Parsed DueDate = %v, want %v", parsedMsg.DueDate, msg.DueDate)
	}
	if !parsedMsg.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsedMsg.Timestamp, msg.Timestamp)
	}
}

func TestBillAlertMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"bill_id": "not_a_number", "kind": 1}`)

	_, err := BillAlertMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("BillAlertMessageFromJSON() should fail with invalid JSON")
	}
}
