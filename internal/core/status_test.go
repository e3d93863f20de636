package core

import (
	"testing"
	"time"
)

func TestComputeBillStatus(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		totalCents int64
		paidCents  int64
		dueDate    Date
		want       BillStatus
	}{
		{"unpaid before due", 10000, 0, NewDate(2025, 10, 20), StatusPending},
		{"partial before due", 10000, 4000, NewDate(2025, 10, 20), StatusPartial},
		{"fully paid", 10000, 10000, NewDate(2025, 10, 20), StatusPaid},
		{"overpaid still paid", 10000, 12000, NewDate(2025, 10, 20), StatusPaid},
		{"unpaid past due", 10000, 0, NewDate(2025, 10, 10), StatusOverdue},
		{"partial past due", 10000, 4000, NewDate(2025, 10, 10), StatusOverdue},
		{"due today is not overdue", 10000, 0, NewDate(2025, 10, 15), StatusPending},
		{"zero total is paid", 0, 0, NewDate(2025, 10, 20), StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBillStatus(tt.totalCents, tt.paidCents, tt.dueDate, now)
			if got != tt.want {
				t.Errorf("ComputeBillStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBillStatusOverride(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	bill := Bill{
		TotalAmount: Money{Cents: 10000},
		DueDate:     NewDate(2025, 10, 10),
	}

	if got := bill.Status(now); got != StatusOverdue {
		t.Fatalf("computed status = %v, want OVERDUE", got)
	}

	bill.StatusOverride = StatusPaid
	if got := bill.Status(now); got != StatusPaid {
		t.Errorf("override should win, got %v", got)
	}

	bill.StatusOverride = ""
	if got := bill.Status(now); got != StatusOverdue {
		t.Errorf("clearing the override should recompute, got %v", got)
	}
}

func TestBillEditable(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	pending := Bill{TotalAmount: Money{Cents: 5000}, DueDate: NewDate(2025, 10, 20)}
	if !pending.Editable(now) {
		t.Error("pending bill should be editable")
	}

	partial := pending
	partial.PaidAmount = Money{Cents: 1000}
	if partial.Editable(now) {
		t.Error("partially paid bill should not be editable")
	}

	overdue := Bill{TotalAmount: Money{Cents: 5000}, DueDate: NewDate(2025, 10, 1)}
	if overdue.Editable(now) {
		t.Error("overdue bill should not be editable")
	}
}

func TestValidBillStatus(t *testing.T) {
	for _, s := range []BillStatus{StatusPending, StatusPartial, StatusPaid, StatusOverdue} {
		if !ValidBillStatus(s) {
			t.Errorf("ValidBillStatus(%v) = false, want true", s)
		}
	}
	if ValidBillStatus("CANCELLED") {
		t.Error("unknown status should not validate")
	}
}
