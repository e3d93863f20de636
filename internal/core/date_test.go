package core

import "testing"

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Year() != 2025 || d.Month() != 3 || d.Day() != 9 {
		t.Errorf("ParseDate() = %v, want 2025-03-09", d)
	}

	if _, err := ParseDate("09/03/2025"); err == nil {
		t.Error("ParseDate should reject non-ISO formats")
	}
	if _, err := ParseDate("2025-02-30"); err == nil {
		t.Error("ParseDate should reject impossible dates")
	}
}

func TestClampDay(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		day   int
		want  int
	}{
		{"day fits", 2025, 1, 15, 15},
		{"31 in april", 2025, 4, 31, 30},
		{"31 in february", 2025, 2, 31, 28},
		{"29 in leap february", 2024, 2, 29, 29},
		{"29 in non-leap february", 2025, 2, 29, 28},
		{"31 in december", 2025, 12, 31, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampDay(tt.year, tt.month, tt.day); got != tt.want {
				t.Errorf("ClampDay(%d, %d, %d) = %d, want %d", tt.year, tt.month, tt.day, got, tt.want)
			}
		})
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		offset    int
		wantYear  int
		wantMonth int
	}{
		{"same year", 2025, 3, 2, 2025, 5},
		{"cross year forward", 2025, 11, 3, 2026, 2},
		{"cross year backward", 2025, 1, -1, 2024, 12},
		{"zero offset", 2025, 6, 0, 2025, 6},
		{"full year", 2025, 7, 12, 2026, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, m := AddMonths(tt.year, tt.month, tt.offset)
			if y != tt.wantYear || m != tt.wantMonth {
				t.Errorf("AddMonths(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.year, tt.month, tt.offset, y, m, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestBillingPeriodCompare(t *testing.T) {
	a := BillingPeriod{Year: 2025, Month: 12}
	b := BillingPeriod{Year: 2026, Month: 1}

	if a.Compare(b) != -1 {
		t.Error("2025-12 should sort before 2026-01")
	}
	if b.Compare(a) != 1 {
		t.Error("2026-01 should sort after 2025-12")
	}
	if a.Compare(a) != 0 {
		t.Error("a period should compare equal to itself")
	}
}
