package http

import (
	"net/url"
	"testing"
	"time"
)

func TestParseWindowParams(t *testing.T) {
	now := time.Date(2025, 10, 18, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		query    url.Values
		wantFrom string
		wantTo   string
		wantErr  bool
	}{
		{
			name:     "defaults to current month",
			query:    url.Values{},
			wantFrom: "2025-10-01",
			wantTo:   "2025-10-31",
		},
		{
			name:     "explicit window",
			query:    url.Values{"from": {"2025-09-01"}, "to": {"2025-12-31"}},
			wantFrom: "2025-09-01",
			wantTo:   "2025-12-31",
		},
		{
			name:     "from only keeps default to",
			query:    url.Values{"from": {"2025-10-15"}},
			wantFrom: "2025-10-15",
			wantTo:   "2025-10-31",
		},
		{
			name:    "malformed from is an error",
			query:   url.Values{"from": {"15/10/2025"}},
			wantErr: true,
		},
		{
			name:    "malformed to is an error",
			query:   url.Values{"to": {"not-a-date"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindowParams(tt.query, now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseWindowParams() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWindowParams() error = %v", err)
			}
			if got.From.String() != tt.wantFrom {
				t.Errorf("From = %v, want %v", got.From, tt.wantFrom)
			}
			if got.To.String() != tt.wantTo {
				t.Errorf("To = %v, want %v", got.To, tt.wantTo)
			}
		})
	}
}

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name        string
		query       url.Values
		wantPage    int
		wantPerPage int
	}{
		{"defaults", url.Values{}, 1, defaultPerPage},
		{"explicit", url.Values{"page": {"3"}, "per_page": {"20"}}, 3, 20},
		{"zero page falls back", url.Values{"page": {"0"}}, 1, defaultPerPage},
		{"negative per_page falls back", url.Values{"per_page": {"-5"}}, 1, defaultPerPage},
		{"per_page capped", url.Values{"per_page": {"9999"}}, 1, maxPerPage},
		{"garbage ignored", url.Values{"page": {"abc"}}, 1, defaultPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePageParams(tt.query)
			if got.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", got.Page, tt.wantPage)
			}
			if got.PerPage != tt.wantPerPage {
				t.Errorf("PerPage = %d, want %d", got.PerPage, tt.wantPerPage)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	t.Run("first page", func(t *testing.T) {
		page, total := Slice(items, PageParams{Page: 1, PerPage: 3})
		if total != 7 {
			t.Errorf("total = %d, want 7", total)
		}
		if len(page) != 3 || page[0] != 1 || page[2] != 3 {
			t.Errorf("page = %v, want [1 2 3]", page)
		}
	})

	t.Run("last partial page", func(t *testing.T) {
		page, _ := Slice(items, PageParams{Page: 3, PerPage: 3})
		if len(page) != 1 || page[0] != 7 {
			t.Errorf("page = %v, want [7]", page)
		}
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page, total := Slice(items, PageParams{Page: 10, PerPage: 3})
		if page != nil {
			t.Errorf("page = %v, want nil", page)
		}
		if total != 7 {
			t.Errorf("total = %d, want 7", total)
		}
	})
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{"with\x00control\x07chars", "withcontrolchars"},
		{"keeps\ttabs and\nnewlines", "keeps\ttabs and\nnewlines"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sanitizeInput(tt.input); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
