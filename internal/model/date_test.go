package model

import (
	"errors"
	"testing"
	"time"
)

func TestAddMonthClamped(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"2024-01-15", "2024-02-15"},
		{"2024-01-31", "2024-02-29"},
		{"2025-01-31", "2025-02-28"},
		{"2024-03-31", "2024-04-30"},
		{"2024-12-31", "2025-01-31"},
		{"2024-12-05", "2025-01-05"},
		{"2024-02-29", "2024-03-29"},
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			got := MustParseDate(tt.from).AddMonthClamped().String()
			if got != tt.want {
				t.Fatalf("AddMonthClamped(%s) = %s, want %s", tt.from, got, tt.want)
			}
		})
	}
}

func TestAddMonthOnDayKeepsAnchor(t *testing.T) {
	d := MustParseDate("2024-01-31")
	var got []string
	for i := 0; i < 4; i++ {
		d = d.AddMonthOnDay(31)
		got = append(got, d.String())
	}
	want := []string{"2024-02-29", "2024-03-31", "2024-04-30", "2024-05-31"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d = %s, want %s (all: %v)", i+1, got[i], want[i], got)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-12-05")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.December || d.Day() != 5 {
		t.Fatalf("ParseDate = %v", d)
	}
	if d.MonthKey() != "2024-12" {
		t.Fatalf("MonthKey = %q, want 2024-12", d.MonthKey())
	}

	for _, bad := range []string{"", "2024-13-01", "2024-02-30", "05/12/2024"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q) err = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestDateTextRoundTrip(t *testing.T) {
	var d Date
	if err := d.UnmarshalText([]byte("2024-11-30")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	b, _ := d.MarshalText()
	if string(b) != "2024-11-30" {
		t.Fatalf("MarshalText = %q", b)
	}
	if err := d.UnmarshalText(nil); err != nil || !d.IsZero() {
		t.Fatalf("empty text should give zero date, got %v (%v)", d, err)
	}
}

func TestParseKindAndInterval(t *testing.T) {
	if k, err := ParseKind("expense"); err != nil || k != Expense {
		t.Fatalf("ParseKind(expense) = %v, %v", k, err)
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("ParseKind(transfer) err = %v", err)
	}
	if i, err := ParseInterval("Monthly"); err != nil || i != Monthly {
		t.Fatalf("ParseInterval(Monthly) = %v, %v", i, err)
	}
	if i, err := ParseInterval("none"); err != nil || i != None {
		t.Fatalf("ParseInterval(none) = %v, %v", i, err)
	}
	if _, err := ParseInterval("yearly"); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("ParseInterval(yearly) err = %v", err)
	}
	if _, err := ParseMonth("2024-13"); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("ParseMonth(2024-13) err = %v", err)
	}
}
