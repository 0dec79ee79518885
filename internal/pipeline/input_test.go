package pipeline

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/model"
)

func TestRecordInputParse(t *testing.T) {
	today := model.MustParseDate("2024-12-05")

	nr, err := RecordInput{Title: " Lunch ", Amount: "25,000"}.Parse(today)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if nr.Title != "Lunch" || !nr.Amount.Equal(decimal.NewFromInt(25000)) {
		t.Fatalf("parsed = %+v", nr)
	}
	if nr.Kind != model.Expense || !nr.Date.Equal(today) || nr.Category != "General" || nr.Recurring {
		t.Fatalf("defaults not applied: %+v", nr)
	}

	nr, err = RecordInput{
		Date: "2024-01-31", Title: "Salary", Amount: "1000.50",
		Kind: "income", Category: "Work", Interval: "Monthly",
	}.Parse(today)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if nr.Kind != model.Income || nr.Interval != model.Monthly || !nr.Recurring || nr.Date.String() != "2024-01-31" {
		t.Fatalf("parsed = %+v", nr)
	}
}

func TestRecordInputParseErrors(t *testing.T) {
	today := model.MustParseDate("2024-12-05")
	tests := []struct {
		name string
		in   RecordInput
		want error
	}{
		{"empty title", RecordInput{Title: "  ", Amount: "1"}, ErrEmptyTitle},
		{"bad amount", RecordInput{Title: "x", Amount: "abc"}, ErrInvalidAmount},
		{"zero amount", RecordInput{Title: "x", Amount: "0"}, ErrInvalidAmount},
		{"negative amount", RecordInput{Title: "x", Amount: "-5"}, ErrInvalidAmount},
		{"bad date", RecordInput{Title: "x", Amount: "1", Date: "2024-13-01"}, model.ErrInvalidDate},
		{"bad kind", RecordInput{Title: "x", Amount: "1", Kind: "transfer"}, model.ErrInvalidKind},
		{"bad interval", RecordInput{Title: "x", Amount: "1", Interval: "daily"}, model.ErrInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.in.Parse(today); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
