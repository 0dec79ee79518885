package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
)

func TestWriteCSV(t *testing.T) {
	l := ledger.New()
	l.Insert(ledger.NewRecord{
		Date: model.MustParseDate("2024-12-01"), Title: "Salary", Amount: decimal.NewFromInt(1000),
		Kind: model.Income, Category: "Work", Recurring: true, Interval: model.Monthly,
	})
	l.Insert(ledger.NewRecord{
		Date: model.MustParseDate("2024-12-02"), Title: "Lunch, with team", Amount: decimal.RequireFromString("42.5"),
		Kind: model.Expense, Category: "Food",
	})

	var buf bytes.Buffer
	n, err := WriteCSV(&buf, l.All())
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}

	want := strings.Join([]string{
		"id,date,title,amount,type,category,is_recurring,recurrence_type",
		`2,2024-12-02,"Lunch, with team",42.5,Expense,Food,false,`,
		"1,2024-12-01,Salary,1000,Income,Work,true,monthly",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestReadCSVRoundTrip(t *testing.T) {
	in := strings.Join([]string{
		"id,date,title,amount,type,category,is_recurring,recurrence_type",
		"7,2024-12-02,Lunch,42.5,Expense,Food,false,",
		"3,2024-12-01,Salary,1000,Income,Work,true,monthly",
	}, "\n")

	snap, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(snap.Transactions) != 2 || snap.NextID != 8 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Transactions[0].Title != "Salary" {
		t.Fatalf("expected oldest first, got %s", snap.Transactions[0].Title)
	}
	if rt := snap.Transactions[0].RecurrenceType; rt == nil || *rt != "monthly" {
		t.Fatalf("recurrence = %v", rt)
	}
	if snap.Transactions[1].RecurrenceType != nil {
		t.Fatal("empty recurrence should be nil")
	}

	l := ledger.New()
	if err := l.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("restored %d records", l.Len())
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad header", "a,b,c,d,e,f,g,h\n"},
		{"short row", "id,date,title,amount,type,category,is_recurring,recurrence_type\n1,2024-01-01\n"},
		{"bad id", "id,date,title,amount,type,category,is_recurring,recurrence_type\nx,2024-01-01,t,1,Income,c,false,\n"},
		{"bad bool", "id,date,title,amount,type,category,is_recurring,recurrence_type\n1,2024-01-01,t,1,Income,c,maybe,\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.in)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	_, err := ReadCSV(strings.NewReader("a,b,c,d,e,f,g,h\n"))
	if !errors.Is(err, ErrBadHeader) {
		t.Fatalf("err = %v, want ErrBadHeader", err)
	}
}
