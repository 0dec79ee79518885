package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stats holds the running totals of a ledger.
type Stats struct {
	Balance        decimal.Decimal
	TotalIncome    decimal.Decimal
	TotalExpense   decimal.Decimal
	HighestExpense decimal.Decimal // zero when there are no expenses
}

// CategoryStats holds totals for one category.
type CategoryStats struct {
	Category     string
	Count        int
	Income       decimal.Decimal
	Expense      decimal.Decimal
	SharePercent float64 // share of total expense
}

// MonthStats holds totals for one "YYYY-MM" month.
type MonthStats struct {
	Month   string
	Count   int
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// DailyStats holds totals for a single calendar day.
type DailyStats struct {
	Date    Date
	Count   int
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// WeekdayStats holds totals for one day of the week.
type WeekdayStats struct {
	Weekday time.Weekday
	Count   int
	Expense decimal.Decimal
}
