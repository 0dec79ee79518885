// Package pipeline turns ledger records into report rows and wires the
// ledger to its configured storage backend.
package pipeline

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Collect snapshots the ledger's records, newest first.
func Collect(l *ledger.Ledger) []*ledger.Record {
	return slices.Collect(l.All())
}

// AggregateCategories computes per-category totals sorted by expense,
// largest first. SharePercent is the category's share of all expenses.
func AggregateCategories(records []*ledger.Record) []model.CategoryStats {
	catMap := make(map[string]*model.CategoryStats)
	totalExpense := decimal.Zero

	for _, r := range records {
		cs, ok := catMap[r.Category]
		if !ok {
			cs = &model.CategoryStats{Category: r.Category}
			catMap[r.Category] = cs
		}
		cs.Count++
		switch r.Kind {
		case model.Income:
			cs.Income = cs.Income.Add(r.Amount)
		case model.Expense:
			cs.Expense = cs.Expense.Add(r.Amount)
			totalExpense = totalExpense.Add(r.Amount)
		}
	}

	cats := make([]model.CategoryStats, 0, len(catMap))
	for _, cs := range catMap {
		if totalExpense.IsPositive() {
			cs.SharePercent = cs.Expense.Div(totalExpense).Mul(hundred).InexactFloat64()
		}
		cats = append(cats, *cs)
	}
	sort.Slice(cats, func(i, j int) bool {
		if c := cats[i].Expense.Cmp(cats[j].Expense); c != 0 {
			return c > 0
		}
		return cats[i].Category < cats[j].Category
	})
	return cats
}

// AggregateMonths computes per-month totals, most recent month first.
func AggregateMonths(records []*ledger.Record) []model.MonthStats {
	monthMap := make(map[string]*model.MonthStats)
	for _, r := range records {
		key := r.Date.MonthKey()
		ms, ok := monthMap[key]
		if !ok {
			ms = &model.MonthStats{Month: key}
			monthMap[key] = ms
		}
		ms.Count++
		switch r.Kind {
		case model.Income:
			ms.Income = ms.Income.Add(r.Amount)
		case model.Expense:
			ms.Expense = ms.Expense.Add(r.Amount)
		}
	}

	months := make([]model.MonthStats, 0, len(monthMap))
	for _, ms := range monthMap {
		ms.Net = ms.Income.Sub(ms.Expense)
		months = append(months, *ms)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month > months[j].Month
	})
	return months
}

// AggregateDays computes per-day totals between since and until inclusive,
// most recent first. Days without records are filled in as zeros so charts
// show the gaps.
func AggregateDays(records []*ledger.Record, since, until model.Date) []model.DailyStats {
	filtered := FilterByRange(records, since, until)

	dayMap := make(map[string]*model.DailyStats)
	for _, r := range filtered {
		key := r.Date.String()
		ds, ok := dayMap[key]
		if !ok {
			ds = &model.DailyStats{Date: r.Date}
			dayMap[key] = ds
		}
		ds.Count++
		switch r.Kind {
		case model.Income:
			ds.Income = ds.Income.Add(r.Amount)
		case model.Expense:
			ds.Expense = ds.Expense.Add(r.Amount)
		}
	}

	if !since.IsZero() && !until.IsZero() {
		for day := since; !day.After(until); day = day.AddDays(1) {
			if _, ok := dayMap[day.String()]; !ok {
				dayMap[day.String()] = &model.DailyStats{Date: day}
			}
		}
	}

	days := make([]model.DailyStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

// AggregateWeekdays computes expense totals by day of week, Sunday first.
func AggregateWeekdays(records []*ledger.Record) []model.WeekdayStats {
	days := make([]model.WeekdayStats, 7)
	for i := range days {
		days[i].Weekday = time.Weekday(i)
	}
	for _, r := range records {
		if !r.IsExpense() {
			continue
		}
		w := r.Date.Weekday()
		days[w].Count++
		days[w].Expense = days[w].Expense.Add(r.Amount)
	}
	return days
}

// FilterByRange returns records dated within [since, until]. A zero bound
// is open.
func FilterByRange(records []*ledger.Record, since, until model.Date) []*ledger.Record {
	if since.IsZero() && until.IsZero() {
		return records
	}

	var result []*ledger.Record
	for _, r := range records {
		if !since.IsZero() && r.Date.Before(since) {
			continue
		}
		if !until.IsZero() && r.Date.After(until) {
			continue
		}
		result = append(result, r)
	}
	return result
}

// FilterByMonth returns records in the "YYYY-MM" month. An empty month
// matches everything.
func FilterByMonth(records []*ledger.Record, month string) []*ledger.Record {
	if month == "" {
		return records
	}
	var result []*ledger.Record
	for _, r := range records {
		if r.Date.MonthKey() == month {
			result = append(result, r)
		}
	}
	return result
}

// FilterByKind returns records of the given kind. An empty kind matches
// everything.
func FilterByKind(records []*ledger.Record, kind model.Kind) []*ledger.Record {
	if kind == "" {
		return records
	}
	var result []*ledger.Record
	for _, r := range records {
		if r.Kind == kind {
			result = append(result, r)
		}
	}
	return result
}

// FilterByCategory returns records whose category contains the substring.
func FilterByCategory(records []*ledger.Record, category string) []*ledger.Record {
	if category == "" {
		return records
	}
	var result []*ledger.Record
	for _, r := range records {
		if containsIgnoreCase(r.Category, category) {
			result = append(result, r)
		}
	}
	return result
}

// Search returns records whose title or category contains the query.
func Search(records []*ledger.Record, query string) []*ledger.Record {
	if strings.TrimSpace(query) == "" {
		return records
	}
	var result []*ledger.Record
	for _, r := range records {
		if containsIgnoreCase(r.Title, query) || containsIgnoreCase(r.Category, query) {
			result = append(result, r)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
