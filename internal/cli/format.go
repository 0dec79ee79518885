// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/config"
	"github.com/theirongolddev/flowtrack/internal/model"
)

// FormatAmount formats an amount in the given currency.
// e.g., 50000 IDR -> "Rp 50,000", -12.5 USD -> "-$ 12.50"
func FormatAmount(amount decimal.Decimal, cur config.Currency) string {
	neg := amount.IsNegative()
	s := amount.Abs().StringFixed(cur.Decimals)

	intPart, frac, _ := strings.Cut(s, ".")
	out := groupDigits(intPart, cur.Thousands)
	if frac != "" {
		out += cur.Point + frac
	}
	if cur.Prefix != "" {
		out = cur.Prefix + " " + out
	}
	if neg {
		return "-" + out
	}
	return out
}

// FormatSigned prefixes income with "+" and expenses with "-".
// e.g., "+ Rp 50,000"
func FormatSigned(amount decimal.Decimal, kind model.Kind, cur config.Currency) string {
	sign := "+"
	if kind == model.Expense {
		sign = "-"
	}
	return sign + " " + FormatAmount(amount, cur)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return groupDigits(strconv.FormatInt(n, 10), ",")
}

func groupDigits(s, sep string) string {
	if len(s) <= 3 || sep == "" {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteString(sep)
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 percentage.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDateHeader returns "Today", "Yesterday" or a long date relative
// to today.
func FormatDateHeader(d, today model.Date) string {
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDays(-1)):
		return "Yesterday"
	default:
		return d.Time().Format("January 02, 2006")
	}
}

// FormatInterval returns a short label for a recurrence interval.
func FormatInterval(recurring bool, iv model.Interval) string {
	if !recurring || iv == model.None {
		return "-"
	}
	return iv.String()
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}

// Truncate shortens s to max runes, marking the cut with "…".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 1 {
		return s
	}
	return string(r[:max-1]) + "…"
}
