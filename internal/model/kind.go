package model

import (
	"errors"
	"fmt"
	"strings"
)

// Kind says which side of the balance a transaction sits on.
type Kind string

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

// Interval is how often a recurring transaction repeats.
type Interval string

const (
	None    Interval = ""
	Weekly  Interval = "weekly"
	Monthly Interval = "monthly"
)

var (
	ErrInvalidKind     = errors.New("invalid transaction type")
	ErrInvalidInterval = errors.New("invalid recurrence interval")
)

// ParseKind accepts "income"/"expense" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return "", fmt.Errorf("%w %q: must be Income or Expense", ErrInvalidKind, s)
	}
}

func (k Kind) String() string { return string(k) }

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

// ParseInterval accepts "", "none", "weekly" and "monthly" in any case.
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "weekly":
		return Weekly, nil
	case "monthly":
		return Monthly, nil
	default:
		return None, fmt.Errorf("%w %q: must be weekly or monthly", ErrInvalidInterval, s)
	}
}

func (i Interval) String() string {
	if i == None {
		return "none"
	}
	return string(i)
}

// IsValid reports whether i is one of the known intervals, None included.
func (i Interval) IsValid() bool {
	switch i {
	case None, Weekly, Monthly:
		return true
	default:
		return false
	}
}
