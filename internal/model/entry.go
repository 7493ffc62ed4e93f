package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayLayout is the day/month stamp format recorded on every entry.
const DayLayout = "02/01"

// Well-known entry types. Type is a free-form tag; these two feed the summary.
const (
	EntryTypeIncome  = "income"
	EntryTypeExpense = "expense"
)

// Entry is one recorded financial transaction owned by a single user.
type Entry struct {
	ID          string          `json:"id"`
	Day         string          `json:"day"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	Type        string          `json:"type"`
	UserID      string          `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsIncome reports whether the entry adds to the balance.
func (e *Entry) IsIncome() bool {
	return e.Type == EntryTypeIncome
}

// IsExpense reports whether the entry subtracts from the balance.
func (e *Entry) IsExpense() bool {
	return e.Type == EntryTypeExpense
}

// Summary aggregates a user's entries.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Count   int             `json:"count"`
}

// Summarize totals income and expense entries. Entries with other types are
// counted but do not move the balance.
func Summarize(entries []*Entry) Summary {
	s := Summary{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	for _, e := range entries {
		switch {
		case e.IsIncome():
			s.Income = s.Income.Add(e.Value)
		case e.IsExpense():
			s.Expense = s.Expense.Add(e.Value.Abs())
		}
		s.Count++
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}
