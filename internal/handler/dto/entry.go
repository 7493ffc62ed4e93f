package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mywallet/mywallet/internal/model"
)

// CreateEntryRequest represents the request body for POST /data.
// Value accepts a JSON number or a numeric string.
type CreateEntryRequest struct {
	Description Text   `json:"description"`
	Value       Amount `json:"value"`
	Type        Text   `json:"type"`
}

// Mistyped lists the string fields that were not JSON strings.
func (r CreateEntryRequest) Mistyped() []string {
	return mistyped([]string{"description", "type"}, r.Description, r.Type)
}

// EntryResponse represents a ledger entry in API responses.
// Monetary values are emitted as exact JSON numbers.
type EntryResponse struct {
	ID          string      `json:"id"`
	Day         string      `json:"day"`
	Description string      `json:"description"`
	Value       json.Number `json:"value"`
	Type        string      `json:"type"`
	UserID      string      `json:"user_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// SummaryResponse represents the caller's totals.
type SummaryResponse struct {
	Income  json.Number `json:"income"`
	Expense json.Number `json:"expense"`
	Balance json.Number `json:"balance"`
	Count   int         `json:"count"`
}

// ToEntryResponse converts an Entry model to EntryResponse DTO.
func ToEntryResponse(entry *model.Entry) EntryResponse {
	return EntryResponse{
		ID:          entry.ID,
		Day:         entry.Day,
		Description: entry.Description,
		Value:       number(entry.Value),
		Type:        entry.Type,
		UserID:      entry.UserID,
		CreatedAt:   entry.CreatedAt,
	}
}

// ToEntryListResponse converts a slice of entries, never returning nil.
func ToEntryListResponse(entries []*model.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToEntryResponse(e))
	}
	return out
}

// ToSummaryResponse converts a Summary model to SummaryResponse DTO.
func ToSummaryResponse(s *model.Summary) SummaryResponse {
	return SummaryResponse{
		Income:  number(s.Income),
		Expense: number(s.Expense),
		Balance: number(s.Balance),
		Count:   s.Count,
	}
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
