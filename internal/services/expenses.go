package services

import (
	"context"
	"slices"
	"strings"

	"github.com/plantbygpt/plantbygpt/internal/model"
)

// ExpenseSummary aggregates expenses in one currency.
type ExpenseSummary struct {
	Currency string             `json:"currency"`
	Count    int                `json:"count"`
	Total    float64            `json:"total"`
	Monthly  map[string]float64 `json:"monthly"`
	ByType   map[string]float64 `json:"byType"`
}

// AddExpense stores a spending record. Amount must be positive and a category is
// required; type and currency default to other and CNY.
func (j *Journal) AddExpense(ctx context.Context, x model.Expense) (*model.Expense, error) {
	if x.ID == "" {
		x.ID = j.newID()
	}
	if x.Type == "" {
		x.Type = "other"
	}
	if x.Currency == "" {
		x.Currency = "CNY"
	}
	if x.Date.IsZero() {
		x.Date = j.now()
	}
	x.Category = strings.TrimSpace(x.Category)
	x.Photos = orEmpty(x.Photos)
	x.Tags = orEmpty(x.Tags)
	if err := j.check(x); err != nil {
		return nil, err
	}
	err := j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		if x.RelatedPlantID != "" && st.PlantIndex(x.RelatedPlantID) < 0 {
			return nil, NewNotFoundError("plant", x.RelatedPlantID)
		}
		if st.ExpenseIndex(x.ID) >= 0 {
			return nil, NewConflictError("expense", x.ID+" already exists")
		}
		st.Expenses = append([]model.Expense{x}, st.Expenses...)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return &x, nil
}

// DeleteExpense removes a spending record and its receipt photos.
func (j *Journal) DeleteExpense(ctx context.Context, id string) error {
	return j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		i := st.ExpenseIndex(id)
		if i < 0 {
			return nil, NewNotFoundError("expense", id)
		}
		photos := st.Expenses[i].Photos
		st.Expenses = slices.Delete(st.Expenses, i, i+1)
		return photos, nil
	})
}

// ExpenseSummary totals the expenses in currency, per month (yyyy-mm) and per type.
func (j *Journal) ExpenseSummary(ctx context.Context, currency string) (*ExpenseSummary, error) {
	if currency == "" {
		currency = "CNY"
	}
	if !slices.Contains(model.Currencies, currency) {
		return nil, NewValidationError("currency", "must be one of: "+strings.Join(model.Currencies, " "))
	}
	st, err := j.State(ctx)
	if err != nil {
		return nil, err
	}
	out := &ExpenseSummary{Currency: currency, Monthly: map[string]float64{}, ByType: map[string]float64{}}
	for _, x := range st.Expenses {
		if x.Currency != currency {
			continue
		}
		out.Count++
		out.Total += x.Amount
		out.Monthly[x.Date.Format("2006-01")] += x.Amount
		out.ByType[x.Type] += x.Amount
	}
	return out, nil
}
