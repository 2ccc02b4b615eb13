package report

import (
	"sort"

	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// PeriodBucket accumulates ledger flows for a month (YYYY-MM) or day (YYYY-MM-DD)
type PeriodBucket struct {
	Period   string          `json:"period"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

// ExpenseCategory totals expenses under one label
type ExpenseCategory struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// FinancialReport splits the ledger by type and period
type FinancialReport struct {
	TotalIncome       decimal.Decimal   `json:"total_income"`
	TotalExpenses     decimal.Decimal   `json:"total_expenses"`
	NetProfit         decimal.Decimal   `json:"net_profit"`
	ProfitMargin      decimal.Decimal   `json:"profit_margin"`
	IncomeCount       int               `json:"income_count"`
	ExpenseCount      int               `json:"expense_count"`
	Monthly           []PeriodBucket    `json:"monthly"`
	Daily             []PeriodBucket    `json:"daily"`
	ExpenseByCategory []ExpenseCategory `json:"expense_by_category"`
}

// BuildFinancialReport aggregates transactions. Buckets use the calendar
// date of each transaction in its stored location.
func BuildFinancialReport(txs []finance.Transaction) FinancialReport {
	r := FinancialReport{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	monthly := make(map[string]*PeriodBucket)
	daily := make(map[string]*PeriodBucket)
	categories := make(map[string]*ExpenseCategory)

	for i := range txs {
		tx := &txs[i]
		m := bucket(monthly, tx.Date.Format("2006-01"))
		d := bucket(daily, tx.Date.Format("2006-01-02"))
		switch tx.Type {
		case finance.TransactionTypeIncome:
			r.IncomeCount++
			r.TotalIncome = r.TotalIncome.Add(tx.Amount)
			m.Income = m.Income.Add(tx.Amount)
			d.Income = d.Income.Add(tx.Amount)
		case finance.TransactionTypeExpense:
			r.ExpenseCount++
			r.TotalExpenses = r.TotalExpenses.Add(tx.Amount)
			m.Expenses = m.Expenses.Add(tx.Amount)
			d.Expenses = d.Expenses.Add(tx.Amount)
			label := tx.ExpenseCategory()
			c, ok := categories[label]
			if !ok {
				c = &ExpenseCategory{Category: label, Amount: decimal.Zero}
				categories[label] = c
			}
			c.Amount = c.Amount.Add(tx.Amount)
			c.Count++
		}
	}

	r.NetProfit = r.TotalIncome.Sub(r.TotalExpenses)
	r.ProfitMargin = percentOf(r.NetProfit, r.TotalIncome)
	r.Monthly = flatten(monthly)
	r.Daily = flatten(daily)

	r.ExpenseByCategory = make([]ExpenseCategory, 0, len(categories))
	for _, c := range categories {
		r.ExpenseByCategory = append(r.ExpenseByCategory, *c)
	}
	sort.Slice(r.ExpenseByCategory, func(i, j int) bool {
		a, b := r.ExpenseByCategory[i], r.ExpenseByCategory[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		return a.Category < b.Category
	})
	return r
}

func bucket(m map[string]*PeriodBucket, key string) *PeriodBucket {
	b, ok := m[key]
	if !ok {
		b = &PeriodBucket{Period: key, Income: decimal.Zero, Expenses: decimal.Zero, Profit: decimal.Zero}
		m[key] = b
	}
	return b
}

func flatten(m map[string]*PeriodBucket) []PeriodBucket {
	out := make([]PeriodBucket, 0, len(m))
	for _, b := range m {
		b.Profit = b.Income.Sub(b.Expenses)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}
