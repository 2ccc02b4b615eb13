package report

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeSummary holds the headline numbers of a sales or purchase listing
type TradeSummary struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Average     decimal.Decimal `json:"average"`
}

// SalesReport lists sales in a window with a top-products ranking
type SalesReport struct {
	Sales       []SaleRecord `json:"sales"`
	Summary     TradeSummary `json:"summary"`
	TopProducts []TopProduct `json:"top_products"`
}

// BuildSalesReport orders sales newest first and ranks products by units sold
func BuildSalesReport(sales []SaleRecord, opts Options) SalesReport {
	list := make([]SaleRecord, len(sales))
	copy(list, sales)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })

	total := decimal.Zero
	for i := range list {
		total = total.Add(list[i].TotalAmount)
		if list[i].ItemCount == 0 {
			list[i].ItemCount = len(list[i].Lines)
		}
	}
	return SalesReport{
		Sales: list,
		Summary: TradeSummary{
			Count:       len(list),
			TotalAmount: total,
			Average:     averageOf(total, len(list)),
		},
		TopProducts: topProducts(list, opts.TopN),
	}
}

// TopSupplier ranks suppliers by purchased amount
type TopSupplier struct {
	SupplierID    uuid.UUID       `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	PurchaseCount int             `json:"purchase_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// PurchaseReport lists purchases in a window with a top-suppliers ranking
type PurchaseReport struct {
	Purchases    []PurchaseRecord `json:"purchases"`
	Summary      TradeSummary     `json:"summary"`
	TopSuppliers []TopSupplier    `json:"top_suppliers"`
}

// BuildPurchaseReport orders purchases newest first and ranks suppliers by amount
func BuildPurchaseReport(purchases []PurchaseRecord, opts Options) PurchaseReport {
	list := make([]PurchaseRecord, len(purchases))
	copy(list, purchases)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })

	total := decimal.Zero
	acc := make(map[uuid.UUID]*TopSupplier)
	for _, p := range list {
		total = total.Add(p.TotalAmount)
		ts, ok := acc[p.SupplierID]
		if !ok {
			ts = &TopSupplier{SupplierID: p.SupplierID, SupplierName: p.SupplierName, TotalAmount: decimal.Zero}
			acc[p.SupplierID] = ts
		}
		ts.PurchaseCount++
		ts.TotalAmount = ts.TotalAmount.Add(p.TotalAmount)
	}

	ranking := make([]ranked, 0, len(acc))
	for id, ts := range acc {
		ranking = append(ranking, ranked{id: id, name: ts.SupplierName, score: ts.TotalAmount})
	}
	sortRanked(ranking)
	top := make([]TopSupplier, 0, limit(len(ranking), opts.TopN))
	for _, r := range ranking[:limit(len(ranking), opts.TopN)] {
		top = append(top, *acc[r.id])
	}

	return PurchaseReport{
		Purchases: list,
		Summary: TradeSummary{
			Count:       len(list),
			TotalAmount: total,
			Average:     averageOf(total, len(list)),
		},
		TopSuppliers: top,
	}
}
