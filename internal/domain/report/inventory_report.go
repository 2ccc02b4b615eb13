package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/pharmaops/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ExpiryStatus classifies a lot by remaining shelf life
type ExpiryStatus string

const (
	ExpiryStatusExpired      ExpiryStatus = "EXPIRED"
	ExpiryStatusExpiringSoon ExpiryStatus = "EXPIRING_SOON"
	ExpiryStatusNormal       ExpiryStatus = "NORMAL"
)

// ClassifyExpiry maps days to expiry onto a status
func ClassifyExpiry(days, soonDays int) ExpiryStatus {
	switch {
	case days <= 0:
		return ExpiryStatusExpired
	case days <= soonDays:
		return ExpiryStatusExpiringSoon
	default:
		return ExpiryStatusNormal
	}
}

// TopProduct ranks products by units sold
type TopProduct struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// RecentActivity is a purchase or sale in the summary feed
type RecentActivity struct {
	Kind          MovementKind    `json:"kind"`
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Counterparty  string          `json:"counterparty,omitempty"`
}

// InventorySummary is the dashboard overview of a pharmacy
type InventorySummary struct {
	TotalProducts      int              `json:"total_products"`
	LowStockProducts   int              `json:"low_stock_products"`
	ExpiringProducts   int              `json:"expiring_products"`
	TotalSuppliers     int64            `json:"total_suppliers"`
	MonthPurchaseCount int              `json:"month_purchase_count"`
	MonthSaleCount     int              `json:"month_sale_count"`
	InventoryValue     decimal.Decimal  `json:"inventory_value"`
	TopSelling         []TopProduct     `json:"top_selling"`
	RecentActivity     []RecentActivity `json:"recent_activity"`
}

// SummaryInput bundles the rows behind InventorySummary
type SummaryInput struct {
	Products      []catalog.Product
	ActiveBatches []BatchRow
	Suppliers     int64
	Sales         []SaleRecord
	Purchases     []PurchaseRecord
}

// BuildInventorySummary aggregates the dashboard counters. The month window
// starts at local midnight on the first of now's month.
func BuildInventorySummary(in SummaryInput, now time.Time, opts Options) InventorySummary {
	s := InventorySummary{
		TotalProducts:  len(in.Products),
		TotalSuppliers: in.Suppliers,
		InventoryValue: decimal.Zero,
	}
	for i := range in.Products {
		p := &in.Products[i]
		if p.IsLowStock() {
			s.LowStockProducts++
		}
		s.InventoryValue = s.InventoryValue.Add(p.CostValue())
	}

	horizon := now.AddDate(0, 0, opts.ExpiringWindowDays)
	expiring := make(map[uuid.UUID]struct{})
	for _, b := range in.ActiveBatches {
		if b.CurrentQuantity > 0 && !b.ExpiryDate.After(horizon) {
			expiring[b.ProductID] = struct{}{}
		}
	}
	s.ExpiringProducts = len(expiring)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for _, p := range in.Purchases {
		if !p.Date.Before(monthStart) {
			s.MonthPurchaseCount++
		}
	}
	for _, sale := range in.Sales {
		if !sale.Date.Before(monthStart) {
			s.MonthSaleCount++
		}
	}

	s.TopSelling = topProducts(in.Sales, opts.TopN)
	s.RecentActivity = recentActivity(in.Sales, in.Purchases, opts.TopN)
	return s
}

func topProducts(sales []SaleRecord, topN int) []TopProduct {
	acc := make(map[uuid.UUID]*TopProduct)
	for _, s := range sales {
		for _, l := range s.Lines {
			tp, ok := acc[l.ProductID]
			if !ok {
				tp = &TopProduct{ProductID: l.ProductID, ProductName: l.ProductName, Revenue: decimal.Zero}
				acc[l.ProductID] = tp
			}
			tp.Quantity += l.Quantity
			tp.Revenue = tp.Revenue.Add(l.TotalPrice)
		}
	}
	ranking := make([]ranked, 0, len(acc))
	for id, tp := range acc {
		ranking = append(ranking, ranked{id: id, name: tp.ProductName, score: decimal.NewFromInt(int64(tp.Quantity))})
	}
	sortRanked(ranking)
	out := make([]TopProduct, 0, limit(len(ranking), topN))
	for _, r := range ranking[:limit(len(ranking), topN)] {
		out = append(out, *acc[r.id])
	}
	return out
}

func recentActivity(sales []SaleRecord, purchases []PurchaseRecord, n int) []RecentActivity {
	feed := make([]RecentActivity, 0, len(sales)+len(purchases))
	for _, s := range sales {
		feed = append(feed, RecentActivity{
			Kind: MovementOut, ID: s.ID, InvoiceNumber: s.InvoiceNumber,
			Date: s.Date, Amount: s.TotalAmount, Counterparty: s.CustomerName,
		})
	}
	for _, p := range purchases {
		feed = append(feed, RecentActivity{
			Kind: MovementIn, ID: p.ID, InvoiceNumber: p.InvoiceNumber,
			Date: p.Date, Amount: p.TotalAmount, Counterparty: p.SupplierName,
		})
	}
	sort.SliceStable(feed, func(i, j int) bool {
		if !feed[i].Date.Equal(feed[j].Date) {
			return feed[i].Date.After(feed[j].Date)
		}
		return feed[i].ID.String() < feed[j].ID.String()
	})
	return feed[:limit(len(feed), n)]
}

// StockLevel is one product's on-hand classification
type StockLevel struct {
	ProductID    uuid.UUID           `json:"product_id"`
	SKU          string              `json:"sku"`
	Name         string              `json:"name"`
	Category     string              `json:"category"`
	CurrentStock int                 `json:"current_stock"`
	ReorderLevel int                 `json:"reorder_level"`
	Status       catalog.StockStatus `json:"status"`
}

// BuildStockLevels classifies every product, lowest stock first
func BuildStockLevels(products []catalog.Product) []StockLevel {
	out := make([]StockLevel, 0, len(products))
	for i := range products {
		p := &products[i]
		out = append(out, StockLevel{
			ProductID:    p.ID,
			SKU:          p.SKU,
			Name:         p.Name,
			Category:     p.Category,
			CurrentStock: p.CurrentStock,
			ReorderLevel: p.ReorderLevel,
			Status:       p.StockStatus(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CurrentStock != out[j].CurrentStock {
			return out[i].CurrentStock < out[j].CurrentStock
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ExpirySource tells whether an expiry entry comes from a batch or from
// the product-level fallback date
type ExpirySource string

const (
	ExpirySourceBatch   ExpirySource = "BATCH"
	ExpirySourceProduct ExpirySource = "PRODUCT"
)

// ExpiryEntry is one lot approaching or past expiry
type ExpiryEntry struct {
	Source       ExpirySource `json:"source"`
	BatchID      *uuid.UUID   `json:"batch_id,omitempty"`
	ProductID    uuid.UUID    `json:"product_id"`
	ProductName  string       `json:"product_name"`
	SKU          string       `json:"sku"`
	Category     string       `json:"category"`
	BatchNumber  string       `json:"batch_number,omitempty"`
	ExpiryDate   time.Time    `json:"expiry_date"`
	Quantity     int          `json:"quantity"`
	DaysToExpiry int          `json:"days_to_expiry"`
	Status       ExpiryStatus `json:"status"`
}

// BuildExpiryReport lists active batches expiring within thresholdDays,
// earliest first. Products with stock but no active batch fall back to
// their product-level expiry date.
func BuildExpiryReport(batches []BatchRow, products []catalog.Product, now time.Time, thresholdDays int, opts Options) []ExpiryEntry {
	out := make([]ExpiryEntry, 0, len(batches))
	tracked := make(map[uuid.UUID]struct{}, len(batches))
	for _, b := range batches {
		if b.CurrentQuantity <= 0 {
			continue
		}
		tracked[b.ProductID] = struct{}{}
		days := inventory.DaysUntil(b.ExpiryDate, now)
		if days > thresholdDays {
			continue
		}
		id := b.BatchID
		out = append(out, ExpiryEntry{
			Source:       ExpirySourceBatch,
			BatchID:      &id,
			ProductID:    b.ProductID,
			ProductName:  b.ProductName,
			SKU:          b.SKU,
			Category:     b.Category,
			BatchNumber:  b.BatchNumber,
			ExpiryDate:   b.ExpiryDate,
			Quantity:     b.CurrentQuantity,
			DaysToExpiry: days,
			Status:       ClassifyExpiry(days, opts.ExpiringSoonDays),
		})
	}
	for i := range products {
		p := &products[i]
		if p.ExpiryDate == nil || p.CurrentStock <= 0 {
			continue
		}
		if _, ok := tracked[p.ID]; ok {
			continue
		}
		days := inventory.DaysUntil(*p.ExpiryDate, now)
		if days > thresholdDays {
			continue
		}
		out = append(out, ExpiryEntry{
			Source:       ExpirySourceProduct,
			ProductID:    p.ID,
			ProductName:  p.Name,
			SKU:          p.SKU,
			Category:     p.Category,
			ExpiryDate:   *p.ExpiryDate,
			Quantity:     p.CurrentStock,
			DaysToExpiry: days,
			Status:       ClassifyExpiry(days, opts.ExpiringSoonDays),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(out[j].ExpiryDate) {
			return out[i].ExpiryDate.Before(out[j].ExpiryDate)
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out
}

// Movement is a signed stock event in the movement report
type Movement struct {
	Date         time.Time       `json:"date"`
	Kind         MovementKind    `json:"kind"`
	RecordID     uuid.UUID       `json:"record_id"`
	Reference    string          `json:"reference"`
	Counterparty string          `json:"counterparty,omitempty"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// MovementRollup totals a product's in and out flows. Drift is only set for
// an unbounded window, where CurrentStock must equal Net.
type MovementRollup struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	SKU          string    `json:"sku"`
	Purchased    int       `json:"purchased"`
	Sold         int       `json:"sold"`
	Net          int       `json:"net"`
	CurrentStock int       `json:"current_stock"`
	Drift        *int      `json:"drift,omitempty"`
}

// InventoryMovement is the reconciliation view of stock events
type InventoryMovement struct {
	Movements []Movement       `json:"movements"`
	Rollup    []MovementRollup `json:"rollup"`
}

// BuildInventoryMovement sorts rows by date and rolls them up per product.
// products supplies current stock; reconcile computes drift per product.
func BuildInventoryMovement(rows []MovementRow, products []catalog.Product, reconcile bool) InventoryMovement {
	stock := make(map[uuid.UUID]int, len(products))
	for i := range products {
		stock[products[i].ID] = products[i].CurrentStock
	}

	sorted := make([]MovementRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	m := InventoryMovement{Movements: make([]Movement, 0, len(sorted))}
	acc := make(map[uuid.UUID]*MovementRollup)
	order := make([]uuid.UUID, 0)
	for _, r := range sorted {
		m.Movements = append(m.Movements, Movement{
			Date:         r.Date,
			Kind:         r.Kind,
			RecordID:     r.RecordID,
			Reference:    r.Reference,
			Counterparty: r.Counterparty,
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			SKU:          r.SKU,
			Quantity:     r.Quantity,
			UnitPrice:    r.UnitPrice,
		})
		ru, ok := acc[r.ProductID]
		if !ok {
			ru = &MovementRollup{ProductID: r.ProductID, ProductName: r.ProductName, SKU: r.SKU}
			acc[r.ProductID] = ru
			order = append(order, r.ProductID)
		}
		if r.Quantity >= 0 {
			ru.Purchased += r.Quantity
		} else {
			ru.Sold -= r.Quantity
		}
		ru.Net += r.Quantity
	}

	m.Rollup = make([]MovementRollup, 0, len(order))
	for _, id := range order {
		ru := acc[id]
		ru.CurrentStock = stock[id]
		if reconcile {
			d := ru.CurrentStock - ru.Net
			ru.Drift = &d
		}
		m.Rollup = append(m.Rollup, *ru)
	}
	sort.SliceStable(m.Rollup, func(i, j int) bool { return m.Rollup[i].ProductName < m.Rollup[j].ProductName })
	return m
}

// ValuationLine values one product's stock
type ValuationLine struct {
	ProductID       uuid.UUID       `json:"product_id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	CurrentStock    int             `json:"current_stock"`
	CostValue       decimal.Decimal `json:"cost_value"`
	RetailValue     decimal.Decimal `json:"retail_value"`
	PotentialProfit decimal.Decimal `json:"potential_profit"`
	ProfitMargin    decimal.Decimal `json:"profit_margin"`
}

// ValuationTotals sums valuation lines
type ValuationTotals struct {
	Category        string          `json:"category,omitempty"`
	ProductCount    int             `json:"product_count"`
	TotalStock      int             `json:"total_stock"`
	CostValue       decimal.Decimal `json:"cost_value"`
	RetailValue     decimal.Decimal `json:"retail_value"`
	PotentialProfit decimal.Decimal `json:"potential_profit"`
	ProfitMargin    decimal.Decimal `json:"profit_margin"`
}

func (t *ValuationTotals) add(l ValuationLine) {
	t.ProductCount++
	t.TotalStock += l.CurrentStock
	t.CostValue = t.CostValue.Add(l.CostValue)
	t.RetailValue = t.RetailValue.Add(l.RetailValue)
	t.PotentialProfit = t.PotentialProfit.Add(l.PotentialProfit)
	t.ProfitMargin = percentOf(t.PotentialProfit, t.CostValue)
}

func newTotals(category string) *ValuationTotals {
	return &ValuationTotals{
		Category:        category,
		CostValue:       decimal.Zero,
		RetailValue:     decimal.Zero,
		PotentialProfit: decimal.Zero,
		ProfitMargin:    decimal.Zero,
	}
}

// InventoryValuation values stock per product, per category and overall
type InventoryValuation struct {
	Products   []ValuationLine   `json:"products"`
	Categories []ValuationTotals `json:"categories"`
	Totals     ValuationTotals   `json:"totals"`
}

// BuildInventoryValuation values every product at cost and retail
func BuildInventoryValuation(products []catalog.Product) InventoryValuation {
	v := InventoryValuation{Products: make([]ValuationLine, 0, len(products))}
	totals := newTotals("")
	byCategory := make(map[string]*ValuationTotals)
	for i := range products {
		p := &products[i]
		cost := p.CostValue()
		retail := p.RetailValue()
		profit := retail.Sub(cost)
		line := ValuationLine{
			ProductID:       p.ID,
			SKU:             p.SKU,
			Name:            p.Name,
			Category:        p.Category,
			CurrentStock:    p.CurrentStock,
			CostValue:       cost,
			RetailValue:     retail,
			PotentialProfit: profit,
			ProfitMargin:    percentOf(profit, cost),
		}
		v.Products = append(v.Products, line)
		totals.add(line)
		ct, ok := byCategory[p.Category]
		if !ok {
			ct = newTotals(p.Category)
			byCategory[p.Category] = ct
		}
		ct.add(line)
	}
	v.Totals = *totals
	v.Categories = make([]ValuationTotals, 0, len(byCategory))
	for _, ct := range byCategory {
		v.Categories = append(v.Categories, *ct)
	}
	sort.Slice(v.Categories, func(i, j int) bool { return v.Categories[i].Category < v.Categories[j].Category })
	return v
}
