package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// listOrder whitelists the columns a listing may be sorted by. Anything not
// on the list falls back to the default column; only "asc" and "desc" are
// honored as directions.
type listOrder struct {
	columns     []string
	fallback    string
	fallbackAsc bool
}

// Listing orders. Ledger documents default to newest first, catalog entries
// to alphabetical.
var (
	productOrder = listOrder{
		columns:     []string{"created_at", "updated_at", "sku", "name", "category", "current_stock", "reorder_level", "cost_price", "retail_price", "expiry_date"},
		fallback:    "name",
		fallbackAsc: true,
	}
	supplierOrder = listOrder{
		columns:     []string{"created_at", "updated_at", "name", "status"},
		fallback:    "name",
		fallbackAsc: true,
	}
	purchaseOrder = listOrder{
		columns:  []string{"created_at", "purchase_date", "invoice_number", "total_amount", "payment_status"},
		fallback: "purchase_date",
	}
	saleOrder = listOrder{
		columns:  []string{"created_at", "sale_date", "invoice_number", "total_amount", "payment_status"},
		fallback: "sale_date",
	}
	transactionOrder = listOrder{
		columns:  []string{"created_at", "date", "amount", "type"},
		fallback: "date",
	}
)

// by resolves the caller's sort request into a quoted ORDER BY column
func (o listOrder) by(field, dir string) clause.OrderByColumn {
	column := o.fallback
	field = strings.TrimSpace(field)
	for _, c := range o.columns {
		if c == field {
			column = c
			break
		}
	}

	desc := !o.fallbackAsc
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "asc":
		desc = false
	case "desc":
		desc = true
	}
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}
}
