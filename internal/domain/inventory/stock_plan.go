package inventory

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
)

// Delta is a net quantity change for one product or batch
type Delta struct {
	ID       uuid.UUID
	Quantity int
}

// BatchDelta is a net batch change together with every product whose lines
// named the batch. All of them must own it.
type BatchDelta struct {
	Delta
	ProductIDs []uuid.UUID
}

// ForeignProduct returns the first product that named the batch without
// owning it
func (bd BatchDelta) ForeignProduct(owner uuid.UUID) (uuid.UUID, bool) {
	for _, id := range bd.ProductIDs {
		if id != owner {
			return id, true
		}
	}
	return uuid.Nil, false
}

// StockPlan accumulates the stock effects of reversing stored lines and
// applying new ones, so a replace-items update touches each row once with
// its net change. Lines are always the stored quantities at reversal time.
type StockPlan struct {
	products map[uuid.UUID]int
	batches  map[uuid.UUID]*BatchDelta
}

// NewStockPlan creates an empty plan
func NewStockPlan() *StockPlan {
	return &StockPlan{
		products: make(map[uuid.UUID]int),
		batches:  make(map[uuid.UUID]*BatchDelta),
	}
}

// Receive records a purchase line adding stock
func (p *StockPlan) Receive(productID uuid.UUID, quantity int) {
	p.products[productID] += quantity
}

// ReverseReceipt records the removal of a stored purchase line
func (p *StockPlan) ReverseReceipt(productID uuid.UUID, quantity int) {
	p.products[productID] -= quantity
}

// Fulfill records a sale line deducting product and, optionally, batch stock
func (p *StockPlan) Fulfill(productID uuid.UUID, batchID *uuid.UUID, quantity int) {
	p.products[productID] -= quantity
	p.addBatch(productID, batchID, -quantity)
}

// ReverseFulfillment records the removal of a stored sale line
func (p *StockPlan) ReverseFulfillment(productID uuid.UUID, batchID *uuid.UUID, quantity int) {
	p.products[productID] += quantity
	p.addBatch(productID, batchID, quantity)
}

func (p *StockPlan) addBatch(productID uuid.UUID, batchID *uuid.UUID, quantity int) {
	if batchID == nil {
		return
	}
	bd, ok := p.batches[*batchID]
	if !ok {
		bd = &BatchDelta{Delta: Delta{ID: *batchID}}
		p.batches[*batchID] = bd
	}
	if !slices.Contains(bd.ProductIDs, productID) {
		bd.ProductIDs = append(bd.ProductIDs, productID)
	}
	bd.Quantity += quantity
}

// ProductIDs returns every product the plan touches, including those whose
// net change is zero, in ascending id order
func (p *StockPlan) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.products))
	for id := range p.products {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)
	return ids
}

// ProductDelta returns the net change for a product
func (p *StockPlan) ProductDelta(id uuid.UUID) int {
	return p.products[id]
}

// BatchDeltas returns every touched batch in ascending id order
func (p *StockPlan) BatchDeltas() []BatchDelta {
	out := make([]BatchDelta, 0, len(p.batches))
	for _, bd := range p.batches {
		d := *bd
		d.ProductIDs = slices.Clone(bd.ProductIDs)
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b BatchDelta) int { return compareIDs(a.ID, b.ID) })
	return out
}

// IsEmpty reports whether the plan changes nothing
func (p *StockPlan) IsEmpty() bool {
	for _, d := range p.products {
		if d != 0 {
			return false
		}
	}
	for _, bd := range p.batches {
		if bd.Quantity != 0 {
			return false
		}
	}
	return true
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
