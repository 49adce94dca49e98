package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase represents a single supplier purchase event for a job.
type Purchase struct {
	ID           string
	JobID        string
	SupplierName string
	ShippingCost decimal.Decimal
	Notes        string
	Lines        []PurchaseLine
	CreatedAt    time.Time
}

// PurchaseLine is one line item on a purchase.
type PurchaseLine struct {
	ID          string
	PurchaseID  string
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

// Extension returns quantity times unit cost.
func (l PurchaseLine) Extension() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// Cost returns the sum of line extensions plus shipping.
func (p Purchase) Cost() decimal.Decimal {
	cost := p.ShippingCost
	for _, line := range p.Lines {
		cost = cost.Add(line.Extension())
	}
	return cost
}
