package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Job represents a customer job being tracked for profitability.
type Job struct {
	ID                  string
	Code                string
	Name                string
	ClientName          string
	Address             string
	PropertyType        string
	ContractType        string
	SalesTaxRatePct     *decimal.Decimal
	Salesperson         string
	Channel             string
	ProductType         string
	QuoteTotal          decimal.Decimal
	PaymentPlan         string
	OverheadOverridePct *decimal.Decimal
	WarrantyReservePct  *decimal.Decimal
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ChangeOrder represents a signed change to the original quote.
// Amounts may be negative (credits back to the client).
type ChangeOrder struct {
	ID        string
	JobID     string
	Name      string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// JobLedger is one job's full transactional history at calculation time.
// It is assembled by the persistence layer and never mutated by the
// calculation core.
type JobLedger struct {
	QuoteTotal          decimal.Decimal
	ChangeOrders        []ChangeOrder
	Purchases           []Purchase
	LaborEntries        []LaborEntry
	TravelEntries       []TravelEntry
	Payments            []Payment
	OverheadOverridePct *decimal.Decimal
	WarrantyReservePct  *decimal.Decimal
}

// Revenue returns the quote total plus the sum of all change orders.
// There is no floor at zero.
func (l JobLedger) Revenue() decimal.Decimal {
	revenue := l.QuoteTotal
	for _, co := range l.ChangeOrders {
		revenue = revenue.Add(co.Amount)
	}
	return revenue
}
