package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LaborEntry represents labor charged to a job. Kind distinguishes
// hourly from daily labor for display only; the arithmetic is the same.
type LaborEntry struct {
	ID        string
	JobID     string
	Kind      string
	Rate      decimal.Decimal
	Units     decimal.Decimal
	Notes     string
	CreatedAt time.Time
}

// Cost returns rate times units.
func (e LaborEntry) Cost() decimal.Decimal {
	return e.Rate.Mul(e.Units)
}

// TravelEntry represents travel expenses for a job. Mileage and per
// diem are costed at org-wide rates; entries carry no rate override.
type TravelEntry struct {
	ID          string
	JobID       string
	Miles       decimal.Decimal
	PerDiemDays decimal.Decimal
	Lodging     decimal.Decimal
	Other       decimal.Decimal
	Notes       string
	CreatedAt   time.Time
}

// Cost returns the entry cost at the given mileage and per diem rates.
func (e TravelEntry) Cost(mileageRate, perDiemRate decimal.Decimal) decimal.Decimal {
	return e.Miles.Mul(mileageRate).
		Add(e.PerDiemDays.Mul(perDiemRate)).
		Add(e.Lodging).
		Add(e.Other)
}

// Payment represents a received payment and the processing fee it incurred.
type Payment struct {
	ID         string
	JobID      string
	Kind       string
	Amount     decimal.Decimal
	FeePct     *decimal.Decimal
	FeeFlat    *decimal.Decimal
	ReceivedAt *time.Time
	CreatedAt  time.Time
}

// Fee returns the processing fee for this payment. A payment with
// neither fee field contributes zero.
func (p Payment) Fee() decimal.Decimal {
	fee := decimal.Zero
	if p.FeePct != nil {
		fee = fee.Add(p.Amount.Mul(*p.FeePct).Div(oneHundred))
	}
	if p.FeeFlat != nil {
		fee = fee.Add(*p.FeeFlat)
	}
	return fee
}

var oneHundred = decimal.NewFromInt(100)
