package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/usecase"
)

// CreateJobRequest represents a request to create or update a job.
type CreateJobRequest struct {
	Code                string           `json:"code"`
	Name                string           `json:"name"`
	ClientName          string           `json:"client_name"`
	Address             string           `json:"address,omitempty"`
	PropertyType        string           `json:"property_type,omitempty"`
	ContractType        string           `json:"contract_type,omitempty"`
	SalesTaxRatePct     *decimal.Decimal `json:"sales_tax_rate_pct,omitempty"`
	Salesperson         string           `json:"salesperson,omitempty"`
	Channel             string           `json:"channel,omitempty"`
	ProductType         string           `json:"product_type,omitempty"`
	QuoteTotal          decimal.Decimal  `json:"quote_total"`
	PaymentPlan         string           `json:"payment_plan,omitempty"`
	OverheadOverridePct *decimal.Decimal `json:"overhead_override_pct,omitempty"`
	WarrantyReservePct  *decimal.Decimal `json:"warranty_reserve_pct,omitempty"`
	Notes               string           `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateJobRequest) ToUseCaseInput() usecase.CreateJobInput {
	return usecase.CreateJobInput{
		Code:                r.Code,
		Name:                r.Name,
		ClientName:          r.ClientName,
		Address:             r.Address,
		PropertyType:        r.PropertyType,
		ContractType:        r.ContractType,
		SalesTaxRatePct:     r.SalesTaxRatePct,
		Salesperson:         r.Salesperson,
		Channel:             r.Channel,
		ProductType:         r.ProductType,
		QuoteTotal:          r.QuoteTotal,
		PaymentPlan:         r.PaymentPlan,
		OverheadOverridePct: r.OverheadOverridePct,
		WarrantyReservePct:  r.WarrantyReservePct,
		Notes:               r.Notes,
	}
}

// AddChangeOrderRequest represents a request to record a change order.
type AddChangeOrderRequest struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// AddPurchaseRequest represents a request to record a supplier purchase.
type AddPurchaseRequest struct {
	SupplierName string                `json:"supplier_name"`
	ShippingCost decimal.Decimal       `json:"shipping_cost"`
	Notes        string                `json:"notes,omitempty"`
	Lines        []PurchaseLineRequest `json:"lines"`
}

// PurchaseLineRequest is one line on a purchase request.
type PurchaseLineRequest struct {
	Description string          `json:"description"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// ToUseCaseInput converts to use case input.
func (r *AddPurchaseRequest) ToUseCaseInput() usecase.AddPurchaseInput {
	input := usecase.AddPurchaseInput{
		SupplierName: r.SupplierName,
		ShippingCost: r.ShippingCost,
		Notes:        r.Notes,
	}
	for _, line := range r.Lines {
		input.Lines = append(input.Lines, usecase.AddPurchaseLineInput{
			Description: line.Description,
			Unit:        line.Unit,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
		})
	}
	return input
}

// AddLaborEntryRequest represents a request to record labor.
type AddLaborEntryRequest struct {
	Kind  string          `json:"kind"`
	Rate  decimal.Decimal `json:"rate"`
	Units decimal.Decimal `json:"units"`
	Notes string          `json:"notes,omitempty"`
}

// AddTravelEntryRequest represents a request to record travel expenses.
type AddTravelEntryRequest struct {
	Miles       decimal.Decimal `json:"miles"`
	PerDiemDays decimal.Decimal `json:"per_diem_days"`
	Lodging     decimal.Decimal `json:"lodging"`
	Other       decimal.Decimal `json:"other"`
	Notes       string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AddTravelEntryRequest) ToUseCaseInput() usecase.AddTravelEntryInput {
	return usecase.AddTravelEntryInput{
		Miles:       r.Miles,
		PerDiemDays: r.PerDiemDays,
		Lodging:     r.Lodging,
		Other:       r.Other,
		Notes:       r.Notes,
	}
}

// AddPaymentRequest represents a request to record a received payment.
type AddPaymentRequest struct {
	Kind       string           `json:"kind"`
	Amount     decimal.Decimal  `json:"amount"`
	FeePct     *decimal.Decimal `json:"fee_pct,omitempty"`
	FeeFlat    *decimal.Decimal `json:"fee_flat,omitempty"`
	ReceivedAt *time.Time       `json:"received_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AddPaymentRequest) ToUseCaseInput() usecase.AddPaymentInput {
	return usecase.AddPaymentInput{
		Kind:       r.Kind,
		Amount:     r.Amount,
		FeePct:     r.FeePct,
		FeeFlat:    r.FeeFlat,
		ReceivedAt: r.ReceivedAt,
	}
}

// BucketRequest is one bucket definition in a schema request. Meta is a
// free-form object; "owners" is the one recognized key.
type BucketRequest struct {
	Name    string          `json:"name"`
	Percent decimal.Decimal `json:"percent"`
	Meta    map[string]any  `json:"meta,omitempty"`
}

// SchemaRequest represents a request to create or update a bucket schema.
type SchemaRequest struct {
	Name    string          `json:"name"`
	Buckets []BucketRequest `json:"buckets"`
}

// ToUseCaseInput converts to use case input.
func (r *SchemaRequest) ToUseCaseInput() usecase.CreateSchemaInput {
	return usecase.CreateSchemaInput{
		Name:    r.Name,
		Buckets: BucketsToDomain(r.Buckets),
	}
}

// ValidateSchemaRequest carries buckets to check without persisting.
type ValidateSchemaRequest struct {
	Buckets []BucketRequest `json:"buckets"`
}

// BucketsToDomain converts wire bucket definitions to domain ones.
func BucketsToDomain(buckets []BucketRequest) []domain.BucketDef {
	out := make([]domain.BucketDef, len(buckets))
	for i, b := range buckets {
		out[i] = domain.BucketDef{
			Name:    b.Name,
			Percent: b.Percent,
			Meta:    MetaToDomain(b.Meta),
		}
	}
	return out
}

// MetaToDomain lifts a wire meta object into the structured form: the
// "owners" key becomes the typed owners list, everything else stays in
// Extra untouched.
func MetaToDomain(meta map[string]any) *domain.BucketMeta {
	if meta == nil {
		return nil
	}

	out := &domain.BucketMeta{}
	for k, v := range meta {
		if k == "owners" {
			out.Owners = toStringList(v)
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[k] = v
	}
	return out
}

func toStringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// UpdateSettingsRequest represents a request to replace org defaults.
type UpdateSettingsRequest struct {
	OverheadPercent        decimal.Decimal  `json:"overhead_percent"`
	MileageRatePerMile     decimal.Decimal  `json:"mileage_rate_per_mile"`
	PerDiemPerDay          decimal.Decimal  `json:"per_diem_per_day"`
	DefaultSalesTaxRatePct *decimal.Decimal `json:"default_sales_tax_rate_pct,omitempty"`
	DefaultSchemaID        string           `json:"default_schema_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateSettingsRequest) ToUseCaseInput() usecase.UpdateOrgDefaultsInput {
	return usecase.UpdateOrgDefaultsInput{
		OverheadPercent:        r.OverheadPercent,
		MileageRatePerMile:     r.MileageRatePerMile,
		PerDiemPerDay:          r.PerDiemPerDay,
		DefaultSalesTaxRatePct: r.DefaultSalesTaxRatePct,
		DefaultSchemaID:        r.DefaultSchemaID,
	}
}

// CalcProfitRequest is a self-contained ad-hoc calculation input: a full
// ledger, optional rate overrides, and the buckets to allocate against.
// Nothing here touches storage.
type CalcProfitRequest struct {
	QuoteTotal          decimal.Decimal         `json:"quote_total"`
	ChangeOrders        []AddChangeOrderRequest `json:"change_orders,omitempty"`
	Purchases           []AddPurchaseRequest    `json:"purchases,omitempty"`
	LaborEntries        []AddLaborEntryRequest  `json:"labor_entries,omitempty"`
	TravelEntries       []AddTravelEntryRequest `json:"travel_entries,omitempty"`
	Payments            []AddPaymentRequest     `json:"payments,omitempty"`
	OverheadOverridePct *decimal.Decimal        `json:"overhead_override_pct,omitempty"`
	WarrantyReservePct  *decimal.Decimal        `json:"warranty_reserve_pct,omitempty"`
	OverheadPercent     *decimal.Decimal        `json:"overhead_percent,omitempty"`
	MileageRatePerMile  *decimal.Decimal        `json:"mileage_rate_per_mile,omitempty"`
	PerDiemPerDay       *decimal.Decimal        `json:"per_diem_per_day,omitempty"`
	Buckets             []BucketRequest         `json:"buckets"`
}

// ToLedger assembles the ad-hoc ledger.
func (r *CalcProfitRequest) ToLedger() domain.JobLedger {
	ledger := domain.JobLedger{
		QuoteTotal:          r.QuoteTotal,
		OverheadOverridePct: r.OverheadOverridePct,
		WarrantyReservePct:  r.WarrantyReservePct,
	}
	for _, co := range r.ChangeOrders {
		ledger.ChangeOrders = append(ledger.ChangeOrders, domain.ChangeOrder{
			Name:   co.Name,
			Amount: co.Amount,
		})
	}
	for _, p := range r.Purchases {
		purchase := domain.Purchase{
			SupplierName: p.SupplierName,
			ShippingCost: p.ShippingCost,
			Notes:        p.Notes,
		}
		for _, line := range p.Lines {
			purchase.Lines = append(purchase.Lines, domain.PurchaseLine{
				Description: line.Description,
				Unit:        line.Unit,
				Quantity:    line.Quantity,
				UnitCost:    line.UnitCost,
			})
		}
		ledger.Purchases = append(ledger.Purchases, purchase)
	}
	for _, l := range r.LaborEntries {
		ledger.LaborEntries = append(ledger.LaborEntries, domain.LaborEntry{
			Kind:  l.Kind,
			Rate:  l.Rate,
			Units: l.Units,
			Notes: l.Notes,
		})
	}
	for _, t := range r.TravelEntries {
		ledger.TravelEntries = append(ledger.TravelEntries, domain.TravelEntry{
			Miles:       t.Miles,
			PerDiemDays: t.PerDiemDays,
			Lodging:     t.Lodging,
			Other:       t.Other,
			Notes:       t.Notes,
		})
	}
	for _, p := range r.Payments {
		ledger.Payments = append(ledger.Payments, domain.Payment{
			Kind:       p.Kind,
			Amount:     p.Amount,
			FeePct:     p.FeePct,
			FeeFlat:    p.FeeFlat,
			ReceivedAt: p.ReceivedAt,
		})
	}
	return ledger
}

// ToOrgDefaults resolves ad-hoc rate overrides against the fallbacks.
func (r *CalcProfitRequest) ToOrgDefaults() domain.OrgDefaults {
	defaults := domain.NewOrgDefaults()
	if r.OverheadPercent != nil {
		defaults.OverheadPercent = *r.OverheadPercent
	}
	if r.MileageRatePerMile != nil {
		defaults.MileageRatePerMile = *r.MileageRatePerMile
	}
	if r.PerDiemPerDay != nil {
		defaults.PerDiemPerDay = *r.PerDiemPerDay
	}
	return defaults
}

// ToSchema assembles the ad-hoc schema.
func (r *CalcProfitRequest) ToSchema() domain.BucketSchema {
	return domain.BucketSchema{Buckets: BucketsToDomain(r.Buckets)}
}
