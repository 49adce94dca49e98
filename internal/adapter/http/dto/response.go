package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/jobledger/internal/domain"
)

// JobResponse represents a job in API responses.
type JobResponse struct {
	ID                  string           `json:"id"`
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
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// JobFromDomain converts a domain job to a response.
func JobFromDomain(j *domain.Job) *JobResponse {
	return &JobResponse{
		ID:                  j.ID,
		Code:                j.Code,
		Name:                j.Name,
		ClientName:          j.ClientName,
		Address:             j.Address,
		PropertyType:        j.PropertyType,
		ContractType:        j.ContractType,
		SalesTaxRatePct:     j.SalesTaxRatePct,
		Salesperson:         j.Salesperson,
		Channel:             j.Channel,
		ProductType:         j.ProductType,
		QuoteTotal:          j.QuoteTotal,
		PaymentPlan:         j.PaymentPlan,
		OverheadOverridePct: j.OverheadOverridePct,
		WarrantyReservePct:  j.WarrantyReservePct,
		Notes:               j.Notes,
		CreatedAt:           j.CreatedAt,
		UpdatedAt:           j.UpdatedAt,
	}
}

// JobsFromDomain converts domain jobs to responses.
func JobsFromDomain(jobs []*domain.Job) []*JobResponse {
	result := make([]*JobResponse, len(jobs))
	for i, j := range jobs {
		result[i] = JobFromDomain(j)
	}
	return result
}

// ListJobsResponse wraps a job listing.
type ListJobsResponse struct {
	Jobs  []*JobResponse `json:"jobs"`
	Total int64          `json:"total"`
}

// ChangeOrderResponse represents a change order in API responses.
type ChangeOrderResponse struct {
	ID        string          `json:"id"`
	JobID     string          `json:"job_id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// ChangeOrderFromDomain converts a domain change order to a response.
func ChangeOrderFromDomain(co *domain.ChangeOrder) *ChangeOrderResponse {
	return &ChangeOrderResponse{
		ID:        co.ID,
		JobID:     co.JobID,
		Name:      co.Name,
		Amount:    co.Amount,
		CreatedAt: co.CreatedAt,
	}
}

// PurchaseResponse represents a purchase in API responses.
type PurchaseResponse struct {
	ID           string                 `json:"id"`
	JobID        string                 `json:"job_id"`
	SupplierName string                 `json:"supplier_name"`
	ShippingCost decimal.Decimal        `json:"shipping_cost"`
	Notes        string                 `json:"notes,omitempty"`
	Lines        []PurchaseLineResponse `json:"lines"`
	Cost         decimal.Decimal        `json:"cost"`
	CreatedAt    time.Time              `json:"created_at"`
}

// PurchaseLineResponse is one line on a purchase response.
type PurchaseLineResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Extension   decimal.Decimal `json:"extension"`
}

// PurchaseFromDomain converts a domain purchase to a response.
func PurchaseFromDomain(p *domain.Purchase) *PurchaseResponse {
	resp := &PurchaseResponse{
		ID:           p.ID,
		JobID:        p.JobID,
		SupplierName: p.SupplierName,
		ShippingCost: p.ShippingCost,
		Notes:        p.Notes,
		Cost:         p.Cost(),
		CreatedAt:    p.CreatedAt,
	}
	for _, line := range p.Lines {
		resp.Lines = append(resp.Lines, PurchaseLineResponse{
			ID:          line.ID,
			Description: line.Description,
			Unit:        line.Unit,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
			Extension:   line.Extension(),
		})
	}
	return resp
}

// LaborEntryResponse represents a labor entry in API responses.
type LaborEntryResponse struct {
	ID        string          `json:"id"`
	JobID     string          `json:"job_id"`
	Kind      string          `json:"kind"`
	Rate      decimal.Decimal `json:"rate"`
	Units     decimal.Decimal `json:"units"`
	Cost      decimal.Decimal `json:"cost"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// LaborEntryFromDomain converts a domain labor entry to a response.
func LaborEntryFromDomain(e *domain.LaborEntry) *LaborEntryResponse {
	return &LaborEntryResponse{
		ID:        e.ID,
		JobID:     e.JobID,
		Kind:      e.Kind,
		Rate:      e.Rate,
		Units:     e.Units,
		Cost:      e.Cost(),
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
	}
}

// TravelEntryResponse represents a travel entry in API responses.
type TravelEntryResponse struct {
	ID          string          `json:"id"`
	JobID       string          `json:"job_id"`
	Miles       decimal.Decimal `json:"miles"`
	PerDiemDays decimal.Decimal `json:"per_diem_days"`
	Lodging     decimal.Decimal `json:"lodging"`
	Other       decimal.Decimal `json:"other"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TravelEntryFromDomain converts a domain travel entry to a response.
func TravelEntryFromDomain(e *domain.TravelEntry) *TravelEntryResponse {
	return &TravelEntryResponse{
		ID:          e.ID,
		JobID:       e.JobID,
		Miles:       e.Miles,
		PerDiemDays: e.PerDiemDays,
		Lodging:     e.Lodging,
		Other:       e.Other,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
	}
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID         string           `json:"id"`
	JobID      string           `json:"job_id"`
	Kind       string           `json:"kind"`
	Amount     decimal.Decimal  `json:"amount"`
	FeePct     *decimal.Decimal `json:"fee_pct,omitempty"`
	FeeFlat    *decimal.Decimal `json:"fee_flat,omitempty"`
	Fee        decimal.Decimal  `json:"fee"`
	ReceivedAt *time.Time       `json:"received_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:         p.ID,
		JobID:      p.JobID,
		Kind:       p.Kind,
		Amount:     p.Amount,
		FeePct:     p.FeePct,
		FeeFlat:    p.FeeFlat,
		Fee:        p.Fee(),
		ReceivedAt: p.ReceivedAt,
		CreatedAt:  p.CreatedAt,
	}
}

// LedgerResponse is a job's full transactional history.
type LedgerResponse struct {
	QuoteTotal    decimal.Decimal        `json:"quote_total"`
	Revenue       decimal.Decimal        `json:"revenue"`
	ChangeOrders  []*ChangeOrderResponse `json:"change_orders"`
	Purchases     []*PurchaseResponse    `json:"purchases"`
	LaborEntries  []*LaborEntryResponse  `json:"labor_entries"`
	TravelEntries []*TravelEntryResponse `json:"travel_entries"`
	Payments      []*PaymentResponse     `json:"payments"`
}

// LedgerFromDomain converts a domain ledger to a response.
func LedgerFromDomain(l *domain.JobLedger) *LedgerResponse {
	resp := &LedgerResponse{
		QuoteTotal:    l.QuoteTotal,
		Revenue:       l.Revenue(),
		ChangeOrders:  []*ChangeOrderResponse{},
		Purchases:     []*PurchaseResponse{},
		LaborEntries:  []*LaborEntryResponse{},
		TravelEntries: []*TravelEntryResponse{},
		Payments:      []*PaymentResponse{},
	}
	for i := range l.ChangeOrders {
		resp.ChangeOrders = append(resp.ChangeOrders, ChangeOrderFromDomain(&l.ChangeOrders[i]))
	}
	for i := range l.Purchases {
		resp.Purchases = append(resp.Purchases, PurchaseFromDomain(&l.Purchases[i]))
	}
	for i := range l.LaborEntries {
		resp.LaborEntries = append(resp.LaborEntries, LaborEntryFromDomain(&l.LaborEntries[i]))
	}
	for i := range l.TravelEntries {
		resp.TravelEntries = append(resp.TravelEntries, TravelEntryFromDomain(&l.TravelEntries[i]))
	}
	for i := range l.Payments {
		resp.Payments = append(resp.Payments, PaymentFromDomain(&l.Payments[i]))
	}
	return resp
}

// BucketResponse is one bucket definition in a schema response.
type BucketResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Percent  decimal.Decimal `json:"percent"`
	Meta     map[string]any  `json:"meta,omitempty"`
	Position int             `json:"position"`
}

// SchemaResponse represents a bucket schema in API responses.
type SchemaResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Buckets   []BucketResponse `json:"buckets"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// SchemaFromDomain converts a domain schema to a response.
func SchemaFromDomain(s *domain.BucketSchema) *SchemaResponse {
	resp := &SchemaResponse{
		ID:        s.ID,
		Name:      s.Name,
		Buckets:   make([]BucketResponse, 0, len(s.Buckets)),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	for _, b := range s.Buckets {
		resp.Buckets = append(resp.Buckets, BucketResponse{
			ID:       b.ID,
			Name:     b.Name,
			Percent:  b.Percent,
			Meta:     bucketMetaToWire(b.Meta),
			Position: b.Position,
		})
	}
	return resp
}

// SchemasFromDomain converts domain schemas to responses.
func SchemasFromDomain(schemas []*domain.BucketSchema) []*SchemaResponse {
	result := make([]*SchemaResponse, len(schemas))
	for i, s := range schemas {
		result[i] = SchemaFromDomain(s)
	}
	return result
}

// ListSchemasResponse wraps a schema listing.
type ListSchemasResponse struct {
	Schemas []*SchemaResponse `json:"schemas"`
	Total   int64             `json:"total"`
}

// ValidationResponse is the outcome of a schema validation.
type ValidationResponse struct {
	IsValid bool            `json:"is_valid"`
	Total   decimal.Decimal `json:"total"`
	Error   string          `json:"error,omitempty"`
}

// ValidationFromDomain converts a domain validation to a response.
func ValidationFromDomain(v domain.SchemaValidation) ValidationResponse {
	return ValidationResponse{
		IsValid: v.IsValid,
		Total:   v.Total,
		Error:   v.Error,
	}
}

// SettingsResponse represents org defaults in API responses.
type SettingsResponse struct {
	ID                     string           `json:"id"`
	OverheadPercent        decimal.Decimal  `json:"overhead_percent"`
	MileageRatePerMile     decimal.Decimal  `json:"mileage_rate_per_mile"`
	PerDiemPerDay          decimal.Decimal  `json:"per_diem_per_day"`
	DefaultSalesTaxRatePct *decimal.Decimal `json:"default_sales_tax_rate_pct,omitempty"`
	DefaultSchemaID        string           `json:"default_schema_id,omitempty"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// SettingsFromDomain converts domain org defaults to a response.
func SettingsFromDomain(d *domain.OrgDefaults) *SettingsResponse {
	return &SettingsResponse{
		ID:                     d.ID,
		OverheadPercent:        d.OverheadPercent,
		MileageRatePerMile:     d.MileageRatePerMile,
		PerDiemPerDay:          d.PerDiemPerDay,
		DefaultSalesTaxRatePct: d.DefaultSalesTaxRatePct,
		DefaultSchemaID:        d.DefaultSchemaID,
		UpdatedAt:              d.UpdatedAt,
	}
}

// AllocationResponse is one bucket's share in a calculation response.
// Enriched owner shares travel inside meta under "ownerAmounts".
type AllocationResponse struct {
	Name    string          `json:"name"`
	Percent decimal.Decimal `json:"percent"`
	Amount  decimal.Decimal `json:"amount"`
	Meta    map[string]any  `json:"meta,omitempty"`
}

// CalculationResponse is the full profit breakdown for a job.
type CalculationResponse struct {
	Revenue             decimal.Decimal      `json:"revenue"`
	DirectMaterialCost  decimal.Decimal      `json:"direct_material_cost"`
	DirectLaborCost     decimal.Decimal      `json:"direct_labor_cost"`
	TravelCost          decimal.Decimal      `json:"travel_cost"`
	PaymentFees         decimal.Decimal      `json:"payment_fees"`
	WarrantyReserve     decimal.Decimal      `json:"warranty_reserve"`
	OverheadAllocation  decimal.Decimal      `json:"overhead_allocation"`
	ContributionMargin  decimal.Decimal      `json:"contribution_margin"`
	FullyLoadedProfit   decimal.Decimal      `json:"fully_loaded_profit"`
	ProfitForAllocation decimal.Decimal      `json:"profit_for_allocation"`
	Buckets             []AllocationResponse `json:"buckets"`
}

// CalculationFromDomain converts a domain result to a response.
func CalculationFromDomain(r *domain.CalculationResult) *CalculationResponse {
	resp := &CalculationResponse{
		Revenue:             r.Revenue,
		DirectMaterialCost:  r.DirectMaterialCost,
		DirectLaborCost:     r.DirectLaborCost,
		TravelCost:          r.TravelCost,
		PaymentFees:         r.PaymentFees,
		WarrantyReserve:     r.WarrantyReserve,
		OverheadAllocation:  r.OverheadAllocation,
		ContributionMargin:  r.ContributionMargin,
		FullyLoadedProfit:   r.FullyLoadedProfit,
		ProfitForAllocation: r.ProfitForAllocation,
		Buckets:             make([]AllocationResponse, 0, len(r.BucketAllocations)),
	}
	for _, a := range r.BucketAllocations {
		resp.Buckets = append(resp.Buckets, AllocationResponse{
			Name:    a.Name,
			Percent: a.Percent,
			Amount:  a.Amount,
			Meta:    allocationMetaToWire(a.Meta),
		})
	}
	return resp
}

// SnapshotResponse represents a finalized allocation snapshot.
type SnapshotResponse struct {
	ID          string               `json:"id"`
	JobID       string               `json:"job_id"`
	SchemaID    string               `json:"schema_id"`
	Result      *CalculationResponse `json:"result"`
	FinalizedAt time.Time            `json:"finalized_at"`
}

// SnapshotFromDomain converts a domain snapshot to a response.
func SnapshotFromDomain(s *domain.AllocationSnapshot) *SnapshotResponse {
	return &SnapshotResponse{
		ID:          s.ID,
		JobID:       s.JobID,
		SchemaID:    s.SchemaID,
		Result:      CalculationFromDomain(&s.Result),
		FinalizedAt: s.FinalizedAt,
	}
}

// ListSnapshotsResponse wraps a snapshot listing.
type ListSnapshotsResponse struct {
	Snapshots []*SnapshotResponse `json:"snapshots"`
	Total     int64               `json:"total"`
}

// bucketMetaToWire flattens structured bucket metadata back into the
// wire's free-form object.
func bucketMetaToWire(meta *domain.BucketMeta) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta.Extra)+1)
	for k, v := range meta.Extra {
		out[k] = v
	}
	if len(meta.Owners) > 0 {
		out["owners"] = meta.Owners
	}
	return out
}

// allocationMetaToWire flattens allocation metadata, attaching owner
// shares as {name, amount} pairs under "ownerAmounts".
func allocationMetaToWire(meta *domain.AllocationMeta) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta.Extra)+2)
	for k, v := range meta.Extra {
		out[k] = v
	}
	if len(meta.Owners) > 0 {
		out["owners"] = meta.Owners
	}
	if len(meta.OwnerAmounts) > 0 {
		pairs := make([]map[string]any, 0, len(meta.OwnerAmounts))
		for _, oa := range meta.OwnerAmounts {
			pairs = append(pairs, map[string]any{
				"name":   oa.Name,
				"amount": oa.Amount,
			})
		}
		out["ownerAmounts"] = pairs
	}
	return out
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
