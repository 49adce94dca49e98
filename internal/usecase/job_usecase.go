package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/infrastructure/metrics"
)

// JobUseCase handles job CRUD and ledger record entry.
type JobUseCase struct {
	jobRepo JobRepository
	cache   Cache
	idGen   IDGenerator
	metrics *metrics.Metrics
}

// NewJobUseCase creates a new JobUseCase. cache and m may be nil.
func NewJobUseCase(jobRepo JobRepository, cache Cache, idGen IDGenerator, m *metrics.Metrics) *JobUseCase {
	return &JobUseCase{
		jobRepo: jobRepo,
		cache:   cache,
		idGen:   idGen,
		metrics: m,
	}
}

// CreateJobInput represents input for creating a job.
type CreateJobInput struct {
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
}

// CreateJob creates a new job.
func (uc *JobUseCase) CreateJob(ctx context.Context, input CreateJobInput) (*domain.Job, error) {
	if err := domain.ValidateName(input.Name, domain.ErrInvalidJobName); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(input.Code, domain.ErrInvalidJobCode); err != nil {
		return nil, err
	}
	if err := domain.ValidateNonNegative(input.QuoteTotal, domain.ErrNegativeCost); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	job := &domain.Job{
		ID:                  uc.idGen.Generate(),
		Code:                input.Code,
		Name:                input.Name,
		ClientName:          input.ClientName,
		Address:             input.Address,
		PropertyType:        input.PropertyType,
		ContractType:        input.ContractType,
		SalesTaxRatePct:     input.SalesTaxRatePct,
		Salesperson:         input.Salesperson,
		Channel:             input.Channel,
		ProductType:         input.ProductType,
		QuoteTotal:          input.QuoteTotal,
		PaymentPlan:         input.PaymentPlan,
		OverheadOverridePct: input.OverheadOverridePct,
		WarrantyReservePct:  input.WarrantyReservePct,
		Notes:               input.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := uc.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.JobsCreated.Inc()
	}

	return job, nil
}

// UpdateJob updates an existing job's header fields. A changed quote
// total or override invalidates the cached calculation.
func (uc *JobUseCase) UpdateJob(ctx context.Context, id string, input CreateJobInput) (*domain.Job, error) {
	job, err := uc.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateName(input.Name, domain.ErrInvalidJobName); err != nil {
		return nil, err
	}
	if err := domain.ValidateNonNegative(input.QuoteTotal, domain.ErrNegativeCost); err != nil {
		return nil, err
	}

	job.Code = input.Code
	job.Name = input.Name
	job.ClientName = input.ClientName
	job.Address = input.Address
	job.PropertyType = input.PropertyType
	job.ContractType = input.ContractType
	job.SalesTaxRatePct = input.SalesTaxRatePct
	job.Salesperson = input.Salesperson
	job.Channel = input.Channel
	job.ProductType = input.ProductType
	job.QuoteTotal = input.QuoteTotal
	job.PaymentPlan = input.PaymentPlan
	job.OverheadOverridePct = input.OverheadOverridePct
	job.WarrantyReservePct = input.WarrantyReservePct
	job.Notes = input.Notes
	job.UpdatedAt = time.Now().UTC()

	if err := uc.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}

	uc.invalidateCalc(ctx, id)

	return job, nil
}

// GetJob retrieves a job by ID.
func (uc *JobUseCase) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	return uc.jobRepo.GetByID(ctx, id)
}

// GetLedger retrieves a job's full transactional history.
func (uc *JobUseCase) GetLedger(ctx context.Context, id string) (*domain.JobLedger, error) {
	return uc.jobRepo.GetLedger(ctx, id)
}

// ListJobs lists jobs matching the filter.
func (uc *JobUseCase) ListJobs(ctx context.Context, filter JobFilter) ([]*domain.Job, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.jobRepo.List(ctx, filter)
}

// AddChangeOrder records a signed change order against a job.
func (uc *JobUseCase) AddChangeOrder(ctx context.Context, jobID, name string, amount decimal.Decimal) (*domain.ChangeOrder, error) {
	if _, err := uc.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, err
	}

	co := &domain.ChangeOrder{
		ID:        uc.idGen.Generate(),
		JobID:     jobID,
		Name:      name,
		Amount:    amount, // negative amounts are credits, allowed
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.jobRepo.AddChangeOrder(ctx, co); err != nil {
		return nil, err
	}

	uc.recordEntry("change_order")
	uc.invalidateCalc(ctx, jobID)

	return co, nil
}

// AddPurchaseInput represents a supplier purchase with its lines.
type AddPurchaseInput struct {
	SupplierName string
	ShippingCost decimal.Decimal
	Notes        string
	Lines        []AddPurchaseLineInput
}

// AddPurchaseLineInput is one line on a purchase.
type AddPurchaseLineInput struct {
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

// AddPurchase records a supplier purchase against a job.
func (uc *JobUseCase) AddPurchase(ctx context.Context, jobID string, input AddPurchaseInput) (*domain.Purchase, error) {
	if _, err := uc.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, err
	}

	if err := domain.ValidateNonNegative(input.ShippingCost, domain.ErrNegativeCost); err != nil {
		return nil, err
	}
	for _, line := range input.Lines {
		if err := domain.ValidateNonNegative(line.Quantity, domain.ErrNegativeQuantity); err != nil {
			return nil, err
		}
		if err := domain.ValidateNonNegative(line.UnitCost, domain.ErrNegativeCost); err != nil {
			return nil, err
		}
	}

	purchase := &domain.Purchase{
		ID:           uc.idGen.Generate(),
		JobID:        jobID,
		SupplierName: input.SupplierName,
		ShippingCost: input.ShippingCost,
		Notes:        input.Notes,
		CreatedAt:    time.Now().UTC(),
	}
	for _, line := range input.Lines {
		purchase.Lines = append(purchase.Lines, domain.PurchaseLine{
			ID:          uc.idGen.Generate(),
			PurchaseID:  purchase.ID,
			Description: line.Description,
			Unit:        line.Unit,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
		})
	}

	if err := uc.jobRepo.AddPurchase(ctx, purchase); err != nil {
		return nil, err
	}

	uc.recordEntry("purchase")
	uc.invalidateCalc(ctx, jobID)

	return purchase, nil
}

// AddLaborEntry records labor against a job.
func (uc *JobUseCase) AddLaborEntry(ctx context.Context, jobID, kind string, rate, units decimal.Decimal, notes string) (*domain.LaborEntry, error) {
	if _, err := uc.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, err
	}

	if err := domain.ValidateNonNegative(rate, domain.ErrNegativeCost); err != nil {
		return nil, err
	}
	if err := domain.ValidateNonNegative(units, domain.ErrNegativeQuantity); err != nil {
		return nil, err
	}

	entry := &domain.LaborEntry{
		ID:        uc.idGen.Generate(),
		JobID:     jobID,
		Kind:      kind,
		Rate:      rate,
		Units:     units,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.jobRepo.AddLaborEntry(ctx, entry); err != nil {
		return nil, err
	}

	uc.recordEntry("labor")
	uc.invalidateCalc(ctx, jobID)

	return entry, nil
}

// AddTravelEntryInput represents travel expenses for a job.
type AddTravelEntryInput struct {
	Miles       decimal.Decimal
	PerDiemDays decimal.Decimal
	Lodging     decimal.Decimal
	Other       decimal.Decimal
	Notes       string
}

// AddTravelEntry records travel expenses against a job.
func (uc *JobUseCase) AddTravelEntry(ctx context.Context, jobID string, input AddTravelEntryInput) (*domain.TravelEntry, error) {
	if _, err := uc.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, err
	}

	entry := &domain.TravelEntry{
		ID:          uc.idGen.Generate(),
		JobID:       jobID,
		Miles:       input.Miles,
		PerDiemDays: input.PerDiemDays,
		Lodging:     input.Lodging,
		Other:       input.Other,
		Notes:       input.Notes,
		CreatedAt:   time.Now().UTC(),
	}

	if err := uc.jobRepo.AddTravelEntry(ctx, entry); err != nil {
		return nil, err
	}

	uc.recordEntry("travel")
	uc.invalidateCalc(ctx, jobID)

	return entry, nil
}

// AddPaymentInput represents a received payment.
type AddPaymentInput struct {
	Kind       string
	Amount     decimal.Decimal
	FeePct     *decimal.Decimal
	FeeFlat    *decimal.Decimal
	ReceivedAt *time.Time
}

// AddPayment records a received payment against a job.
func (uc *JobUseCase) AddPayment(ctx context.Context, jobID string, input AddPaymentInput) (*domain.Payment, error) {
	if _, err := uc.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, err
	}

	if err := domain.ValidateNonNegative(input.Amount, domain.ErrNegativeCost); err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:         uc.idGen.Generate(),
		JobID:      jobID,
		Kind:       input.Kind,
		Amount:     input.Amount,
		FeePct:     input.FeePct,
		FeeFlat:    input.FeeFlat,
		ReceivedAt: input.ReceivedAt,
		CreatedAt:  time.Now().UTC(),
	}

	if err := uc.jobRepo.AddPayment(ctx, payment); err != nil {
		return nil, err
	}

	uc.recordEntry("payment")
	uc.invalidateCalc(ctx, jobID)

	return payment, nil
}

func (uc *JobUseCase) recordEntry(kind string) {
	if uc.metrics != nil {
		uc.metrics.LedgerEntries.WithLabelValues(kind).Inc()
	}
}

func (uc *JobUseCase) invalidateCalc(ctx context.Context, jobID string) {
	if uc.cache == nil {
		return
	}
	// Best effort: a stale cache entry only survives until its TTL.
	_ = uc.cache.Delete(ctx, CalcCacheKey(jobID))
}
