package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/usecase"
)

// dbtx is the subset of pgx behavior the repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// JobRepository implements usecase.JobRepository.
type JobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `id, code, name, client_name, address, property_type, contract_type,
	sales_tax_rate_pct, salesperson, channel, product_type, quote_total, payment_plan,
	overhead_override_pct, warranty_reserve_pct, notes, created_at, updated_at`

// Create creates a new job.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		job.ID, job.Code, job.Name, job.ClientName,
		stringToText(job.Address), stringToText(job.PropertyType), stringToText(job.ContractType),
		decimalPtrToNumeric(job.SalesTaxRatePct),
		stringToText(job.Salesperson), stringToText(job.Channel), stringToText(job.ProductType),
		decimalToNumeric(job.QuoteTotal), stringToText(job.PaymentPlan),
		decimalPtrToNumeric(job.OverheadOverridePct), decimalPtrToNumeric(job.WarrantyReservePct),
		stringToText(job.Notes),
		timeToPgTimestamptz(job.CreatedAt), timeToPgTimestamptz(job.UpdatedAt),
	)

	return err
}

// Update replaces a job's mutable fields.
func (r *JobRepository) Update(ctx context.Context, job *domain.Job) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE jobs SET
			code = $2, name = $3, client_name = $4, address = $5, property_type = $6,
			contract_type = $7, sales_tax_rate_pct = $8, salesperson = $9, channel = $10,
			product_type = $11, quote_total = $12, payment_plan = $13,
			overhead_override_pct = $14, warranty_reserve_pct = $15, notes = $16,
			updated_at = $17
		WHERE id = $1`,
		job.ID, job.Code, job.Name, job.ClientName,
		stringToText(job.Address), stringToText(job.PropertyType), stringToText(job.ContractType),
		decimalPtrToNumeric(job.SalesTaxRatePct),
		stringToText(job.Salesperson), stringToText(job.Channel), stringToText(job.ProductType),
		decimalToNumeric(job.QuoteTotal), stringToText(job.PaymentPlan),
		decimalPtrToNumeric(job.OverheadOverridePct), decimalPtrToNumeric(job.WarrantyReservePct),
		stringToText(job.Notes),
		timeToPgTimestamptz(job.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

// GetByID retrieves a job by ID.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	return scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
}

// List lists jobs matching the filter, newest first.
func (r *JobRepository) List(ctx context.Context, filter usecase.JobFilter) ([]*domain.Job, error) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR code ILIKE %s OR client_name ILIKE %s)", p, p, p))
	}
	if filter.Salesperson != "" {
		conds = append(conds, "salesperson = "+arg(filter.Salesperson))
	}
	if filter.Channel != "" {
		conds = append(conds, "channel = "+arg(filter.Channel))
	}
	if filter.ProductType != "" {
		conds = append(conds, "product_type = "+arg(filter.ProductType))
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// GetLedger assembles a job's full transactional history.
func (r *JobRepository) GetLedger(ctx context.Context, jobID string) (*domain.JobLedger, error) {
	return loadLedger(ctx, r.pool, jobID, false)
}

// GetLedgerForUpdate assembles the ledger with the job row locked, so
// concurrent mutations wait until the transaction completes.
func (r *JobRepository) GetLedgerForUpdate(ctx context.Context, tx usecase.Transaction, jobID string) (*domain.JobLedger, error) {
	return loadLedger(ctx, tx.(*Tx).PgxTx(), jobID, true)
}

func loadLedger(ctx context.Context, db dbtx, jobID string, forUpdate bool) (*domain.JobLedger, error) {
	query := `SELECT quote_total, overhead_override_pct, warranty_reserve_pct FROM jobs WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	ledger := &domain.JobLedger{}
	var quoteTotal, overheadOverride, warrantyReserve pgtype.Numeric
	err := db.QueryRow(ctx, query, jobID).Scan(&quoteTotal, &overheadOverride, &warrantyReserve)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	ledger.QuoteTotal = numericToDecimal(quoteTotal)
	ledger.OverheadOverridePct = numericToDecimalPtr(overheadOverride)
	ledger.WarrantyReservePct = numericToDecimalPtr(warrantyReserve)

	if ledger.ChangeOrders, err = loadChangeOrders(ctx, db, jobID); err != nil {
		return nil, err
	}
	if ledger.Purchases, err = loadPurchases(ctx, db, jobID); err != nil {
		return nil, err
	}
	if ledger.LaborEntries, err = loadLaborEntries(ctx, db, jobID); err != nil {
		return nil, err
	}
	if ledger.TravelEntries, err = loadTravelEntries(ctx, db, jobID); err != nil {
		return nil, err
	}
	if ledger.Payments, err = loadPayments(ctx, db, jobID); err != nil {
		return nil, err
	}

	return ledger, nil
}

// AddChangeOrder records a change order against a job.
func (r *JobRepository) AddChangeOrder(ctx context.Context, co *domain.ChangeOrder) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO change_orders (id, job_id, name, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		co.ID, co.JobID, co.Name, decimalToNumeric(co.Amount), timeToPgTimestamptz(co.CreatedAt),
	)

	return err
}

// AddPurchase records a purchase and its lines atomically.
func (r *JobRepository) AddPurchase(ctx context.Context, purchase *domain.Purchase) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO purchases (id, job_id, supplier_name, shipping_cost, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		purchase.ID, purchase.JobID, purchase.SupplierName,
		decimalToNumeric(purchase.ShippingCost), stringToText(purchase.Notes),
		timeToPgTimestamptz(purchase.CreatedAt),
	)
	if err != nil {
		return err
	}

	for i := range purchase.Lines {
		line := &purchase.Lines[i]
		_, err = tx.Exec(ctx, `
			INSERT INTO purchase_lines (id, purchase_id, description, unit, quantity, unit_cost, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			line.ID, line.PurchaseID, line.Description, stringToText(line.Unit),
			decimalToNumeric(line.Quantity), decimalToNumeric(line.UnitCost), i,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// AddLaborEntry records labor against a job.
func (r *JobRepository) AddLaborEntry(ctx context.Context, entry *domain.LaborEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO labor_entries (id, job_id, kind, rate, units, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.JobID, entry.Kind,
		decimalToNumeric(entry.Rate), decimalToNumeric(entry.Units),
		stringToText(entry.Notes), timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// AddTravelEntry records travel expenses against a job.
func (r *JobRepository) AddTravelEntry(ctx context.Context, entry *domain.TravelEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO travel_entries (id, job_id, miles, per_diem_days, lodging, other, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.JobID,
		decimalToNumeric(entry.Miles), decimalToNumeric(entry.PerDiemDays),
		decimalToNumeric(entry.Lodging), decimalToNumeric(entry.Other),
		stringToText(entry.Notes), timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// AddPayment records a received payment against a job.
func (r *JobRepository) AddPayment(ctx context.Context, payment *domain.Payment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payments (id, job_id, kind, amount, fee_pct, fee_flat, received_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		payment.ID, payment.JobID, payment.Kind,
		decimalToNumeric(payment.Amount),
		decimalPtrToNumeric(payment.FeePct), decimalPtrToNumeric(payment.FeeFlat),
		timePtrToPgTimestamptz(payment.ReceivedAt), timeToPgTimestamptz(payment.CreatedAt),
	)

	return err
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		job                                                         domain.Job
		address, propertyType, contractType, salesperson, channel   pgtype.Text
		productType, paymentPlan, notes                             pgtype.Text
		salesTaxRate, quoteTotal, overheadOverride, warrantyReserve pgtype.Numeric
		createdAt, updatedAt                                        pgtype.Timestamptz
	)

	err := row.Scan(
		&job.ID, &job.Code, &job.Name, &job.ClientName,
		&address, &propertyType, &contractType,
		&salesTaxRate, &salesperson, &channel, &productType,
		&quoteTotal, &paymentPlan, &overheadOverride, &warrantyReserve, &notes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}

	job.Address = textToString(address)
	job.PropertyType = textToString(propertyType)
	job.ContractType = textToString(contractType)
	job.SalesTaxRatePct = numericToDecimalPtr(salesTaxRate)
	job.Salesperson = textToString(salesperson)
	job.Channel = textToString(channel)
	job.ProductType = textToString(productType)
	job.QuoteTotal = numericToDecimal(quoteTotal)
	job.PaymentPlan = textToString(paymentPlan)
	job.OverheadOverridePct = numericToDecimalPtr(overheadOverride)
	job.WarrantyReservePct = numericToDecimalPtr(warrantyReserve)
	job.Notes = textToString(notes)
	job.CreatedAt = createdAt.Time
	job.UpdatedAt = updatedAt.Time

	return &job, nil
}

func loadChangeOrders(ctx context.Context, db dbtx, jobID string) ([]domain.ChangeOrder, error) {
	rows, err := db.Query(ctx, `
		SELECT id, job_id, name, amount, created_at
		FROM change_orders WHERE job_id = $1 ORDER BY created_at, id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ChangeOrder
	for rows.Next() {
		var (
			co        domain.ChangeOrder
			amount    pgtype.Numeric
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&co.ID, &co.JobID, &co.Name, &amount, &createdAt); err != nil {
			return nil, err
		}
		co.Amount = numericToDecimal(amount)
		co.CreatedAt = createdAt.Time
		out = append(out, co)
	}

	return out, rows.Err()
}

func loadPurchases(ctx context.Context, db dbtx, jobID string) ([]domain.Purchase, error) {
	rows, err := db.Query(ctx, `
		SELECT id, job_id, supplier_name, shipping_cost, notes, created_at
		FROM purchases WHERE job_id = $1 ORDER BY created_at, id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Purchase
	index := map[string]int{}
	for rows.Next() {
		var (
			p            domain.Purchase
			shippingCost pgtype.Numeric
			notes        pgtype.Text
			createdAt    pgtype.Timestamptz
		)
		if err := rows.Scan(&p.ID, &p.JobID, &p.SupplierName, &shippingCost, &notes, &createdAt); err != nil {
			return nil, err
		}
		p.ShippingCost = numericToDecimal(shippingCost)
		p.Notes = textToString(notes)
		p.CreatedAt = createdAt.Time
		index[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}

	lineRows, err := db.Query(ctx, `
		SELECT l.id, l.purchase_id, l.description, l.unit, l.quantity, l.unit_cost
		FROM purchase_lines l
		JOIN purchases p ON p.id = l.purchase_id
		WHERE p.job_id = $1
		ORDER BY l.purchase_id, l.position`, jobID)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var (
			line               domain.PurchaseLine
			unit               pgtype.Text
			quantity, unitCost pgtype.Numeric
		)
		if err := lineRows.Scan(&line.ID, &line.PurchaseID, &line.Description, &unit, &quantity, &unitCost); err != nil {
			return nil, err
		}
		line.Unit = textToString(unit)
		line.Quantity = numericToDecimal(quantity)
		line.UnitCost = numericToDecimal(unitCost)
		if i, ok := index[line.PurchaseID]; ok {
			out[i].Lines = append(out[i].Lines, line)
		}
	}

	return out, lineRows.Err()
}

func loadLaborEntries(ctx context.Context, db dbtx, jobID string) ([]domain.LaborEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT id, job_id, kind, rate, units, notes, created_at
		FROM labor_entries WHERE job_id = $1 ORDER BY created_at, id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LaborEntry
	for rows.Next() {
		var (
			e           domain.LaborEntry
			rate, units pgtype.Numeric
			notes       pgtype.Text
			createdAt   pgtype.Timestamptz
		)
		if err := rows.Scan(&e.ID, &e.JobID, &e.Kind, &rate, &units, &notes, &createdAt); err != nil {
			return nil, err
		}
		e.Rate = numericToDecimal(rate)
		e.Units = numericToDecimal(units)
		e.Notes = textToString(notes)
		e.CreatedAt = createdAt.Time
		out = append(out, e)
	}

	return out, rows.Err()
}

func loadTravelEntries(ctx context.Context, db dbtx, jobID string) ([]domain.TravelEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT id, job_id, miles, per_diem_days, lodging, other, notes, created_at
		FROM travel_entries WHERE job_id = $1 ORDER BY created_at, id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TravelEntry
	for rows.Next() {
		var (
			e                             domain.TravelEntry
			miles, perDiem, lodging, misc pgtype.Numeric
			notes                         pgtype.Text
			createdAt                     pgtype.Timestamptz
		)
		if err := rows.Scan(&e.ID, &e.JobID, &miles, &perDiem, &lodging, &misc, &notes, &createdAt); err != nil {
			return nil, err
		}
		e.Miles = numericToDecimal(miles)
		e.PerDiemDays = numericToDecimal(perDiem)
		e.Lodging = numericToDecimal(lodging)
		e.Other = numericToDecimal(misc)
		e.Notes = textToString(notes)
		e.CreatedAt = createdAt.Time
		out = append(out, e)
	}

	return out, rows.Err()
}

func loadPayments(ctx context.Context, db dbtx, jobID string) ([]domain.Payment, error) {
	rows, err := db.Query(ctx, `
		SELECT id, job_id, kind, amount, fee_pct, fee_flat, received_at, created_at
		FROM payments WHERE job_id = $1 ORDER BY created_at, id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		var (
			p                       domain.Payment
			amount, feePct, feeFlat pgtype.Numeric
			receivedAt, createdAt   pgtype.Timestamptz
		)
		if err := rows.Scan(&p.ID, &p.JobID, &p.Kind, &amount, &feePct, &feeFlat, &receivedAt, &createdAt); err != nil {
			return nil, err
		}
		p.Amount = numericToDecimal(amount)
		p.FeePct = numericToDecimalPtr(feePct)
		p.FeeFlat = numericToDecimalPtr(feeFlat)
		p.ReceivedAt = pgTimestamptzToTimePtr(receivedAt)
		p.CreatedAt = createdAt.Time
		out = append(out, p)
	}

	return out, rows.Err()
}
