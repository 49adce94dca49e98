package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/usecase"
)

// SnapshotRepository implements usecase.SnapshotRepository. The full
// calculation result is stored as a JSON document; snapshots are never
// updated after creation.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Create persists a snapshot within the finalize transaction.
func (r *SnapshotRepository) Create(ctx context.Context, tx usecase.Transaction, snapshot *domain.AllocationSnapshot) error {
	result, err := json.Marshal(snapshot.Result)
	if err != nil {
		return err
	}

	_, err = tx.(*Tx).PgxTx().Exec(ctx, `
		INSERT INTO allocation_snapshots (id, job_id, schema_id, result, finalized_at)
		VALUES ($1, $2, $3, $4, $5)`,
		snapshot.ID, snapshot.JobID, snapshot.SchemaID, result,
		timeToPgTimestamptz(snapshot.FinalizedAt),
	)

	return err
}

// GetByID retrieves a snapshot by ID.
func (r *SnapshotRepository) GetByID(ctx context.Context, id string) (*domain.AllocationSnapshot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, job_id, schema_id, result, finalized_at
		FROM allocation_snapshots WHERE id = $1`, id)

	snapshot, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, err
	}

	return snapshot, nil
}

// ListByJob lists a job's snapshots, newest first.
func (r *SnapshotRepository) ListByJob(ctx context.Context, jobID string, limit, offset int) ([]*domain.AllocationSnapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, job_id, schema_id, result, finalized_at
		FROM allocation_snapshots WHERE job_id = $1
		ORDER BY finalized_at DESC LIMIT $2 OFFSET $3`, jobID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*domain.AllocationSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

func scanSnapshot(row pgx.Row) (*domain.AllocationSnapshot, error) {
	var (
		snapshot    domain.AllocationSnapshot
		result      []byte
		finalizedAt pgtype.Timestamptz
	)
	if err := row.Scan(&snapshot.ID, &snapshot.JobID, &snapshot.SchemaID, &result, &finalizedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(result, &snapshot.Result); err != nil {
		return nil, err
	}
	snapshot.FinalizedAt = finalizedAt.Time

	return &snapshot, nil
}
