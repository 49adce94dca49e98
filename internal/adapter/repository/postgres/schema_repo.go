package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/jobledger/internal/domain"
)

// SchemaRepository implements usecase.SchemaRepository.
type SchemaRepository struct {
	pool *pgxpool.Pool
}

// NewSchemaRepository creates a new SchemaRepository.
func NewSchemaRepository(pool *pgxpool.Pool) *SchemaRepository {
	return &SchemaRepository{pool: pool}
}

// Create persists a schema and its buckets atomically.
func (r *SchemaRepository) Create(ctx context.Context, schema *domain.BucketSchema) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO bucket_schemas (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`,
		schema.ID, schema.Name,
		timeToPgTimestamptz(schema.CreatedAt), timeToPgTimestamptz(schema.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if err := insertBuckets(ctx, tx, schema); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update replaces a schema's name and buckets. Buckets are rewritten
// wholesale; their identity is not stable across updates.
func (r *SchemaRepository) Update(ctx context.Context, schema *domain.BucketSchema) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE bucket_schemas SET name = $2, updated_at = $3 WHERE id = $1`,
		schema.ID, schema.Name, timeToPgTimestamptz(schema.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSchemaNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM bucket_defs WHERE schema_id = $1`, schema.ID); err != nil {
		return err
	}
	if err := insertBuckets(ctx, tx, schema); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a schema with its buckets in stored order.
func (r *SchemaRepository) GetByID(ctx context.Context, id string) (*domain.BucketSchema, error) {
	var (
		schema               domain.BucketSchema
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM bucket_schemas WHERE id = $1`, id).
		Scan(&schema.ID, &schema.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSchemaNotFound
		}
		return nil, err
	}
	schema.CreatedAt = createdAt.Time
	schema.UpdatedAt = updatedAt.Time

	buckets, err := loadBuckets(ctx, r.pool, []string{id})
	if err != nil {
		return nil, err
	}
	schema.Buckets = buckets[id]

	return &schema, nil
}

// List lists schemas with their buckets, newest first.
func (r *SchemaRepository) List(ctx context.Context, limit, offset int) ([]*domain.BucketSchema, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM bucket_schemas ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		schemas []*domain.BucketSchema
		ids     []string
	)
	for rows.Next() {
		var (
			schema               domain.BucketSchema
			createdAt, updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&schema.ID, &schema.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		schema.CreatedAt = createdAt.Time
		schema.UpdatedAt = updatedAt.Time
		schemas = append(schemas, &schema)
		ids = append(ids, schema.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(schemas) == 0 {
		return schemas, nil
	}

	buckets, err := loadBuckets(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for _, schema := range schemas {
		schema.Buckets = buckets[schema.ID]
	}

	return schemas, nil
}

// Delete removes a schema and its buckets.
func (r *SchemaRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bucket_schemas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSchemaNotFound
	}

	return nil
}

func insertBuckets(ctx context.Context, tx pgx.Tx, schema *domain.BucketSchema) error {
	for _, bucket := range schema.Buckets {
		meta, err := bucketMetaToJSON(bucket.Meta)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO bucket_defs (id, schema_id, name, percent, meta, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			bucket.ID, schema.ID, bucket.Name,
			decimalToNumeric(bucket.Percent), meta, bucket.Position,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func loadBuckets(ctx context.Context, db dbtx, schemaIDs []string) (map[string][]domain.BucketDef, error) {
	rows, err := db.Query(ctx, `
		SELECT id, schema_id, name, percent, meta, position
		FROM bucket_defs WHERE schema_id = ANY($1) ORDER BY schema_id, position`, schemaIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.BucketDef, len(schemaIDs))
	for rows.Next() {
		var (
			bucket  domain.BucketDef
			percent pgtype.Numeric
			meta    []byte
		)
		if err := rows.Scan(&bucket.ID, &bucket.SchemaID, &bucket.Name, &percent, &meta, &bucket.Position); err != nil {
			return nil, err
		}
		bucket.Percent = numericToDecimal(percent)
		if bucket.Meta, err = bucketMetaFromJSON(meta); err != nil {
			return nil, err
		}
		out[bucket.SchemaID] = append(out[bucket.SchemaID], bucket)
	}

	return out, rows.Err()
}

// bucketMetaToJSON stores metadata in the same shape it travels on the
// wire: a free-form object with "owners" as the one recognized key.
func bucketMetaToJSON(meta *domain.BucketMeta) ([]byte, error) {
	if meta == nil {
		return nil, nil
	}

	obj := make(map[string]any, len(meta.Extra)+1)
	for k, v := range meta.Extra {
		obj[k] = v
	}
	if len(meta.Owners) > 0 {
		obj["owners"] = meta.Owners
	}

	return json.Marshal(obj)
}

func bucketMetaFromJSON(raw []byte) (*domain.BucketMeta, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}

	meta := &domain.BucketMeta{}
	for k, v := range obj {
		if k == "owners" {
			if list, ok := v.([]any); ok {
				for _, item := range list {
					if s, ok := item.(string); ok {
						meta.Owners = append(meta.Owners, s)
					}
				}
			}
			continue
		}
		if meta.Extra == nil {
			meta.Extra = make(map[string]any)
		}
		meta.Extra[k] = v
	}

	return meta, nil
}
