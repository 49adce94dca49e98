package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/jobledger/internal/calc"
	"github.com/iho/jobledger/internal/domain"
)

// SchemaUseCase handles bucket schema authoring. Every create and
// update runs the schema validator first; the validator's message is
// surfaced verbatim as the rejection reason.
type SchemaUseCase struct {
	schemaRepo   SchemaRepository
	settingsRepo SettingsRepository
	idGen        IDGenerator
}

// NewSchemaUseCase creates a new SchemaUseCase.
func NewSchemaUseCase(schemaRepo SchemaRepository, settingsRepo SettingsRepository, idGen IDGenerator) *SchemaUseCase {
	return &SchemaUseCase{
		schemaRepo:   schemaRepo,
		settingsRepo: settingsRepo,
		idGen:        idGen,
	}
}

// CreateSchemaInput represents input for creating a bucket schema.
type CreateSchemaInput struct {
	Name    string
	Buckets []domain.BucketDef
}

// CreateSchema validates and persists a new bucket schema.
func (uc *SchemaUseCase) CreateSchema(ctx context.Context, input CreateSchemaInput) (*domain.BucketSchema, error) {
	if err := domain.ValidateName(input.Name, domain.ErrInvalidSchemaName); err != nil {
		return nil, err
	}
	if err := domain.ValidateBuckets(input.Buckets); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	schema := &domain.BucketSchema{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Buckets:   input.Buckets,
		CreatedAt: now,
		UpdatedAt: now,
	}
	uc.assignBucketIDs(schema)

	if validation := calc.ValidateSchema(*schema); !validation.IsValid {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSchema, validation.Error)
	}

	if err := uc.schemaRepo.Create(ctx, schema); err != nil {
		return nil, err
	}

	return schema, nil
}

// UpdateSchema validates and replaces an existing schema's name and buckets.
func (uc *SchemaUseCase) UpdateSchema(ctx context.Context, id string, input CreateSchemaInput) (*domain.BucketSchema, error) {
	schema, err := uc.schemaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateName(input.Name, domain.ErrInvalidSchemaName); err != nil {
		return nil, err
	}
	if err := domain.ValidateBuckets(input.Buckets); err != nil {
		return nil, err
	}

	schema.Name = input.Name
	schema.Buckets = input.Buckets
	schema.UpdatedAt = time.Now().UTC()
	uc.assignBucketIDs(schema)

	if validation := calc.ValidateSchema(*schema); !validation.IsValid {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSchema, validation.Error)
	}

	if err := uc.schemaRepo.Update(ctx, schema); err != nil {
		return nil, err
	}

	return schema, nil
}

// ValidateSchema checks a schema's percentages without persisting
// anything. Used by authoring UIs for pre-save feedback.
func (uc *SchemaUseCase) ValidateSchema(buckets []domain.BucketDef) domain.SchemaValidation {
	return calc.ValidateSchema(domain.BucketSchema{Buckets: buckets})
}

// GetSchema retrieves a schema by ID.
func (uc *SchemaUseCase) GetSchema(ctx context.Context, id string) (*domain.BucketSchema, error) {
	return uc.schemaRepo.GetByID(ctx, id)
}

// ListSchemas lists schemas with pagination.
func (uc *SchemaUseCase) ListSchemas(ctx context.Context, limit, offset int) ([]*domain.BucketSchema, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.schemaRepo.List(ctx, limit, offset)
}

// DeleteSchema removes a schema. The org's default schema cannot be
// deleted while it is still referenced.
func (uc *SchemaUseCase) DeleteSchema(ctx context.Context, id string) error {
	defaults, err := uc.settingsRepo.Get(ctx)
	if err == nil && defaults.DefaultSchemaID == id {
		return domain.ErrSchemaInUse
	}

	return uc.schemaRepo.Delete(ctx, id)
}

// SetDefaultSchema marks a schema as the org-wide default.
func (uc *SchemaUseCase) SetDefaultSchema(ctx context.Context, id string) error {
	if _, err := uc.schemaRepo.GetByID(ctx, id); err != nil {
		return err
	}

	defaults, err := uc.settingsRepo.Get(ctx)
	if err != nil {
		d := domain.NewOrgDefaults()
		defaults = &d
	}

	defaults.DefaultSchemaID = id
	defaults.UpdatedAt = time.Now().UTC()

	return uc.settingsRepo.Upsert(ctx, defaults)
}

func (uc *SchemaUseCase) assignBucketIDs(schema *domain.BucketSchema) {
	for i := range schema.Buckets {
		schema.Buckets[i].ID = uc.idGen.Generate()
		schema.Buckets[i].SchemaID = schema.ID
		schema.Buckets[i].Position = i
	}
}
