package domain

import "time"

// Event types
const (
	EventTypeJobFinalized  = "job.finalized"
	EventTypeSchemaUpdated = "schema.updated"
)

// Aggregate types
const (
	AggregateTypeJob    = "job"
	AggregateTypeSchema = "schema"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// JobFinalizedEvent payload. Monetary figures travel as decimal strings.
type JobFinalizedEvent struct {
	JobID               string `json:"job_id"`
	SnapshotID          string `json:"snapshot_id"`
	SchemaID            string `json:"schema_id"`
	Revenue             string `json:"revenue"`
	FullyLoadedProfit   string `json:"fully_loaded_profit"`
	ProfitForAllocation string `json:"profit_for_allocation"`
	FinalizedAt         string `json:"finalized_at"`
}
