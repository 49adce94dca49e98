package domain

import "errors"

var (
	// Job errors
	ErrJobNotFound = errors.New("job not found")

	// Schema errors
	ErrSchemaNotFound = errors.New("bucket schema not found")
	ErrInvalidSchema  = errors.New("bucket schema percentages do not sum to 100%")
	ErrSchemaInUse    = errors.New("bucket schema is set as the org default")

	// Settings errors
	ErrSettingsNotFound = errors.New("org settings not found")

	// Snapshot errors
	ErrSnapshotNotFound = errors.New("allocation snapshot not found")
)
