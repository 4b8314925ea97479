package storage

import "context"

// Store persists analysed plans keyed by plan id
//
//go:generate mockery --name=Store --output=./mocks
type Store interface {
	Save(ctx context.Context, record *PlanRecord) error
	Get(ctx context.Context, planID string) (*PlanRecord, error)
	// ListByRepo returns at most limit records for repo, newest first.
	// A limit of zero or less returns every record.
	ListByRepo(ctx context.Context, repo string, limit int) ([]*PlanRecord, error)
	Close() error
}
