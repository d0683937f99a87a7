package repositories

import "context"

// Repository aggregates the per-domain repository interfaces
type Repository interface {
	// Exam domain
	Exam() ExamRepository

	// Result domain
	Result() ResultRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}
