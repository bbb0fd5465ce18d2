package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker checks that the component search index is usable.
type IndexChecker interface {
	HealthCheck(ctx context.Context) error
}
