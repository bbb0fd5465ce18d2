package versions

import (
	"context"

	"github.com/kailas-cloud/mvnquery/internal/db"
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
	"github.com/kailas-cloud/mvnquery/internal/domain/repository"
)

// Registry resolves repository names and expands groups.
type Registry interface {
	Get(name string) (repository.Repository, bool)
	Members(repo repository.Repository) []string
}

// Index runs component queries and returns decoded index records.
type Index interface {
	Records(ctx context.Context, q db.Query) ([]maven.IndexRecord, error)
}
