package download

import (
	"context"

	"github.com/kailas-cloud/mvnquery/internal/db"
	domasset "github.com/kailas-cloud/mvnquery/internal/domain/asset"
	domcomp "github.com/kailas-cloud/mvnquery/internal/domain/component"
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
	"github.com/kailas-cloud/mvnquery/internal/domain/repository"
)

// Registry resolves repository names and expands groups.
type Registry interface {
	Get(name string) (repository.Repository, bool)
	Members(repo repository.Repository) []string
}

// QueryBuilder turns coordinate filters into component index queries.
type QueryBuilder interface {
	Build(ctx context.Context, f maven.Filter) (db.Query, error)
}

// Index returns full component documents for a query.
type Index interface {
	Search(ctx context.Context, q db.Query) ([]domcomp.Document, error)
}

// LatestResolver resolves the symbolic LATEST version.
type LatestResolver interface {
	ResolveLatest(ctx context.Context, f maven.Filter) (string, error)
}

// Storage runs fn inside a scoped unit of work that is always released.
type Storage interface {
	WithUnitOfWork(ctx context.Context, fn func(uow domasset.UnitOfWork) error) error
}
