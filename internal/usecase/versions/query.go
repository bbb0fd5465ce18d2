package versions

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mvnquery/internal/db"
	"github.com/kailas-cloud/mvnquery/internal/domain"
	domcomp "github.com/kailas-cloud/mvnquery/internal/domain/component"
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
	"github.com/kailas-cloud/mvnquery/internal/domain/search/filter"
	"github.com/kailas-cloud/mvnquery/internal/logger"
)

// QueryBuilder turns coordinate filters into component index queries.
type QueryBuilder struct {
	registry Registry
}

// NewQueryBuilder creates a QueryBuilder.
func NewQueryBuilder(registry Registry) *QueryBuilder {
	return &QueryBuilder{registry: registry}
}

// Build translates f into a query sorted by last modification, newest first.
// Blank fields add no constraint. A named group repository is expanded to its
// members. An unknown repository yields domain.ErrInvalidCoordinate.
func (b *QueryBuilder) Build(ctx context.Context, f maven.Filter) (db.Query, error) {
	conds := make([]filter.Condition, 0, 7)

	format, err := filter.NewMatch(domcomp.FieldFormat, filter.ScopeComponent, maven.Format)
	if err != nil {
		return db.Query{}, err
	}
	conds = append(conds, format)

	if !maven.IsBlank(f.Repository) {
		repo, ok := b.registry.Get(f.Repository)
		if !ok {
			return db.Query{}, fmt.Errorf("%w: unknown repository %q", domain.ErrInvalidCoordinate, f.Repository)
		}
		names := b.registry.Members(repo)
		cond, err := filter.NewTerms(domcomp.FieldRepositoryName, filter.ScopeComponent, names...)
		if err != nil {
			return db.Query{}, fmt.Errorf("%w: repository %q: %w", domain.ErrInvalidCoordinate, f.Repository, err)
		}
		conds = append(conds, cond)
	}

	for _, m := range []struct {
		key   string
		scope filter.Scope
		value string
	}{
		{domcomp.FieldGroupID, filter.ScopeComponent, f.GroupID},
		{domcomp.FieldArtifactID, filter.ScopeComponent, f.ArtifactID},
		{domcomp.FieldBaseVersion, filter.ScopeComponent, f.BaseVersion},
		{domcomp.FieldAssetClassifier, filter.ScopeAsset, f.Classifier},
		{domcomp.FieldAssetExtension, filter.ScopeAsset, f.Extension},
	} {
		if maven.IsBlank(m.value) {
			continue
		}
		cond, err := filter.NewMatch(m.key, m.scope, m.value)
		if err != nil {
			return db.Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		conds = append(conds, cond)
	}

	expr, err := filter.NewExpression(conds...)
	if err != nil {
		return db.Query{}, err
	}

	q := db.Query{
		Filters: expr,
		Sort:    &db.Sort{Field: domcomp.FieldLastModified, Desc: true},
		Offset:  0,
		Limit:   f.Limit,
	}

	logger.FromContext(ctx).Debug("component query built",
		zap.String("repository", f.Repository),
		zap.String("group_id", f.GroupID),
		zap.String("artifact_id", f.ArtifactID),
		zap.String("base_version", f.BaseVersion),
		zap.String("classifier", f.Classifier),
		zap.String("extension", f.Extension),
		zap.Int("conditions", len(conds)),
		zap.Int("limit", f.Limit),
	)

	return q, nil
}
