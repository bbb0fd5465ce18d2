package versions

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mvnquery/internal/domain"
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
	"github.com/kailas-cloud/mvnquery/internal/logger"
	"github.com/kailas-cloud/mvnquery/internal/metrics"
)

// Limits bounds listing page sizes.
type Limits struct {
	Default int
	Max     int
}

// Service lists version groups and resolves LATEST.
type Service struct {
	builder  *QueryBuilder
	index    Index
	limits   Limits
	location *time.Location
}

// New creates a versions service. loc sets the zone of display timestamps; nil means UTC.
func New(builder *QueryBuilder, index Index, limits Limits, loc *time.Location) *Service {
	if limits.Default <= 0 {
		limits.Default = 10
	}
	if limits.Max < limits.Default {
		limits.Max = limits.Default
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{builder: builder, index: index, limits: limits, location: loc}
}

// List returns the version groups matching f, ordered by base version.
// A non-positive limit uses the default; limits above the maximum are clamped.
func (s *Service) List(ctx context.Context, f maven.Filter) ([]maven.VersionGroup, error) {
	f.Limit = s.clamp(f.Limit)
	f.BaseVersion = ""
	return s.search(ctx, f)
}

// ListDisplay returns List as name/value pairs sorted by value.
func (s *Service) ListDisplay(ctx context.Context, f maven.Filter) ([]maven.DisplayVersion, error) {
	groups, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]maven.DisplayVersion, len(groups))
	for i, g := range groups {
		out[i] = maven.Display(g, s.location)
	}
	return out, nil
}

// ResolveLatest returns the base version of the most recently modified
// component matching f. Recency comes from the index sort, not from
// comparing version strings.
func (s *Service) ResolveLatest(ctx context.Context, f maven.Filter) (string, error) {
	f.Limit = 1
	f.BaseVersion = ""

	groups, err := s.search(ctx, f)
	if err != nil {
		metrics.LatestResolutionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return "", err
	}
	if len(groups) == 0 {
		metrics.LatestResolutionsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return "", fmt.Errorf("%w: no version of %s:%s", domain.ErrNotFound, f.GroupID, f.ArtifactID)
	}

	metrics.LatestResolutionsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	logger.FromContext(ctx).Debug("resolved LATEST",
		zap.String("group_id", f.GroupID),
		zap.String("artifact_id", f.ArtifactID),
		zap.String("base_version", groups[0].BaseVersion),
	)
	return groups[0].BaseVersion, nil
}

func (s *Service) search(ctx context.Context, f maven.Filter) ([]maven.VersionGroup, error) {
	q, err := s.builder.Build(ctx, f)
	if err != nil {
		return nil, err
	}

	records, err := s.index.Records(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search components: %w", domain.ErrInternal, err)
	}
	return Aggregate(records), nil
}

func (s *Service) clamp(limit int) int {
	switch {
	case limit <= 0:
		return s.limits.Default
	case limit > s.limits.Max:
		return s.limits.Max
	default:
		return limit
	}
}
