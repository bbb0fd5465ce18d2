package versions

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/mvnquery/internal/db"
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
	"github.com/kailas-cloud/mvnquery/internal/domain/repository"
)

// mockRegistry resolves repositories from a map; groups expand one level.
type mockRegistry struct {
	repos map[string]repository.Repository
}

func (m *mockRegistry) Get(name string) (repository.Repository, bool) {
	r, ok := m.repos[name]
	return r, ok
}

func (m *mockRegistry) Members(repo repository.Repository) []string {
	if !repo.IsGroup() {
		return []string{repo.Name()}
	}
	return repo.Members()
}

// mockIndex implements Index for tests.
type mockIndex struct {
	recordsFn func(ctx context.Context, q db.Query) ([]maven.IndexRecord, error)
	queries   []db.Query
}

func (m *mockIndex) Records(ctx context.Context, q db.Query) ([]maven.IndexRecord, error) {
	m.queries = append(m.queries, q)
	if m.recordsFn != nil {
		return m.recordsFn(ctx, q)
	}
	return nil, nil
}

func newTestRegistry(t *testing.T) *mockRegistry {
	t.Helper()
	reg := &mockRegistry{repos: map[string]repository.Repository{}}
	for _, spec := range []struct {
		name    string
		typ     repository.Type
		members []string
	}{
		{"releases", repository.TypeHosted, nil},
		{"snapshots", repository.TypeHosted, nil},
		{"public", repository.TypeGroup, []string{"releases", "snapshots"}},
	} {
		r, err := repository.New(spec.name, repository.FormatMaven2, spec.typ, spec.members)
		if err != nil {
			t.Fatalf("repository.New(%q): %v", spec.name, err)
		}
		reg.repos[spec.name] = r
	}
	return reg
}

func newTestService(t *testing.T) (*Service, *mockIndex) {
	t.Helper()
	idx := &mockIndex{}
	svc := New(NewQueryBuilder(newTestRegistry(t)), idx, Limits{Default: 10, Max: 1000}, time.UTC)
	return svc, idx
}

func ts(t *testing.T, value string) *time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return &v
}
