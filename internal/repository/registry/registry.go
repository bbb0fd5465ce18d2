package registry

import (
	"fmt"

	"github.com/kailas-cloud/mvnquery/internal/domain/repository"
)

// Registry resolves repository names declared in configuration.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	repos map[string]repository.Repository
}

// New builds a registry. Names must be unique and group members must be declared.
func New(repos []repository.Repository) (*Registry, error) {
	m := make(map[string]repository.Repository, len(repos))
	for _, r := range repos {
		if _, dup := m[r.Name()]; dup {
			return nil, fmt.Errorf("duplicate repository %q", r.Name())
		}
		m[r.Name()] = r
	}
	for _, r := range repos {
		for _, member := range r.Members() {
			if _, ok := m[member]; !ok {
				return nil, fmt.Errorf("group %q references unknown repository %q", r.Name(), member)
			}
		}
	}
	return &Registry{repos: m}, nil
}

// Get returns the repository with the given name.
func (r *Registry) Get(name string) (repository.Repository, bool) {
	repo, ok := r.repos[name]
	return repo, ok
}

// Members flattens a group into its leaf member names, depth-first in declared
// order, without duplicates. Nested groups are expanded; cycles are cut.
// A non-group repository yields itself.
func (r *Registry) Members(repo repository.Repository) []string {
	if !repo.IsGroup() {
		return []string{repo.Name()}
	}

	var out []string
	seen := map[string]bool{repo.Name(): true}

	var walk func(g repository.Repository)
	walk = func(g repository.Repository) {
		for _, name := range g.Members() {
			if seen[name] {
				continue
			}
			seen[name] = true

			member, ok := r.repos[name]
			if ok && member.IsGroup() {
				walk(member)
				continue
			}
			out = append(out, name)
		}
	}
	walk(repo)

	return out
}
