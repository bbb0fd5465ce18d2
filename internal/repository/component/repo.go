package component

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/mvnquery/internal/db"
	domcomp "github.com/kailas-cloud/mvnquery/internal/domain/component"
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
)

// store is the consumer interface for the component index (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	DropIndex(ctx context.Context, name string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, key string) error
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
}

// Repo implements the search collaborator over the component index.
type Repo struct {
	store  store
	prefix string
}

// New creates a component repository. prefix namespaces keys and the index.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// EnsureIndex creates the component index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	err := r.store.CreateIndex(ctx, buildIndex(r.prefix))
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create component index: %w", err)
	}
	return nil
}

// Reset drops the component index and deletes every component document.
// It returns the number of documents removed. A missing index is not an error.
func (r *Repo) Reset(ctx context.Context) (int, error) {
	err := r.store.DropIndex(ctx, indexName(r.prefix))
	if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return 0, fmt.Errorf("drop component index: %w", err)
	}

	keys, err := r.store.Scan(ctx, keyPrefix(r.prefix)+"*")
	if err != nil {
		return 0, fmt.Errorf("scan components: %w", err)
	}
	for i, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return i, fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return len(keys), nil
}

// HealthCheck reports an error when the component index is missing.
func (r *Repo) HealthCheck(ctx context.Context) error {
	ok, err := r.store.IndexExists(ctx, indexName(r.prefix))
	if err != nil {
		return fmt.Errorf("check component index: %w", err)
	}
	if !ok {
		return fmt.Errorf("component index %s does not exist", indexName(r.prefix))
	}
	return nil
}

// Search runs q against the component index and decodes every hit.
// The index name and returned fields are set here; the caller owns
// filters, sort, and paging.
func (r *Repo) Search(ctx context.Context, q db.Query) ([]domcomp.Document, error) {
	q.IndexName = indexName(r.prefix)
	q.ReturnFields = []string{"$"}

	sr, err := r.store.Search(ctx, &q)
	if err != nil {
		return nil, fmt.Errorf("search components: %w", err)
	}

	docs := make([]domcomp.Document, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		doc, err := domcomp.Decode([]byte(e.Fields["$"]))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Records runs q and reduces each hit to an index record.
func (r *Repo) Records(ctx context.Context, q db.Query) ([]maven.IndexRecord, error) {
	docs, err := r.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	records := make([]maven.IndexRecord, 0, len(docs))
	for i := range docs {
		rec, err := docs[i].Record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Put indexes a component, replacing any previous document for the same coordinate.
func (r *Repo) Put(ctx context.Context, doc domcomp.Document) error {
	doc.Touch()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal component: %w", err)
	}

	key := componentKey(r.prefix, doc)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

func componentKey(prefix string, doc domcomp.Document) string {
	return keyPrefix(prefix) + strings.Join([]string{doc.RepositoryName, doc.Group, doc.Name, doc.Version}, ":")
}
