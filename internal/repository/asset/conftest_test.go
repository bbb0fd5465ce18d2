package asset

import (
	"context"
	"testing"

	"github.com/kailas-cloud/mvnquery/internal/db"
)

const testPrefix = "mvnquery:"

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	getFn          func(ctx context.Context, key string) ([]byte, error)
	setFn          func(ctx context.Context, key string, value []byte) error
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	delErr         error
	deleted        []string
	beginErr       error
	tx             *mockTx
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockStore) Begin(_ context.Context) (db.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.tx = &mockTx{active: true}
	return m.tx, nil
}

type hincr struct {
	key, field string
	incr       int64
}

// mockTx records buffered writes and lifecycle calls.
type mockTx struct {
	active    bool
	hsets     map[string]map[string]string
	incrs     []hincr
	commits   int
	rollbacks int
	closes    int
	commitErr error
	committed bool
}

func (t *mockTx) HSet(key string, fields map[string]string) {
	if t.hsets == nil {
		t.hsets = make(map[string]map[string]string)
	}
	t.hsets[key] = fields
}

func (t *mockTx) HIncrBy(key, field string, incr int64) {
	t.incrs = append(t.incrs, hincr{key: key, field: field, incr: incr})
}

func (t *mockTx) Commit(_ context.Context) error {
	if !t.active {
		return db.ErrTxClosed
	}
	t.active = false
	t.commits++
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *mockTx) Rollback() {
	if t.active {
		t.rollbacks++
	}
	t.active = false
}

func (t *mockTx) IsActive() bool { return t.active }

func (t *mockTx) Close() {
	t.closes++
	t.Rollback()
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, testPrefix)
	return repo, ms
}
