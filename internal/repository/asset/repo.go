package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kailas-cloud/mvnquery/internal/db"
	"github.com/kailas-cloud/mvnquery/internal/domain"
	domasset "github.com/kailas-cloud/mvnquery/internal/domain/asset"
)

// store is the consumer interface for asset storage (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, key string) error
	Begin(ctx context.Context) (db.Tx, error)
}

// Repo implements the storage collaborator: asset hashes plus blobs.
type Repo struct {
	store  store
	prefix string
}

// New creates an asset repository. prefix namespaces all keys.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// WithUnitOfWork runs fn inside a write transaction that is always released.
// Writes are committed when fn succeeds or returns domain.ErrNotFound or
// domain.ErrInvalidRequest; any other error rolls them back. A panic in fn
// leaves the transaction uncommitted.
func (r *Repo) WithUnitOfWork(ctx context.Context, fn func(uow domasset.UnitOfWork) error) error {
	tx, err := r.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Close()

	uow := &unitOfWork{repo: r, tx: tx, pending: make(map[string]int64)}

	if err := fn(uow); err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidRequest) {
			tx.Rollback()
			return err
		}
		if cerr := r.commit(ctx, tx); cerr != nil {
			return cerr
		}
		return err
	}
	return r.commit(ctx, tx)
}

func (r *Repo) commit(ctx context.Context, tx db.Tx) error {
	if !tx.IsActive() {
		return nil
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Put stores a blob with its content type and the asset hash pointing at it.
func (r *Repo) Put(ctx context.Context, a domasset.Asset, contentType string, data []byte) error {
	if a.BlobRef == "" {
		return fmt.Errorf("asset %s: blob ref is required", a.Name)
	}
	if err := r.store.Set(ctx, r.blobKey(a.BlobRef), data); err != nil {
		return fmt.Errorf("store blob %s: %w", a.BlobRef, err)
	}
	if contentType == "" {
		contentType = domasset.DefaultContentType
	}
	if err := r.store.HSet(ctx, r.blobHeadersKey(a.BlobRef), map[string]string{fieldContentType: contentType}); err != nil {
		return fmt.Errorf("store blob headers %s: %w", a.BlobRef, err)
	}
	key := r.assetKey(a.Repository, a.Name)
	if err := r.store.HSet(ctx, key, assetToHash(&a)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Purge deletes every asset hash, blob and blob header under the prefix.
// It returns the number of keys removed.
func (r *Repo) Purge(ctx context.Context) (int, error) {
	removed := 0
	for _, pattern := range []string{r.prefix + "asset:*", r.prefix + "blob:*"} {
		keys, err := r.store.Scan(ctx, pattern)
		if err != nil {
			return removed, fmt.Errorf("scan %s: %w", pattern, err)
		}
		for _, key := range keys {
			if err := r.store.Del(ctx, key); err != nil {
				return removed, fmt.Errorf("delete %s: %w", key, err)
			}
			removed++
		}
	}
	return removed, nil
}

func (r *Repo) assetKey(repository, name string) string {
	return r.prefix + "asset:" + repository + ":" + name
}

func (r *Repo) blobKey(ref string) string {
	return r.prefix + "blob:" + ref
}

func (r *Repo) blobHeadersKey(ref string) string {
	return r.prefix + "blob:" + ref + ":headers"
}

var _ domasset.UnitOfWork = (*unitOfWork)(nil)

// unitOfWork implements domasset.UnitOfWork over a store transaction.
type unitOfWork struct {
	repo    *Repo
	tx      db.Tx
	pending map[string]int64
}

// FindByName reads all candidate hashes in one round trip.
func (u *unitOfWork) FindByName(ctx context.Context, name string, repositories []string) (domasset.Asset, error) {
	if len(repositories) == 0 {
		return domasset.Asset{}, domain.ErrNotFound
	}

	keys := make([]string, len(repositories))
	for i, repo := range repositories {
		keys[i] = u.repo.assetKey(repo, name)
	}

	hashes, err := u.repo.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return domasset.Asset{}, fmt.Errorf("find asset %s: %w", name, err)
	}
	for _, m := range hashes {
		if len(m) > 0 {
			return hashToAsset(m), nil
		}
	}
	return domasset.Asset{}, domain.ErrNotFound
}

func (u *unitOfWork) MarkDownloaded(a *domasset.Asset, at time.Time) {
	t := at.UTC()
	a.LastDownloaded = &t
	a.DownloadCount++
	u.pending[u.repo.assetKey(a.Repository, a.Name)]++
}

// Save queues HSET plus HINCRBY for downloads marked since the last save.
func (u *unitOfWork) Save(a *domasset.Asset) error {
	if !u.tx.IsActive() {
		return db.ErrTxClosed
	}
	key := u.repo.assetKey(a.Repository, a.Name)
	u.tx.HSet(key, assetToHash(a))
	if n := u.pending[key]; n > 0 {
		u.tx.HIncrBy(key, fieldDownloadCount, n)
		delete(u.pending, key)
	}
	return nil
}

// OpenBlob loads a blob and its declared content type. A missing blob means the
// asset hash is dangling and is reported as a storage error, not ErrNotFound.
func (u *unitOfWork) OpenBlob(ctx context.Context, ref string) (domasset.Blob, error) {
	data, err := u.repo.store.Get(ctx, u.repo.blobKey(ref))
	if err != nil {
		return domasset.Blob{}, fmt.Errorf("get blob %s: %w", ref, err)
	}

	headers, err := u.repo.store.HGetAll(ctx, u.repo.blobHeadersKey(ref))
	if err != nil {
		return domasset.Blob{}, fmt.Errorf("get blob headers %s: %w", ref, err)
	}
	contentType := headers[fieldContentType]
	if contentType == "" {
		contentType = domasset.DefaultContentType
	}

	return domasset.Blob{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}
