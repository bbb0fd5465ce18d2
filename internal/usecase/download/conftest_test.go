package download

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/kailas-cloud/mvnquery/internal/db"
	"github.com/kailas-cloud/mvnquery/internal/domain"
	domasset "github.com/kailas-cloud/mvnquery/internal/domain/asset"
	domcomp "github.com/kailas-cloud/mvnquery/internal/domain/component"
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
	"github.com/kailas-cloud/mvnquery/internal/domain/repository"
	"github.com/kailas-cloud/mvnquery/internal/domain/search/filter"
	"github.com/kailas-cloud/mvnquery/internal/repository/registry"
	"github.com/kailas-cloud/mvnquery/internal/usecase/versions"
)

// memIndex is an in-memory component index that evaluates tag filters and
// sorts by last_modified like the real search backend.
type memIndex struct {
	docs     []domcomp.Document
	searches int
	err      error

	ignoreAssetFilters bool
}

func (m *memIndex) Search(_ context.Context, q db.Query) ([]domcomp.Document, error) {
	m.searches++
	if m.err != nil {
		return nil, m.err
	}

	var out []domcomp.Document
	for _, d := range m.docs {
		if m.matches(d, q) {
			out = append(out, d)
		}
	}
	if q.Sort != nil && q.Sort.Desc {
		sort.SliceStable(out, func(i, j int) bool { return out[i].LastModified > out[j].LastModified })
	}
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memIndex) Records(ctx context.Context, q db.Query) ([]maven.IndexRecord, error) {
	docs, err := m.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	records := make([]maven.IndexRecord, 0, len(docs))
	for _, d := range docs {
		rec, err := d.Record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (m *memIndex) matches(d domcomp.Document, q db.Query) bool {
	for _, c := range q.Filters.Must() {
		if m.ignoreAssetFilters && c.Scope() == filter.ScopeAsset {
			continue
		}
		ok := false
		for _, v := range c.Values() {
			if fieldMatches(d, c.Key(), v) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func fieldMatches(d domcomp.Document, key, value string) bool {
	switch key {
	case domcomp.FieldFormat:
		return d.Format == value
	case domcomp.FieldRepositoryName:
		return d.RepositoryName == value
	case domcomp.FieldGroupID:
		return d.Group == value
	case domcomp.FieldArtifactID:
		return d.Name == value
	case domcomp.FieldBaseVersion:
		return d.Attributes.Maven2 != nil && d.Attributes.Maven2.BaseVersion == value
	case domcomp.FieldAssetExtension, domcomp.FieldAssetClassifier:
		for _, a := range d.Assets {
			m := a.Attributes.Maven2
			if m == nil {
				continue
			}
			if key == domcomp.FieldAssetExtension && m.Extension == value {
				return true
			}
			if key == domcomp.FieldAssetClassifier && m.Classifier == value {
				return true
			}
		}
	}
	return false
}

// memStorage is an in-memory Storage recording unit-of-work lifecycle.
type memStorage struct {
	assets  map[string]domasset.Asset // "repo/name" -> asset
	blobs   map[string]string         // ref -> content
	blobErr error

	opened     int
	committed  int
	rolledBack int
	lookups    [][]string
	saved      []domasset.Asset
}

func (m *memStorage) WithUnitOfWork(_ context.Context, fn func(uow domasset.UnitOfWork) error) error {
	m.opened++
	uow := &memUoW{storage: m}
	err := fn(uow)
	if err != nil && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidRequest) {
		m.rolledBack++
		return err
	}
	m.saved = append(m.saved, uow.buffered...)
	m.committed++
	return err
}

type memUoW struct {
	storage  *memStorage
	buffered []domasset.Asset
}

func (u *memUoW) FindByName(_ context.Context, name string, repositories []string) (domasset.Asset, error) {
	u.storage.lookups = append(u.storage.lookups, repositories)
	for _, r := range repositories {
		if a, ok := u.storage.assets[r+"/"+name]; ok {
			return a, nil
		}
	}
	return domasset.Asset{}, domain.ErrNotFound
}

func (u *memUoW) MarkDownloaded(a *domasset.Asset, at time.Time) {
	a.DownloadCount++
	a.LastDownloaded = &at
}

func (u *memUoW) Save(a *domasset.Asset) error {
	u.buffered = append(u.buffered, *a)
	return nil
}

func (u *memUoW) OpenBlob(_ context.Context, ref string) (domasset.Blob, error) {
	if u.storage.blobErr != nil {
		return domasset.Blob{}, u.storage.blobErr
	}
	data, ok := u.storage.blobs[ref]
	if !ok {
		return domasset.Blob{}, db.ErrKeyNotFound
	}
	return domasset.Blob{
		Body:        io.NopCloser(bytes.NewReader([]byte(data))),
		ContentType: "application/java-archive",
		Size:        int64(len(data)),
	}, nil
}

func millis(t time.Time) *int64 {
	v := t.UnixMilli()
	return &v
}

// widget builds a com.acme:widget component with a pom, a jar, and a sources jar.
func widget(repo, version string, modified time.Time) domcomp.Document {
	asset := func(suffix, ext, classifier string) domcomp.Asset {
		return domcomp.Asset{
			Name: "com/acme/widget/" + version + "/widget-" + version + suffix + "." + ext,
			Attributes: domcomp.AssetAttributes{
				Maven2:  &domcomp.Maven2{BaseVersion: version, Extension: ext, Classifier: classifier},
				Content: &domcomp.Content{LastModified: millis(modified)},
			},
		}
	}
	doc := domcomp.Document{
		RepositoryName: repo,
		Format:         maven.Format,
		Group:          "com.acme",
		Name:           "widget",
		Version:        version,
		Attributes: domcomp.Attributes{Maven2: &domcomp.Maven2{
			GroupID: "com.acme", ArtifactID: "widget", BaseVersion: version,
		}},
		Assets: []domcomp.Asset{asset("", "pom", ""), asset("", "jar", ""), asset("-sources", "jar", "sources")},
	}
	doc.Touch()
	return doc
}

type fixture struct {
	svc     *Service
	index   *memIndex
	storage *memStorage
}

func newFixture(t *testing.T, docs ...domcomp.Document) *fixture {
	t.Helper()

	mk := func(name, format string, typ repository.Type, members ...string) repository.Repository {
		r, err := repository.New(name, format, typ, members)
		if err != nil {
			t.Fatalf("repository.New(%q): %v", name, err)
		}
		return r
	}
	reg, err := registry.New([]repository.Repository{
		mk("releases", maven.Format, repository.TypeHosted),
		mk("thirdparty", maven.Format, repository.TypeHosted),
		mk("public", maven.Format, repository.TypeGroup, "releases", "thirdparty"),
		mk("npm-hosted", "npm", repository.TypeHosted),
	})
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}

	idx := &memIndex{docs: docs}
	storage := &memStorage{assets: map[string]domasset.Asset{}, blobs: map[string]string{}}
	builder := versions.NewQueryBuilder(reg)
	latest := versions.New(builder, idx, versions.Limits{Default: 10, Max: 1000}, time.UTC)

	svc := New(reg, builder, idx, latest, storage)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	return &fixture{svc: svc, index: idx, storage: storage}
}

// stock stores an asset and its blob in repo.
func (f *fixture) stock(repo, name, ref, content string) {
	f.storage.assets[repo+"/"+name] = domasset.Asset{Name: name, Repository: repo, BlobRef: ref}
	f.storage.blobs[ref] = content
}

func readAll(t *testing.T, a *Artifact) string {
	t.Helper()
	defer a.Blob.Body.Close()
	data, err := io.ReadAll(a.Blob.Body)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	return string(data)
}
