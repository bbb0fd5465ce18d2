package download

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mvnquery/internal/domain"
	domasset "github.com/kailas-cloud/mvnquery/internal/domain/asset"
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
	"github.com/kailas-cloud/mvnquery/internal/logger"
	"github.com/kailas-cloud/mvnquery/internal/metrics"
)

// DefaultExtension is used when a request names no extension.
const DefaultExtension = "jar"

// Request identifies one artifact file. Version may be LATEST.
type Request struct {
	Repository string
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
	Extension  string
}

// Artifact is a located, opened artifact ready to stream.
// The caller must close Blob.Body.
type Artifact struct {
	Blob       domasset.Blob
	FileName   string
	Version    string
	Repository string
}

// Service locates artifacts for download.
type Service struct {
	registry         Registry
	builder          QueryBuilder
	index            Index
	latest           LatestResolver
	storage          Storage
	defaultExtension string
	now              func() time.Time
}

// New creates a download service.
func New(registry Registry, builder QueryBuilder, index Index, latest LatestResolver, storage Storage) *Service {
	return &Service{
		registry:         registry,
		builder:          builder,
		index:            index,
		latest:           latest,
		storage:          storage,
		defaultExtension: DefaultExtension,
		now:              time.Now,
	}
}

// WithDefaultExtension overrides the extension used when a request names none.
func (s *Service) WithDefaultExtension(ext string) *Service {
	if !maven.IsBlank(ext) {
		s.defaultExtension = ext
	}
	return s
}

// Locate resolves req to one stored file, records the download, and opens the blob.
//
// Errors: domain.ErrInvalidRequest for missing coordinates or a non-maven2
// repository, domain.ErrNotFound when no version, asset, or stored file
// matches, domain.ErrInternal for storage and search failures. Storage is
// not touched until the request has been validated.
func (s *Service) Locate(ctx context.Context, req Request) (*Artifact, error) {
	log := logger.FromContext(ctx)

	if maven.IsBlank(req.Extension) {
		req.Extension = s.defaultExtension
	}
	if maven.IsBlank(req.Repository) || maven.IsBlank(req.GroupID) ||
		maven.IsBlank(req.ArtifactID) || maven.IsBlank(req.Version) {
		s.count(req.Repository, metrics.OutcomeInvalid)
		log.Warn("missing required download parameters",
			zap.String("repository", req.Repository),
			zap.String("group_id", req.GroupID),
			zap.String("artifact_id", req.ArtifactID),
			zap.String("version", req.Version),
		)
		return nil, fmt.Errorf("%w: repository, groupId, artifactId and version are required", domain.ErrInvalidRequest)
	}

	version := req.Version
	if maven.IsLatest(version) {
		resolved, err := s.latest.ResolveLatest(ctx, maven.Filter{
			Repository: req.Repository,
			GroupID:    req.GroupID,
			ArtifactID: req.ArtifactID,
			Classifier: req.Classifier,
			Extension:  req.Extension,
			Limit:      1,
		})
		if err != nil {
			s.count(req.Repository, outcome(err))
			return nil, err
		}
		version = resolved
	}
	log.Debug("download version", zap.String("version", version))

	repo, ok := s.registry.Get(req.Repository)
	if !ok || repo.Format() != maven.Format {
		s.count(req.Repository, metrics.OutcomeInvalid)
		log.Warn("repository is not a maven repository", zap.String("repository", req.Repository))
		return nil, fmt.Errorf("%w: %q is not a maven2 repository", domain.ErrInvalidRequest, req.Repository)
	}

	var art *Artifact
	err := s.storage.WithUnitOfWork(ctx, func(uow domasset.UnitOfWork) error {
		q, err := s.builder.Build(ctx, maven.Filter{
			Repository:  req.Repository,
			GroupID:     req.GroupID,
			ArtifactID:  req.ArtifactID,
			Classifier:  req.Classifier,
			Extension:   req.Extension,
			BaseVersion: version,
			Limit:       1,
		})
		if err != nil {
			return err
		}

		docs, err := s.index.Search(ctx, q)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return fmt.Errorf("%w: %s:%s:%s", domain.ErrNotFound, req.GroupID, req.ArtifactID, version)
		}

		name, ok := docs[0].SelectAsset(req.Extension)
		if !ok {
			return fmt.Errorf("%w: no %s asset in %s:%s:%s",
				domain.ErrNotFound, req.Extension, req.GroupID, req.ArtifactID, version)
		}
		log.Debug("download asset name", zap.String("asset", name))

		scope := s.registry.Members(repo)
		log.Debug("download repositories", zap.Strings("repositories", scope))

		a, err := uow.FindByName(ctx, name, scope)
		if err != nil {
			return err
		}

		uow.MarkDownloaded(&a, s.now())
		if err := uow.Save(&a); err != nil {
			return err
		}

		blob, err := uow.OpenBlob(ctx, a.BlobRef)
		if err != nil {
			return err
		}

		art = &Artifact{
			Blob:       blob,
			FileName:   maven.FileName(req.ArtifactID, version, req.Classifier, req.Extension),
			Version:    version,
			Repository: a.Repository,
		}
		return nil
	})
	if err != nil {
		if art != nil {
			_ = art.Blob.Body.Close()
		}
		s.count(req.Repository, outcome(err))
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidRequest) {
			log.Debug("download not resolved", zap.Error(err))
			return nil, err
		}
		log.Error("download failed", zap.String("repository", req.Repository), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}

	s.count(req.Repository, metrics.OutcomeOK)
	return art, nil
}

func (s *Service) count(repository, outcome string) {
	metrics.DownloadsTotal.WithLabelValues(repository, outcome).Inc()
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidCoordinate):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
