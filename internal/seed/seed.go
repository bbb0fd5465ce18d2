// Package seed populates a database from a YAML manifest of Maven components.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	domasset "github.com/kailas-cloud/mvnquery/internal/domain/asset"
	domcomp "github.com/kailas-cloud/mvnquery/internal/domain/component"
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
	"github.com/kailas-cloud/mvnquery/internal/domain/repository"
	"github.com/kailas-cloud/mvnquery/internal/logger"
)

// Manifest lists the components to store.
type Manifest struct {
	Components []Component `yaml:"components"`
}

// Component is one Maven coordinate with its files.
type Component struct {
	Repository  string  `yaml:"repository"`
	GroupID     string  `yaml:"group_id"`
	ArtifactID  string  `yaml:"artifact_id"`
	Version     string  `yaml:"version"`
	BaseVersion string  `yaml:"base_version"` // derived from Version when empty
	Assets      []Asset `yaml:"assets"`
}

// Asset is one file. Exactly one of File and Content must be set;
// File is resolved relative to the manifest.
type Asset struct {
	Extension    string     `yaml:"extension"`
	Classifier   string     `yaml:"classifier"`
	ContentType  string     `yaml:"content_type"`
	File         string     `yaml:"file"`
	Content      string     `yaml:"content"`
	LastModified *time.Time `yaml:"last_modified"`
}

// Stats summarizes an Apply run.
type Stats struct {
	Components int
	Assets     int
	Bytes      int64
}

// ComponentWriter indexes component documents.
type ComponentWriter interface {
	Put(ctx context.Context, doc domcomp.Document) error
}

// AssetWriter stores blobs and asset hashes.
type AssetWriter interface {
	Put(ctx context.Context, a domasset.Asset, contentType string, data []byte) error
}

// Registry resolves repository names.
type Registry interface {
	Get(name string) (repository.Repository, bool)
}

// Seeder writes manifests through the component and asset repositories.
type Seeder struct {
	components ComponentWriter
	assets     AssetWriter
	registry   Registry
	newRef     func() string
	readFile   func(string) ([]byte, error)
}

// New creates a Seeder. Blob refs are random UUIDs.
func New(components ComponentWriter, assets AssetWriter, registry Registry) *Seeder {
	return &Seeder{
		components: components,
		assets:     assets,
		registry:   registry,
		newRef:     uuid.NewString,
		readFile:   os.ReadFile,
	}
}

// LoadManifest parses a manifest file and resolves asset files against its directory.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return Manifest{}, err
	}

	dir := filepath.Dir(path)
	for i := range m.Components {
		for j := range m.Components[i].Assets {
			a := &m.Components[i].Assets[j]
			if a.File != "" && !filepath.IsAbs(a.File) {
				a.File = filepath.Join(dir, a.File)
			}
		}
	}
	return m, nil
}

// ParseManifest decodes a manifest without touching the filesystem.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// Apply validates the whole manifest, then stores every blob, asset and component.
// Components are indexed after their assets so a visible component is always downloadable.
func (s *Seeder) Apply(ctx context.Context, m Manifest) (Stats, error) {
	if err := s.validate(m); err != nil {
		return Stats{}, err
	}

	log := logger.FromContext(ctx)
	var stats Stats
	for _, c := range m.Components {
		doc, n, err := s.storeComponent(ctx, c)
		if err != nil {
			return stats, err
		}
		if err := s.components.Put(ctx, doc); err != nil {
			return stats, fmt.Errorf("index %s: %w", coordinate(c), err)
		}

		stats.Components++
		stats.Assets += len(c.Assets)
		stats.Bytes += n
		log.Debug("seeded component",
			zap.String("repository", c.Repository),
			zap.String("coordinate", coordinate(c)),
			zap.Int("assets", len(c.Assets)),
		)
	}
	return stats, nil
}

func (s *Seeder) storeComponent(ctx context.Context, c Component) (domcomp.Document, int64, error) {
	base := c.BaseVersion
	if base == "" {
		base = BaseVersion(c.Version)
	}

	doc := domcomp.Document{
		RepositoryName: c.Repository,
		Format:         maven.Format,
		Group:          c.GroupID,
		Name:           c.ArtifactID,
		Version:        c.Version,
		Attributes: domcomp.Attributes{Maven2: &domcomp.Maven2{
			GroupID:     c.GroupID,
			ArtifactID:  c.ArtifactID,
			BaseVersion: base,
		}},
	}

	var written int64
	for _, a := range c.Assets {
		data, err := s.assetBytes(a)
		if err != nil {
			return domcomp.Document{}, 0, fmt.Errorf("%s: %w", coordinate(c), err)
		}

		name := AssetPath(c.GroupID, c.ArtifactID, base, c.Version, a.Classifier, a.Extension)
		err = s.assets.Put(ctx, domasset.Asset{
			Name:       name,
			Repository: c.Repository,
			BlobRef:    s.newRef(),
		}, a.ContentType, data)
		if err != nil {
			return domcomp.Document{}, 0, fmt.Errorf("store %s: %w", name, err)
		}
		written += int64(len(data))

		attrs := domcomp.AssetAttributes{Maven2: &domcomp.Maven2{
			GroupID:     c.GroupID,
			ArtifactID:  c.ArtifactID,
			BaseVersion: base,
			Extension:   a.Extension,
			Classifier:  a.Classifier,
		}}
		if a.LastModified != nil {
			ms := a.LastModified.UnixMilli()
			attrs.Content = &domcomp.Content{LastModified: &ms}
		}
		doc.Assets = append(doc.Assets, domcomp.Asset{Name: name, Attributes: attrs})
	}
	return doc, written, nil
}

func (s *Seeder) assetBytes(a Asset) ([]byte, error) {
	if a.File == "" {
		return []byte(a.Content), nil
	}
	data, err := s.readFile(filepath.Clean(a.File))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", a.File, err)
	}
	return data, nil
}

func (s *Seeder) validate(m Manifest) error {
	var errs []error
	for i, c := range m.Components {
		if c.Repository == "" || c.GroupID == "" || c.ArtifactID == "" || c.Version == "" {
			errs = append(errs, fmt.Errorf("components[%d]: repository, group_id, artifact_id and version are required", i))
			continue
		}
		if s.registry != nil {
			repo, ok := s.registry.Get(c.Repository)
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("components[%d]: unknown repository %q", i, c.Repository))
			case repo.IsGroup():
				errs = append(errs, fmt.Errorf("components[%d]: group repository %q cannot store assets", i, c.Repository))
			case repo.Format() != maven.Format:
				errs = append(errs, fmt.Errorf("components[%d]: repository %q is not maven2", i, c.Repository))
			}
		}
		if len(c.Assets) == 0 {
			errs = append(errs, fmt.Errorf("components[%d] %s: at least one asset is required", i, coordinate(c)))
		}
		for j, a := range c.Assets {
			if a.Extension == "" {
				errs = append(errs, fmt.Errorf("components[%d].assets[%d]: extension is required", i, j))
			}
			if (a.File == "") == (a.Content == "") {
				errs = append(errs, fmt.Errorf("components[%d].assets[%d]: exactly one of file and content is required", i, j))
			}
		}
	}
	return errors.Join(errs...)
}

var timestampedSnapshot = regexp.MustCompile(`^(.*)-\d{8}\.\d{6}-\d+$`)

// BaseVersion maps a timestamped snapshot build such as 1.0-20240101.120000-3
// to 1.0-SNAPSHOT. Other versions are their own base version.
func BaseVersion(version string) string {
	if m := timestampedSnapshot.FindStringSubmatch(version); m != nil {
		return m[1] + "-SNAPSHOT"
	}
	return version
}

// AssetPath is the repository layout path of a file:
// group/as/dirs/artifactId/baseVersion/artifactId-version[-classifier].extension.
func AssetPath(groupID, artifactID, baseVersion, version, classifier, extension string) string {
	return strings.Join([]string{
		strings.ReplaceAll(groupID, ".", "/"),
		artifactID,
		baseVersion,
		maven.FileName(artifactID, version, classifier, extension),
	}, "/")
}

func coordinate(c Component) string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}
