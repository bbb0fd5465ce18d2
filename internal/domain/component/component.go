package component

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/mvnquery/internal/domain"
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
)

// Document is a component as stored in the search index: one Maven
// coordinate (group, artifact, version) with its asset files.
type Document struct {
	RepositoryName string     `json:"repository_name"`
	Format         string     `json:"format"`
	Group          string     `json:"group"`
	Name           string     `json:"name"`
	Version        string     `json:"version"`
	Attributes     Attributes `json:"attributes"`
	// LastModified is the newest asset timestamp in epoch millis; the index sorts on it.
	LastModified int64   `json:"last_modified"`
	Assets       []Asset `json:"assets"`
}

// Attributes carries format-specific metadata.
type Attributes struct {
	Maven2 *Maven2 `json:"maven2,omitempty"`
}

// Maven2 holds Maven coordinates. Extension and Classifier are set on assets only.
type Maven2 struct {
	GroupID     string `json:"groupId,omitempty"`
	ArtifactID  string `json:"artifactId,omitempty"`
	BaseVersion string `json:"baseVersion,omitempty"`
	Extension   string `json:"extension,omitempty"`
	Classifier  string `json:"classifier,omitempty"`
}

// Asset is one physical file of a component.
type Asset struct {
	Name       string          `json:"name"`
	Attributes AssetAttributes `json:"attributes"`
}

// AssetAttributes carries Maven coordinates and content metadata of an asset.
type AssetAttributes struct {
	Maven2  *Maven2  `json:"maven2,omitempty"`
	Content *Content `json:"content,omitempty"`
}

// Content holds blob metadata. LastModified is epoch millis.
type Content struct {
	LastModified *int64 `json:"last_modified,omitempty"`
}

// Decode parses a JSON component. Both a bare object and the
// single-element array returned for the "$" path are accepted.
func Decode(raw []byte) (Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var docs []Document
		if err := json.Unmarshal(raw, &docs); err != nil {
			return Document{}, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
		}
		if len(docs) != 1 {
			return Document{}, fmt.Errorf("%w: expected one document, got %d", domain.ErrMalformedRecord, len(docs))
		}
		return docs[0], nil
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
	}
	return doc, nil
}

// Record reduces a document to the fields version aggregation needs.
// Base version and timestamp come from the first asset.
func (d Document) Record() (maven.IndexRecord, error) {
	if len(d.Assets) == 0 {
		return maven.IndexRecord{}, fmt.Errorf("%w: component %s has no assets", domain.ErrMalformedRecord, d.Version)
	}
	attrs := d.Assets[0].Attributes
	if attrs.Maven2 == nil || attrs.Maven2.BaseVersion == "" {
		return maven.IndexRecord{}, fmt.Errorf("%w: asset %s has no maven2 base version",
			domain.ErrMalformedRecord, d.Assets[0].Name)
	}

	rec := maven.IndexRecord{BaseVersion: attrs.Maven2.BaseVersion, Version: d.Version}
	if attrs.Content != nil && attrs.Content.LastModified != nil {
		t := time.UnixMilli(*attrs.Content.LastModified).UTC()
		rec.LastModified = &t
	}
	return rec, nil
}

// SelectAsset returns the name of the first asset with the given extension.
func (d Document) SelectAsset(extension string) (string, bool) {
	for _, a := range d.Assets {
		if m := a.Attributes.Maven2; m != nil && m.Extension == extension {
			return a.Name, true
		}
	}
	return "", false
}

// Touch recomputes LastModified as the newest asset timestamp.
func (d *Document) Touch() {
	var newest int64
	for _, a := range d.Assets {
		if c := a.Attributes.Content; c != nil && c.LastModified != nil && *c.LastModified > newest {
			newest = *c.LastModified
		}
	}
	d.LastModified = newest
}

// Index field names addressable in component queries.
const (
	FieldFormat          = "format"
	FieldRepositoryName  = "repository_name"
	FieldGroupID         = "group_id"
	FieldArtifactID      = "artifact_id"
	FieldBaseVersion     = "base_version"
	FieldAssetExtension  = "asset_extension"
	FieldAssetClassifier = "asset_classifier"
	FieldLastModified    = "last_modified"
)
