package component

import (
	"github.com/kailas-cloud/mvnquery/internal/db"
	domcomp "github.com/kailas-cloud/mvnquery/internal/domain/component"
)

// buildIndex describes the FT index over component JSON documents.
// Coordinates are case-sensitive TAGs; asset-level TAGs are multi-value,
// so a component matches when any of its assets does.
func buildIndex(prefix string) *db.IndexDefinition {
	return db.NewIndex(indexName(prefix)).
		OnJSON().
		Prefix(keyPrefix(prefix)).
		TagAs("$.format", domcomp.FieldFormat).
		TagAs("$.repository_name", domcomp.FieldRepositoryName).
		TagAs("$.attributes.maven2.groupId", domcomp.FieldGroupID).
		TagAs("$.attributes.maven2.artifactId", domcomp.FieldArtifactID).
		TagAs("$.attributes.maven2.baseVersion", domcomp.FieldBaseVersion).
		TagAs("$.assets[*].attributes.maven2.extension", domcomp.FieldAssetExtension).
		TagAs("$.assets[*].attributes.maven2.classifier", domcomp.FieldAssetClassifier).
		SortableNumericAs("$.last_modified", domcomp.FieldLastModified).
		MustBuild()
}

func indexName(prefix string) string {
	return prefix + "component:idx"
}

func keyPrefix(prefix string) string {
	return prefix + "component:"
}
