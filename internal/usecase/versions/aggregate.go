package versions

import "github.com/kailas-cloud/mvnquery/internal/domain/maven"

// Aggregate groups records by base version. Each group's assets are ordered
// newest first with undated assets last; groups are ordered by base version.
func Aggregate(records []maven.IndexRecord) []maven.VersionGroup {
	index := make(map[string]int, len(records))
	groups := make([]maven.VersionGroup, 0, len(records))

	for _, rec := range records {
		i, ok := index[rec.BaseVersion]
		if !ok {
			i = len(groups)
			index[rec.BaseVersion] = i
			groups = append(groups, maven.VersionGroup{BaseVersion: rec.BaseVersion})
		}
		groups[i].Assets = append(groups[i].Assets, maven.AssetRecord{
			Version:      rec.Version,
			LastModified: rec.LastModified,
		})
	}

	for i := range groups {
		maven.SortAssets(groups[i].Assets)
	}
	maven.SortGroups(groups)

	return groups
}
