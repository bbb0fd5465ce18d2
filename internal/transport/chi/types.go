package chi

import (
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
	healthuc "github.com/kailas-cloud/mvnquery/internal/usecase/health"
)

// VersionGroupResponse is one base version with its assets, most recent first.
type VersionGroupResponse struct {
	BaseVersion string          `json:"baseVersion"`
	Assets      []AssetResponse `json:"assets"`
}

// AssetResponse is one indexed file. LastUpdated is epoch milliseconds, null when unknown.
type AssetResponse struct {
	Version     string `json:"version"`
	LastUpdated *int64 `json:"lastUpdated"`
}

// HealthResponse reports overall status and per-check results.
type HealthResponse struct {
	Status healthuc.Status                  `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

func versionGroupsToResponse(groups []maven.VersionGroup) []VersionGroupResponse {
	out := make([]VersionGroupResponse, len(groups))
	for i, g := range groups {
		assets := make([]AssetResponse, len(g.Assets))
		for j, a := range g.Assets {
			assets[j] = AssetResponse{Version: a.Version}
			if a.LastModified != nil {
				ms := a.LastModified.UnixMilli()
				assets[j].LastUpdated = &ms
			}
		}
		out[i] = VersionGroupResponse{BaseVersion: g.BaseVersion, Assets: assets}
	}
	return out
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
