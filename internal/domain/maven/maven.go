package maven

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Format is the format discriminator of Maven components in the index.
const Format = "maven2"

// Latest is the symbolic version resolved by recency.
const Latest = "LATEST"

// DisplayTimeLayout formats the most recent asset timestamp in display pairs.
const DisplayTimeLayout = "2006-01-02 15:04:05"

// Filter holds optional coordinate constraints. Blank fields are unconstrained.
type Filter struct {
	Repository  string
	GroupID     string
	ArtifactID  string
	Classifier  string
	Extension   string
	BaseVersion string
	Limit       int
}

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsLatest reports whether v is the symbolic LATEST version (case-insensitive).
func IsLatest(v string) bool {
	return strings.EqualFold(v, Latest)
}

// IndexRecord is one decoded component-index hit.
type IndexRecord struct {
	BaseVersion  string
	Version      string
	LastModified *time.Time
}

// AssetRecord is one indexed artifact file within a version group.
type AssetRecord struct {
	Version      string
	LastModified *time.Time
}

// VersionGroup holds all asset records sharing a base version,
// most recently modified first.
type VersionGroup struct {
	BaseVersion string
	Assets      []AssetRecord
}

// Latest returns the most recent asset, or false when the group is empty.
func (g VersionGroup) Latest() (AssetRecord, bool) {
	if len(g.Assets) == 0 {
		return AssetRecord{}, false
	}
	return g.Assets[0], true
}

// SortAssets orders assets by LastModified descending with nil timestamps last.
// Equal timestamps keep their relative order.
func SortAssets(assets []AssetRecord) {
	sort.SliceStable(assets, func(i, j int) bool {
		return newerFirst(assets[i], assets[j])
	})
}

func newerFirst(a, b AssetRecord) bool {
	switch {
	case a.LastModified == nil:
		return false
	case b.LastModified == nil:
		return true
	default:
		return a.LastModified.After(*b.LastModified)
	}
}

// SortGroups orders groups by base version ascending (byte-wise).
func SortGroups(groups []VersionGroup) {
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].BaseVersion < groups[j].BaseVersion
	})
}

// DisplayVersion is a name/value pair for option-provider clients such as Rundeck.
type DisplayVersion struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Display renders a group as "<baseVersion> (<timestamp>)", or just the base
// version when the most recent asset has no timestamp.
func Display(g VersionGroup, loc *time.Location) DisplayVersion {
	name := g.BaseVersion
	if a, ok := g.Latest(); ok && a.LastModified != nil {
		if loc == nil {
			loc = time.UTC
		}
		name = fmt.Sprintf("%s (%s)", g.BaseVersion, a.LastModified.In(loc).Format(DisplayTimeLayout))
	}
	return DisplayVersion{Name: name, Value: g.BaseVersion}
}

// FileName builds "{artifactId}-{version}[-{classifier}].{extension}".
func FileName(artifactID, version, classifier, extension string) string {
	var b strings.Builder
	b.WriteString(artifactID)
	b.WriteByte('-')
	b.WriteString(version)
	if !IsBlank(classifier) {
		b.WriteByte('-')
		b.WriteString(classifier)
	}
	b.WriteByte('.')
	b.WriteString(extension)
	return b.String()
}
