package asset

import (
	"strconv"
	"time"

	domasset "github.com/kailas-cloud/mvnquery/internal/domain/asset"
)

const (
	fieldName           = "name"
	fieldRepository     = "repository"
	fieldBlobRef        = "blob_ref"
	fieldDownloadCount  = "download_count"
	fieldLastDownloaded = "last_downloaded"
	fieldContentType    = "content_type"
)

// assetToHash converts the persistent fields of an asset for HSET.
// download_count is excluded; it only changes through HINCRBY.
func assetToHash(a *domasset.Asset) map[string]string {
	m := map[string]string{
		fieldName:       a.Name,
		fieldRepository: a.Repository,
		fieldBlobRef:    a.BlobRef,
	}
	if a.LastDownloaded != nil {
		m[fieldLastDownloaded] = strconv.FormatInt(a.LastDownloaded.UnixMilli(), 10)
	}
	return m
}

// hashToAsset parses an asset hash. Malformed numeric fields read as zero.
func hashToAsset(m map[string]string) domasset.Asset {
	a := domasset.Asset{
		Name:       m[fieldName],
		Repository: m[fieldRepository],
		BlobRef:    m[fieldBlobRef],
	}
	if v, err := strconv.ParseInt(m[fieldDownloadCount], 10, 64); err == nil {
		a.DownloadCount = v
	}
	if v, err := strconv.ParseInt(m[fieldLastDownloaded], 10, 64); err == nil {
		t := time.UnixMilli(v).UTC()
		a.LastDownloaded = &t
	}
	return a
}
