package db

import "github.com/kailas-cloud/mvnquery/internal/domain/search/filter"

// Sort orders search hits by a sortable field.
type Sort struct {
	Field string
	Desc  bool
}

// Query is the input for a structured FT.SEARCH.
type Query struct {
	IndexName    string
	Filters      filter.Expression
	Sort         *Sort
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
