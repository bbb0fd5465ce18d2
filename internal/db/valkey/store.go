package valkey

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mvnquery/internal/db"
	"github.com/kailas-cloud/mvnquery/internal/db/redis"
	"github.com/kailas-cloud/mvnquery/internal/logger"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// maxWindow caps how many matches are pulled for client-side sorting.
const maxWindow = 10000

// Config holds connection parameters for a Valkey store.
type Config struct {
	Addrs    []string
	Username string
	Password string
}

// Store implements db.Store for Valkey with the valkey-search and valkey-json modules.
// valkey-search has no SORTBY and no bare "*" query, so Search is reimplemented here;
// everything else is delegated to the Redis implementation.
type Store struct {
	*redis.Store
	client rueidis.Client
}

// NewStore creates a Valkey store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
		AlwaysRESP2:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newStore(client), nil
}

func newStore(c rueidis.Client) *Store {
	return &Store{Store: redis.NewStoreWithClient(c), client: c}
}

// Search runs FT.SEARCH without SORTBY and orders matches in process.
// At most maxWindow matches are sorted; a larger result set is logged.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}

	query := redis.BuildFilter(q.Filters)
	if query == "*" {
		return nil, fmt.Errorf("valkey-search requires at least one filter")
	}

	total, err := s.count(ctx, q.IndexName, query)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	window := total
	if q.Sort == nil || q.Sort.Field == "" {
		window = q.Offset + q.Limit
	}
	if window > maxWindow {
		logger.FromContext(ctx).Warn("search window truncated, client-side sort is partial",
			zap.String("index", q.IndexName),
			zap.Int("matches", total),
			zap.Int("window", maxWindow),
		)
		window = maxWindow
	}

	args := []string{q.IndexName, query}
	if fields := returnFields(q); len(fields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(fields)))
		args = append(args, fields...)
	}
	args = append(args, "LIMIT", "0", strconv.Itoa(window), "DIALECT", "2")

	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	res, err := redis.ParseSearchReply(raw)
	if err != nil {
		return nil, err
	}

	if q.Sort != nil && q.Sort.Field != "" {
		sortEntries(res.Entries, q.Sort)
	}
	res.Entries = page(res.Entries, q.Offset, q.Limit)
	res.Total = total
	return res, nil
}

func (s *Store) count(ctx context.Context, index, query string) (int, error) {
	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(index, query, "LIMIT", "0", "0", "DIALECT", "2").Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// returnFields adds the sort field to RETURN so entries can be ordered locally.
func returnFields(q *db.Query) []string {
	if len(q.ReturnFields) == 0 {
		return nil
	}
	fields := append([]string(nil), q.ReturnFields...)
	if q.Sort == nil || q.Sort.Field == "" {
		return fields
	}
	for _, f := range fields {
		if f == q.Sort.Field {
			return fields
		}
	}
	return append(fields, q.Sort.Field)
}

// sortEntries orders entries by a numeric field. Entries without a parsable
// value go last; ties keep reply order.
func sortEntries(entries []db.SearchEntry, by *db.Sort) {
	value := func(e db.SearchEntry) (float64, bool) {
		v, ok := e.Fields[by.Field]
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		vi, oki := value(entries[i])
		vj, okj := value(entries[j])
		switch {
		case oki && !okj:
			return true
		case !oki:
			return false
		case by.Desc:
			return vi > vj
		default:
			return vi < vj
		}
	})
}

func page(entries []db.SearchEntry, offset, limit int) []db.SearchEntry {
	if offset >= len(entries) {
		return nil
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}
