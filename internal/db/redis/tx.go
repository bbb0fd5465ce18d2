package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/mvnquery/internal/db"
)

// tx queues write commands and flushes them as MULTI ... EXEC on Commit.
type tx struct {
	store  *Store
	cmds   []rueidis.Completed
	active bool
}

var _ db.Tx = (*tx)(nil)

// Begin opens a write transaction. Nothing is sent to the server until Commit.
func (s *Store) Begin(_ context.Context) (db.Tx, error) {
	return &tx{store: s, active: true}, nil
}

func (t *tx) HSet(key string, fields map[string]string) {
	if !t.active {
		return
	}
	t.cmds = append(t.cmds, t.store.hsetCmd(key, fields))
}

func (t *tx) HIncrBy(key, field string, incr int64) {
	if !t.active {
		return
	}
	t.cmds = append(t.cmds, t.store.b().Hincrby().Key(key).Field(field).Increment(incr).Build())
}

// Commit sends the queued writes atomically. The tx is inactive afterwards, even on error.
func (t *tx) Commit(ctx context.Context) error {
	if !t.active {
		return db.ErrTxClosed
	}
	t.active = false

	queued := t.cmds
	t.cmds = nil
	if len(queued) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, len(queued)+2)
	cmds = append(cmds, t.store.b().Multi().Build())
	cmds = append(cmds, queued...)
	cmds = append(cmds, t.store.b().Exec().Build())

	results := t.store.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpExec, Err: fmt.Errorf("command %s: %w", strconv.Itoa(i), err)}
		}
	}
	return nil
}

// Rollback discards queued writes.
func (t *tx) Rollback() {
	t.cmds = nil
	t.active = false
}

func (t *tx) IsActive() bool {
	return t.active
}

// Close releases the tx; queued writes that were never committed are dropped.
func (t *tx) Close() {
	t.Rollback()
}
