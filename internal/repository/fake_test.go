package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTables is an in-memory image of the three tables keyed by natural key
type fakeTables struct {
	teams   map[int64][]any
	players map[int64][]any
	stats   map[[2]int64][]any
	schema  []string
}

func newFakeTables() fakeTables {
	return fakeTables{
		teams:   map[int64][]any{},
		players: map[int64][]any{},
		stats:   map[[2]int64][]any{},
	}
}

func (t fakeTables) clone() fakeTables {
	c := newFakeTables()
	for k, v := range t.teams {
		c.teams[k] = v
	}
	for k, v := range t.players {
		c.players[k] = v
	}
	for k, v := range t.stats {
		c.stats[k] = v
	}
	c.schema = append([]string(nil), t.schema...)
	return c
}

// fakeConn stands in for the pgx pool. Each transaction works on a copy of
// the committed tables that replaces them on commit.
type fakeConn struct {
	mu        sync.Mutex
	committed fakeTables

	begins    int
	commits   int
	rollbacks int
	inserts   int

	failOn       map[string]error // statement -> error returned by Exec
	commitErr    error
	hideExisting bool // existence checks report false, as if another writer raced us
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		committed: newFakeTables(),
		failOn:    map[string]error{},
	}
}

func (c *fakeConn) Begin(ctx context.Context) (pgx.Tx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.begins++
	return &fakeTx{conn: c, work: c.committed.clone()}, nil
}

func (c *fakeConn) Ping(ctx context.Context) error {
	return nil
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch sql {
	case countTeamQuery:
		return fakeRow{vals: []any{len(c.committed.teams)}}
	case countPlayerQuery:
		return fakeRow{vals: []any{len(c.committed.players)}}
	case countStatsByGameQuery:
		n := 0
		for k := range c.committed.stats {
			if k[0] == args[0].(int64) {
				n++
			}
		}
		return fakeRow{vals: []any{n}}
	}
	return fakeRow{err: fmt.Errorf("unexpected query: %s", sql)}
}

type fakeTx struct {
	pgx.Tx
	conn *fakeConn
	work fakeTables
	done bool
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	var exists bool
	switch sql {
	case teamExistsQuery:
		_, exists = tx.work.teams[args[0].(int64)]
	case playerExistsQuery:
		_, exists = tx.work.players[args[0].(int64)]
	case statExistsQuery:
		_, exists = tx.work.stats[[2]int64{args[0].(int64), args[1].(int64)}]
	default:
		return fakeRow{err: fmt.Errorf("unexpected query: %s", sql)}
	}
	if tx.conn.hideExisting {
		exists = false
	}
	return fakeRow{vals: []any{exists}}
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if err, ok := tx.conn.failOn[sql]; ok {
		return pgconn.CommandTag{}, err
	}

	insert := func(stored bool, store func()) pgconn.CommandTag {
		if stored {
			return pgconn.NewCommandTag("INSERT 0 0")
		}
		store()
		tx.conn.inserts++
		return pgconn.NewCommandTag("INSERT 0 1")
	}

	switch sql {
	case insertTeamQuery:
		id := args[0].(int64)
		_, stored := tx.work.teams[id]
		return insert(stored, func() { tx.work.teams[id] = args }), nil
	case insertPlayerQuery:
		id := args[0].(int64)
		_, stored := tx.work.players[id]
		return insert(stored, func() { tx.work.players[id] = args }), nil
	case insertStatQuery:
		key := [2]int64{args[1].(int64), args[2].(int64)}
		_, stored := tx.work.stats[key]
		return insert(stored, func() { tx.work.stats[key] = args }), nil
	}

	if strings.HasPrefix(strings.TrimSpace(sql), "CREATE") {
		tx.work.schema = append(tx.work.schema, sql)
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected statement: %s", sql)
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true

	tx.conn.mu.Lock()
	defer tx.conn.mu.Unlock()

	if tx.conn.commitErr != nil {
		return tx.conn.commitErr
	}
	tx.conn.committed = tx.work
	tx.conn.commits++
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true

	tx.conn.mu.Lock()
	defer tx.conn.mu.Unlock()
	tx.conn.rollbacks++
	return nil
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return errors.New("fakeRow: column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *bool:
			*p = r.vals[i].(bool)
		case *int:
			*p = r.vals[i].(int)
		default:
			return fmt.Errorf("fakeRow: unsupported scan target %T", d)
		}
	}
	return nil
}
