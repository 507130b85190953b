package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB answers the repository's statements from an in-memory table.
type fakeDB struct {
	mu    sync.Mutex
	rows  map[string]*fakeRecord
	execs []string
	err   error
}

type fakeRecord struct {
	id, dealID, name string
	published        bool
	data             []byte
	created, updated time.Time
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: map[string]*fakeRecord{}}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}

	switch sql {
	case createDealModels:
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	case publishModel:
		id := args[0].(string)
		now := args[1].(time.Time)
		target, ok := f.rows[id]
		if !ok {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		n := 0
		for _, r := range f.rows {
			if r.dealID != target.dealID {
				continue
			}
			n++
			r.published = r.id == id
			if r.id == id {
				r.updated = now
			}
		}
		return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", n)), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", sql)
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return fakeRow{err: f.err}
	}

	switch sql {
	case upsertModel:
		id := args[0].(string)
		rec, ok := f.rows[id]
		if !ok {
			rec = &fakeRecord{id: id, created: args[5].(time.Time)}
			f.rows[id] = rec
		}
		rec.dealID = args[1].(string)
		rec.name = args[2].(string)
		rec.published = args[3].(bool)
		rec.data = args[4].([]byte)
		rec.updated = args[6].(time.Time)
		return fakeRow{vals: []any{rec.created}}
	case selectModel:
		rec, ok := f.rows[args[0].(string)]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{vals: rec.values()}
	}
	return fakeRow{err: fmt.Errorf("unexpected query: %s", sql)}
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if sql != selectModelsByDeal {
		return nil, fmt.Errorf("unexpected query: %s", sql)
	}

	var recs []*fakeRecord
	for _, r := range f.rows {
		if r.dealID == args[0].(string) {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].updated.Equal(recs[j].updated) {
			return recs[i].updated.After(recs[j].updated)
		}
		return recs[i].id < recs[j].id
	})
	rows := &fakeRows{pos: -1}
	for _, r := range recs {
		rows.vals = append(rows.vals, r.values())
	}
	return rows, nil
}

func (r *fakeRecord) values() []any {
	return []any{r.data, r.published, r.created, r.updated}
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.vals, dest)
}

type fakeRows struct {
	vals [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.vals)
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.vals[r.pos], dest)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.vals[r.pos], nil
}

func assign(vals []any, dest []any) error {
	if len(vals) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(vals), len(dest))
	}
	for i, v := range vals {
		switch d := dest[i].(type) {
		case *[]byte:
			*d = append([]byte(nil), v.([]byte)...)
		case *bool:
			*d = v.(bool)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}
