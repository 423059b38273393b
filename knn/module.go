package knn

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	sqlite "modernc.org/sqlite"
	"modernc.org/sqlite/vtab"

	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/index/kdforest"
	"github.com/viant/descmatch/store"
)

const invalidateTrigger = `
CREATE TRIGGER IF NOT EXISTS trg_knn_feature_sets_del AFTER DELETE ON feature_sets
BEGIN SELECT knn_invalidate(OLD.id); END;`

var registerInvalidateOnce sync.Once

// Module implements vtab.Module for the knn virtual table.
type Module struct {
	db    *sql.DB
	store *store.SQLiteStore
}

// Table is one knn virtual table instance.
type Table struct {
	db        *sql.DB
	store     *store.SQLiteStore
	dbName    string
	tableName string
	opts      tableOptions

	dbPathOnce sync.Once
	dbPath     string
}

type row struct {
	setID    string
	position int64
	distance float64
}

// Cursor iterates the neighbours found by one Filter call.
type Cursor struct {
	table *Table
	rows  []row
	pos   int
}

// Register registers the knn module and the knn_invalidate function, creates
// the feature store schema and installs the invalidation trigger.
func Register(ctx context.Context, db *sql.DB) error {
	registerInvalidateOnce.Do(func() {
		_ = sqlite.RegisterDeterministicScalarFunction("knn_invalidate", 1, invalidateFunc)
	})
	s, err := store.NewSQLiteStore(ctx, db)
	if err != nil {
		return err
	}
	if err := vtab.RegisterModule(db, "knn", &Module{db: db, store: s}); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	if _, err := db.ExecContext(ctx, invalidateTrigger); err != nil {
		return fmt.Errorf("knn: create trigger: %w", err)
	}
	return nil
}

// invalidateFunc implements knn_invalidate(set_id TEXT) -> INTEGER.
func invalidateFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 || args[0] == nil {
		return int64(0), nil
	}
	id, err := asString(args[0])
	if err != nil {
		return int64(0), nil
	}
	return int64(Invalidate(id)), nil
}

// Create declares the table schema.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

// Connect attaches to an existing table; knn tables keep no state of their own.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

func (m *Module) connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("knn: expects at least 3 args, got %d", len(args))
	}
	if err := ctx.EnableConstraintSupport(); err != nil {
		return nil, fmt.Errorf("knn: EnableConstraintSupport failed: %w", err)
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(set_id TEXT, descriptor BLOB HIDDEN, position INTEGER, distance REAL)", args[2])); err != nil {
		return nil, err
	}
	return &Table{
		db:        m.db,
		store:     m.store,
		dbName:    args[1],
		tableName: args[2],
		opts:      parseTableOptions(args[3:]),
	}, nil
}

// BestIndex requires set_id = ? and descriptor MATCH ?.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	var setConstraint, matchConstraint *vtab.Constraint
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		switch {
		case c.Column == 0 && c.Op == vtab.OpEQ:
			setConstraint = c
		case c.Column == 1 && c.Op == vtab.OpMATCH:
			matchConstraint = c
		}
	}
	if setConstraint == nil || matchConstraint == nil {
		return fmt.Errorf("knn: set_id = ? and descriptor MATCH ? are required")
	}
	setConstraint.ArgIndex = 0
	setConstraint.Omit = true
	matchConstraint.ArgIndex = 1
	matchConstraint.Omit = true
	info.IdxNum = 1
	return nil
}

// Open allocates a new cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect is a no-op.
func (t *Table) Disconnect() error { return nil }

// Destroy is a no-op; the feature tables belong to package store.
func (t *Table) Destroy() error { return nil }

// Filter runs the nearest-neighbour query.
func (c *Cursor) Filter(idxNum int, _ string, vals []vtab.Value) error {
	c.rows, c.pos = nil, 0
	if idxNum != 1 || len(vals) < 2 || vals[0] == nil || vals[1] == nil {
		return fmt.Errorf("knn: set_id and MATCH arguments are required")
	}
	setID, err := asString(vals[0])
	if err != nil {
		return err
	}
	query, err := decodeMatchArg(vals[1])
	if err != nil {
		return err
	}
	ctx := context.Background()
	idx, err := c.table.forest(ctx, setID)
	if err != nil {
		return err
	}
	k := min(c.table.opts.k, idx.Len())
	found, err := idx.Query(query, k, c.table.opts.budget)
	if err != nil {
		return fmt.Errorf("knn: %w", err)
	}
	c.rows = make([]row, len(found))
	for i, n := range found {
		c.rows[i] = row{setID: setID, position: int64(n.Index), distance: float64(n.Distance)}
	}
	return nil
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

// Eof reports end-of-rows.
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

// Column returns the value of a column in the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("knn: Column out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	r := c.rows[c.pos]
	switch col {
	case 0:
		return r.setID, nil
	case 1:
		return nil, nil
	case 2:
		return r.position, nil
	case 3:
		return r.distance, nil
	}
	return nil, fmt.Errorf("knn: unsupported column %d", col)
}

// Rowid returns the 1-based rank of the current row.
func (c *Cursor) Rowid() (int64, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return 0, fmt.Errorf("knn: Rowid out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	return int64(c.pos + 1), nil
}

// Close releases resources.
func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }

// forest returns the cached forest of setID, building it on first use.
func (t *Table) forest(ctx context.Context, setID string) (*kdforest.Index, error) {
	entry := getCacheEntry(cacheKey(t.cachedDbPath(ctx), setID, t.opts))
	idx, build := entry.acquire()
	if !build {
		return idx, nil
	}
	var built *kdforest.Index
	defer func() { entry.finish(built) }()

	features, err := t.store.Load(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("knn: %w", err)
	}
	f := kdforest.New(kdforest.WithTrees(t.opts.trees), kdforest.WithSeed(t.opts.seed))
	if err := f.BuildContext(ctx, features.Descriptors); err != nil {
		return nil, fmt.Errorf("knn: build %s: %w", setID, err)
	}
	built = f
	return built, nil
}

func (t *Table) cachedDbPath(ctx context.Context) string {
	t.dbPathOnce.Do(func() {
		t.dbPath = resolveDbPath(ctx, t.db, t.dbName)
	})
	return t.dbPath
}

// resolveDbPath returns the file backing dbName, or dbName itself when it
// cannot be resolved.
func resolveDbPath(ctx context.Context, db *sql.DB, dbName string) string {
	if dbName == "" {
		dbName = "main"
	}
	rows, err := db.QueryContext(ctx, `SELECT name, file FROM pragma_database_list`)
	if err != nil {
		return dbName
	}
	defer rows.Close()
	for rows.Next() {
		var name, file string
		if err := rows.Scan(&name, &file); err != nil {
			return dbName
		}
		if name == dbName && file != "" {
			return file
		}
	}
	return dbName
}

func decodeMatchArg(v vtab.Value) (descriptor.Descriptor, error) {
	switch val := v.(type) {
	case []byte:
		return descriptor.Decode(val)
	case string:
		s := strings.TrimSpace(val)
		if !strings.HasPrefix(s, "[") {
			return nil, fmt.Errorf("knn: MATCH string must be a JSON float array")
		}
		var d descriptor.Descriptor
		if err := json.Unmarshal([]byte(s), &d); err != nil {
			return nil, fmt.Errorf("knn: invalid MATCH array: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("knn: expected MATCH arg as BLOB or string, got %T", v)
	}
}

func asString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case nil:
		return "", fmt.Errorf("knn: set_id is nil")
	default:
		return "", fmt.Errorf("knn: unsupported set_id type %T", v)
	}
}
