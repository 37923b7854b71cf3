package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/caretrack/caretrack/internal/domain"
)

// dbtx is the query surface shared by *sql.DB and *sql.Tx so loads can
// run either standalone or inside a commit transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// EntityBinding describes how one tracked entity kind maps onto its table.
// Bindings are registered explicitly per type; there is no reflection and
// no runtime discovery. The registry is also the single source of the
// soft-delete read filter: every query built through it carries the
// is_deleted predicate unless the caller opts into deleted rows.
type EntityBinding struct {
	Kind    string
	Table   string
	Columns []string // domain columns, keys into Tracked.Snapshot

	// SensitiveColumns are persisted but kept out of snapshots so their
	// values never appear in an audit diff (e.g. password hashes). The
	// entity supplies them through the SensitiveFields interface.
	SensitiveColumns []string

	// Load fetches the stored row by id regardless of the soft-delete
	// flag. Commit uses it to capture the pre-commit snapshot for diffs.
	Load func(ctx context.Context, q dbtx, d Dialect, id string) (domain.Tracked, error)
}

// SensitiveFields is implemented by entities with persisted columns that
// must stay out of the audit trail.
type SensitiveFields interface {
	SensitiveFields() map[string]any
}

func sensitiveValue(e domain.Tracked, col string) any {
	if sp, ok := e.(SensitiveFields); ok {
		return sp.SensitiveFields()[col]
	}
	return nil
}

var bindings = map[string]*EntityBinding{}

// Register adds a binding to the process-wide registry. Each entity kind
// registers exactly once, from an init function next to its repository.
func Register(b *EntityBinding) {
	if b.Kind == "" || b.Table == "" {
		panic("persistence: binding requires kind and table")
	}
	if _, dup := bindings[b.Kind]; dup {
		panic(fmt.Sprintf("persistence: duplicate binding for kind %q", b.Kind))
	}
	bindings[b.Kind] = b
}

func bindingFor(kind string) (*EntityBinding, error) {
	b, ok := bindings[kind]
	if !ok {
		return nil, fmt.Errorf("persistence: no binding registered for kind %q", kind)
	}
	return b, nil
}

// RegisteredKinds returns the sorted kinds known to the registry.
func RegisteredKinds() []string {
	kinds := make([]string, 0, len(bindings))
	for k := range bindings {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Visibility controls whether a read sees soft-deleted rows. The zero
// value is the filtered default, so a forgotten argument can never leak
// deleted rows.
type Visibility int

const (
	VisibleOnly Visibility = iota
	IncludeDeleted
	DeletedOnly
)

// predicate returns the soft-delete clause for the visibility.
func (v Visibility) predicate() string {
	switch v {
	case IncludeDeleted:
		return "1=1"
	case DeletedOnly:
		return "is_deleted = TRUE"
	default:
		return "is_deleted = FALSE"
	}
}

// metaColumns are the audit/soft-delete/concurrency columns shared by
// every tracked table, in the order they are written and scanned.
var metaColumns = []string{
	"id",
	"created_at_utc",
	"created_by",
	"modified_at_utc",
	"modified_by",
	"is_deleted",
	"row_version",
}

// allColumns returns the meta columns followed by the binding's domain
// and sensitive columns, matching the physical column order of insert
// statements and row scans.
func (b *EntityBinding) allColumns() []string {
	cols := make([]string, 0, len(metaColumns)+len(b.Columns)+len(b.SensitiveColumns))
	cols = append(cols, metaColumns...)
	cols = append(cols, b.Columns...)
	cols = append(cols, b.SensitiveColumns...)
	return cols
}

// selectList returns the comma-joined column list for SELECT statements.
func (b *EntityBinding) selectList() string {
	return strings.Join(b.allColumns(), ", ")
}

// scopedSelect builds "SELECT <cols> FROM <table> WHERE <soft-delete>"
// so every registered kind reads through the same filter.
func (b *EntityBinding) scopedSelect(v Visibility) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", b.selectList(), b.Table, v.predicate())
}
