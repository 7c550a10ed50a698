// Package postgres persists the registry in PostgreSQL through lib/pq. Every
// query runs on the transaction carried by ctx when there is one.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"orgatlas/internal/registry/models"
	"orgatlas/pkg/platform/sentinel"
	"orgatlas/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Migrate creates the registry tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate registry schema: %w", err)
	}
	return nil
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type store struct {
	db *sql.DB
}

func (s store) conn(ctx context.Context) tx.Querier {
	return tx.Conn(ctx, s.db)
}

// storeError maps driver errors onto sentinel facts. The pq error stays in
// the chain so the runner can still classify serialization failures.
func storeError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation, pqForeignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrConflict, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// affectedOne turns a zero-row update or delete into ErrNotFound.
func affectedOne(op string, res sql.Result, err error) error {
	if err != nil {
		return storeError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeError(op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// where accumulates filter conditions with positional arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

// contains adds a case-insensitive substring match on column for a non-nil
// needle.
func (w *where) contains(column string, needle *string) {
	if needle == nil {
		return
	}
	w.add(column+" ILIKE $%d", "%"+escapeLike(*needle)+"%")
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// orderBy renders ORDER BY and LIMIT/OFFSET for a normalized page. columns
// whitelists sortable fields; unknown fields fall back to id. NULLs sort
// first ascending and last descending.
func orderBy(page models.Page, columns map[string]string) string {
	col, ok := columns[page.SortBy]
	if !ok {
		col = "id"
	}
	dir, nulls := "ASC", "NULLS FIRST"
	if page.Direction == models.SortDesc {
		dir, nulls = "DESC", "NULLS LAST"
	}
	return fmt.Sprintf(" ORDER BY %s %s %s, id %s LIMIT %d OFFSET %d",
		col, dir, nulls, dir, page.Size, page.Offset())
}

// count runs SELECT COUNT(*) for table under w.
func (s store) count(ctx context.Context, op, table string, w *where) (int, error) {
	var n int
	err := s.conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+w.String(), w.args...).Scan(&n)
	if err != nil {
		return 0, storeError(op, err)
	}
	return n, nil
}

// nullArg passes *p, or NULL for a nil pointer. The value goes through the
// driver's kind-based conversion, so named and narrow types are accepted.
func nullArg[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func pointer[T any](n sql.Null[T]) *T {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}

func emptyPage[T any](page models.Page, total int) models.PageResult[T] {
	return models.PageResult[T]{Items: []T{}, Total: total, Page: page.Page, Size: page.Size}
}
