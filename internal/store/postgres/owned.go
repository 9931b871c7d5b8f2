package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"diagnostic-portal-api/internal/store"
)

// table maps an owned entity onto SQL. Columns start with id, user_id.
type table[T any] struct {
	columns []string
	// selects is the SELECT list in scan order.
	selects string
	scan    func(row pgx.Row) (*T, error)
	values  func(*T) []any
}

// Owned implements store.Owned over one table. Every statement carries the
// ownership predicate, so a foreign row is never read, changed or removed.
type Owned[T any] struct {
	pool  *pgxpool.Pool
	kind  store.Kind[T]
	t     table[T]
	order string
}

func newOwned[T any](pool *pgxpool.Pool, kind store.Kind[T], t table[T]) *Owned[T] {
	order := make([]string, len(kind.Order))
	for i, c := range kind.Order {
		order[i] = c + " DESC"
	}
	return &Owned[T]{pool: pool, kind: kind, t: t, order: strings.Join(order, ", ")}
}

func (o *Owned[T]) Create(ctx context.Context, rec *T) error {
	ph := make([]string, len(o.t.columns))
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	_, err := o.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
			o.kind.Name, strings.Join(o.t.columns, ","), strings.Join(ph, ",")),
		o.t.values(rec)...,
	)
	return mapErr(err)
}

func (o *Owned[T]) List(ctx context.Context, owner string) ([]T, error) {
	out := []T{}
	if !validID(owner) {
		return out, nil
	}
	rows, err := o.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 ORDER BY %s`, o.t.selects, o.kind.Name, o.order),
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := o.t.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (o *Owned[T]) Get(ctx context.Context, id, owner string) (*T, error) {
	if !validID(id) || !validID(owner) {
		return nil, store.ErrNotFound
	}
	rec, err := o.t.scan(o.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND user_id = $2`, o.t.selects, o.kind.Name),
		id, owner,
	))
	if err != nil {
		return nil, mapErr(err)
	}
	return rec, nil
}

// Update writes only the patch's fields. Column names come from the typed
// patch allow-list, never from the request.
func (o *Owned[T]) Update(ctx context.Context, id, owner string, p store.Patch[T]) (*T, error) {
	fields := p.Fields()
	if len(fields) == 0 {
		return o.Get(ctx, id, owner)
	}
	if !validID(id) || !validID(owner) {
		return nil, store.ErrNotFound
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	set := make([]string, len(keys))
	args := make([]any, 0, len(keys)+2)
	for i, k := range keys {
		set[i] = fmt.Sprintf("%s = $%d", k, i+1)
		args = append(args, fields[k])
	}
	args = append(args, id, owner)

	rec, err := o.t.scan(o.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
			o.kind.Name, strings.Join(set, ", "), len(keys)+1, len(keys)+2, o.t.selects),
		args...,
	))
	if err != nil {
		return nil, mapErr(err)
	}
	return rec, nil
}

func (o *Owned[T]) Delete(ctx context.Context, id, owner string) error {
	if !validID(id) || !validID(owner) {
		return store.ErrNotFound
	}
	tag, err := o.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, o.kind.Name),
		id, owner,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ids are UUID columns; anything else cannot match a row
func validID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
