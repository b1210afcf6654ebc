package repository

import (
	"context"
	"database/sql"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// queryRows runs q and calls scan once per row.
func queryRows(ctx context.Context, drv dialect.ExecQuerier, q string, args []any, scan func(*entsql.Rows) error) error {
	rows := &entsql.Rows{}
	if err := drv.Query(ctx, q, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func count(ctx context.Context, drv dialect.Driver, table string) (int, error) {
	q, args := entsql.Dialect(drv.Dialect()).
		Select(entsql.Count("*")).
		From(entsql.Table(table)).
		Query()
	var n int
	err := queryRows(ctx, drv, q, args, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	return n, err
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
