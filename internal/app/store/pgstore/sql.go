package pgstore

import (
	"context"
	"strconv"
)

// itoa renders a positional parameter number.
func itoa(n int) string { return strconv.Itoa(n) }

// countBy runs a "key, count(*) ... GROUP BY key" query into a map.
// An empty key list short-circuits to an empty map.
func countBy(ctx context.Context, c *Connection, op, sql string, keys []string, extra ...any) (map[string]int64, error) {
	out := map[string]int64{}
	if len(keys) == 0 {
		return out, nil
	}
	rows, err := c.q(ctx).Query(ctx, sql, append([]any{keys}, extra...)...)
	if err != nil {
		return nil, wrap(op, "", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var n int64
		if err := rows.Scan(&k, &n); err != nil {
			return nil, wrap(op, "", err)
		}
		out[k] = n
	}
	return out, wrap(op, "", rows.Err())
}

// execCount runs a write and returns the affected row count.
func execCount(ctx context.Context, c *Connection, op, sql string, args ...any) (int64, error) {
	tag, err := c.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, wrap(op, "", err)
	}
	return tag.RowsAffected(), nil
}
