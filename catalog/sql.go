package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"
)

// FromQuery builds a catalog from the result of query. Each result column
// becomes a field; non-NULL values are appended in row order.
func FromQuery(ctx context.Context, db *sql.DB, query string) (Catalog, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("running catalog query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading catalog columns: %w", err)
	}

	cat := make(Catalog, len(cols))
	for _, c := range cols {
		cat[c] = []any{}
	}

	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		for i, v := range raw {
			if v == nil {
				continue
			}
			cat[cols[i]] = append(cat[cols[i]], normalize(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog rows: %w", err)
	}

	return cat, nil
}

// normalize maps driver values onto the catalog token types.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case float32:
		return normalizeFloat(float64(x))
	case float64:
		return normalizeFloat(x)
	case time.Time, string, int64, bool:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return Number(strconv.FormatFloat(f, 'f', -1, 64))
}
