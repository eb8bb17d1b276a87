package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type kvRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *kvRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args := sqlite.Select("value").
		From(sqlite.Table("kv")).
		Where(entsql.EQ("key", key)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, fmt.Errorf("get %q: %w", key, err)
		}
		return nil, false, nil
	}
	var value []byte
	if err := rows.Scan(&value); err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Put upserts key. Each write takes a fresh revision from the shared
// sequence.
func (r *kvRepo) Put(ctx context.Context, key string, value []byte) error {
	rev, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	query, args := sqlite.Insert("kv").
		Columns("key", "value", "revision", "updated_at").
		Values(key, value, rev, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (r *kvRepo) Delete(ctx context.Context, key string) error {
	query, args := sqlite.Delete("kv").
		Where(entsql.EQ("key", key)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
