package securestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/walletlock/internal/common"
	"github.com/dmitrijs2005/walletlock/internal/dbx"
)

const (
	TableSecrets  = "secrets"
	TableSettings = "settings"
)

// SQLiteStore keeps key/value pairs in one table of the local database.
// Values are stored as given; wrap it in a SealedStore for secrets.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

// NewSQLiteStore returns a store over table, which must be TableSecrets or
// TableSettings.
func NewSQLiteStore(db *sql.DB, table string) (*SQLiteStore, error) {
	if table != TableSecrets && table != TableSettings {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return &SQLiteStore{db: db, table: table}, nil
}

func (r *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM `+r.table+` WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s[%s]: %w: %w", r.table, key, common.ErrStorageFault, err)
	}
	return value, nil
}

func (r *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.upsert(ctx, r.db, key, value); err != nil {
		return fmt.Errorf("failed to set %s[%s]: %w: %w", r.table, key, common.ErrStorageFault, err)
	}
	return nil
}

func (r *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := r.delete(ctx, r.db, key); err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w: %w", r.table, key, common.ErrStorageFault, err)
	}
	return nil
}

func (r *SQLiteStore) SetMany(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range keys {
			if err := r.upsert(ctx, tx, k, values[k]); err != nil {
				return fmt.Errorf("%s[%s]: %w", r.table, k, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set batch: %w: %w", common.ErrStorageFault, err)
	}
	return nil
}

func (r *SQLiteStore) DeleteMany(ctx context.Context, keys ...string) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range keys {
			if err := r.delete(ctx, tx, k); err != nil {
				return fmt.Errorf("%s[%s]: %w", r.table, k, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w: %w", common.ErrStorageFault, err)
	}
	return nil
}

func (r *SQLiteStore) upsert(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO `+r.table+` (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (r *SQLiteStore) delete(ctx context.Context, q dbx.DBTX, key string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE key = ?`, key)
	return err
}
