package securestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/walletlock/internal/cryptox"
	"github.com/dmitrijs2005/walletlock/internal/filex"
	"github.com/dmitrijs2005/walletlock/internal/securestore/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Stores bundles what the client needs from the local database.
type Stores struct {
	// Secrets holds the PIN record, sealed with the device key.
	Secrets Store
	// Settings holds caller-owned, non-secret flags in plain text.
	Settings Store

	db *sql.DB
}

func (s *Stores) Close() error {
	return s.db.Close()
}

// RunMigrations brings the schema of db up to date.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// OpenDB opens the SQLite database at dsn and migrates it. A single
// connection is used so that ":memory:" databases and write transactions
// behave predictably.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn != ":memory:" {
		if _, err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Open wires the on-device stores: the database at dsn plus the device key
// at keyFile (created on first use).
func Open(ctx context.Context, dsn, keyFile string) (*Stores, error) {
	key, err := cryptox.LoadOrCreateKey(keyFile)
	if err != nil {
		return nil, err
	}

	db, err := OpenDB(ctx, dsn)
	if err != nil {
		return nil, err
	}

	secrets, err := NewSQLiteStore(db, TableSecrets)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	settings, err := NewSQLiteStore(db, TableSettings)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sealed, err := NewSealedStore(secrets, key)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Stores{Secrets: sealed, Settings: settings, db: db}, nil
}
