// Package postgres implements the store interface for PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS name_records (
	provider       TEXT NOT NULL,
	address        TEXT NOT NULL,
	id             TEXT NOT NULL DEFAULT '',
	name           TEXT NOT NULL DEFAULT '',
	owner          TEXT NOT NULL DEFAULT '',
	handle         TEXT NOT NULL DEFAULT '',
	avatar         TEXT NOT NULL DEFAULT '',
	reverse_record TEXT NOT NULL DEFAULT '',
	expiry         BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (provider, address)
);
CREATE TABLE IF NOT EXISTS pending (
	provider TEXT PRIMARY KEY,
	addrs    TEXT[] NOT NULL,
	rounds   BIGINT NOT NULL DEFAULT 0,
	resolved BIGINT NOT NULL DEFAULT 0,
	updated  TIMESTAMPTZ NOT NULL
);`

// Postgres implements a connection to a PostgreSQL database.
type Postgres struct {
	db *sql.DB
}

// New returns a postgres client connection to the specified database in 'connection' and creates the tables when
// missing.
func New(connection string) (*Postgres, error) {
	db, err := sql.Open("postgres", connection)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB in %s: %w", connection, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:gomnd // 5 seconds timeout
	defer cancel()

	if _, err = db.ExecContext(ctx, schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("cannot create tables: %w", err)
	}

	return &Postgres{db: db}, nil
}

// ClosePostgres will close any database connection. Must be called at termination time.
func (p *Postgres) ClosePostgres() error {
	return p.db.Close()
}

// GetRecords returns the stored records of provider for the given addresses, or all of them when addrs is empty.
func (p *Postgres) GetRecords(ctx context.Context, provider string, addrs []string) ([]names.Domain, error) {
	q := `SELECT address, id, name, owner, handle, avatar, reverse_record, expiry FROM name_records WHERE provider = $1`
	args := []interface{}{provider}

	if len(addrs) > 0 {
		q += ` AND address = ANY($2)`
		args = append(args, pq.Array(names.Normalize(addrs)))
	}

	rows, err := p.db.QueryContext(ctx, q+` ORDER BY address`, args...)
	if err != nil {
		return nil, fmt.Errorf("error getting records: %w", err)
	}
	defer rows.Close()

	recs := []names.Domain{}

	for rows.Next() {
		d := names.Domain{Provider: provider}
		if err = rows.Scan(&d.Address, &d.ID, &d.Name, &d.Owner, &d.Handle, &d.Avatar, &d.ReverseRecord, &d.Expiry); err != nil {
			return nil, fmt.Errorf("error scanning record: %w", err)
		}

		recs = append(recs, d)
	}

	return recs, rows.Err()
}

// SaveRecords upserts the records in one transaction, keyed by provider and address. Placeholders are skipped.
func (p *Postgres) SaveRecords(ctx context.Context, provider string, recs []names.Domain) error {
	recs = store.Fresh(recs)
	if len(recs) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO name_records (provider, address, id, name, owner, handle, avatar, reverse_record, expiry)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (provider, address) DO UPDATE SET
	id = EXCLUDED.id, name = EXCLUDED.name, owner = EXCLUDED.owner, handle = EXCLUDED.handle,
	avatar = EXCLUDED.avatar, reverse_record = EXCLUDED.reverse_record, expiry = EXCLUDED.expiry`)
	if err != nil {
		_ = tx.Rollback()

		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		_, err = stmt.ExecContext(ctx, provider, names.Key(r.Address), r.ID, r.Name, r.Owner, r.Handle, r.Avatar,
			r.ReverseRecord, r.Expiry)
		if err != nil {
			_ = tx.Rollback()

			return fmt.Errorf("error saving record %s: %w", r.Address, err)
		}
	}

	return tx.Commit()
}

// DeleteRecords deletes the records of the given addresses and returns how many were removed.
func (p *Postgres) DeleteRecords(ctx context.Context, provider string, addrs []string) (int64, error) {
	if len(addrs) == 0 {
		return 0, nil
	}

	res, err := p.db.ExecContext(ctx, `DELETE FROM name_records WHERE provider = $1 AND address = ANY($2)`,
		provider, pq.Array(names.Normalize(addrs)))
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		err = store.ErrDataNotFound
	}

	return n, err
}

// LoadPending loads from db the pending set for the indicated provider.
func (p *Postgres) LoadPending(ctx context.Context, provider string) (pe store.Pending, err error) {
	row := p.db.QueryRowContext(ctx, `SELECT addrs, rounds, resolved, updated FROM pending WHERE provider = $1`, provider)

	err = row.Scan(pq.Array(&pe.Addrs), &pe.Rounds, &pe.Resolved, &pe.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		err = store.ErrDataNotFound
	}

	return
}

// SavePending saves to db the pending set for the indicated provider.
func (p *Postgres) SavePending(ctx context.Context, provider string, pe store.Pending) error {
	if pe.Addrs == nil {
		pe.Addrs = []string{}
	}

	_, err := p.db.ExecContext(ctx, `
INSERT INTO pending (provider, addrs, rounds, resolved, updated) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (provider) DO UPDATE SET
	addrs = EXCLUDED.addrs, rounds = EXCLUDED.rounds, resolved = EXCLUDED.resolved, updated = EXCLUDED.updated`,
		provider, pq.Array(pe.Addrs), pe.Rounds, pe.Resolved, pe.Updated)

	return err
}
