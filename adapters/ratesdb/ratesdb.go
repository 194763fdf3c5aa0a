// Package ratesdb persists rate tables in SQLite so a server can boot from a
// single database file instead of CSV exports.
package ratesdb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"plan-advisor/core/pricing"
	"plan-advisor/core/types"
	"plan-advisor/internal/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
	path string
}

// Open creates a new SQLite database connection
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Storage("open database", err).WithContext("path", path)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Storage("set pragma", err).WithContext("pragma", pragma)
		}
	}

	return &DB{DB: db, path: path}, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Migrate runs all pending migrations
func (db *DB) Migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Storage("create migrations table", err)
	}

	applied := make(map[string]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return errors.Storage("query migrations", err)
	}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return errors.Storage("scan migration", err)
		}
		applied[version] = true
	}
	rows.Close()

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return errors.Internal("read migrations dir", err)
	}
	var migrations []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			migrations = append(migrations, entry.Name())
		}
	}
	sort.Strings(migrations)

	for _, name := range migrations {
		version := strings.TrimSuffix(name, ".sql")
		if applied[version] {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return errors.Internal(fmt.Sprintf("read migration %s", name), err)
		}

		tx, err := db.Begin()
		if err != nil {
			return errors.Storage("begin transaction", err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return errors.Storage(fmt.Sprintf("execute migration %s", name), err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return errors.Storage(fmt.Sprintf("record migration %s", name), err)
		}
		if err := tx.Commit(); err != nil {
			return errors.Storage(fmt.Sprintf("commit migration %s", name), err)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// ImportRecord describes one rate table import
type ImportRecord struct {
	ID          string    `json:"id"`
	RateTableID string    `json:"rate_table_id"`
	ContentHash string    `json:"content_hash"`
	Origin      string    `json:"origin"`
	Plans       int       `json:"plans"`
	Modules     int       `json:"modules"`
	ImportedAt  time.Time `json:"imported_at"`
}

// RateStore reads and replaces the stored rate table
type RateStore struct {
	db *DB
}

// NewRateStore creates a new SQLite rate store
func NewRateStore(db *DB) *RateStore {
	return &RateStore{db: db}
}

// Import replaces the stored rows with those of rt in one transaction
func (s *RateStore) Import(ctx context.Context, rt *pricing.RateTable) (ImportRecord, error) {
	plans, modules := rt.Plans(), rt.Modules()
	rec := ImportRecord{
		ID:          uuid.NewString(),
		RateTableID: string(rt.ID),
		ContentHash: rt.ContentHash.Hex(),
		Origin:      rt.Origin,
		Plans:       len(plans),
		Modules:     len(modules),
		ImportedAt:  time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rec, errors.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM plan_rates", "DELETE FROM module_rates"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return rec, errors.Storage("clear rates", err)
		}
	}

	for _, p := range plans {
		var limit sql.NullInt64
		if p.SeatLimit != nil {
			limit = sql.NullInt64{Int64: int64(*p.SeatLimit), Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plan_rates (tier, name, base_price, included_seats, seat_limit, band1_price, band2_price, band3_price)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, int(p.Tier), p.Name, p.BasePrice, p.IncludedSeats, limit, p.BandPrices[0], p.BandPrices[1], p.BandPrices[2])
		if err != nil {
			return rec, errors.Storage("insert plan rate", err).WithContext("tier", int(p.Tier))
		}
	}

	for _, m := range modules {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO module_rates (product, tier, base_price, unit_price) VALUES (?, ?, ?, ?)
		`, m.Product, int(m.Tier), m.BasePrice, m.UnitPrice)
		if err != nil {
			return rec, errors.Storage("insert module rate", err).WithContext("product", m.Product)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rate_imports (id, rate_table_id, content_hash, origin, plans, modules, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.RateTableID, rec.ContentHash, rec.Origin, rec.Plans, rec.Modules, rec.ImportedAt)
	if err != nil {
		return rec, errors.Storage("record import", err)
	}

	if err := tx.Commit(); err != nil {
		return rec, errors.Storage("commit import", err)
	}
	return rec, nil
}

// Load builds a rate table from the stored rows
func (s *RateStore) Load(ctx context.Context) (*pricing.RateTable, error) {
	b := pricing.NewRateTableBuilder().WithSource(pricing.SourceDatabase, s.db.path)

	rows, err := s.db.QueryContext(ctx, `
		SELECT tier, name, base_price, included_seats, seat_limit, band1_price, band2_price, band3_price
		FROM plan_rates ORDER BY tier
	`)
	if err != nil {
		return nil, errors.Storage("query plan rates", err)
	}
	for rows.Next() {
		var (
			p     types.PlanRate
			tier  int
			limit sql.NullInt64
		)
		if err := rows.Scan(&tier, &p.Name, &p.BasePrice, &p.IncludedSeats, &limit,
			&p.BandPrices[0], &p.BandPrices[1], &p.BandPrices[2]); err != nil {
			rows.Close()
			return nil, errors.Storage("scan plan rate", err)
		}
		p.Tier = types.TierID(tier)
		if limit.Valid {
			n := int(limit.Int64)
			p.SeatLimit = &n
		}
		b.AddPlan(p)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT product, tier, base_price, unit_price FROM module_rates ORDER BY product, tier
	`)
	if err != nil {
		return nil, errors.Storage("query module rates", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			m    types.ModuleRate
			tier int
		)
		if err := rows.Scan(&m.Product, &tier, &m.BasePrice, &m.UnitPrice); err != nil {
			return nil, errors.Storage("scan module rate", err)
		}
		m.Tier = types.TierID(tier)
		b.AddModule(m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("iterate module rates", err)
	}

	rt, err := b.Build()
	if err != nil {
		return nil, errors.Rates("stored rate table is unusable", err).WithContext("path", s.db.path)
	}
	return rt, nil
}

// Imports lists past imports, most recent first
func (s *RateStore) Imports(ctx context.Context) ([]ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rate_table_id, content_hash, origin, plans, modules, imported_at
		FROM rate_imports ORDER BY imported_at DESC
	`)
	if err != nil {
		return nil, errors.Storage("query imports", err)
	}
	defer rows.Close()

	var records []ImportRecord
	for rows.Next() {
		var r ImportRecord
		if err := rows.Scan(&r.ID, &r.RateTableID, &r.ContentHash, &r.Origin, &r.Plans, &r.Modules, &r.ImportedAt); err != nil {
			return nil, errors.Storage("scan import", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
