package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/solandes-viajes/cost-console/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It is the
// default backend for single-desk local use.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS services (
	seq            INTEGER PRIMARY KEY AUTOINCREMENT,
	destination    TEXT NOT NULL,
	canonical_name TEXT NOT NULL,
	payload        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
	id         TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS expense_docs (
	group_id TEXT NOT NULL,
	path     TEXT NOT NULL,
	entries  TEXT NOT NULL,
	PRIMARY KEY (group_id, path)
);

CREATE TABLE IF NOT EXISTS overrides (
	group_id   TEXT NOT NULL,
	line_id    TEXT NOT NULL,
	price      REAL,
	quantity   REAL,
	reviewed   INTEGER NOT NULL DEFAULT 0,
	note       TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL,
	updated_by TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (group_id, line_id)
);

CREATE INDEX IF NOT EXISTS idx_services_destination ON services(destination);
CREATE INDEX IF NOT EXISTS idx_overrides_group ON overrides(group_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Catalog ---

func (s *SQLiteStore) ListDestinations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT destination FROM services GROUP BY destination ORDER BY MIN(seq)`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list destinations")
	}
	defer rows.Close()

	var dests []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan destination")
		}
		dests = append(dests, d)
	}
	return dests, eris.Wrap(rows.Err(), "sqlite: list destinations iterate")
}

func (s *SQLiteStore) ListServices(ctx context.Context, destination string) ([]model.ServiceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM services WHERE destination = ? ORDER BY canonical_name`,
		destination,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list services for %s", destination)
	}
	defer rows.Close()

	var services []model.ServiceRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan service")
		}
		var svc model.ServiceRecord
		if err := json.Unmarshal([]byte(payload), &svc); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal service")
		}
		services = append(services, svc)
	}
	return services, eris.Wrap(rows.Err(), "sqlite: list services iterate")
}

func (s *SQLiteStore) ReplaceServices(ctx context.Context, destination string, services []model.ServiceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace services")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM services WHERE destination = ?`, destination); err != nil {
		return eris.Wrapf(err, "sqlite: clear services for %s", destination)
	}

	for _, svc := range services {
		payload, err := json.Marshal(svc)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal service")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO services (destination, canonical_name, payload) VALUES (?, ?, ?)`,
			destination, svc.CanonicalName, string(payload),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert service %s", svc.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit replace services")
}

// --- Groups ---

func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*model.GroupRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM groups WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: group not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get group %s", id)
	}

	var g model.GroupRecord
	if err := json.Unmarshal([]byte(payload), &g); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal group")
	}
	return &g, nil
}

func (s *SQLiteStore) ListGroups(ctx context.Context) ([]model.GroupRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM groups ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list groups")
	}
	defer rows.Close()

	var groups []model.GroupRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan group")
		}
		var g model.GroupRecord
		if err := json.Unmarshal([]byte(payload), &g); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal group")
		}
		groups = append(groups, g)
	}
	return groups, eris.Wrap(rows.Err(), "sqlite: list groups iterate")
}

func (s *SQLiteStore) PutGroup(ctx context.Context, g model.GroupRecord) error {
	if g.ID == "" {
		return eris.New("sqlite: group id is required")
	}
	payload, err := json.Marshal(g)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal group")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO groups (id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		g.ID, string(payload), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put group %s", g.ID)
}

func (s *SQLiteStore) PutGroups(ctx context.Context, groups []model.GroupRecord) error {
	for _, g := range groups {
		if err := s.PutGroup(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// --- Expense documents ---

func (s *SQLiteStore) ReadExpenseDocs(ctx context.Context, groupID, path string) ([]model.ExpenseEntry, error) {
	var entriesJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT entries FROM expense_docs WHERE group_id = ? AND path = ?`,
		groupID, path,
	).Scan(&entriesJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: read expense docs %s/%s", groupID, path)
	}

	var entries []model.ExpenseEntry
	if err := json.Unmarshal([]byte(entriesJSON), &entries); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal expense docs")
	}
	return entries, nil
}

func (s *SQLiteStore) PutExpenseDocs(ctx context.Context, groupID, path string, entries []model.ExpenseEntry) error {
	entriesJSON, err := json.Marshal(entries)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal expense docs")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO expense_docs (group_id, path, entries) VALUES (?, ?, ?)
		 ON CONFLICT(group_id, path) DO UPDATE SET entries = excluded.entries`,
		groupID, path, string(entriesJSON),
	)
	return eris.Wrapf(err, "sqlite: put expense docs %s/%s", groupID, path)
}

// --- Overrides ---

func (s *SQLiteStore) GetOverrides(ctx context.Context, groupID string) (map[string]model.OverrideRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, line_id, price, quantity, reviewed, note, updated_at, updated_by
		 FROM overrides WHERE group_id = ?`,
		groupID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get overrides for %s", groupID)
	}
	defer rows.Close()

	overrides := make(map[string]model.OverrideRecord)
	for rows.Next() {
		rec, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		overrides[rec.LineID] = *rec
	}
	return overrides, eris.Wrap(rows.Err(), "sqlite: get overrides iterate")
}

// MergeOverride merges the patch into the line's override row field by
// field inside one transaction, creating the row on first edit.
func (s *SQLiteStore) MergeOverride(ctx context.Context, groupID, lineID string, patch model.OverridePatch) (*model.OverrideRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin merge override")
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRowContext(ctx,
		`SELECT group_id, line_id, price, quantity, reviewed, note, updated_at, updated_by
		 FROM overrides WHERE group_id = ? AND line_id = ?`,
		groupID, lineID,
	)
	rec, err := scanOverride(row)
	if err != nil {
		if !eris.Is(err, errOverrideNotFound) {
			return nil, err
		}
		rec = &model.OverrideRecord{GroupID: groupID, LineID: lineID}
	}

	rec.Apply(patch, time.Now())

	var price, quantity any
	if rec.PriceOverride != nil {
		price = *rec.PriceOverride
	}
	if rec.QuantityOverride != nil {
		quantity = *rec.QuantityOverride
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO overrides (group_id, line_id, price, quantity, reviewed, note, updated_at, updated_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(group_id, line_id) DO UPDATE SET
			price = excluded.price,
			quantity = excluded.quantity,
			reviewed = excluded.reviewed,
			note = excluded.note,
			updated_at = excluded.updated_at,
			updated_by = excluded.updated_by`,
		groupID, lineID, price, quantity, rec.Reviewed, rec.Note, rec.UpdatedAt, rec.UpdatedBy,
	); err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert override %s", lineID)
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit merge override")
	}
	return rec, nil
}

// helpers

var errOverrideNotFound = eris.New("override not found")

type scannable interface {
	Scan(dest ...any) error
}

func scanOverride(row scannable) (*model.OverrideRecord, error) {
	var rec model.OverrideRecord
	var price, quantity sql.NullFloat64

	err := row.Scan(&rec.GroupID, &rec.LineID, &price, &quantity,
		&rec.Reviewed, &rec.Note, &rec.UpdatedAt, &rec.UpdatedBy)
	if err == sql.ErrNoRows {
		return nil, errOverrideNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan override")
	}

	if price.Valid {
		rec.PriceOverride = &price.Float64
	}
	if quantity.Valid {
		rec.QuantityOverride = &quantity.Float64
	}
	return &rec, nil
}
