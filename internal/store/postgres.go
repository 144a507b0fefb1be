package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/solandes-viajes/cost-console/internal/db"
	"github.com/solandes-viajes/cost-console/internal/model"
)

// PostgresStore implements Store using pgxpool, for shared deployments
// where several desks work off the same document store.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS services (
	seq            BIGSERIAL PRIMARY KEY,
	destination    TEXT NOT NULL,
	canonical_name TEXT NOT NULL,
	payload        JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
	id         TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS expense_docs (
	group_id TEXT NOT NULL,
	path     TEXT NOT NULL,
	entries  JSONB NOT NULL,
	PRIMARY KEY (group_id, path)
);

CREATE TABLE IF NOT EXISTS overrides (
	group_id   TEXT NOT NULL,
	line_id    TEXT NOT NULL,
	price      DOUBLE PRECISION,
	quantity   DOUBLE PRECISION,
	reviewed   BOOLEAN NOT NULL DEFAULT false,
	note       TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL,
	updated_by TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (group_id, line_id)
);

CREATE INDEX IF NOT EXISTS idx_services_destination ON services(destination);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// --- Catalog ---

func (s *PostgresStore) ListDestinations(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT destination FROM services GROUP BY destination ORDER BY MIN(seq)`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list destinations")
	}
	defer rows.Close()

	var dests []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, eris.Wrap(err, "postgres: scan destination")
		}
		dests = append(dests, d)
	}
	return dests, eris.Wrap(rows.Err(), "postgres: list destinations iterate")
}

func (s *PostgresStore) ListServices(ctx context.Context, destination string) ([]model.ServiceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM services WHERE destination = $1 ORDER BY canonical_name`,
		destination,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list services for %s", destination)
	}
	defer rows.Close()

	var services []model.ServiceRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan service")
		}
		var svc model.ServiceRecord
		if err := json.Unmarshal(payload, &svc); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal service")
		}
		services = append(services, svc)
	}
	return services, eris.Wrap(rows.Err(), "postgres: list services iterate")
}

// ReplaceServices swaps out a destination's whole catalog: delete then
// bulk COPY of the new batch.
func (s *PostgresStore) ReplaceServices(ctx context.Context, destination string, services []model.ServiceRecord) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM services WHERE destination = $1`, destination); err != nil {
		return eris.Wrapf(err, "postgres: clear services for %s", destination)
	}

	rows := make([][]any, 0, len(services))
	for _, svc := range services {
		payload, err := json.Marshal(svc)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal service")
		}
		rows = append(rows, []any{destination, svc.CanonicalName, payload})
	}

	_, err := db.CopyFrom(ctx, s.pool, "services", []string{"destination", "canonical_name", "payload"}, rows)
	return eris.Wrapf(err, "postgres: replace services for %s", destination)
}

// --- Groups ---

func (s *PostgresStore) GetGroup(ctx context.Context, id string) (*model.GroupRecord, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM groups WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: group not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get group %s", id)
	}

	var g model.GroupRecord
	if err := json.Unmarshal(payload, &g); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal group")
	}
	return &g, nil
}

func (s *PostgresStore) ListGroups(ctx context.Context) ([]model.GroupRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT payload FROM groups ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list groups")
	}
	defer rows.Close()

	var groups []model.GroupRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan group")
		}
		var g model.GroupRecord
		if err := json.Unmarshal(payload, &g); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal group")
		}
		groups = append(groups, g)
	}
	return groups, eris.Wrap(rows.Err(), "postgres: list groups iterate")
}

func (s *PostgresStore) PutGroup(ctx context.Context, g model.GroupRecord) error {
	if g.ID == "" {
		return eris.New("postgres: group id is required")
	}
	payload, err := json.Marshal(g)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal group")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO groups (id, payload, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		g.ID, payload, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: put group %s", g.ID)
}

// PutGroups bulk-upserts a batch of groups via a temp table.
func (s *PostgresStore) PutGroups(ctx context.Context, groups []model.GroupRecord) error {
	rows := make([][]any, 0, len(groups))
	now := time.Now().UTC()
	for _, g := range groups {
		if g.ID == "" {
			return eris.New("postgres: group id is required")
		}
		payload, err := json.Marshal(g)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal group")
		}
		rows = append(rows, []any{g.ID, payload, now})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "groups",
		Columns:      []string{"id", "payload", "updated_at"},
		ConflictKeys: []string{"id"},
	}, rows)
	return eris.Wrap(err, "postgres: put groups")
}

// --- Expense documents ---

func (s *PostgresStore) ReadExpenseDocs(ctx context.Context, groupID, path string) ([]model.ExpenseEntry, error) {
	var entriesJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT entries FROM expense_docs WHERE group_id = $1 AND path = $2`,
		groupID, path,
	).Scan(&entriesJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: read expense docs %s/%s", groupID, path)
	}

	var entries []model.ExpenseEntry
	if err := json.Unmarshal(entriesJSON, &entries); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal expense docs")
	}
	return entries, nil
}

func (s *PostgresStore) PutExpenseDocs(ctx context.Context, groupID, path string, entries []model.ExpenseEntry) error {
	entriesJSON, err := json.Marshal(entries)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal expense docs")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO expense_docs (group_id, path, entries) VALUES ($1, $2, $3)
		 ON CONFLICT (group_id, path) DO UPDATE SET entries = EXCLUDED.entries`,
		groupID, path, entriesJSON,
	)
	return eris.Wrapf(err, "postgres: put expense docs %s/%s", groupID, path)
}

// --- Overrides ---

func (s *PostgresStore) GetOverrides(ctx context.Context, groupID string) (map[string]model.OverrideRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT group_id, line_id, price, quantity, reviewed, note, updated_at, updated_by
		 FROM overrides WHERE group_id = $1`,
		groupID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get overrides for %s", groupID)
	}
	defer rows.Close()

	overrides := make(map[string]model.OverrideRecord)
	for rows.Next() {
		rec, err := scanOverridePg(rows)
		if err != nil {
			return nil, err
		}
		overrides[rec.LineID] = *rec
	}
	return overrides, eris.Wrap(rows.Err(), "postgres: get overrides iterate")
}

func (s *PostgresStore) MergeOverride(ctx context.Context, groupID, lineID string, patch model.OverridePatch) (*model.OverrideRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin merge override")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx,
		`SELECT group_id, line_id, price, quantity, reviewed, note, updated_at, updated_by
		 FROM overrides WHERE group_id = $1 AND line_id = $2 FOR UPDATE`,
		groupID, lineID,
	)
	rec, err := scanOverridePg(row)
	if err != nil {
		if !eris.Is(err, errOverrideNotFound) {
			return nil, err
		}
		rec = &model.OverrideRecord{GroupID: groupID, LineID: lineID}
	}

	rec.Apply(patch, time.Now())

	if _, err := tx.Exec(ctx,
		`INSERT INTO overrides (group_id, line_id, price, quantity, reviewed, note, updated_at, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (group_id, line_id) DO UPDATE SET
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity,
			reviewed = EXCLUDED.reviewed,
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`,
		groupID, lineID, rec.PriceOverride, rec.QuantityOverride,
		rec.Reviewed, rec.Note, rec.UpdatedAt, rec.UpdatedBy,
	); err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert override %s", lineID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit merge override")
	}
	return rec, nil
}

func scanOverridePg(row pgx.Row) (*model.OverrideRecord, error) {
	var rec model.OverrideRecord

	err := row.Scan(&rec.GroupID, &rec.LineID, &rec.PriceOverride, &rec.QuantityOverride,
		&rec.Reviewed, &rec.Note, &rec.UpdatedAt, &rec.UpdatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errOverrideNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan override")
	}
	return &rec, nil
}
