// Package postgres implements core.Repository on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/vetimport/internal/core"
)

var _ core.Repository = (*Store)(nil)

var vocabTables = map[core.Vocabulary]struct{ values, links string }{
	core.VocabRank:   {"ranks", "veteran_ranks"},
	core.VocabBranch: {"branches", "veteran_branches"},
	core.VocabWar:    {"wars", "veteran_wars"},
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Store is a PostgreSQL-backed repository.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects with cfg, verifies the connection and applies the schema.
func Open(ctx context.Context, cfg PoolConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s, err := New(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool and applies the schema.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// RunInTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) RunInTx(ctx context.Context, fn func(tx core.Tx) error) error {
	pgTx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = pgTx.Rollback(ctx) }()

	if err := fn(&transaction{tx: pgTx}); err != nil {
		return err
	}
	if err := pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", describe(err))
	}
	return nil
}

// Counts reports the number of stored records.
func (s *Store) Counts(ctx context.Context) (core.Counts, error) {
	var c core.Counts
	err := s.pool.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM cemeteries),
		(SELECT COUNT(*) FROM burials),
		(SELECT COUNT(*) FROM kins),
		(SELECT COUNT(*) FROM veterans),
		(SELECT COUNT(*) FROM ranks),
		(SELECT COUNT(*) FROM branches),
		(SELECT COUNT(*) FROM wars)`,
	).Scan(&c.Cemeteries, &c.Burials, &c.Kins, &c.Veterans, &c.Ranks, &c.Branches, &c.Wars)
	if err != nil {
		return core.Counts{}, fmt.Errorf("count: %w", err)
	}
	return c, nil
}

// Reset empties every table in one statement.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE veteran_ranks, veteran_branches, veteran_wars,
		veterans, burials, kins, cemeteries, ranks, branches, wars`)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// describe adds the violated constraint to Postgres errors.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName != "" {
		return fmt.Errorf("%w (constraint %s)", err, pgErr.ConstraintName)
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

type transaction struct {
	tx pgx.Tx
}

func (t *transaction) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return tag, describe(err)
	}
	return tag, nil
}

func (t *transaction) FindCemetery(ctx context.Context, key string) (core.Cemetery, error) {
	var addrOne, addrTwo, phone, url, city, state, zip pgtype.Text
	c := core.Cemetery{Key: key}
	err := t.tx.QueryRow(ctx,
		`SELECT name, address_one, address_two, phone, url, city, state, zip
		 FROM cemeteries WHERE cem_key = $1`, key,
	).Scan(&c.Name, &addrOne, &addrTwo, &phone, &url, &city, &state, &zip)
	if err != nil {
		return core.Cemetery{}, notFound(err)
	}
	c.AddressOne = core.FromPgText(addrOne)
	c.AddressTwo = core.FromPgText(addrTwo)
	c.Phone = core.FromPgText(phone)
	c.URL = core.FromPgText(url)
	c.City = core.FromPgText(city)
	c.State = core.FromPgText(state)
	c.Zip = core.FromPgText(zip)
	return c, nil
}

func (t *transaction) CreateCemetery(ctx context.Context, c core.Cemetery) error {
	_, err := t.exec(ctx,
		`INSERT INTO cemeteries (cem_key, name, address_one, address_two, phone, url, city, state, zip)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.Key, c.Name, core.ToPgText(c.AddressOne), core.ToPgText(c.AddressTwo), core.ToPgText(c.Phone),
		core.ToPgText(c.URL), core.ToPgText(c.City), core.ToPgText(c.State), core.ToPgText(c.Zip),
	)
	return err
}

func (t *transaction) UpdateCemetery(ctx context.Context, c core.Cemetery) error {
	_, err := t.exec(ctx,
		`UPDATE cemeteries SET name = $2, address_one = $3, address_two = $4, phone = $5, url = $6,
		 city = $7, state = $8, zip = $9 WHERE cem_key = $1`,
		c.Key, c.Name, core.ToPgText(c.AddressOne), core.ToPgText(c.AddressTwo), core.ToPgText(c.Phone),
		core.ToPgText(c.URL), core.ToPgText(c.City), core.ToPgText(c.State), core.ToPgText(c.Zip),
	)
	return err
}

func (t *transaction) FindBurial(ctx context.Context, veteranKey string) (core.Burial, error) {
	var section, row, site pgtype.Text
	b := core.Burial{VeteranKey: veteranKey}
	err := t.tx.QueryRow(ctx,
		`SELECT cemetery_key, section, row_num, site FROM burials WHERE veteran_key = $1`, veteranKey,
	).Scan(&b.CemeteryKey, &section, &row, &site)
	if err != nil {
		return core.Burial{}, notFound(err)
	}
	b.Section, b.Row, b.Site = core.FromPgText(section), core.FromPgText(row), core.FromPgText(site)
	return b, nil
}

func (t *transaction) CreateBurial(ctx context.Context, b core.Burial) error {
	_, err := t.exec(ctx,
		`INSERT INTO burials (veteran_key, cemetery_key, section, row_num, site) VALUES ($1, $2, $3, $4, $5)`,
		b.VeteranKey, b.CemeteryKey, core.ToPgText(b.Section), core.ToPgText(b.Row), core.ToPgText(b.Site),
	)
	return err
}

func (t *transaction) UpdateBurial(ctx context.Context, b core.Burial) error {
	_, err := t.exec(ctx,
		`UPDATE burials SET cemetery_key = $2, section = $3, row_num = $4, site = $5 WHERE veteran_key = $1`,
		b.VeteranKey, b.CemeteryKey, core.ToPgText(b.Section), core.ToPgText(b.Row), core.ToPgText(b.Site),
	)
	return err
}

func (t *transaction) FindKin(ctx context.Context, veteranKey string) (core.Kin, error) {
	var rel, first, middle, last, suffix pgtype.Text
	err := t.tx.QueryRow(ctx,
		`SELECT relationship, first_name, middle_name, last_name, suffix FROM kins WHERE veteran_key = $1`,
		veteranKey,
	).Scan(&rel, &first, &middle, &last, &suffix)
	if err != nil {
		return core.Kin{}, notFound(err)
	}
	return core.Kin{
		VeteranKey:   veteranKey,
		Relationship: core.FromPgText(rel),
		FirstName:    core.FromPgText(first),
		MiddleName:   core.FromPgText(middle),
		LastName:     core.FromPgText(last),
		Suffix:       core.FromPgText(suffix),
	}, nil
}

func (t *transaction) CreateKin(ctx context.Context, k core.Kin) error {
	_, err := t.exec(ctx,
		`INSERT INTO kins (veteran_key, relationship, first_name, middle_name, last_name, suffix)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		k.VeteranKey, core.ToPgText(k.Relationship), core.ToPgText(k.FirstName),
		core.ToPgText(k.MiddleName), core.ToPgText(k.LastName), core.ToPgText(k.Suffix),
	)
	return err
}

func (t *transaction) UpdateKin(ctx context.Context, k core.Kin) error {
	_, err := t.exec(ctx,
		`UPDATE kins SET relationship = $2, first_name = $3, middle_name = $4, last_name = $5, suffix = $6
		 WHERE veteran_key = $1`,
		k.VeteranKey, core.ToPgText(k.Relationship), core.ToPgText(k.FirstName),
		core.ToPgText(k.MiddleName), core.ToPgText(k.LastName), core.ToPgText(k.Suffix),
	)
	return err
}

func (t *transaction) FindVeteran(ctx context.Context, key string) (core.Veteran, error) {
	var middle, burial, kin pgtype.Text
	v := core.Veteran{Key: key}
	err := t.tx.QueryRow(ctx,
		`SELECT first_name, middle_name, last_name, birth_date, death_date, burial_key, kin_key
		 FROM veterans WHERE veteran_key = $1`, key,
	).Scan(&v.FirstName, &middle, &v.LastName, &v.BirthDate, &v.DeathDate, &burial, &kin)
	if err != nil {
		return core.Veteran{}, notFound(err)
	}
	v.MiddleName, v.BurialKey, v.KinKey = core.FromPgText(middle), core.FromPgText(burial), core.FromPgText(kin)
	return v, nil
}

func (t *transaction) CreateVeteran(ctx context.Context, v core.Veteran) error {
	_, err := t.exec(ctx,
		`INSERT INTO veterans (veteran_key, first_name, middle_name, last_name, birth_date, death_date, burial_key, kin_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.Key, v.FirstName, core.ToPgText(v.MiddleName), v.LastName,
		v.BirthDate, v.DeathDate, core.ToPgText(v.BurialKey), core.ToPgText(v.KinKey),
	)
	return err
}

func (t *transaction) UpdateVeteran(ctx context.Context, v core.Veteran) error {
	_, err := t.exec(ctx,
		`UPDATE veterans SET first_name = $2, middle_name = $3, last_name = $4, birth_date = $5,
		 death_date = $6, burial_key = $7, kin_key = $8 WHERE veteran_key = $1`,
		v.Key, v.FirstName, core.ToPgText(v.MiddleName), v.LastName,
		v.BirthDate, v.DeathDate, core.ToPgText(v.BurialKey), core.ToPgText(v.KinKey),
	)
	return err
}

func tablesFor(vocab core.Vocabulary) (values, links string, err error) {
	t, ok := vocabTables[vocab]
	if !ok {
		return "", "", fmt.Errorf("unknown vocabulary %q", vocab)
	}
	return t.values, t.links, nil
}

func (t *transaction) VocabularyExists(ctx context.Context, vocab core.Vocabulary, value string) (bool, error) {
	table, _, err := tablesFor(vocab)
	if err != nil {
		return false, err
	}
	var exists bool
	err = t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE value = $1)`, value).Scan(&exists)
	return exists, err
}

// CreateVocabulary relies on the primary key to keep one row per value even
// if two writers race.
func (t *transaction) CreateVocabulary(ctx context.Context, vocab core.Vocabulary, value string) (bool, error) {
	table, _, err := tablesFor(vocab)
	if err != nil {
		return false, err
	}
	tag, err := t.exec(ctx, `INSERT INTO `+table+` (value) VALUES ($1) ON CONFLICT DO NOTHING`, value)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (t *transaction) AttachVocabulary(ctx context.Context, vocab core.Vocabulary, veteranKey string, values []string) error {
	_, links, err := tablesFor(vocab)
	if err != nil {
		return err
	}
	var next int
	if err := t.tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM `+links+` WHERE veteran_key = $1`, veteranKey,
	).Scan(&next); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, v := range values {
		batch.Queue(
			`INSERT INTO `+links+` (veteran_key, value, position) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			veteranKey, v, next+i,
		)
	}
	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return describe(err)
	}
	return nil
}

func (t *transaction) ListVocabulary(ctx context.Context, vocab core.Vocabulary, veteranKey string) ([]string, error) {
	_, links, err := tablesFor(vocab)
	if err != nil {
		return nil, err
	}
	rows, err := t.tx.Query(ctx,
		`SELECT value FROM `+links+` WHERE veteran_key = $1 ORDER BY position`, veteranKey)
	if err != nil {
		return nil, err
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}
