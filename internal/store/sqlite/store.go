// Package sqlite implements core.Repository on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/JonMunkholm/vetimport/internal/core"
)

var _ core.Repository = (*Store)(nil)

// vocabTables maps a vocabulary to its value table and link table.
var vocabTables = map[core.Vocabulary]struct{ values, links string }{
	core.VocabRank:   {"ranks", "veteran_ranks"},
	core.VocabBranch: {"branches", "veteran_branches"},
	core.VocabWar:    {"wars", "veteran_wars"},
}

// Store is a SQLite-backed repository.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "vetimport.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RunInTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) RunInTx(ctx context.Context, fn func(tx core.Tx) error) (retErr error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(&transaction{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Counts reports the number of stored records.
func (s *Store) Counts(ctx context.Context) (core.Counts, error) {
	var c core.Counts
	err := s.db.QueryRowContext(ctx, `SELECT
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

// resetTables lists every table with dependents before the tables they reference.
var resetTables = []string{
	"veteran_ranks", "veteran_branches", "veteran_wars",
	"veterans", "burials", "kins", "cemeteries",
	"ranks", "branches", "wars",
}

// Reset deletes every row in a single transaction.
func (s *Store) Reset(ctx context.Context) (retErr error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = sqlTx.Rollback()
		}
	}()

	for _, table := range resetTables {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type transaction struct {
	tx *sql.Tx
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d pgtype.Date) sql.NullString {
	return nullString(core.FormatDate(d))
}

func scanDate(s sql.NullString) pgtype.Date {
	if !s.Valid {
		return pgtype.Date{}
	}
	t, err := time.Parse("2006-01-02", s.String)
	if err != nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

func (t *transaction) FindCemetery(ctx context.Context, key string) (core.Cemetery, error) {
	var (
		c                                           = core.Cemetery{Key: key}
		addrOne, addrTwo, phone, url, city, st, zip sql.NullString
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT name, address_one, address_two, phone, url, city, state, zip
		 FROM cemeteries WHERE cem_key = ?`, key,
	).Scan(&c.Name, &addrOne, &addrTwo, &phone, &url, &city, &st, &zip)
	if err != nil {
		return core.Cemetery{}, notFound(err)
	}
	c.AddressOne, c.AddressTwo, c.Phone, c.URL = addrOne.String, addrTwo.String, phone.String, url.String
	c.City, c.State, c.Zip = city.String, st.String, zip.String
	return c, nil
}

func (t *transaction) CreateCemetery(ctx context.Context, c core.Cemetery) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO cemeteries (cem_key, name, address_one, address_two, phone, url, city, state, zip)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Key, c.Name, nullString(c.AddressOne), nullString(c.AddressTwo), nullString(c.Phone),
		nullString(c.URL), nullString(c.City), nullString(c.State), nullString(c.Zip),
	)
	return err
}

func (t *transaction) UpdateCemetery(ctx context.Context, c core.Cemetery) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE cemeteries SET name = ?, address_one = ?, address_two = ?, phone = ?, url = ?,
		 city = ?, state = ?, zip = ? WHERE cem_key = ?`,
		c.Name, nullString(c.AddressOne), nullString(c.AddressTwo), nullString(c.Phone),
		nullString(c.URL), nullString(c.City), nullString(c.State), nullString(c.Zip), c.Key,
	)
	return err
}

func (t *transaction) FindBurial(ctx context.Context, veteranKey string) (core.Burial, error) {
	var (
		b                  = core.Burial{VeteranKey: veteranKey}
		section, row, site sql.NullString
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT cemetery_key, section, row_num, site FROM burials WHERE veteran_key = ?`, veteranKey,
	).Scan(&b.CemeteryKey, &section, &row, &site)
	if err != nil {
		return core.Burial{}, notFound(err)
	}
	b.Section, b.Row, b.Site = section.String, row.String, site.String
	return b, nil
}

func (t *transaction) CreateBurial(ctx context.Context, b core.Burial) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO burials (veteran_key, cemetery_key, section, row_num, site) VALUES (?, ?, ?, ?, ?)`,
		b.VeteranKey, b.CemeteryKey, nullString(b.Section), nullString(b.Row), nullString(b.Site),
	)
	return err
}

func (t *transaction) UpdateBurial(ctx context.Context, b core.Burial) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE burials SET cemetery_key = ?, section = ?, row_num = ?, site = ? WHERE veteran_key = ?`,
		b.CemeteryKey, nullString(b.Section), nullString(b.Row), nullString(b.Site), b.VeteranKey,
	)
	return err
}

func (t *transaction) FindKin(ctx context.Context, veteranKey string) (core.Kin, error) {
	var (
		k                                = core.Kin{VeteranKey: veteranKey}
		rel, first, middle, last, suffix sql.NullString
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT relationship, first_name, middle_name, last_name, suffix FROM kins WHERE veteran_key = ?`,
		veteranKey,
	).Scan(&rel, &first, &middle, &last, &suffix)
	if err != nil {
		return core.Kin{}, notFound(err)
	}
	k.Relationship, k.FirstName, k.MiddleName, k.LastName, k.Suffix =
		rel.String, first.String, middle.String, last.String, suffix.String
	return k, nil
}

func (t *transaction) CreateKin(ctx context.Context, k core.Kin) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO kins (veteran_key, relationship, first_name, middle_name, last_name, suffix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		k.VeteranKey, nullString(k.Relationship), nullString(k.FirstName), nullString(k.MiddleName),
		nullString(k.LastName), nullString(k.Suffix),
	)
	return err
}

func (t *transaction) UpdateKin(ctx context.Context, k core.Kin) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE kins SET relationship = ?, first_name = ?, middle_name = ?, last_name = ?, suffix = ?
		 WHERE veteran_key = ?`,
		nullString(k.Relationship), nullString(k.FirstName), nullString(k.MiddleName),
		nullString(k.LastName), nullString(k.Suffix), k.VeteranKey,
	)
	return err
}

func (t *transaction) FindVeteran(ctx context.Context, key string) (core.Veteran, error) {
	var (
		v                                 = core.Veteran{Key: key}
		middle, birth, death, burial, kin sql.NullString
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT first_name, middle_name, last_name, birth_date, death_date, burial_key, kin_key
		 FROM veterans WHERE veteran_key = ?`, key,
	).Scan(&v.FirstName, &middle, &v.LastName, &birth, &death, &burial, &kin)
	if err != nil {
		return core.Veteran{}, notFound(err)
	}
	v.MiddleName, v.BurialKey, v.KinKey = middle.String, burial.String, kin.String
	v.BirthDate, v.DeathDate = scanDate(birth), scanDate(death)
	return v, nil
}

func (t *transaction) CreateVeteran(ctx context.Context, v core.Veteran) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO veterans (veteran_key, first_name, middle_name, last_name, birth_date, death_date, burial_key, kin_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Key, v.FirstName, nullString(v.MiddleName), v.LastName,
		nullDate(v.BirthDate), nullDate(v.DeathDate), nullString(v.BurialKey), nullString(v.KinKey),
	)
	return err
}

func (t *transaction) UpdateVeteran(ctx context.Context, v core.Veteran) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE veterans SET first_name = ?, middle_name = ?, last_name = ?, birth_date = ?,
		 death_date = ?, burial_key = ?, kin_key = ? WHERE veteran_key = ?`,
		v.FirstName, nullString(v.MiddleName), v.LastName, nullDate(v.BirthDate),
		nullDate(v.DeathDate), nullString(v.BurialKey), nullString(v.KinKey), v.Key,
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
	var n int
	if err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE value = ?`, value).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *transaction) CreateVocabulary(ctx context.Context, vocab core.Vocabulary, value string) (bool, error) {
	table, _, err := tablesFor(vocab)
	if err != nil {
		return false, err
	}
	res, err := t.tx.ExecContext(ctx, `INSERT INTO `+table+` (value) VALUES (?) ON CONFLICT DO NOTHING`, value)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *transaction) AttachVocabulary(ctx context.Context, vocab core.Vocabulary, veteranKey string, values []string) error {
	_, links, err := tablesFor(vocab)
	if err != nil {
		return err
	}
	var next int
	if err := t.tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM `+links+` WHERE veteran_key = ?`, veteranKey,
	).Scan(&next); err != nil {
		return err
	}
	for _, v := range values {
		res, err := t.tx.ExecContext(ctx,
			`INSERT INTO `+links+` (veteran_key, value, position) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
			veteranKey, v, next,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			next++
		}
	}
	return nil
}

func (t *transaction) ListVocabulary(ctx context.Context, vocab core.Vocabulary, veteranKey string) ([]string, error) {
	_, links, err := tablesFor(vocab)
	if err != nil {
		return nil, err
	}
	rows, err := t.tx.QueryContext(ctx,
		`SELECT value FROM `+links+` WHERE veteran_key = ? ORDER BY position`, veteranKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
