package sqlite

// schema is applied at open. Dates are stored as YYYY-MM-DD text.
const schema = `
CREATE TABLE IF NOT EXISTS cemeteries (
	cem_key     TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	address_one TEXT,
	address_two TEXT,
	phone       TEXT,
	url         TEXT,
	city        TEXT,
	state       TEXT,
	zip         TEXT
);

CREATE TABLE IF NOT EXISTS burials (
	veteran_key  TEXT PRIMARY KEY,
	cemetery_key TEXT NOT NULL REFERENCES cemeteries (cem_key),
	section      TEXT,
	row_num      TEXT,
	site         TEXT
);

CREATE TABLE IF NOT EXISTS kins (
	veteran_key  TEXT PRIMARY KEY,
	relationship TEXT,
	first_name   TEXT,
	middle_name  TEXT,
	last_name    TEXT,
	suffix       TEXT
);

CREATE TABLE IF NOT EXISTS veterans (
	veteran_key TEXT PRIMARY KEY,
	first_name  TEXT NOT NULL,
	middle_name TEXT,
	last_name   TEXT NOT NULL,
	birth_date  TEXT,
	death_date  TEXT,
	burial_key  TEXT REFERENCES burials (veteran_key),
	kin_key     TEXT REFERENCES kins (veteran_key)
);

CREATE TABLE IF NOT EXISTS ranks    (value TEXT PRIMARY KEY);
CREATE TABLE IF NOT EXISTS branches (value TEXT PRIMARY KEY);
CREATE TABLE IF NOT EXISTS wars     (value TEXT PRIMARY KEY);

CREATE TABLE IF NOT EXISTS veteran_ranks (
	veteran_key TEXT NOT NULL REFERENCES veterans (veteran_key),
	value       TEXT NOT NULL REFERENCES ranks (value),
	position    INTEGER NOT NULL,
	PRIMARY KEY (veteran_key, value)
);

CREATE TABLE IF NOT EXISTS veteran_branches (
	veteran_key TEXT NOT NULL REFERENCES veterans (veteran_key),
	value       TEXT NOT NULL REFERENCES branches (value),
	position    INTEGER NOT NULL,
	PRIMARY KEY (veteran_key, value)
);

CREATE TABLE IF NOT EXISTS veteran_wars (
	veteran_key TEXT NOT NULL REFERENCES veterans (veteran_key),
	value       TEXT NOT NULL REFERENCES wars (value),
	position    INTEGER NOT NULL,
	PRIMARY KEY (veteran_key, value)
);
`
