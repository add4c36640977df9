package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Partners (dealers)
CREATE TABLE IF NOT EXISTS partners(
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  api_key_hash TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  monthly_uploads INTEGER NOT NULL DEFAULT 0 CHECK (monthly_uploads >= 0),
  monthly_limit INTEGER NOT NULL DEFAULT 100 CHECK (monthly_limit > 0),
  quota_resets_at TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_partners_code_nocase  ON partners(LOWER(code));
CREATE UNIQUE INDEX IF NOT EXISTS idx_partners_email_nocase ON partners(LOWER(email));

-- Vehicle records
CREATE TABLE IF NOT EXISTS vehicles(
  id TEXT PRIMARY KEY,
  partner_id TEXT NOT NULL REFERENCES partners(id) ON DELETE CASCADE,
  vin TEXT NOT NULL,
  make TEXT NOT NULL,
  model TEXT NOT NULL,
  year INTEGER NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  mileage INTEGER NOT NULL DEFAULT 0,
  condition TEXT NOT NULL DEFAULT '',
  fuel_type TEXT NOT NULL DEFAULT '',
  transmission TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  body_style TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  seller_name TEXT NOT NULL DEFAULT '',
  seller_phone TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  primary_image TEXT NOT NULL,
  extra_images_json TEXT NOT NULL DEFAULT '[]',
  slug TEXT NOT NULL,
  status TEXT NOT NULL CHECK (status IN ('pending','approved','on_hold','rejected')),
  errors_json TEXT NOT NULL DEFAULT '[]',
  warnings_json TEXT NOT NULL DEFAULT '[]',
  price_outlier INTEGER NOT NULL DEFAULT 0,
  median_price NUMERIC,
  duplicate INTEGER NOT NULL DEFAULT 0,
  duplicate_of_vin TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_vehicles_partner     ON vehicles(partner_id);
CREATE INDEX IF NOT EXISTS idx_vehicles_partner_vin ON vehicles(partner_id, vin);
CREATE INDEX IF NOT EXISTS idx_vehicles_comparables ON vehicles(make, model, year, status);
CREATE INDEX IF NOT EXISTS idx_vehicles_status      ON vehicles(status);

-- One report per persisted submission; immutable after insert
CREATE TABLE IF NOT EXISTS validation_reports(
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
  partner_id TEXT NOT NULL,
  checked INTEGER NOT NULL DEFAULT 0,
  passed INTEGER NOT NULL DEFAULT 0,
  failed INTEGER NOT NULL DEFAULT 0,
  warned INTEGER NOT NULL DEFAULT 0,
  detail_json TEXT NOT NULL DEFAULT '{}',
  review_required INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_reports_vehicle ON validation_reports(vehicle_id);
CREATE INDEX IF NOT EXISTS idx_reports_partner ON validation_reports(partner_id);
`
	_, err := db.Exec(schema)
	return err
}
