// internal/db/migrations.go
package db

import "fmt"

// The schema sticks to the subset of DDL that SQLite and PostgreSQL share:
// TEXT ids generated by the application, BOOLEAN, TIMESTAMP and
// CURRENT_TIMESTAMP defaults.

const accountsSchema = `
CREATE TABLE IF NOT EXISTS admin_users (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    email       TEXT UNIQUE,
    phone       TEXT UNIQUE,
    password    TEXT NOT NULL,
    user_type   TEXT NOT NULL DEFAULT 'admin' CHECK (user_type IN ('admin', 'driver')),
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_admin_users_user_type ON admin_users(user_type);
`

const catalogSchema = `
CREATE TABLE IF NOT EXISTS categories (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    name_en      TEXT,
    description  TEXT,
    icon         TEXT,
    image        TEXT,
    color        TEXT NOT NULL DEFAULT '#FF6B35',
    sort_order   INTEGER NOT NULL DEFAULT 0,
    is_active    BOOLEAN NOT NULL DEFAULT TRUE,
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS restaurant_sections (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    name_en     TEXT,
    icon        TEXT,
    sort_order  INTEGER NOT NULL DEFAULT 0,
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS restaurants (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    name_en        TEXT,
    description    TEXT,
    image          TEXT,
    logo           TEXT,
    category_id    TEXT REFERENCES categories(id),
    phone          TEXT,
    address        TEXT,
    rating         DOUBLE PRECISION NOT NULL DEFAULT 0,
    delivery_fee   INTEGER NOT NULL DEFAULT 0,
    minimum_order  INTEGER NOT NULL DEFAULT 0,
    delivery_time  TEXT,
    is_active      BOOLEAN NOT NULL DEFAULT TRUE,
    is_open        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_restaurants_category_id ON restaurants(category_id);

CREATE TABLE IF NOT EXISTS menu_items (
    id                TEXT PRIMARY KEY,
    restaurant_id     TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
    section_id        TEXT REFERENCES restaurant_sections(id),
    name              TEXT NOT NULL,
    name_en           TEXT,
    description       TEXT,
    image             TEXT,
    price             INTEGER NOT NULL,
    is_available      BOOLEAN NOT NULL DEFAULT TRUE,
    is_popular        BOOLEAN NOT NULL DEFAULT FALSE,
    preparation_time  INTEGER NOT NULL DEFAULT 0,
    created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_menu_items_restaurant_id ON menu_items(restaurant_id);

CREATE TABLE IF NOT EXISTS special_offers (
    id              TEXT PRIMARY KEY,
    title           TEXT NOT NULL,
    title_en        TEXT,
    description     TEXT,
    image           TEXT,
    type            TEXT NOT NULL DEFAULT 'discount',
    discount_type   TEXT NOT NULL DEFAULT 'percentage' CHECK (discount_type IN ('percentage', 'fixed')),
    discount_value  DOUBLE PRECISION NOT NULL DEFAULT 0,
    minimum_order   INTEGER NOT NULL DEFAULT 0,
    restaurant_id   TEXT REFERENCES restaurants(id) ON DELETE CASCADE,
    start_date      TIMESTAMP NOT NULL,
    end_date        TIMESTAMP NOT NULL,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    priority        INTEGER NOT NULL DEFAULT 0,
    created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Setting values are JSON documents so numbers and strings survive a round trip.
const settingsSchema = `
CREATE TABLE IF NOT EXISTS system_settings (
    id           TEXT PRIMARY KEY,
    key          TEXT NOT NULL UNIQUE,
    value        TEXT NOT NULL,
    description  TEXT,
    category     TEXT NOT NULL DEFAULT 'general',
    is_public    BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Tables lists every application table in dependency order.
var Tables = []string{
	"admin_users",
	"categories",
	"restaurant_sections",
	"restaurants",
	"menu_items",
	"special_offers",
	"system_settings",
}

func (db *DB) RunMigrations() error {
	_, err := db.Exec(accountsSchema)
	if err != nil {
		return fmt.Errorf("failed to run accounts migrations: %w", err)
	}

	_, err = db.Exec(catalogSchema)
	if err != nil {
		return fmt.Errorf("failed to run catalog migrations: %w", err)
	}

	_, err = db.Exec(settingsSchema)
	if err != nil {
		return fmt.Errorf("failed to run settings migrations: %w", err)
	}

	return nil
}
