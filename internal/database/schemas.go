package database

// schemas maps database names to their embedded DDL. All statements are
// idempotent (IF NOT EXISTS) so Migrate can run on every startup.
var schemas = map[string]string{
	"inventory": inventorySchema,
	"config":    configSchema,
	"history":   historySchema,
}

const inventorySchema = `
CREATE TABLE IF NOT EXISTS pallets (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    source        TEXT NOT NULL DEFAULT '',
    purchase_cost REAL NOT NULL CHECK (purchase_cost >= 0),
    sales_tax     REAL,
    status        TEXT NOT NULL DEFAULT 'unprocessed',
    purchase_date INTEGER NOT NULL,
    created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id             TEXT PRIMARY KEY,
    pallet_id      TEXT REFERENCES pallets(id) ON DELETE SET NULL,
    name           TEXT NOT NULL,
    quantity       INTEGER NOT NULL DEFAULT 1,
    condition      TEXT NOT NULL DEFAULT 'good',
    status         TEXT NOT NULL DEFAULT 'unlisted',
    listing_price  REAL,
    retail_price   REAL,
    purchase_cost  REAL,
    allocated_cost REAL,
    sale_price     REAL,
    sale_date      INTEGER,
    platform       TEXT,
    platform_fee   REAL,
    shipping_cost  REAL,
    created_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_pallet ON items(pallet_id);
CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);

CREATE TABLE IF NOT EXISTS expenses (
    id          TEXT PRIMARY KEY,
    amount      REAL NOT NULL CHECK (amount >= 0),
    category    TEXT NOT NULL DEFAULT 'other',
    description TEXT NOT NULL DEFAULT '',
    date        INTEGER NOT NULL,
    created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS expense_pallets (
    expense_id TEXT NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
    pallet_id  TEXT NOT NULL REFERENCES pallets(id) ON DELETE CASCADE,
    PRIMARY KEY (expense_id, pallet_id)
);

CREATE INDEX IF NOT EXISTS idx_expense_pallets_pallet ON expense_pallets(pallet_id);

CREATE TABLE IF NOT EXISTS mileage (
    id         TEXT PRIMARY KEY,
    date       INTEGER NOT NULL,
    miles      REAL NOT NULL CHECK (miles >= 0),
    purpose    TEXT NOT NULL DEFAULT '',
    pallet_id  TEXT REFERENCES pallets(id) ON DELETE SET NULL,
    created_at INTEGER NOT NULL
);
`

const configSchema = `
CREATE TABLE IF NOT EXISTS settings (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    description TEXT,
    updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS subscription (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    tier       TEXT NOT NULL DEFAULT 'free',
    expires_at INTEGER,
    updated_at INTEGER NOT NULL
);
`

const historySchema = `
CREATE TABLE IF NOT EXISTS inventory_snapshots (
    id              TEXT PRIMARY KEY,
    snapshot_date   TEXT NOT NULL UNIQUE,
    total_value     REAL NOT NULL,
    realized_profit REAL NOT NULL,
    item_count      INTEGER NOT NULL,
    pallet_count    INTEGER NOT NULL,
    detail          BLOB,
    created_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_date ON inventory_snapshots(snapshot_date);

CREATE TABLE IF NOT EXISTS export_log (
    id         TEXT PRIMARY KEY,
    kind       TEXT NOT NULL,
    rows       INTEGER NOT NULL,
    destination TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`
