package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    key                  TEXT PRIMARY KEY,
    value                BLOB NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS day_archive (
    date                 TEXT PRIMARY KEY,
    goal                 INTEGER NOT NULL,
    meal_count           INTEGER NOT NULL,
    total_calories       REAL NOT NULL,
    total_protein        REAL NOT NULL,
    total_carbs          REAL NOT NULL,
    total_fats           REAL NOT NULL,
    meals_json           TEXT NOT NULL,
    archived_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_day_archive_archived ON day_archive(archived_at);
`
