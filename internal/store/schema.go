package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workbook_tracker (
    path                 TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fragrances (
    workbook             TEXT NOT NULL REFERENCES workbook_tracker(path) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    name                 TEXT NOT NULL,
    house                TEXT NOT NULL,
    perfumer             TEXT,
    price                TEXT,
    volume_ml            REAL,
    notes                TEXT,
    score                INTEGER,
    performance          INTEGER,
    scent                REAL,
    PRIMARY KEY (workbook, position)
);

CREATE TABLE IF NOT EXISTS wear_records (
    workbook             TEXT NOT NULL REFERENCES workbook_tracker(path) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    item                 TEXT NOT NULL,
    period               TEXT NOT NULL,
    uses                 REAL NOT NULL,
    container_ml         REAL NOT NULL,
    backups              INTEGER NOT NULL DEFAULT 0,
    row_num              INTEGER,
    PRIMARY KEY (workbook, position)
);

CREATE TABLE IF NOT EXISTS period_sheets (
    workbook             TEXT NOT NULL REFERENCES workbook_tracker(path) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    sheet                TEXT NOT NULL,
    PRIMARY KEY (workbook, position)
);

CREATE TABLE IF NOT EXISTS load_issues (
    workbook             TEXT NOT NULL REFERENCES workbook_tracker(path) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    message              TEXT NOT NULL,
    PRIMARY KEY (workbook, position)
);

CREATE INDEX IF NOT EXISTS idx_wear_records_item ON wear_records(workbook, item);
CREATE INDEX IF NOT EXISTS idx_fragrances_house ON fragrances(workbook, house);
`
