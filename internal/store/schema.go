package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
    id                   INTEGER PRIMARY KEY,
    seq                  INTEGER NOT NULL,
    date                 TEXT NOT NULL,
    title                TEXT NOT NULL,
    amount               TEXT NOT NULL,
    type                 TEXT NOT NULL,
    category             TEXT NOT NULL,
    is_recurring         INTEGER NOT NULL DEFAULT 0,
    recurrence_type      TEXT
);

CREATE TABLE IF NOT EXISTS budgets (
    month                TEXT PRIMARY KEY,
    seq                  INTEGER NOT NULL,
    limit_amount         TEXT NOT NULL,
    spent_amount         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schedule (
    seq                  INTEGER PRIMARY KEY,
    transaction_id       INTEGER NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    due                  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_seq ON transactions(seq);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`
