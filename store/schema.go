package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    min_support REAL NOT NULL,
    min_confidence REAL NOT NULL,
    max_len INTEGER NOT NULL,
    transactions INTEGER NOT NULL,
    items INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS itemsets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    items TEXT NOT NULL,
    length INTEGER NOT NULL,
    count INTEGER NOT NULL,
    support REAL NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS rules (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    antecedent TEXT NOT NULL,
    consequent TEXT NOT NULL,
    support REAL NOT NULL,
    confidence REAL NOT NULL,
    lift REAL,
    phi REAL,
    gini REAL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_itemsets_run ON itemsets(run_id);
CREATE INDEX IF NOT EXISTS idx_rules_run ON rules(run_id);
`
