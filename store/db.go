// Package store persists mining runs to SQLite. It is the persistence
// collaborator the core hands finished results to; nothing in the mining
// packages depends on it.
package store

import (
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"rulemine/itemset"
	"rulemine/rules"
)

// Store wraps the SQLite handle for mining results.
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath. Use ":memory:" in tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSchema creates all tables and indexes.
func (s *Store) CreateSchema() error {
	_, err := s.db.Exec(schema)
	if err != nil {
		return errors.Wrap(err, "failed to create schema")
	}
	return nil
}

// RunParams records the parameters a run was mined with.
type RunParams struct {
	MinSupport    float64
	MinConfidence float64
	MaxLen        int
	Transactions  int
	Items         int
}

// SaveRun writes one mining run with its itemsets and rules in a single
// transaction and returns the generated run id. NaN measures are stored as
// NULL and come back as NaN.
func (s *Store) SaveRun(db *itemset.Database, params RunParams,
	frequent []itemset.Itemset, ruleSet []rules.Rule) (string, error) {

	runID := uuid.New().String()
	tx, err := s.db.Begin()
	if err != nil {
		return "", errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, created_at, min_support, min_confidence, max_len, transactions, items)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), params.MinSupport, params.MinConfidence,
		params.MaxLen, params.Transactions, params.Items)
	if err != nil {
		return "", errors.Wrap(err, "failed to insert run")
	}

	for _, set := range frequent {
		_, err = tx.Exec(
			`INSERT INTO itemsets (run_id, items, length, count, support) VALUES (?, ?, ?, ?, ?)`,
			runID, set.String(db), len(set.Items), set.Count, set.Support)
		if err != nil {
			return "", errors.Wrap(err, "failed to insert itemset")
		}
	}

	for _, r := range ruleSet {
		_, err = tx.Exec(
			`INSERT INTO rules (run_id, antecedent, consequent, support, confidence, lift, phi, gini)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, r.Antecedent.String(db), r.Consequent.String(db),
			r.Support, r.Confidence,
			nullableMeasure(r, rules.MeasureLift),
			nullableMeasure(r, rules.MeasurePhi),
			nullableMeasure(r, rules.MeasureGini))
		if err != nil {
			return "", errors.Wrap(err, "failed to insert rule")
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "failed to commit run")
	}
	return runID, nil
}

// StoredItemset is one frequent itemset row.
type StoredItemset struct {
	Items   []string
	Count   int
	Support float64
}

// StoredRule is one rule row with its measures.
type StoredRule struct {
	Antecedent []string
	Consequent []string
	Support    float64
	Confidence float64
	Lift       float64
	Phi        float64
	Gini       float64
}

// ItemsetsForRun loads the itemsets of a run ordered by descending support.
func (s *Store) ItemsetsForRun(runID string) ([]StoredItemset, error) {
	rows, err := s.db.Query(
		`SELECT items, count, support FROM itemsets WHERE run_id = ? ORDER BY support DESC, items ASC`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query itemsets")
	}
	defer rows.Close()

	out := make([]StoredItemset, 0)
	for rows.Next() {
		var items string
		var set StoredItemset
		if err := rows.Scan(&items, &set.Count, &set.Support); err != nil {
			return nil, errors.Wrap(err, "failed to scan itemset")
		}
		set.Items = strings.Split(items, ",")
		out = append(out, set)
	}
	return out, rows.Err()
}

// RulesForRun loads the rules of a run ordered by descending confidence.
func (s *Store) RulesForRun(runID string) ([]StoredRule, error) {
	rows, err := s.db.Query(
		`SELECT antecedent, consequent, support, confidence, lift, phi, gini
		 FROM rules WHERE run_id = ? ORDER BY confidence DESC, antecedent ASC, consequent ASC`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query rules")
	}
	defer rows.Close()

	out := make([]StoredRule, 0)
	for rows.Next() {
		var ante, conseq string
		var lift, phi, gini sql.NullFloat64
		var r StoredRule
		if err := rows.Scan(&ante, &conseq, &r.Support, &r.Confidence, &lift, &phi, &gini); err != nil {
			return nil, errors.Wrap(err, "failed to scan rule")
		}
		r.Antecedent = strings.Split(ante, ",")
		r.Consequent = strings.Split(conseq, ",")
		r.Lift = floatOrNaN(lift)
		r.Phi = floatOrNaN(phi)
		r.Gini = floatOrNaN(gini)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullableMeasure(r rules.Rule, name string) interface{} {
	v, ok := r.Measure(name)
	if !ok || math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
