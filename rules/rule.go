// Package rules derives association rules from frequent itemsets and scores
// them with interest measures.
package rules

import (
	"fmt"

	"rulemine/itemset"
)

// Measure names used as keys of Rule.Measures and as sort keys.
const (
	MeasureSupport    = "support"
	MeasureConfidence = "confidence"
	MeasureLift       = "lift"
	MeasurePhi        = "phi"
	MeasureGini       = "gini"
)

// Rule is a directional implication between two disjoint itemsets whose
// union is frequent. Support and Confidence are fixed by the generator;
// Measures is extended by Annotate and never overwritten.
type Rule struct {
	Antecedent itemset.Itemset    `json:"an"`
	Consequent itemset.Itemset    `json:"cn"`
	Support    float64            `json:"sp"`
	Confidence float64            `json:"cf"`
	Measures   map[string]float64 `json:"ms"`
}

// Key is the canonical form of the rule, usable for ordering and dedup.
func (r Rule) Key() string {
	return r.Antecedent.Key() + "=>" + r.Consequent.Key()
}

// String renders the rule labels for logs and reports.
func (r Rule) String(db *itemset.Database) string {
	return fmt.Sprintf("%s -> %s", r.Antecedent.String(db), r.Consequent.String(db))
}

// Measure returns a named measure value. Support and confidence resolve to
// the dedicated fields so a rule is sortable before annotation.
func (r Rule) Measure(name string) (float64, bool) {
	switch name {
	case MeasureSupport:
		return r.Support, true
	case MeasureConfidence:
		return r.Confidence, true
	}
	v, ok := r.Measures[name]
	return v, ok
}
