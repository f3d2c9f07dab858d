// Package selector orders and trims mining results for presentation. It is
// a pure utility: inputs are copied, never mutated.
package selector

import (
	"math"
	"sort"
	"strings"

	"rulemine/itemset"
	"rulemine/rules"
)

// Itemset measure names accepted by SortItemsets.
const (
	ItemsetSupport = "support"
	ItemsetCount   = "count"
	ItemsetLength  = "length"
)

// SortItemsets returns a new slice ordered by the named measure. The sort
// is stable and ties fall back to the canonical itemset key. Unknown
// measure names rank everything equal, leaving only the canonical order.
func SortItemsets(sets []itemset.Itemset, measure string, descending bool) []itemset.Itemset {
	out := make([]itemset.Itemset, len(sets))
	copy(out, sets)
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := itemsetMeasure(out[i], measure), itemsetMeasure(out[j], measure)
		if vi != vj {
			if descending {
				return vi > vj
			}
			return vi < vj
		}
		return strings.Compare(out[i].Key(), out[j].Key()) < 0
	})
	return out
}

// SortRules returns a new slice ordered by the named measure, stable with
// canonical tie-break. Rules whose measure is missing or NaN rank below
// every comparable value.
func SortRules(ruleSet []rules.Rule, measure string, descending bool) []rules.Rule {
	out := make([]rules.Rule, len(ruleSet))
	copy(out, ruleSet)
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := ruleMeasure(out[i], measure), ruleMeasure(out[j], measure)
		if vi != vj {
			if descending {
				return vi > vj
			}
			return vi < vj
		}
		return strings.Compare(out[i].Key(), out[j].Key()) < 0
	})
	return out
}

// TopItemsets returns the first n elements, or the whole slice when it is
// shorter. Never errors.
func TopItemsets(sets []itemset.Itemset, n int) []itemset.Itemset {
	if n < 0 {
		n = 0
	}
	if n > len(sets) {
		n = len(sets)
	}
	return sets[:n]
}

// TopRules returns the first n rules, or the whole slice when it is shorter.
func TopRules(ruleSet []rules.Rule, n int) []rules.Rule {
	if n < 0 {
		n = 0
	}
	if n > len(ruleSet) {
		n = len(ruleSet)
	}
	return ruleSet[:n]
}

func itemsetMeasure(s itemset.Itemset, measure string) float64 {
	switch measure {
	case ItemsetSupport:
		return s.Support
	case ItemsetCount:
		return float64(s.Count)
	case ItemsetLength:
		return float64(len(s.Items))
	}
	return 0
}

func ruleMeasure(r rules.Rule, measure string) float64 {
	v, ok := r.Measure(measure)
	if !ok || math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}
