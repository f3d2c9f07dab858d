package rules

import (
	"math"

	"rulemine/itemset"
)

// Annotate computes lift, phi and gini for a rule against the database and
// adds them to the rule's measure map. Existing entries are kept. Measures
// that are undefined for the rule's contingency table are stored as NaN so
// the remaining measures stay usable.
func Annotate(r *Rule, db *itemset.Database) {
	if r.Measures == nil {
		r.Measures = make(map[string]float64, 3)
	}
	union := unionItems(r.Antecedent.Items, r.Consequent.Items)

	n := float64(db.TransactionCount())
	n11 := float64(db.SupportCount(union))
	nA := float64(r.Antecedent.Count)
	nC := float64(r.Consequent.Count)
	if r.Antecedent.Count == 0 {
		nA = float64(db.SupportCount(r.Antecedent.Items))
	}
	if r.Consequent.Count == 0 {
		nC = float64(db.SupportCount(r.Consequent.Items))
	}

	setMeasure(r, MeasureLift, lift(n, n11, nA, nC))
	setMeasure(r, MeasurePhi, phi(n, n11, nA, nC))
	setMeasure(r, MeasureGini, giniDrop(n, n11, nA, nC))
}

func setMeasure(r *Rule, name string, value float64) {
	if _, ok := r.Measures[name]; !ok {
		r.Measures[name] = value
	}
}

// lift is the ratio of the observed joint support to the support expected
// under independence. Symmetric in antecedent and consequent.
func lift(n, n11, nA, nC float64) float64 {
	if nA == 0 || nC == 0 {
		return math.NaN()
	}
	return (n11 * n) / (nA * nC)
}

// phi is the correlation coefficient of the 2x2 presence/absence table.
// Undefined when any marginal total is zero.
func phi(n, n11, nA, nC float64) float64 {
	n10 := nA - n11
	n01 := nC - n11
	n00 := n - nA - nC + n11
	denom := nA * (n - nA) * nC * (n - nC)
	if denom <= 0 {
		return math.NaN()
	}
	return (n11*n00 - n10*n01) / math.Sqrt(denom)
}

// giniDrop measures how much splitting the transactions on antecedent
// presence purifies the consequent distribution.
//
// Let p be the consequent frequency overall, p1 within transactions holding
// the antecedent and p0 within the rest. The impurity of a branch is
// p(1-p); the drop is the root impurity minus the split's weighted impurity.
// Zero means the antecedent does not shift the consequent at all.
func giniDrop(n, n11, nA, nC float64) float64 {
	if nA == 0 || n == 0 {
		return math.NaN()
	}
	p := nC / n
	rootGI := p * (1.0 - p)

	p1 := n11 / nA
	rightGI := p1 * (1.0 - p1)
	rightFraction := nA / n

	var leftGI float64
	if (n - nA) > 0 {
		p0 := (nC - n11) / (n - nA)
		leftGI = p0 * (1.0 - p0)
	}
	leftFraction := 1.0 - rightFraction

	overallGI := rightFraction*rightGI + leftFraction*leftGI
	return rootGI - overallGI
}

func unionItems(a, b []itemset.Item) []itemset.Item {
	out := make([]itemset.Item, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return itemset.Canonical(out)
}
