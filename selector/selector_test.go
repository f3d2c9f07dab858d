package selector

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"rulemine/itemset"
	"rulemine/rules"
)

func minedFixture(t *testing.T) (*itemset.Database, []itemset.Itemset, []rules.Rule) {
	db, err := itemset.BuildDatabase([][]string{
		{"bread", "milk"},
		{"bread", "diaper", "beer", "eggs"},
		{"milk", "diaper", "beer", "cola"},
		{"bread", "milk", "diaper", "beer"},
		{"bread", "milk", "diaper", "cola"},
	})
	assert.Nil(t, err)
	frequent, err := itemset.Mine(context.Background(), db, itemset.MineOptions{MinSupport: 0.4, MaxLen: 10})
	assert.Nil(t, err)
	ruleSet, err := rules.Generate(frequent, db, rules.GenerateOptions{MinConfidence: 0.5})
	assert.Nil(t, err)
	for i := range ruleSet {
		rules.Annotate(&ruleSet[i], db)
	}
	return db, frequent, ruleSet
}

func TestSortItemsetsBySupport(t *testing.T) {
	_, frequent, _ := minedFixture(t)
	sorted := SortItemsets(frequent, ItemsetSupport, true)
	for i := 1; i < len(sorted); i++ {
		assert.GreaterOrEqual(t, sorted[i-1].Support, sorted[i].Support)
		if sorted[i-1].Support == sorted[i].Support {
			assert.True(t, sorted[i-1].Key() < sorted[i].Key())
		}
	}
	assert.Equal(t, len(frequent), len(sorted))
}

func TestSortItemsetsDoesNotMutate(t *testing.T) {
	_, frequent, _ := minedFixture(t)
	before := make([]itemset.Itemset, len(frequent))
	copy(before, frequent)
	SortItemsets(frequent, ItemsetSupport, true)
	SortItemsets(frequent, ItemsetLength, false)
	assert.Equal(t, before, frequent)
}

func TestSortRulesByConfidence(t *testing.T) {
	_, _, ruleSet := minedFixture(t)
	sorted := SortRules(ruleSet, rules.MeasureConfidence, true)
	for i := 1; i < len(sorted); i++ {
		assert.GreaterOrEqual(t, sorted[i-1].Confidence, sorted[i].Confidence)
	}
}

func TestSortRulesNaNLast(t *testing.T) {
	ruleSet := []rules.Rule{
		{Confidence: 0.2, Measures: map[string]float64{rules.MeasurePhi: math.NaN()}},
		{Confidence: 0.9, Measures: map[string]float64{rules.MeasurePhi: 0.5}},
		{Confidence: 0.4, Measures: map[string]float64{rules.MeasurePhi: -0.1}},
	}
	sorted := SortRules(ruleSet, rules.MeasurePhi, true)
	assert.InDelta(t, 0.5, sorted[0].Measures[rules.MeasurePhi], 1e-9)
	assert.InDelta(t, -0.1, sorted[1].Measures[rules.MeasurePhi], 1e-9)
	assert.True(t, math.IsNaN(sorted[2].Measures[rules.MeasurePhi]))
}

func TestSortStability(t *testing.T) {
	sets := []itemset.Itemset{
		{Items: []itemset.Item{2}, Count: 3, Support: 0.5},
		{Items: []itemset.Item{0}, Count: 3, Support: 0.5},
		{Items: []itemset.Item{1}, Count: 3, Support: 0.5},
	}
	sorted := SortItemsets(sets, ItemsetSupport, true)
	assert.Equal(t, "0", sorted[0].Key())
	assert.Equal(t, "1", sorted[1].Key())
	assert.Equal(t, "2", sorted[2].Key())
}

func TestTop(t *testing.T) {
	_, frequent, ruleSet := minedFixture(t)
	assert.Equal(t, 3, len(TopItemsets(frequent, 3)))
	assert.Equal(t, len(frequent), len(TopItemsets(frequent, len(frequent)+10)))
	assert.Empty(t, TopItemsets(frequent, 0))
	assert.Empty(t, TopItemsets(frequent, -1))
	assert.Equal(t, len(ruleSet), len(TopRules(ruleSet, len(ruleSet)+1)))
	if len(ruleSet) > 1 {
		assert.Equal(t, 1, len(TopRules(ruleSet, 1)))
	}
}
