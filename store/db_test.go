package store

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
	frequent, err := itemset.Mine(context.Background(), db, itemset.MineOptions{MinSupport: 0.6, MaxLen: 10})
	assert.Nil(t, err)
	ruleSet, err := rules.Generate(frequent, db, rules.GenerateOptions{MinConfidence: 0.8})
	assert.Nil(t, err)
	for i := range ruleSet {
		rules.Annotate(&ruleSet[i], db)
	}
	return db, frequent, ruleSet
}

func TestSaveAndLoadRun(t *testing.T) {
	db, frequent, ruleSet := minedFixture(t)

	s, err := New(":memory:")
	assert.Nil(t, err)
	defer s.Close()
	assert.Nil(t, s.CreateSchema())

	runID, err := s.SaveRun(db, RunParams{
		MinSupport:    0.6,
		MinConfidence: 0.8,
		MaxLen:        10,
		Transactions:  db.TransactionCount(),
		Items:         db.ItemCount(),
	}, frequent, ruleSet)
	assert.Nil(t, err)
	assert.NotEmpty(t, runID)

	sets, err := s.ItemsetsForRun(runID)
	assert.Nil(t, err)
	assert.Equal(t, len(frequent), len(sets))
	for i := 1; i < len(sets); i++ {
		assert.GreaterOrEqual(t, sets[i-1].Support, sets[i].Support)
	}

	loaded, err := s.RulesForRun(runID)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(loaded))
	r := loaded[0]
	assert.Equal(t, []string{"beer"}, r.Antecedent)
	assert.Equal(t, []string{"diaper"}, r.Consequent)
	assert.InDelta(t, 0.6, r.Support, 1e-9)
	assert.InDelta(t, 1.0, r.Confidence, 1e-9)
	assert.InDelta(t, 1.25, r.Lift, 1e-9)
	assert.InDelta(t, 0.06, r.Gini, 1e-9)
}

func TestSaveRunNaNMeasures(t *testing.T) {
	db, err := itemset.BuildDatabase([][]string{
		{"a", "y"},
		{"b", "y"},
		{"a", "y"},
	})
	assert.Nil(t, err)
	a, _ := db.ItemID("a")
	y, _ := db.ItemID("y")
	r := rules.Rule{
		Antecedent: itemset.Itemset{Items: []itemset.Item{a}, Count: 2, Support: 2.0 / 3.0},
		Consequent: itemset.Itemset{Items: []itemset.Item{y}, Count: 3, Support: 1.0},
		Support:    2.0 / 3.0,
		Confidence: 1.0,
	}
	rules.Annotate(&r, db)
	assert.True(t, math.IsNaN(r.Measures[rules.MeasurePhi]))

	s, err := New(":memory:")
	assert.Nil(t, err)
	defer s.Close()
	assert.Nil(t, s.CreateSchema())

	runID, err := s.SaveRun(db, RunParams{MinSupport: 0.5, MinConfidence: 0.5, MaxLen: 5,
		Transactions: 3, Items: 3}, nil, []rules.Rule{r})
	assert.Nil(t, err)

	loaded, err := s.RulesForRun(runID)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(loaded))
	// NULL in the database comes back as NaN
	assert.True(t, math.IsNaN(loaded[0].Phi))
	assert.False(t, math.IsNaN(loaded[0].Lift))
}

func TestRunsAreIsolated(t *testing.T) {
	db, frequent, ruleSet := minedFixture(t)
	s, err := New(":memory:")
	assert.Nil(t, err)
	defer s.Close()
	assert.Nil(t, s.CreateSchema())

	first, err := s.SaveRun(db, RunParams{MinSupport: 0.6, MinConfidence: 0.8, MaxLen: 10,
		Transactions: 5, Items: 6}, frequent, ruleSet)
	assert.Nil(t, err)
	second, err := s.SaveRun(db, RunParams{MinSupport: 0.6, MinConfidence: 0.8, MaxLen: 10,
		Transactions: 5, Items: 6}, frequent, nil)
	assert.Nil(t, err)
	assert.NotEqual(t, first, second)

	loaded, err := s.RulesForRun(second)
	assert.Nil(t, err)
	assert.Empty(t, loaded)
	sets, err := s.ItemsetsForRun(second)
	assert.Nil(t, err)
	assert.Equal(t, len(frequent), len(sets))
}
