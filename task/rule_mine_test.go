package task

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"rulemine/config"
	"rulemine/itemset"
)

func writeTransactionsFixture(t *testing.T, dir string) string {
	trns := [][]string{
		{"bread", "milk"},
		{"bread", "diaper", "beer", "eggs"},
		{"milk", "diaper", "beer", "cola"},
		{"bread", "milk", "diaper", "beer"},
		{"bread", "milk", "diaper", "cola"},
	}
	fname := filepath.Join(dir, "transactions.txt")
	file, err := os.Create(fname)
	assert.Nil(t, err)
	defer file.Close()
	w := bufio.NewWriter(file)
	for _, trn := range trns {
		lineBytes, err := json.Marshal(TransactionLine{Items: trn})
		assert.Nil(t, err)
		_, err = w.WriteString(string(lineBytes) + "\n")
		assert.Nil(t, err)
	}
	assert.Nil(t, w.Flush())
	return fname
}

func TestRunRuleMineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Configuration{
		MinSupport:    0.6,
		MinConfidence: 0.8,
		MaxLen:        10,
		NumRoutines:   2,
		TopK:          -1,
		SortMeasure:   "confidence",
		InputFile:     writeTransactionsFixture(t, dir),
		ItemsetsFile:  filepath.Join(dir, "itemsets.txt"),
		RulesFile:     filepath.Join(dir, "rules.txt"),
		DBPath:        filepath.Join(dir, "results.db"),
	}

	summary, err := RunRuleMine(context.Background(), cfg)
	assert.Nil(t, err)
	assert.Equal(t, 5, summary.Transactions)
	assert.Equal(t, 6, summary.Items)
	assert.Equal(t, 8, summary.Itemsets)
	assert.Equal(t, 1, summary.Rules)
	assert.NotEmpty(t, summary.RunID)

	sets := readItemsetLines(t, cfg.ItemsetsFile)
	assert.Equal(t, 8, len(sets))
	// sorted by descending support, singles first
	assert.InDelta(t, 0.8, sets[0].Support, 1e-9)

	ruleLines := readRuleLines(t, cfg.RulesFile)
	assert.Equal(t, 1, len(ruleLines))
	assert.Equal(t, []string{"beer"}, ruleLines[0].Antecedent)
	assert.Equal(t, []string{"diaper"}, ruleLines[0].Consequent)
	assert.InDelta(t, 1.0, ruleLines[0].Confidence, 1e-9)
	assert.NotNil(t, ruleLines[0].Lift)
	assert.InDelta(t, 1.25, *ruleLines[0].Lift, 1e-9)
}

func TestRunRuleMineTopK(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Configuration{
		MinSupport:    0.4,
		MinConfidence: 0.5,
		MaxLen:        10,
		NumRoutines:   2,
		TopK:          3,
		SortMeasure:   "lift",
		InputFile:     writeTransactionsFixture(t, dir),
	}
	summary, err := MineTransactions(context.Background(), cfg, mustRead(t, cfg.InputFile))
	assert.Nil(t, err)
	assert.Equal(t, 3, summary.Itemsets)
	assert.LessOrEqual(t, summary.Rules, 3)
}

func TestRunRuleMineMissingInput(t *testing.T) {
	cfg := &config.Configuration{
		MinSupport:    0.5,
		MinConfidence: 0.5,
		MaxLen:        5,
		InputFile:     filepath.Join(t.TempDir(), "missing.txt"),
	}
	_, err := RunRuleMine(context.Background(), cfg)
	assert.NotNil(t, err)
}

func TestMineTransactionsEmptyDataset(t *testing.T) {
	cfg := &config.Configuration{MinSupport: 0.5, MinConfidence: 0.5, MaxLen: 5}
	_, err := MineTransactions(context.Background(), cfg, [][]string{})
	assert.ErrorIs(t, err, itemset.ErrEmptyDataset)
}

func mustRead(t *testing.T, fname string) [][]string {
	trns, err := ReadTransactionsFile(fname)
	assert.Nil(t, err)
	return trns
}

func readItemsetLines(t *testing.T, fname string) []ItemsetLine {
	file, err := os.Open(fname)
	assert.Nil(t, err)
	defer file.Close()
	out := make([]ItemsetLine, 0)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var line ItemsetLine
		assert.Nil(t, json.Unmarshal(scanner.Bytes(), &line))
		out = append(out, line)
	}
	return out
}

func readRuleLines(t *testing.T, fname string) []RuleLine {
	file, err := os.Open(fname)
	assert.Nil(t, err)
	defer file.Close()
	out := make([]RuleLine, 0)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var line RuleLine
		assert.Nil(t, json.Unmarshal(scanner.Bytes(), &line))
		out = append(out, line)
	}
	return out
}
