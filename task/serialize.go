package task

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"

	log "github.com/sirupsen/logrus"

	"rulemine/itemset"
	"rulemine/rules"
)

// 10 MB per line is plenty for wide transactions.
const maxLineBytes = 10 * 1024 * 1024

// TransactionLine is one input transaction as a JSON line.
type TransactionLine struct {
	Items []string `json:"it"`
}

// ItemsetLine is one frequent itemset as a JSON line.
type ItemsetLine struct {
	Items   []string `json:"it"`
	Count   int      `json:"ct"`
	Support float64  `json:"sp"`
}

// RuleLine is one rule as a JSON line. Measures that are not computable are
// left out of the line instead of breaking the JSON encoding.
type RuleLine struct {
	Antecedent []string `json:"an"`
	Consequent []string `json:"cn"`
	Support    float64  `json:"sp"`
	Confidence float64  `json:"cf"`
	Lift       *float64 `json:"lf,omitempty"`
	Phi        *float64 `json:"ph,omitempty"`
	Gini       *float64 `json:"gn,omitempty"`
}

// ReadTransactionsFile reads JSON-line transactions from a file.
func ReadTransactionsFile(fname string) ([][]string, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, maxLineBytes)
	scanner.Buffer(buf, maxLineBytes)

	trns := make([][]string, 0)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		var tl TransactionLine
		if err := json.Unmarshal([]byte(line), &tl); err != nil {
			log.WithFields(log.Fields{"line": line, "err": err}).Error("Unable to parse transaction line.")
			return nil, err
		}
		trns = append(trns, tl.Items)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return trns, nil
}

// WriteItemsetsFile writes frequent itemsets as JSON lines.
func WriteItemsetsFile(fname string, db *itemset.Database, frequent []itemset.Itemset) error {
	file, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	for _, set := range frequent {
		line := ItemsetLine{Items: db.Labels(set.Items), Count: set.Count, Support: set.Support}
		lineBytes, err := json.Marshal(line)
		if err != nil {
			return err
		}
		if _, err := w.WriteString(fmt.Sprintf("%s\n", string(lineBytes))); err != nil {
			log.WithFields(log.Fields{"line": string(lineBytes), "err": err}).Error("Unable to write to file.")
			return err
		}
	}
	return w.Flush()
}

// WriteRulesFile writes annotated rules as JSON lines.
func WriteRulesFile(fname string, db *itemset.Database, ruleSet []rules.Rule) error {
	file, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	for _, r := range ruleSet {
		line := RuleLine{
			Antecedent: db.Labels(r.Antecedent.Items),
			Consequent: db.Labels(r.Consequent.Items),
			Support:    r.Support,
			Confidence: r.Confidence,
			Lift:       measurePtr(r, rules.MeasureLift),
			Phi:        measurePtr(r, rules.MeasurePhi),
			Gini:       measurePtr(r, rules.MeasureGini),
		}
		lineBytes, err := json.Marshal(line)
		if err != nil {
			return err
		}
		if _, err := w.WriteString(fmt.Sprintf("%s\n", string(lineBytes))); err != nil {
			log.WithFields(log.Fields{"line": string(lineBytes), "err": err}).Error("Unable to write to file.")
			return err
		}
	}
	return w.Flush()
}

func measurePtr(r rules.Rule, name string) *float64 {
	v, ok := r.Measure(name)
	if !ok || math.IsNaN(v) {
		return nil
	}
	return &v
}
