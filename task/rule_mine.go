// Package task orchestrates the full mining pipeline: transactions in,
// sorted and annotated itemsets and rules out.
package task

import (
	"context"
	"math"
	"sync"

	log "github.com/sirupsen/logrus"

	"rulemine/config"
	"rulemine/itemset"
	"rulemine/rules"
	"rulemine/selector"
	"rulemine/store"
	"rulemine/util"
)

var mineLog = log.WithField("prefix", "Task#RuleMine")

const topItemsLogged = 5

// Summary reports what one pipeline run produced.
type Summary struct {
	Transactions int
	Items        int
	Itemsets     int
	Rules        int
	RunID        string
}

// RunRuleMine executes the whole pipeline for the given configuration:
// read transactions, build the database, mine itemsets, derive and annotate
// rules, sort, and hand results to the configured sinks.
func RunRuleMine(ctx context.Context, cfg *config.Configuration) (Summary, error) {
	trns, err := ReadTransactionsFile(cfg.InputFile)
	if err != nil {
		return Summary{}, err
	}
	return MineTransactions(ctx, cfg, trns)
}

// MineTransactions is RunRuleMine minus the input file, for callers that
// already hold transactions in memory.
func MineTransactions(ctx context.Context, cfg *config.Configuration, trns [][]string) (Summary, error) {
	db, err := itemset.BuildDatabase(trns)
	if err != nil {
		return Summary{}, err
	}
	logTopItems(db)

	frequent, err := itemset.Mine(ctx, db, itemset.MineOptions{
		MinSupport:  cfg.MinSupport,
		MaxLen:      cfg.MaxLen,
		NumRoutines: cfg.NumRoutines,
	})
	if err != nil {
		return Summary{}, err
	}

	ruleSet, err := rules.Generate(frequent, db, rules.GenerateOptions{
		MinConfidence: cfg.MinConfidence,
		MaxLen:        cfg.MaxLen,
		NumRoutines:   cfg.NumRoutines,
	})
	if err != nil {
		return Summary{}, err
	}
	annotateRules(ruleSet, db, cfg.NumRoutines)

	frequent = selector.SortItemsets(frequent, selector.ItemsetSupport, true)
	ruleSet = selector.SortRules(ruleSet, cfg.SortMeasure, true)
	if cfg.TopK >= 0 {
		frequent = selector.TopItemsets(frequent, cfg.TopK)
		ruleSet = selector.TopRules(ruleSet, cfg.TopK)
	}

	summary := Summary{
		Transactions: db.TransactionCount(),
		Items:        db.ItemCount(),
		Itemsets:     len(frequent),
		Rules:        len(ruleSet),
	}

	if cfg.ItemsetsFile != "" {
		if err := WriteItemsetsFile(cfg.ItemsetsFile, db, frequent); err != nil {
			return summary, err
		}
		mineLog.Infof("Written %d itemsets to file %s", len(frequent), cfg.ItemsetsFile)
	}
	if cfg.RulesFile != "" {
		if err := WriteRulesFile(cfg.RulesFile, db, ruleSet); err != nil {
			return summary, err
		}
		mineLog.Infof("Written %d rules to file %s", len(ruleSet), cfg.RulesFile)
	}
	if cfg.DBPath != "" {
		runID, err := persistRun(cfg, db, frequent, ruleSet)
		if err != nil {
			return summary, err
		}
		summary.RunID = runID
	}

	mineLog.WithFields(log.Fields{"transactions": summary.Transactions, "items": summary.Items,
		"itemsets": summary.Itemsets, "rules": summary.Rules}).Info("Finished rule mining run.")
	return summary, nil
}

// annotateRules fans measure computation out over worker routines. Each
// worker owns a disjoint slice, so the WaitGroup is the only barrier.
func annotateRules(ruleSet []rules.Rule, db *itemset.Database, numRoutines int) {
	if numRoutines < 1 {
		numRoutines = 1
	}
	var wg sync.WaitGroup
	numRules := len(ruleSet)
	batchSize := int(math.Ceil(float64(numRules) / float64(numRoutines)))
	for i := 0; i < numRoutines; i++ {
		low := int(math.Min(float64(batchSize*i), float64(numRules)))
		high := int(math.Min(float64(batchSize*(i+1)), float64(numRules)))
		wg.Add(1)
		go func(batch []rules.Rule) {
			defer wg.Done()
			for j := range batch {
				rules.Annotate(&batch[j], db)
			}
		}(ruleSet[low:high])
	}
	wg.Wait()
}

func persistRun(cfg *config.Configuration, db *itemset.Database,
	frequent []itemset.Itemset, ruleSet []rules.Rule) (string, error) {

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return "", err
	}
	defer st.Close()
	if err := st.CreateSchema(); err != nil {
		return "", err
	}
	runID, err := st.SaveRun(db, store.RunParams{
		MinSupport:    cfg.MinSupport,
		MinConfidence: cfg.MinConfidence,
		MaxLen:        cfg.MaxLen,
		Transactions:  db.TransactionCount(),
		Items:         db.ItemCount(),
	}, frequent, ruleSet)
	if err != nil {
		return "", err
	}
	mineLog.WithFields(log.Fields{"runId": runID, "dbPath": cfg.DBPath}).Info("Persisted mining run.")
	return runID, nil
}

func logTopItems(db *itemset.Database) {
	counts := make(map[string]int, db.ItemCount())
	for id := 0; id < db.ItemCount(); id++ {
		counts[db.Label(itemset.Item(id))] = db.SupportCount([]itemset.Item{itemset.Item(id)})
	}
	top := util.SortOnCountTable(counts, true)
	if len(top) > topItemsLogged {
		top = top[:topItemsLogged]
	}
	mineLog.WithFields(log.Fields{"items": db.ItemCount(), "topItems": top}).Debug("Built transaction database.")
}
