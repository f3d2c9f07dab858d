package main

import (
	"context"
	"flag"

	log "github.com/sirupsen/logrus"

	C "rulemine/config"
	T "rulemine/task"
)

func main() {
	envFlag := flag.String("env", C.DEVELOPMENT, "")
	inputFlag := flag.String("input_file", "", "Path to JSON-line transactions file")
	itemsetsFlag := flag.String("itemsets_file", "", "Optional: path to write frequent itemsets")
	rulesFlag := flag.String("rules_file", "", "Optional: path to write rules")
	dbPathFlag := flag.String("db_path", "", "Optional: SQLite file to persist the run")
	minSupportFlag := flag.Float64("min_support", 0.0, "Minimum itemset support in (0,1]")
	minConfFlag := flag.Float64("min_conf", -1.0, "Minimum rule confidence in [0,1]")
	maxLenFlag := flag.Int("max_len", 0, "Max itemset length")
	numRoutinesFlag := flag.Int("num_routines", 0, "No of routines")
	topKFlag := flag.Int("top_k", -2, "Optional: keep only the top k results")
	sortMeasureFlag := flag.String("sort_measure", "", "Measure to sort rules by")
	flag.Parse()

	cfg, err := C.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration.")
	}
	cfg.Env = *envFlag
	C.InitLogging(cfg.Env)

	// flags override env values when set
	if *inputFlag != "" {
		cfg.InputFile = *inputFlag
	}
	if *itemsetsFlag != "" {
		cfg.ItemsetsFile = *itemsetsFlag
	}
	if *rulesFlag != "" {
		cfg.RulesFile = *rulesFlag
	}
	if *dbPathFlag != "" {
		cfg.DBPath = *dbPathFlag
	}
	if *minSupportFlag > 0.0 {
		cfg.MinSupport = *minSupportFlag
	}
	if *minConfFlag >= 0.0 {
		cfg.MinConfidence = *minConfFlag
	}
	if *maxLenFlag > 0 {
		cfg.MaxLen = *maxLenFlag
	}
	if *numRoutinesFlag > 0 {
		cfg.NumRoutines = *numRoutinesFlag
	}
	if *topKFlag >= -1 {
		cfg.TopK = *topKFlag
	}
	if *sortMeasureFlag != "" {
		cfg.SortMeasure = *sortMeasureFlag
	}

	if cfg.InputFile == "" {
		log.Fatal("No input file given.")
	}

	summary, err := T.RunRuleMine(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("Rule mining failed.")
	}
	log.WithFields(log.Fields{
		"transactions": summary.Transactions,
		"items":        summary.Items,
		"itemsets":     summary.Itemsets,
		"rules":        summary.Rules,
		"runId":        summary.RunID,
	}).Info("Rule mining completed.")
}
