package rules

import (
	"fmt"
	"math"
	"sync"

	log "github.com/sirupsen/logrus"

	"rulemine/itemset"
)

var genLog = log.WithField("prefix", "Rules#Generator")

// GenerateOptions carries the rule search parameters. MaxLen caps both
// antecedent and consequent sizes; NumRoutines bounds the fan-out across
// frequent itemsets.
type GenerateOptions struct {
	MinConfidence float64
	MaxLen        int
	NumRoutines   int
}

// Generate derives every rule A -> C with A and C disjoint, A union C a
// frequent itemset of size >= 2, and confidence >= MinConfidence.
// Consequents grow level-wise from singletons; an antecedent that already
// failed confidence is never shrunk further, since a subset antecedent has
// support at least as large and so confidence at least as small.
func Generate(frequent []itemset.Itemset, db *itemset.Database, opts GenerateOptions) ([]Rule, error) {
	if opts.MinConfidence < 0.0 || opts.MinConfidence > 1.0 {
		return nil, fmt.Errorf("%w: min confidence %f not in [0,1]", itemset.ErrConfiguration, opts.MinConfidence)
	}
	maxLen := opts.MaxLen
	if maxLen < 1 {
		maxLen = math.MaxInt32
	}
	numRoutines := opts.NumRoutines
	if numRoutines < 1 {
		numRoutines = 1
	}

	counts := make(map[string]int, len(frequent))
	for _, s := range frequent {
		counts[s.Key()] = s.Count
	}

	sources := make([]itemset.Itemset, 0, len(frequent))
	for _, s := range frequent {
		if len(s.Items) >= 2 {
			sources = append(sources, s)
		}
	}

	// The subset lattice of one itemset is walked sequentially; distinct
	// itemsets are independent and fan out over workers.
	var wg sync.WaitGroup
	numSources := len(sources)
	batchSize := int(math.Ceil(float64(numSources) / float64(numRoutines)))
	results := make([][]Rule, numRoutines)
	for i := 0; i < numRoutines; i++ {
		low := int(math.Min(float64(batchSize*i), float64(numSources)))
		high := int(math.Min(float64(batchSize*(i+1)), float64(numSources)))
		wg.Add(1)
		go func(slot int, batch []itemset.Itemset) {
			defer wg.Done()
			out := make([]Rule, 0)
			for _, src := range batch {
				out = append(out, rulesFromItemset(src, counts, db, opts.MinConfidence, maxLen)...)
			}
			results[slot] = out
		}(i, sources[low:high])
	}
	wg.Wait()

	ruleSet := make([]Rule, 0)
	for _, part := range results {
		ruleSet = append(ruleSet, part...)
	}
	genLog.WithFields(log.Fields{"itemsets": len(sources), "rules": len(ruleSet), "minConfidence": opts.MinConfidence}).Info("Finished rule generation.")
	return ruleSet, nil
}

// rulesFromItemset walks the consequent lattice of a single frequent
// itemset top-down by consequent size, starting from singleton consequents.
func rulesFromItemset(src itemset.Itemset, counts map[string]int, db *itemset.Database,
	minConfidence float64, maxLen int) []Rule {

	out := make([]Rule, 0)
	srcCount := src.Count
	total := float64(db.TransactionCount())

	level := make([][]itemset.Item, 0, len(src.Items))
	for _, it := range src.Items {
		level = append(level, []itemset.Item{it})
	}

	for m := 1; m < len(src.Items) && m <= maxLen && len(level) > 0; m++ {
		passing := make([][]itemset.Item, 0, len(level))
		for _, conseq := range level {
			ante := subtractItems(src.Items, conseq)
			anteCount, ok := counts[itemset.KeyOf(ante)]
			if !ok {
				anteCount = db.SupportCount(ante)
			}
			confidence := float64(srcCount) / float64(anteCount)
			if confidence < minConfidence {
				continue
			}
			passing = append(passing, conseq)
			if len(ante) > maxLen {
				continue
			}
			conseqCount, ok := counts[itemset.KeyOf(conseq)]
			if !ok {
				conseqCount = db.SupportCount(conseq)
			}
			out = append(out, Rule{
				Antecedent: itemset.Itemset{Items: ante, Count: anteCount, Support: float64(anteCount) / total},
				Consequent: itemset.Itemset{Items: conseq, Count: conseqCount, Support: float64(conseqCount) / total},
				Support:    src.Support,
				Confidence: confidence,
			})
		}
		if m+1 < len(src.Items) {
			level = joinConsequents(passing, m+1)
		} else {
			level = nil
		}
	}
	return out
}

// subtractItems returns from minus sub, both in canonical order.
func subtractItems(from, sub []itemset.Item) []itemset.Item {
	out := make([]itemset.Item, 0, len(from)-len(sub))
	j := 0
	for _, it := range from {
		if j < len(sub) && sub[j] == it {
			j++
			continue
		}
		out = append(out, it)
	}
	return out
}

// joinConsequents builds size m candidates from passing (m-1)-consequents,
// the same prefix join and subset prune the itemset miner uses.
func joinConsequents(passing [][]itemset.Item, m int) [][]itemset.Item {
	if len(passing) == 0 {
		return nil
	}
	keys := make(map[string]bool, len(passing))
	for _, c := range passing {
		keys[itemset.KeyOf(c)] = true
	}
	next := make([][]itemset.Item, 0)
	for i := 0; i < len(passing); i++ {
		for j := i + 1; j < len(passing); j++ {
			a, b := passing[i], passing[j]
			if !equalPrefix(a, b, m-2) {
				break
			}
			cand := make([]itemset.Item, 0, m)
			cand = append(cand, a...)
			cand = append(cand, b[m-2])
			if allSubsetsPass(cand, keys) {
				next = append(next, cand)
			}
		}
	}
	return next
}

func equalPrefix(a, b []itemset.Item, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func allSubsetsPass(cand []itemset.Item, keys map[string]bool) bool {
	sub := make([]itemset.Item, 0, len(cand)-1)
	for drop := range cand {
		sub = sub[:0]
		for i, it := range cand {
			if i != drop {
				sub = append(sub, it)
			}
		}
		if !keys[itemset.KeyOf(sub)] {
			return false
		}
	}
	return true
}
