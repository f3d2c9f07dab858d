package itemset

import (
	"context"
	"fmt"
	"math"
	"sync"

	log "github.com/sirupsen/logrus"
)

var mineLog = log.WithField("prefix", "Itemset#Miner")

// MineOptions carries the search parameters. NumRoutines bounds the
// goroutine fan-out used for support counting inside one level; level
// boundaries are synchronization barriers.
type MineOptions struct {
	MinSupport  float64
	MaxLen      int
	NumRoutines int
}

// Mine runs a level-wise Apriori search and returns every itemset with
// support >= MinSupport and size <= MaxLen, each with its exact support.
// An empty result is valid. The context is only checked at level
// boundaries; an in-flight level always runs to completion.
func Mine(ctx context.Context, db *Database, opts MineOptions) ([]Itemset, error) {
	if opts.MinSupport <= 0.0 || opts.MinSupport > 1.0 {
		return nil, fmt.Errorf("%w: min support %f not in (0,1]", ErrConfiguration, opts.MinSupport)
	}
	if opts.MaxLen < 1 {
		return nil, fmt.Errorf("%w: max length %d below 1", ErrConfiguration, opts.MaxLen)
	}
	numRoutines := opts.NumRoutines
	if numRoutines < 1 {
		numRoutines = 1
	}
	minCount := minSupportCount(opts.MinSupport, db.TransactionCount())

	frequent := make([]Itemset, 0)
	level := mineLevelOne(db, minCount)
	mineLog.WithFields(log.Fields{"level": 1, "frequent": len(level)}).Debug("Mined level.")

	for k := 2; len(level) > 0; k++ {
		frequent = append(frequent, level...)
		if k > opts.MaxLen {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates := genCandidates(level, k)
		if len(candidates) == 0 {
			break
		}
		next := countCandidates(db, candidates, minCount, numRoutines)
		mineLog.WithFields(log.Fields{"level": k, "candidates": len(candidates), "frequent": len(next)}).Debug("Mined level.")
		level = next
	}
	mineLog.WithFields(log.Fields{"frequent": len(frequent), "minSupport": opts.MinSupport}).Info("Finished itemset mining.")
	return frequent, nil
}

// minSupportCount converts a support fraction to the smallest absolute
// count that satisfies it.
func minSupportCount(minSupport float64, numTrans int) int {
	c := int(math.Ceil(minSupport * float64(numTrans)))
	if c < 1 {
		c = 1
	}
	return c
}

func mineLevelOne(db *Database, minCount int) []Itemset {
	level := make([]Itemset, 0)
	for id := 0; id < db.ItemCount(); id++ {
		count := db.SupportCount([]Item{Item(id)})
		if count >= minCount {
			level = append(level, Itemset{
				Items:   []Item{Item(id)},
				Count:   count,
				Support: float64(count) / float64(db.TransactionCount()),
			})
		}
	}
	return level
}

// genCandidates joins frequent (k-1)-itemsets that share a (k-2)-prefix in
// canonical order, then discards any candidate with an infrequent (k-1)-subset
// before support counting.
func genCandidates(prev []Itemset, k int) [][]Item {
	prevKeys := make(map[string]bool, len(prev))
	for _, s := range prev {
		prevKeys[s.Key()] = true
	}
	candidates := make([][]Item, 0)
	for i := 0; i < len(prev); i++ {
		for j := i + 1; j < len(prev); j++ {
			a, b := prev[i].Items, prev[j].Items
			if !samePrefix(a, b, k-2) {
				// level output is in canonical order, so no later j
				// can share this prefix either
				break
			}
			// canonical level order guarantees a[k-2] < b[k-2]
			cand := make([]Item, 0, k)
			cand = append(cand, a...)
			cand = append(cand, b[k-2])
			if hasAllSubsets(cand, prevKeys) {
				candidates = append(candidates, cand)
			}
		}
	}
	return candidates
}

func samePrefix(a, b []Item, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hasAllSubsets is the anti-monotonicity prune: every (k-1)-subset of the
// candidate must itself be frequent.
func hasAllSubsets(cand []Item, prevKeys map[string]bool) bool {
	sub := make([]Item, 0, len(cand)-1)
	for drop := range cand {
		sub = sub[:0]
		for i, it := range cand {
			if i != drop {
				sub = append(sub, it)
			}
		}
		if !prevKeys[KeyOf(sub)] {
			return false
		}
	}
	return true
}

// countCandidates fans support counting out over worker routines. Each
// worker owns a disjoint slice of candidates and writes into its own result
// slot, so the merge after wg.Wait is the only synchronization point.
func countCandidates(db *Database, candidates [][]Item, minCount, numRoutines int) []Itemset {
	var wg sync.WaitGroup
	numCands := len(candidates)
	batchSize := int(math.Ceil(float64(numCands) / float64(numRoutines)))
	results := make([][]Itemset, numRoutines)
	for i := 0; i < numRoutines; i++ {
		low := int(math.Min(float64(batchSize*i), float64(numCands)))
		high := int(math.Min(float64(batchSize*(i+1)), float64(numCands)))
		wg.Add(1)
		go func(slot int, batch [][]Item) {
			defer wg.Done()
			kept := make([]Itemset, 0, len(batch))
			for _, cand := range batch {
				count := db.SupportCount(cand)
				if count >= minCount {
					kept = append(kept, Itemset{
						Items:   cand,
						Count:   count,
						Support: float64(count) / float64(db.TransactionCount()),
					})
				}
			}
			results[slot] = kept
		}(i, candidates[low:high])
	}
	wg.Wait()

	level := make([]Itemset, 0)
	for _, part := range results {
		level = append(level, part...)
	}
	return level
}
