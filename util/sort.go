// Package util holds small helpers shared across the mining pipeline.
package util

import (
	"sort"
	"strings"
)

type kv struct {
	Key   string
	Value int
}

// SortOnCountTable lists the keys of a count table ordered by count, ties
// broken by key so the order is deterministic.
func SortOnCountTable(counts map[string]int, descending bool) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	return SortOnCount(keys, counts, descending)
}

// SortOnCount orders the given keys by their counts in the table.
func SortOnCount(keys []string, counts map[string]int, descending bool) []string {
	ss := make([]kv, 0, len(keys))
	for _, k := range keys {
		ss = append(ss, kv{k, counts[k]})
	}
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return strings.Compare(ss[i].Key, ss[j].Key) < 0
	})
	res := make([]string, 0, len(ss))
	if descending {
		for _, e := range ss {
			res = append(res, e.Key)
		}
	} else {
		for i := len(ss) - 1; i >= 0; i-- {
			res = append(res, ss[i].Key)
		}
	}
	return res
}
