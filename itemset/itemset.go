package itemset

import (
	"sort"
	"strconv"
	"strings"
)

// Itemset is a canonical sorted set of items together with its exact support
// in the database it was mined from. Immutable once emitted by the miner.
type Itemset struct {
	Items   []Item  `json:"it"`
	Count   int     `json:"ct"`
	Support float64 `json:"sp"`
}

// Key is the canonical string form of the item ids, usable as a map key.
func (s Itemset) Key() string {
	return KeyOf(s.Items)
}

// String renders the itemset labels for logs and reports.
func (s Itemset) String(db *Database) string {
	return strings.Join(db.Labels(s.Items), ",")
}

// KeyOf builds the canonical key for a sorted item slice.
func KeyOf(items []Item) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(it)))
	}
	return b.String()
}

// Canonical puts items in canonical order and drops duplicates in place.
func Canonical(items []Item) []Item {
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	j := 0
	for i, it := range items {
		if i > 0 && it == items[i-1] {
			continue
		}
		items[j] = it
		j++
	}
	return items[:j]
}
