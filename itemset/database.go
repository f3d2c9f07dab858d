// Package itemset holds the transaction database and the level-wise
// frequent itemset miner.
package itemset

import (
	"errors"
	"sort"

	log "github.com/sirupsen/logrus"
)

var dbLog = log.WithField("prefix", "Itemset#Database")

// ErrEmptyDataset is returned when a database is built from zero
// transactions or from transactions that are all empty.
var ErrEmptyDataset = errors.New("empty dataset")

// ErrConfiguration wraps invalid mining parameters. Checked before any
// computation starts.
var ErrConfiguration = errors.New("invalid configuration")

// Item is a dense integer id assigned to a distinct label. Ids are assigned
// in lexicographic label order so that id order and label order agree, which
// keeps itemset canonicalization a single integer sort.
type Item int

// Database is an immutable indexed view over a set of transactions.
// For every item it keeps the sorted list of transaction indices that
// contain the item. Safe for concurrent readers after Build.
type Database struct {
	labels   []string
	ids      map[string]Item
	postings [][]int
	numTrans int
}

// BuildDatabase interns item labels to dense ids and builds the inverted
// posting lists. Duplicate labels inside one transaction are counted once.
// Empty transactions stay in the total count but never appear in a posting
// list.
func BuildDatabase(transactions [][]string) (*Database, error) {
	if len(transactions) == 0 {
		return nil, ErrEmptyDataset
	}
	labelSet := make(map[string]bool)
	nonEmpty := 0
	for _, trn := range transactions {
		if len(trn) > 0 {
			nonEmpty++
		}
		for _, label := range trn {
			labelSet[label] = true
		}
	}
	if nonEmpty == 0 {
		return nil, ErrEmptyDataset
	}

	// items with equal counts and clashing names are disambiguated by
	// assigning ids in sorted label order
	labels := make([]string, 0, len(labelSet))
	for label := range labelSet {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	db := &Database{
		labels:   labels,
		ids:      make(map[string]Item, len(labels)),
		postings: make([][]int, len(labels)),
		numTrans: len(transactions),
	}
	for idx, label := range labels {
		db.ids[label] = Item(idx)
	}

	seen := make(map[Item]bool)
	for trnIdx, trn := range transactions {
		for k := range seen {
			delete(seen, k)
		}
		for _, label := range trn {
			id := db.ids[label]
			if seen[id] {
				continue
			}
			seen[id] = true
			db.postings[id] = append(db.postings[id], trnIdx)
		}
	}
	dbLog.WithFields(log.Fields{"transactions": db.numTrans, "items": len(db.labels)}).Debug("Built transaction database.")
	return db, nil
}

// TransactionCount is the fixed number of transactions loaded.
func (db *Database) TransactionCount() int {
	return db.numTrans
}

// ItemCount is the number of distinct item labels.
func (db *Database) ItemCount() int {
	return len(db.labels)
}

// Label returns the label an item id was interned from.
func (db *Database) Label(it Item) string {
	return db.labels[it]
}

// ItemID looks up the dense id for a label.
func (db *Database) ItemID(label string) (Item, bool) {
	id, ok := db.ids[label]
	return id, ok
}

// Labels maps a slice of item ids back to their labels.
func (db *Database) Labels(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = db.labels[it]
	}
	return out
}

// SupportCount returns the number of transactions containing every item in
// items, by intersecting posting lists starting from the smallest one.
func (db *Database) SupportCount(items []Item) int {
	if len(items) == 0 {
		return db.numTrans
	}
	lists := make([][]int, len(items))
	for i, it := range items {
		if int(it) < 0 || int(it) >= len(db.postings) {
			return 0
		}
		lists[i] = db.postings[it]
		if len(lists[i]) == 0 {
			return 0
		}
	}
	sort.Slice(lists, func(i, j int) bool {
		return len(lists[i]) < len(lists[j])
	})
	acc := lists[0]
	for _, next := range lists[1:] {
		acc = intersectSorted(acc, next)
		if len(acc) == 0 {
			return 0
		}
	}
	return len(acc)
}

// Support returns SupportCount as a fraction of the transaction count.
func (db *Database) Support(items []Item) float64 {
	return float64(db.SupportCount(items)) / float64(db.numTrans)
}

func intersectSorted(a, b []int) []int {
	out := make([]int, 0, len(a))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
