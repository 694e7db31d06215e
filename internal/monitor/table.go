package monitor

import (
	"strings"

	"github.com/w31r4/gomon/internal/process"
)

// Table is the stored process list plus the filter and sort key applied to it.
type Table struct {
	records []process.Record
	filter  string
	sortKey SortKey
}

// NewTable returns a table holding records sorted by NameAsc.
func NewTable(records []process.Record) Table {
	t := Table{sortKey: NameAsc}
	t.Replace(records)
	return t
}

// Replace swaps in a fresh snapshot and re-sorts it.
// The table keeps its own copy; the caller's slice is not retained.
func (t *Table) Replace(records []process.Record) {
	t.records = append(make([]process.Record, 0, len(records)), records...)
	sortRecords(t.records, t.sortKey)
}

// SortBy applies the toggle rule for d and re-sorts the stored records.
func (t *Table) SortBy(d Dimension) SortKey {
	t.sortKey = t.sortKey.Toggle(d)
	sortRecords(t.records, t.sortKey)
	return t.sortKey
}

func (t *Table) SortKey() SortKey { return t.sortKey }

// SetFilter sets the case-insensitive name filter. Empty means no filter.
func (t *Table) SetFilter(s string) { t.filter = s }

func (t *Table) Filter() string { return t.filter }

// Records returns the stored records in sorted order.
func (t *Table) Records() []process.Record {
	return append([]process.Record(nil), t.records...)
}

// Len is the number of stored records, regardless of filter.
func (t *Table) Len() int { return len(t.records) }

// Filtered returns the records whose lower-cased name contains the
// lower-cased filter, in stored order. Stored order is never changed.
func (t *Table) Filtered() []process.Record {
	if t.filter == "" {
		return t.Records()
	}
	needle := strings.ToLower(t.filter)
	out := make([]process.Record, 0, len(t.records))
	for _, r := range t.records {
		if strings.Contains(strings.ToLower(r.DisplayName()), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Find returns a copy of the record with pid.
func (t *Table) Find(pid int32) (process.Record, bool) {
	for _, r := range t.records {
		if r.Pid == pid {
			return r, true
		}
	}
	return process.Record{}, false
}

// Ancestry returns the chain of records from the oldest known ancestor down
// to pid, following parent pids through the current table. At most limit
// ancestors are included.
func (t *Table) Ancestry(pid int32, limit int) []process.Record {
	byPid := make(map[int32]process.Record, len(t.records))
	for _, r := range t.records {
		byPid[r.Pid] = r
	}
	cur, ok := byPid[pid]
	if !ok {
		return nil
	}
	chain := []process.Record{cur}
	seen := map[int32]bool{pid: true}
	for len(chain) <= limit {
		ppid, has := cur.ParentPID()
		if !has || seen[ppid] {
			break
		}
		parent, ok := byPid[ppid]
		if !ok {
			break
		}
		seen[ppid] = true
		chain = append(chain, parent)
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
