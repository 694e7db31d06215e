package monitor

import (
	"sort"

	"github.com/w31r4/gomon/internal/process"
)

// Dimension is a column the table can be sorted by.
type Dimension int

const (
	ByName Dimension = iota
	ByCPU
	ByMemory
)

func (d Dimension) String() string {
	switch d {
	case ByCPU:
		return "CPU"
	case ByMemory:
		return "Memory"
	default:
		return "Name"
	}
}

// SortKey is a dimension plus direction.
type SortKey int

const (
	NameAsc SortKey = iota
	NameDesc
	CPUAsc
	CPUDesc
	MemAsc
	MemDesc
)

func (k SortKey) Dimension() Dimension {
	switch k {
	case CPUAsc, CPUDesc:
		return ByCPU
	case MemAsc, MemDesc:
		return ByMemory
	default:
		return ByName
	}
}

// Descending reports whether k sorts high-to-low.
func (k SortKey) Descending() bool {
	return k == NameDesc || k == CPUDesc || k == MemDesc
}

func (k SortKey) String() string {
	dir := "Ascending"
	if k.Descending() {
		dir = "Descending"
	}
	return k.Dimension().String() + " " + dir
}

// Toggle returns the key selected when d is requested while k is active:
// the ascending key of the same dimension flips to descending, anything
// else starts ascending.
func (k SortKey) Toggle(d Dimension) SortKey {
	asc := ascending(d)
	if k == asc {
		return asc + 1
	}
	return asc
}

func ascending(d Dimension) SortKey {
	switch d {
	case ByCPU:
		return CPUAsc
	case ByMemory:
		return MemAsc
	default:
		return NameAsc
	}
}

// sortRecords orders records in place by k. Names compare as raw bytes,
// CPU readings compare with NaN equal to everything, memory as integers.
func sortRecords(records []process.Record, k SortKey) {
	var less func(a, b *process.Record) bool
	switch k {
	case NameAsc:
		less = func(a, b *process.Record) bool { return a.Name < b.Name }
	case NameDesc:
		less = func(a, b *process.Record) bool { return a.Name > b.Name }
	case CPUAsc:
		less = func(a, b *process.Record) bool { return a.CPU < b.CPU }
	case CPUDesc:
		less = func(a, b *process.Record) bool { return a.CPU > b.CPU }
	case MemAsc:
		less = func(a, b *process.Record) bool { return a.Memory < b.Memory }
	case MemDesc:
		less = func(a, b *process.Record) bool { return a.Memory > b.Memory }
	default:
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		return less(&records[i], &records[j])
	})
}
