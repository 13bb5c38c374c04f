package kvsearch

import (
	"context"
	"sort"
)

type TableStats struct {
	Entries int
	Records int // distinct ids

	// TotalCount is the counter written by the last BulkReplace; HasTotalCount
	// is false if the table was never refreshed.
	TotalCount    int
	HasTotalCount bool

	Fields map[string]int // entries per field
}

// FieldNames returns the names of the fields seen in the table, sorted.
func (ts *TableStats) FieldNames() []string {
	names := make([]string, 0, len(ts.Fields))
	for f := range ts.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// Stale reports whether total_count disagrees with the number of distinct
// records, which is normal after incremental writes.
func (ts *TableStats) Stale() bool {
	return ts.HasTotalCount && ts.TotalCount != ts.Records
}

// TableStats scans the table's keys. It costs a full KEYS scan of the table
// and is meant for diagnostics.
func (idx *Index) TableStats(ctx context.Context, table string) (TableStats, error) {
	keys, err := idx.ListKeys(ctx, table)
	if err != nil {
		return TableStats{}, err
	}

	result := TableStats{Fields: make(map[string]int)}
	ids := make(map[string]struct{})
	for _, key := range keys {
		parts, ok := idx.ParseEntryKey(table, key)
		if !ok {
			continue
		}
		result.Entries++
		result.Fields[parts.Field]++
		ids[parts.ID] = struct{}{}
	}
	result.Records = len(ids)

	result.TotalCount, result.HasTotalCount, err = idx.TotalCount(ctx, table)
	if err != nil {
		return TableStats{}, err
	}
	return result, nil
}
