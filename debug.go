package kvsearch

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

// Dump writes the keys of a table (or of the whole namespace when table is
// empty) with their values, sorted by key, followed by table stats.
func (idx *Index) Dump(ctx context.Context, w io.Writer, table string) error {
	pattern := idx.prefix + keySep + "*"
	if table != "" {
		pattern = idx.tablePattern(table)
	}
	keys, err := idx.store.Keys(ctx, pattern)
	if err != nil {
		return storeErr("KEYS", table, pattern, err)
	}
	slices.Sort(keys)

	title := idx.prefix
	if table != "" {
		title += keySep + table
	}
	fmt.Fprintln(w, dumpSep1)
	fmt.Fprintf(w, "%s (%d keys)\n", title, len(keys))
	fmt.Fprintln(w, dumpSep2)

	for _, key := range keys {
		value, ok, err := idx.store.Get(ctx, key)
		if err != nil {
			return storeErr("GET", table, key, err)
		} else if !ok {
			continue
		}
		fmt.Fprintf(w, "%s => %s\n", rpad(key, 48, ' '), value)
	}

	if table != "" {
		s, err := idx.TableStats(ctx, table)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, dumpSep2)
		fmt.Fprintf(w, "%s.stats: entries = %d, records = %d, fields = %d", title, s.Entries, s.Records, len(s.Fields))
		if s.HasTotalCount {
			fmt.Fprintf(w, ", total_count = %d", s.TotalCount)
			if s.Stale() {
				fmt.Fprint(w, " (stale)")
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
