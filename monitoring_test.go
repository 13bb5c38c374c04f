package kvsearch

import (
	"strings"
	"testing"
)

func TestTableStats(t *testing.T) {
	idx := setup(t)
	_, err := idx.BulkReplace(ctx, "users", []Record{
		{"id": "1", "name": "Alice", "tags": []string{"x", "y"}},
		{"id": "2", "name": "Bob"},
	})
	ensure(t, err)

	s, err := idx.TableStats(ctx, "users")
	ensure(t, err)
	if s.Entries != 6 || s.Records != 2 || s.TotalCount != 2 || !s.HasTotalCount || s.Stale() {
		t.Fatalf("TableStats = %+v", s)
	}
	deepEqual(t, s.FieldNames(), []string{"id", "name", "tags"})
	deepEqual(t, s.Fields, map[string]int{"id": 2, "name": 2, "tags": 2})

	ensure(t, idx.UpsertRecord(ctx, "users", "3", Record{"name": "Carol"}))
	s, err = idx.TableStats(ctx, "users")
	ensure(t, err)
	if s.Records != 3 || s.TotalCount != 2 || !s.Stale() {
		t.Fatalf("TableStats after upsert = %+v, wanted 3 records, stale total_count 2", s)
	}
}

func TestTableStatsNeverRefreshed(t *testing.T) {
	idx := setup(t)
	ensure(t, idx.UpsertRecord(ctx, "users", "1", Record{"name": "a"}))
	s, err := idx.TableStats(ctx, "users")
	ensure(t, err)
	if s.HasTotalCount || s.Stale() || s.Records != 1 {
		t.Fatalf("TableStats = %+v", s)
	}
}

func TestDump(t *testing.T) {
	idx := setup(t)
	_, err := idx.BulkReplace(ctx, "users", []Record{{"id": "1", "name": "Alice"}})
	ensure(t, err)
	ensure(t, idx.SetAuxiliary(ctx, "cfg", true))

	var buf strings.Builder
	ensure(t, idx.Dump(ctx, &buf, "users"))
	out := buf.String()
	for _, want := range []string{
		"search_cache:users (3 keys)",
		"search_cache:users:name:alice:1",
		"=> 1\n",
		"entries = 2, records = 1, fields = 2, total_count = 1\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "cfg") {
		t.Errorf("table dump includes auxiliary keys:\n%s", out)
	}

	buf.Reset()
	ensure(t, idx.Dump(ctx, &buf, ""))
	if !strings.Contains(buf.String(), "search_cache (4 keys)") || !strings.Contains(buf.String(), "search_cache:cfg") {
		t.Errorf("namespace dump = \n%s", buf.String())
	}
}
