package kvsearch

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
)

// Options configures New.
type Options struct {
	// Prefix namespaces every key written by the index. Defaults to "search_cache".
	Prefix string

	// IDField names the record field holding the identifier in BulkReplace.
	// Defaults to "id".
	IDField string

	// Logger receives debug-level traces of store traffic. Defaults to slog.Default().
	Logger *slog.Logger
}

// Index encodes records into store keys and answers prefix, substring and
// full-match queries with KEYS scans. It holds no state besides its
// configuration and is safe for concurrent use if the store is.
type Index struct {
	store   Store
	prefix  string
	idField string
	logger  *slog.Logger
}

// New returns an Index over store.
func New(store Store, opt Options) *Index {
	if store == nil {
		panic("kvsearch: nil store")
	}
	idx := &Index{
		store:   store,
		prefix:  opt.Prefix,
		idField: opt.IDField,
		logger:  opt.Logger,
	}
	if idx.prefix == "" {
		idx.prefix = DefaultPrefix
	}
	if idx.idField == "" {
		idx.idField = DefaultIDField
	}
	if idx.logger == nil {
		idx.logger = slog.Default()
	}
	return idx
}

// WithPrefix returns a copy of the index writing under another namespace.
func (idx *Index) WithPrefix(prefix string) *Index {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	c := *idx
	c.prefix = prefix
	return &c
}

// Prefix returns the namespace of the index.
func (idx *Index) Prefix() string {
	return idx.prefix
}

// IDField returns the name of the identifier field used by BulkReplace.
func (idx *Index) IDField() string {
	return idx.idField
}

// Store returns the underlying store.
func (idx *Index) Store() Store {
	return idx.store
}

// BulkReplace rebuilds a table from scratch: every key under the table prefix
// is deleted in one call, then each record holding an id is written, and
// finally total_count is set to the number of records written. Records
// without an id are skipped silently.
//
// The table is not locked. Concurrent searches can observe it empty or
// partially written, and a failure midway leaves it that way.
func (idx *Index) BulkReplace(ctx context.Context, table string, records []Record) (int, error) {
	if _, err := idx.deleteMatching(ctx, table, idx.tablePattern(table), nil); err != nil {
		return 0, err
	}

	var count, skipped int
	for _, rec := range records {
		id, ok := rec.ID(idx.idField)
		if !ok {
			skipped++
			continue
		}
		count++
		for field, v := range rec {
			if err := idx.putValues(ctx, table, id, field, valueStrings(v)); err != nil {
				return count, err
			}
		}
	}

	key := idx.totalCountKey(table)
	if err := idx.store.Set(ctx, key, strconv.Itoa(count)); err != nil {
		return count, storeErr("SET", table, key, err)
	}

	idx.logger.DebugContext(ctx, "kvsearch: table refreshed", "table", table, "records", count, "skipped", skipped)
	return count, nil
}

// TotalCount returns the record count stored by the last BulkReplace of the
// table. ok is false if the table was never refreshed or the stored value
// isn't an integer. Incremental writes do not update it.
func (idx *Index) TotalCount(ctx context.Context, table string) (n int, ok bool, err error) {
	key := idx.totalCountKey(table)
	raw, ok, err := idx.store.Get(ctx, key)
	if err != nil {
		return 0, false, storeErr("GET", table, key, err)
	} else if !ok {
		return 0, false, nil
	}
	n, err = strconv.Atoi(raw)
	if err != nil {
		idx.logger.WarnContext(ctx, "kvsearch: malformed total_count", "key", key, "value", raw)
		return 0, false, nil
	}
	return n, true, nil
}

// DeleteRecord removes every index entry of the record. Deleting a record
// that doesn't exist is not an error. total_count is left as is.
func (idx *Index) DeleteRecord(ctx context.Context, table, id string) error {
	_, err := idx.deleteMatching(ctx, table, idx.recordPattern(table, id), func(p EntryKeyParts) bool {
		return p.ID == id
	})
	return err
}

// UpsertRecord replaces the record's index entries with entries derived from
// data. Collection fields produce one entry per element.
func (idx *Index) UpsertRecord(ctx context.Context, table, id string, data Record) error {
	if err := idx.DeleteRecord(ctx, table, id); err != nil {
		return err
	}
	for field, v := range data {
		if err := idx.putValues(ctx, table, id, field, valueStrings(v)); err != nil {
			return err
		}
	}
	return nil
}

// UpsertRepeatableFields is UpsertRecord for data where every field is a
// collection.
func (idx *Index) UpsertRepeatableFields(ctx context.Context, table, id string, data map[string][]string) error {
	if err := idx.DeleteRecord(ctx, table, id); err != nil {
		return err
	}
	for field, values := range data {
		if err := idx.putValues(ctx, table, id, field, values); err != nil {
			return err
		}
	}
	return nil
}

// UpdateField replaces all values of one field of the record with value.
func (idx *Index) UpdateField(ctx context.Context, table, id, field, value string) error {
	if err := idx.DeleteField(ctx, table, id, field); err != nil {
		return err
	}
	return idx.putValues(ctx, table, id, field, []string{value})
}

// DeleteField removes the entries of one field of the record.
func (idx *Index) DeleteField(ctx context.Context, table, id, field string) error {
	_, err := idx.deleteMatching(ctx, table, idx.fieldPattern(table, id, field), func(p EntryKeyParts) bool {
		return p.ID == id && p.Field == field
	})
	return err
}

// ClearAll flushes the entire store.
//
// DANGER: this is FLUSHALL. It is not limited to the index's prefix or even to
// this index; every key of every application sharing the store is removed.
// Returns ErrFlushUnsupported if the store doesn't implement Flusher.
func (idx *Index) ClearAll(ctx context.Context) error {
	f, ok := idx.store.(Flusher)
	if !ok {
		return ErrFlushUnsupported
	}
	idx.logger.WarnContext(ctx, "kvsearch: flushing entire store", "prefix", idx.prefix)
	return storeErr("FLUSHALL", "", "", f.FlushAll(ctx))
}

// ListKeys returns the keys of a table, or every key in the store when table
// is empty. Meant for debugging.
func (idx *Index) ListKeys(ctx context.Context, table string) ([]string, error) {
	pattern := "*"
	if table != "" {
		pattern = idx.tablePattern(table)
	}
	keys, err := idx.store.Keys(ctx, pattern)
	if err != nil {
		return nil, storeErr("KEYS", table, pattern, err)
	}
	return keys, nil
}

func (idx *Index) putValues(ctx context.Context, table, id, field string, values []string) error {
	for _, v := range values {
		key := idx.EntryKey(table, field, v, id)
		if err := idx.store.Set(ctx, key, id); err != nil {
			return storeErr("SET", table, key, err)
		}
	}
	return nil
}

// deleteMatching removes the keys matching pattern. When keep is set, only
// index entries it accepts are removed: a pattern's '*' can span ':' and
// reach into ids that contain ':', so "*:*:x" also matches ids ending in ":x".
func (idx *Index) deleteMatching(ctx context.Context, table, pattern string, keep func(p EntryKeyParts) bool) (int, error) {
	keys, err := idx.store.Keys(ctx, pattern)
	if err != nil {
		return 0, storeErr("KEYS", table, pattern, err)
	}
	if keep != nil {
		keys = slices.DeleteFunc(keys, func(key string) bool {
			p, ok := idx.ParseEntryKey(table, key)
			return !ok || !keep(p)
		})
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := idx.store.Del(ctx, keys...); err != nil {
		return 0, storeErr("DEL", table, pattern, err)
	}
	idx.logger.DebugContext(ctx, "kvsearch: deleted keys", "table", table, "pattern", pattern, "count", len(keys))
	return len(keys), nil
}
