package kvsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const snapshotFormat = "kvsearch/1"

type snapshotHeader struct {
	Format string `msgpack:"f"`
	Prefix string `msgpack:"p"`
}

type snapshotEntry struct {
	Key   string `msgpack:"k"`
	Value string `msgpack:"v"`
}

// Export writes every key of the index's namespace (tables, counters and
// auxiliary values) to w as a msgpack stream, sorted by key. Returns the
// number of keys written.
//
// Like BulkReplace, this is not a consistent snapshot if writers are active.
func (idx *Index) Export(ctx context.Context, w io.Writer) (int, error) {
	pattern := idx.prefix + keySep + "*"
	keys, err := idx.store.Keys(ctx, pattern)
	if err != nil {
		return 0, storeErr("KEYS", "", pattern, err)
	}
	slices.Sort(keys)

	enc := msgpack.NewEncoder(w)
	err = enc.Encode(&snapshotHeader{Format: snapshotFormat, Prefix: idx.prefix})
	if err != nil {
		return 0, fmt.Errorf("kvsearch: export: %w", err)
	}

	var n int
	for _, key := range keys {
		value, ok, err := idx.store.Get(ctx, key)
		if err != nil {
			return n, storeErr("GET", "", key, err)
		} else if !ok {
			continue
		}
		if err := enc.Encode(&snapshotEntry{Key: key, Value: value}); err != nil {
			return n, fmt.Errorf("kvsearch: export: %w", err)
		}
		n++
	}
	idx.logger.DebugContext(ctx, "kvsearch: exported", "prefix", idx.prefix, "keys", n)
	return n, nil
}

// Import writes the keys of a snapshot produced by Export into the store.
// Keys are moved from the snapshot's namespace into this index's namespace.
// Existing keys are overwritten but nothing is deleted; call BulkReplace or
// delete the tables first for an exact copy.
func (idx *Index) Import(ctx context.Context, r io.Reader) (int, error) {
	dec := msgpack.NewDecoder(r)

	var hdr snapshotHeader
	if err := dec.Decode(&hdr); err != nil {
		return 0, fmt.Errorf("kvsearch: import: %w: %v", ErrBadSnapshot, err)
	}
	if hdr.Format != snapshotFormat {
		return 0, fmt.Errorf("kvsearch: import: %w: format %q", ErrBadSnapshot, hdr.Format)
	}
	oldPrefix := hdr.Prefix + keySep

	var n int
	for {
		var e snapshotEntry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return n, fmt.Errorf("kvsearch: import: entry %d: %w", n, err)
		}

		key := e.Key
		if rest, ok := strings.CutPrefix(key, oldPrefix); ok {
			key = idx.prefix + keySep + rest
		}
		if err := idx.store.Set(ctx, key, e.Value); err != nil {
			return n, storeErr("SET", "", key, err)
		}
		n++
	}
	idx.logger.DebugContext(ctx, "kvsearch: imported", "from", hdr.Prefix, "to", idx.prefix, "keys", n)
	return n, nil
}
