package kvsearch

import (
	"context"
	"strings"
)

// SearchOption narrows a search.
type SearchOption func(q *searchQuery)

type searchQuery struct {
	field     string
	fullMatch bool
	substring bool
}

// InField restricts the search to one field. Without it, all fields are searched.
func InField(field string) SearchOption {
	return func(q *searchQuery) {
		q.field = field
	}
}

// FullMatch requires the whole normalized value to equal the search text.
// Combined with SearchSubstring, it matches values ending with the text.
func FullMatch() SearchOption {
	return func(q *searchQuery) {
		q.fullMatch = true
	}
}

// SearchPrefix returns the ids of records having a value that starts with
// text (or equals it, with FullMatch). Matching is case-insensitive.
//
// Ids come back in store order, and a record is listed once per matching
// value, so the result may contain duplicates.
func (idx *Index) SearchPrefix(ctx context.Context, table, text string, opts ...SearchOption) ([]string, error) {
	q := searchQuery{}
	for _, o := range opts {
		o(&q)
	}
	return idx.search(ctx, table, text, q)
}

// SearchSubstring is SearchPrefix matching values that contain text anywhere.
func (idx *Index) SearchSubstring(ctx context.Context, table, text string, opts ...SearchOption) ([]string, error) {
	q := searchQuery{substring: true}
	for _, o := range opts {
		o(&q)
	}
	return idx.search(ctx, table, text, q)
}

func (idx *Index) search(ctx context.Context, table, text string, q searchQuery) ([]string, error) {
	pattern := idx.searchPattern(table, text, q)
	keys, err := idx.store.Keys(ctx, pattern)
	if err != nil {
		return nil, storeErr("KEYS", table, pattern, err)
	}

	enc := EncodeValue(text)
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if !idx.keyMatches(table, key, enc, q) {
			continue
		}
		id, ok, err := idx.store.Get(ctx, key)
		if err != nil {
			return nil, storeErr("GET", table, key, err)
		} else if !ok {
			continue // deleted since KEYS
		}
		ids = append(ids, id)
	}

	idx.logger.DebugContext(ctx, "kvsearch: search", "table", table, "pattern", pattern, "keys", len(keys), "ids", len(ids))
	return ids, nil
}

// keyMatches re-checks a key returned by KEYS against the value segment.
// Without a field, the leading '*:' of the pattern can also land on the id
// segment, so a record whose id starts with the search text would match.
func (idx *Index) keyMatches(table, key, enc string, q searchQuery) bool {
	var value string
	if q.field != "" {
		rest, found := strings.CutPrefix(key, idx.TablePrefix(table)+q.field+keySep)
		if !found {
			return false
		}
		v, _, ok := splitByte(rest, ':')
		if !ok {
			return false
		}
		value = v
	} else {
		parts, ok := idx.ParseEntryKey(table, key)
		if !ok {
			return false
		}
		value = parts.Value
	}

	switch {
	case q.substring && q.fullMatch:
		return strings.HasSuffix(value, enc)
	case q.substring:
		return strings.Contains(value, enc)
	case q.fullMatch:
		return value == enc
	default:
		return strings.HasPrefix(value, enc)
	}
}
