package kvsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// SetAuxiliary stores v as JSON under <prefix>:<name>. Auxiliary values live
// next to the tables and have nothing to do with the index layout.
func (idx *Index) SetAuxiliary(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kvsearch: auxiliary %q: %w", name, err)
	}
	key := idx.rootKey(name)
	return storeErr("SET", "", key, idx.store.Set(ctx, key, string(data)))
}

// GetAuxiliary decodes the value stored under name into out. ok is false when
// there is no value or the stored data isn't valid JSON for out; only store
// failures and a nil or non-pointer out are reported as errors.
func (idx *Index) GetAuxiliary(ctx context.Context, name string, out any) (ok bool, err error) {
	key := idx.rootKey(name)
	raw, found, err := idx.store.Get(ctx, key)
	if err != nil {
		return false, storeErr("GET", "", key, err)
	} else if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		var invalid *json.InvalidUnmarshalError
		if errors.As(err, &invalid) {
			return false, fmt.Errorf("kvsearch: auxiliary %q: %w", name, err)
		}
		idx.logger.DebugContext(ctx, "kvsearch: malformed auxiliary value", "key", key, "err", err)
		return false, nil
	}
	return true, nil
}

// GetAuxiliaryValue is GetAuxiliary decoding into a generic value
// (map[string]any, []any, string, float64, bool). Returns nil when absent or
// malformed.
func (idx *Index) GetAuxiliaryValue(ctx context.Context, name string) (any, error) {
	var v any
	ok, err := idx.GetAuxiliary(ctx, name, &v)
	if err != nil || !ok {
		return nil, err
	}
	return v, nil
}

// DeleteAuxiliary removes the value stored under name.
func (idx *Index) DeleteAuxiliary(ctx context.Context, name string) error {
	key := idx.rootKey(name)
	return storeErr("DEL", "", key, idx.store.Del(ctx, key))
}
