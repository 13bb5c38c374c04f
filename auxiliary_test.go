package kvsearch

import "testing"

func TestAuxiliaryRoundTrip(t *testing.T) {
	idx := setup(t)
	ensure(t, idx.SetAuxiliary(ctx, "cfg", map[string]any{"a": 1}))

	var cfg struct {
		A int `json:"a"`
	}
	ok, err := idx.GetAuxiliary(ctx, "cfg", &cfg)
	ensure(t, err)
	if !ok || cfg.A != 1 {
		t.Fatalf("GetAuxiliary = %v, %+v, wanted true, {A:1}", ok, cfg)
	}

	v, err := idx.GetAuxiliaryValue(ctx, "cfg")
	ensure(t, err)
	deepEqual(t, v, any(map[string]any{"a": float64(1)}))

	raw, _, err := idx.Store().Get(ctx, "search_cache:cfg")
	ensure(t, err)
	if raw != `{"a":1}` {
		t.Fatalf("stored auxiliary = %q, wanted {\"a\":1}", raw)
	}
}

func TestAuxiliaryAbsentAndMalformed(t *testing.T) {
	idx := setup(t)

	v, err := idx.GetAuxiliaryValue(ctx, "missing")
	ensure(t, err)
	if v != nil {
		t.Fatalf("GetAuxiliaryValue(missing) = %v, wanted nil", v)
	}

	ensure(t, idx.Store().Set(ctx, "search_cache:broken", "{not json"))
	v, err = idx.GetAuxiliaryValue(ctx, "broken")
	ensure(t, err)
	if v != nil {
		t.Fatalf("GetAuxiliaryValue(broken) = %v, wanted nil", v)
	}

	var n int
	ensure(t, idx.SetAuxiliary(ctx, "str", "hello"))
	ok, err := idx.GetAuxiliary(ctx, "str", &n)
	ensure(t, err)
	if ok {
		t.Fatalf("GetAuxiliary(string into int) = true, wanted false")
	}
}

func TestGetAuxiliaryRejectsBadTarget(t *testing.T) {
	idx := setup(t)
	ensure(t, idx.SetAuxiliary(ctx, "cfg", map[string]int{"a": 1}))

	if _, err := idx.GetAuxiliary(ctx, "cfg", nil); err == nil {
		t.Fatalf("GetAuxiliary(nil out) succeeded, wanted error")
	}
	var m map[string]int
	if _, err := idx.GetAuxiliary(ctx, "cfg", m); err == nil {
		t.Fatalf("GetAuxiliary(non-pointer out) succeeded, wanted error")
	}

	ok, err := idx.GetAuxiliary(ctx, "cfg", &m)
	ensure(t, err)
	if !ok || m["a"] != 1 {
		t.Fatalf("GetAuxiliary = %v, %v, wanted map[a:1], true", m, ok)
	}
}

func TestAuxiliaryDoesNotTouchTables(t *testing.T) {
	idx := setup(t)
	ensure(t, idx.UpsertRecord(ctx, "users", "1", Record{"name": "a"}))
	ensure(t, idx.SetAuxiliary(ctx, "users", []string{"x"}))

	deepEqual(t, sortedKeys(t, idx, "users"), []string{"search_cache:users:name:a:1"})

	ensure(t, idx.DeleteAuxiliary(ctx, "users"))
	v, err := idx.GetAuxiliaryValue(ctx, "users")
	ensure(t, err)
	if v != nil {
		t.Fatalf("GetAuxiliaryValue after delete = %v", v)
	}
	deepEqual(t, search(t, idx, "users", "a"), []string{"1"})
}

func TestSetAuxiliaryUnencodable(t *testing.T) {
	idx := setup(t)
	if err := idx.SetAuxiliary(ctx, "ch", make(chan int)); err == nil {
		t.Fatalf("SetAuxiliary(chan) succeeded, wanted error")
	}
}
