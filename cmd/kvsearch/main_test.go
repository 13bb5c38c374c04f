package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupStore(t *testing.T) string {
	t.Helper()
	for _, v := range []string{"KVSEARCH_STORE_URL", "KVSEARCH_PREFIX", "KVSEARCH_ID_FIELD"} {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
	t.Setenv("KVSEARCH_LOG_LEVEL", "ERROR")
	return "bolt://" + filepath.Join(t.TempDir(), "index.db")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func lines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	result := strings.Split(s, "\n")
	sort.Strings(result)
	return result
}

func TestCLI_RefreshSearchCount(t *testing.T) {
	store := setupStore(t)
	path := writeFile(t, "users.json", `[
		{"id": "1", "name": "Alice", "tags": ["admin", "ops"]},
		{"id": "2", "name": "Bob"},
		{"name": "no id"}
	]`)

	out, err := run(t, "--store", store, "refresh", "users", path)
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 2 of 3 records")

	out, err = run(t, "--store", store, "search", "users", "ali")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, lines(out))

	out, err = run(t, "--store", store, "search", "users", "ops", "--field", "tags", "--full")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, lines(out))

	out, err = run(t, "--store", store, "search", "users", "o", "--substring", "--field", "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, lines(out))

	out, err = run(t, "--store", store, "count", "users")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestCLI_YAMLRecords(t *testing.T) {
	store := setupStore(t)
	path := writeFile(t, "items.yaml", "- id: 10\n  title: Banana\n- id: 11\n  title: Bandana\n")

	_, err := run(t, "--store", store, "refresh", "items", path)
	require.NoError(t, err)

	out, err := run(t, "--store", store, "search", "items", "ban")
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "11"}, lines(out))
}

func TestLoadRecords_LargeNumericIDs(t *testing.T) {
	path := writeFile(t, "big.json", `[{"id": 9007199254740993, "score": 1.5}]`)
	records, err := loadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	id, ok := records[0].ID("id")
	require.True(t, ok)
	assert.Equal(t, "9007199254740993", id)
	assert.Equal(t, []string{"1.5"}, records[0].Values("score"))

	rec, err := parseRecord(`{"id": 9007199254740993}`)
	require.NoError(t, err)
	id, _ = rec.ID("id")
	assert.Equal(t, "9007199254740993", id)
}

func TestCLI_RefreshKeepsLargeIDs(t *testing.T) {
	store := setupStore(t)
	path := writeFile(t, "big.json", `[{"id": 9007199254740993, "name": "Big"}]`)

	_, err := run(t, "--store", store, "refresh", "users", path)
	require.NoError(t, err)

	out, err := run(t, "--store", store, "search", "users", "big")
	require.NoError(t, err)
	assert.Equal(t, []string{"9007199254740993"}, lines(out))
}

func TestCLI_PrefixFlagValidated(t *testing.T) {
	store := setupStore(t)
	_, err := run(t, "--store", store, "--prefix", "bad*", "keys")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "glob metacharacters")
}

func TestCLI_UpsertUpdateDelete(t *testing.T) {
	store := setupStore(t)

	_, err := run(t, "--store", store, "upsert", "users", "7", `{"name": "Alice", "city": "Paris"}`)
	require.NoError(t, err)

	_, err = run(t, "--store", store, "update-field", "users", "7", "city", "Berlin")
	require.NoError(t, err)

	out, err := run(t, "--store", store, "search", "users", "paris")
	require.NoError(t, err)
	assert.Empty(t, lines(out))

	out, err = run(t, "--store", store, "search", "users", "berlin")
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, lines(out))

	_, err = run(t, "--store", store, "delete-field", "users", "7", "city")
	require.NoError(t, err)
	out, err = run(t, "--store", store, "keys", "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"search_cache:users:name:alice:7"}, lines(out))

	_, err = run(t, "--store", store, "delete", "users", "7")
	require.NoError(t, err)
	out, err = run(t, "--store", store, "keys", "users")
	require.NoError(t, err)
	assert.Empty(t, lines(out))

	_, err = run(t, "--store", store, "count", "users")
	assert.Error(t, err, "count without refresh")
}

func TestCLI_Aux(t *testing.T) {
	store := setupStore(t)

	_, err := run(t, "--store", store, "aux", "set", "cfg", `{"a": 1}`)
	require.NoError(t, err)

	out, err := run(t, "--store", store, "aux", "get", "cfg")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, out)

	out, err = run(t, "--store", store, "aux", "get", "missing")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)
}

func TestCLI_Filter(t *testing.T) {
	path := writeFile(t, "r.json", `[{"id": "1", "name": "Alice"}, {"id": "2", "name": "Bob"}]`)

	out, err := run(t, "filter", path, "li")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "1", "name": "Alice"}`, out)
}

func TestCLI_ExportImport(t *testing.T) {
	src := setupStore(t)
	dst := "bolt://" + filepath.Join(t.TempDir(), "copy.db")
	snap := filepath.Join(t.TempDir(), "snap.msgpack")

	_, err := run(t, "--store", src, "upsert", "users", "1", `{"name": "Alice"}`)
	require.NoError(t, err)

	out, err := run(t, "--store", src, "export", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 keys")

	out, err = run(t, "--store", dst, "--prefix", "other", "import", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 keys")

	out, err = run(t, "--store", dst, "--prefix", "other", "search", "users", "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, lines(out))
}

func TestCLI_ClearAllNeedsConfirmation(t *testing.T) {
	store := setupStore(t)

	_, err := run(t, "--store", store, "upsert", "users", "1", `{"name": "Alice"}`)
	require.NoError(t, err)

	_, err = run(t, "--store", store, "clear-all")
	require.Error(t, err)

	out, err := run(t, "--store", store, "keys")
	require.NoError(t, err)
	assert.Len(t, lines(out), 1)

	_, err = run(t, "--store", store, "clear-all", "--yes")
	require.NoError(t, err)

	out, err = run(t, "--store", store, "keys")
	require.NoError(t, err)
	assert.Empty(t, lines(out))
}

func TestCLI_StatsAndDump(t *testing.T) {
	store := setupStore(t)
	path := writeFile(t, "users.json", `[{"id": "1", "name": "Alice"}, {"id": "2", "name": "Bob"}]`)

	_, err := run(t, "--store", store, "refresh", "users", path)
	require.NoError(t, err)
	_, err = run(t, "--store", store, "delete", "users", "2")
	require.NoError(t, err)

	out, err := run(t, "--store", store, "stats", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "records: 1\n")
	assert.Contains(t, out, "total_count: 2\n")
	assert.Contains(t, out, "field name: 1\n")

	out, err = run(t, "--store", store, "dump", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "search_cache:users:name:alice:1")
	assert.Contains(t, out, "(stale)")
}

func TestCLI_Version(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "kvsearch version dev")
}
