package kvsearch

import (
	"net/url"
	"strings"
)

const (
	DefaultPrefix  = "search_cache"
	DefaultIDField = "id"

	totalCountKey = "total_count"
	keySep        = ":"
)

// EncodeValue normalizes a field value for embedding into a key: Unicode
// lowercasing, then URL encoding. The encoding matches PHP's urlencode, so
// keys written by earlier deployments remain searchable.
func EncodeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(strings.ToLower(v)), "~", "%7E")
}

// DecodeValue reverses the URL encoding of EncodeValue. Case is not restored.
func DecodeValue(encoded string) (string, error) {
	return url.QueryUnescape(encoded)
}

func (idx *Index) rootKey(name string) string {
	return idx.prefix + keySep + name
}

// TablePrefix returns the prefix shared by every key of the table.
func (idx *Index) TablePrefix(table string) string {
	return idx.prefix + keySep + table + keySep
}

func (idx *Index) totalCountKey(table string) string {
	return idx.TablePrefix(table) + totalCountKey
}

// EntryKey returns the key of the index entry for (table, field, value, id).
func (idx *Index) EntryKey(table, field, value, id string) string {
	return idx.TablePrefix(table) + field + keySep + EncodeValue(value) + keySep + id
}

func (idx *Index) tablePattern(table string) string {
	return idx.TablePrefix(table) + "*"
}

func (idx *Index) recordPattern(table, id string) string {
	return idx.TablePrefix(table) + "*:*:" + id
}

func (idx *Index) fieldPattern(table, id, field string) string {
	return idx.TablePrefix(table) + field + ":*:" + id
}

func (idx *Index) searchPattern(table, text string, q searchQuery) string {
	var buf strings.Builder
	buf.WriteString(idx.TablePrefix(table))
	if q.field != "" {
		buf.WriteString(q.field)
		buf.WriteString(keySep)
	} else {
		buf.WriteString("*:")
	}
	if q.substring {
		buf.WriteByte('*')
	}
	buf.WriteString(EncodeValue(text))
	if q.fullMatch {
		buf.WriteString(":*")
	} else {
		buf.WriteByte('*')
	}
	return buf.String()
}

// EntryKeyParts is an index entry key split into its components.
type EntryKeyParts struct {
	Field string
	Value string // encoded
	ID    string
}

// ParseEntryKey splits a key under the table prefix into field, encoded value
// and id. Encoded values never contain ':' and field names are assumed not
// to, so the id is everything after the second separator. ok is false for
// keys that aren't index entries, such as total_count.
func (idx *Index) ParseEntryKey(table, key string) (EntryKeyParts, bool) {
	rest, found := strings.CutPrefix(key, idx.TablePrefix(table))
	if !found {
		return EntryKeyParts{}, false
	}
	field, rest, ok := splitByte(rest, ':')
	if !ok {
		return EntryKeyParts{}, false
	}
	value, id, ok := splitByte(rest, ':')
	if !ok {
		return EntryKeyParts{}, false
	}
	return EntryKeyParts{Field: field, Value: value, ID: id}, true
}
