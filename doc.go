/*
Package kvsearch implements a secondary index on top of a flat key-value store
(Redis, or one of the bundled Bolt, SQLite and in-memory stores).

There is no separate index structure. Every searchable field value of a record
is encoded into the name of a key, and lookups become glob scans over the key
space:

1. Tables, logical namespaces with no schema; a table is whatever fields its
records carry.

2. Records, field maps identified by an externally supplied id. A field holds
a scalar or a collection of scalars; collections fan out into one key each.

3. Searches by prefix, by substring, or by full value, optionally restricted to
a single field.

4. Auxiliary values, arbitrary JSON documents stored next to the tables.

# Key Layout

**Index entries.**

	<prefix>:<table>:<field>:<value>:<id>  =>  <id>

The value is lowercased (Unicode-aware) and then URL-encoded, so ':' and glob
metacharacters inside a value cannot break the key structure. The id is stored
verbatim and is never normalized. Because the key is unique per
(field, value, id), writing the same triple twice is a no-op.

**Total count.**

	<prefix>:<table>:total_count  =>  <integer>

Written only by BulkReplace. Incremental writes and deletes never touch it, so
between refreshes it may disagree with the number of live records.

**Auxiliary values.**

	<prefix>:<name>  =>  <json>

The default prefix is "search_cache".

# Queries

SearchPrefix builds

	<prefix>:<table>:<field or *>:<value>*      (prefix match)
	<prefix>:<table>:<field or *>:<value>:*     (full match)

and SearchSubstring builds

	<prefix>:<table>:<field or *>:*<value>*

then issues KEYS and a GET per matched key. Results come back in store order
and may contain the same id more than once when several values of a record
match.

# Consistency

Nothing here is transactional. BulkReplace deletes the whole table and then
writes it back, so a concurrent reader can observe a partially populated
table. Per-record updates delete the record's keys and rewrite them, with the
same window scoped to one record.
*/
package kvsearch
