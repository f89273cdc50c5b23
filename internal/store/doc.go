// Package store implements the persistent document-collection engine.
//
// A collection is a named set of (id, text, metadata, vector) records
// bound to one embedding model at creation time. The binding never
// changes; requesting a collection with a different model fails with
// ModelMismatchError.
//
// State is split across two locations under the data directory:
//
//	catalog.db              SQLite catalog: existence, model binding,
//	                        document counts, sequence numbers
//	collections/<name>.vec  per-collection vector index snapshot
//
// The catalog is authoritative for collection existence: delete removes
// the catalog row first, then the snapshot, so a crash between the two
// can orphan a snapshot file but never resurrect a collection.
//
// Search returns hits ordered by ascending cosine distance. Ties are
// broken by insertion order, which each record carries as a sequence
// number allocated from the catalog.
//
// The SQLite driver is selected at build time: mattn/go-sqlite3 with the
// sqlite_vec tag, modernc.org/sqlite otherwise.
package store
