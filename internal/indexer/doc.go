// Package indexer walks a directory tree and feeds its text content into
// the collection store.
//
// The walk uses an explicit worklist rather than recursion, so traversal
// order and exclusion decisions are auditable: the ignore matcher is
// consulted before a directory is enqueued, and an excluded directory is
// never entered. Ignore rules accumulate from .ragignore and .gitignore
// files discovered during the descent, on top of the built-in defaults.
//
// Each file is read once, hashed, decoded as UTF-8, and chunked. Chunk
// ids have the form "relative/path#hash8#chunk_N", so re-indexing an
// unchanged tree produces identical ids. Binary, oversized, and empty
// files are skipped silently; read or store failures for one file are
// recorded in the run result without aborting the walk. Only a bad root
// or an unusable collection/model fails the whole run.
package indexer
