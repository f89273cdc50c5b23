// Package mcp exposes the collection store and indexer as MCP tools over
// stdio.
//
// Five tools are registered: search_documents, add_documents,
// list_collections, delete_collection, and index_directory. Each handler
// validates its arguments against the declared schema before touching the
// store, and every failure is returned as a uniform JSON envelope:
//
//	{"error": {"kind": "<stable kind>", "message": "<explanation>"}}
//
// The kind is one of the closed error taxonomy (validation_error,
// collection_not_found, model_mismatch, model_load_error, storage_error,
// internal_error). Internal errors are logged with full detail to stderr
// and surfaced with a generic message only; stack traces never reach the
// caller. This layer is the single place where store errors are
// translated for the wire.
package mcp
