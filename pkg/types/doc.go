// Package types provides shared type definitions for the ragserve MCP server.
//
// It defines the domain types exchanged between the collection store, the
// codebase indexer, and the tool layer (documents, search hits, collection
// descriptors), together with the closed error taxonomy.
//
// # Error Taxonomy
//
// Failures surfaced to tool callers are classified into a closed set of
// kinds. The store and indexer raise the typed errors defined here; the MCP
// tool layer is the single translation boundary that maps them onto the
// caller-facing response envelope:
//
//	err := store.Search(ctx, "notes", query, 5)
//	switch types.KindOf(err) {
//	case types.KindCollectionNotFound:
//	    // caller addressed a collection that does not exist
//	case types.KindValidation:
//	    // bad arguments, nothing was touched
//	case types.KindInternal:
//	    // unclassified; detail is logged, caller sees a generic message
//	}
//
// Anything outside the taxonomy classifies as KindInternal so that no raw
// internal error ever escapes to a caller.
package types
