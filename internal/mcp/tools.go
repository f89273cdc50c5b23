package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdekker/ragserve/internal/chunker"
	"github.com/mdekker/ragserve/internal/indexer"
	"github.com/mdekker/ragserve/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
)

const (
	// DefaultNResults is the search result count when n_results is omitted
	DefaultNResults = 5
	// MaxNResults bounds n_results
	MaxNResults = 100
)

// handleSearchDocuments handles the search_documents tool invocation
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return s.errorResult(types.NewValidationError("query parameter is required and cannot be empty"))
	}

	collection, ok := args["collection"].(string)
	if !ok || collection == "" {
		return s.errorResult(types.NewValidationError("collection parameter is required and cannot be empty"))
	}

	nResults := getIntDefault(args, "n_results", DefaultNResults)
	if nResults < 1 || nResults > MaxNResults {
		return s.errorResult(types.NewValidationError("n_results must be between 1 and %d", MaxNResults))
	}

	hits, err := s.store.Search(ctx, collection, query, nResults)
	if err != nil {
		return s.errorResult(err)
	}

	results := make([]map[string]interface{}, 0, len(hits))
	for _, h := range hits {
		results = append(results, map[string]interface{}{
			"text":     h.Text,
			"metadata": h.Metadata,
			"distance": h.Distance,
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"collection": collection,
		"query":      query,
		"count":      len(results),
		"results":    results,
	})), nil
}

// handleAddDocuments handles the add_documents tool invocation
func (s *Server) handleAddDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	collection, ok := args["collection"].(string)
	if !ok || collection == "" {
		return s.errorResult(types.NewValidationError("collection parameter is required and cannot be empty"))
	}

	texts, err := stringSlice(args, "documents")
	if err != nil {
		return s.errorResult(err)
	}
	if len(texts) == 0 {
		return s.errorResult(types.NewValidationError("documents must contain at least one text"))
	}

	metas, err := metadataSlice(args, "metadatas")
	if err != nil {
		return s.errorResult(err)
	}

	ids, err := s.store.Add(ctx, collection, texts, metas)
	if err != nil {
		return s.errorResult(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"collection": collection,
		"added":      len(ids),
		"ids":        ids,
	})), nil
}

// handleListCollections handles the list_collections tool invocation
func (s *Server) handleListCollections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := s.store.List(ctx)
	if err != nil {
		return s.errorResult(err)
	}

	collections := make([]map[string]interface{}, 0, len(infos))
	for _, info := range infos {
		collections = append(collections, map[string]interface{}{
			"name":           info.Name,
			"model":          info.ModelID,
			"document_count": info.DocumentCount,
			"created_at":     info.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"count":       len(collections),
		"collections": collections,
	})), nil
}

// handleDeleteCollection handles the delete_collection tool invocation
func (s *Server) handleDeleteCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	collection, ok := args["collection"].(string)
	if !ok || collection == "" {
		return s.errorResult(types.NewValidationError("collection parameter is required and cannot be empty"))
	}

	if err := s.store.Delete(ctx, collection); err != nil {
		return s.errorResult(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"collection": collection,
		"deleted":    true,
	})), nil
}

// handleIndexDirectory handles the index_directory tool invocation
func (s *Server) handleIndexDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	root, ok := args["root"].(string)
	if !ok || root == "" {
		return s.errorResult(types.NewValidationError("root parameter is required and cannot be empty"))
	}

	collection, ok := args["collection"].(string)
	if !ok || collection == "" {
		return s.errorResult(types.NewValidationError("collection parameter is required and cannot be empty"))
	}

	ix := s.indexer
	if strategy := getStringDefault(args, "strategy", ""); strategy != "" {
		ix = indexer.New(s.store, indexer.Config{Strategy: chunker.Strategy(strategy)})
	}

	start := time.Now()
	result, err := ix.IndexDirectory(ctx, root, collection, "")
	if err != nil {
		return s.errorResult(err)
	}

	response := map[string]interface{}{
		"collection":    result.Collection,
		"total_files":   result.TotalFiles,
		"files_indexed": result.FilesIndexed,
		"files_skipped": result.FilesSkipped,
		"total_chunks":  result.TotalChunks,
		"duration_ms":   time.Since(start).Milliseconds(),
	}

	if len(result.Errors) > 0 {
		// Include first few errors
		if len(result.Errors) > 5 {
			response["errors"] = result.Errors[:5]
			response["error_count"] = len(result.Errors)
		} else {
			response["errors"] = result.Errors
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// errorResult wraps a failure in the uniform error envelope. Every error
// carries a stable kind and a human-readable message; internal errors are
// logged in full and surfaced generically.
func (s *Server) errorResult(err error) (*mcp.CallToolResult, error) {
	kind := types.KindOf(err)
	message := err.Error()
	if kind == types.KindInternal {
		s.logger.Printf("internal error: %v", err)
		message = "an internal error occurred"
	}

	result := mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"error": map[string]interface{}{
			"kind":    string(kind),
			"message": message,
		},
	}))
	result.IsError = true
	return result, nil
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// stringSlice extracts a required []string parameter.
func stringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok {
		return nil, types.NewValidationError("%s parameter is required", key)
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, types.NewValidationError("%s must be an array of strings", key)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, types.NewValidationError("%s[%d] must be a string", key, i)
		}
		out[i] = s
	}
	return out, nil
}

// metadataSlice extracts an optional []object parameter.
func metadataSlice(args map[string]interface{}, key string) ([]types.Metadata, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, types.NewValidationError("%s must be an array of objects", key)
	}
	out := make([]types.Metadata, len(items))
	for i, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, types.NewValidationError("%s[%d] must be an object", key, i)
		}
		out[i] = types.Metadata(m)
	}
	return out, nil
}
