package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchDocumentsTool returns the tool definition for search_documents
func searchDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_documents",
		Description: "Search a document collection for semantically relevant snippets",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language search query",
				},
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Name of the collection to search",
				},
				"n_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     5,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query", "collection"},
		},
	}
}

// addDocumentsTool returns the tool definition for add_documents
func addDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_documents",
		Description: "Add documents to a collection, creating it on first use",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Name of the target collection",
				},
				"documents": map[string]interface{}{
					"type":        "array",
					"description": "Document texts to embed and store",
					"items": map[string]interface{}{
						"type": "string",
					},
					"minItems": 1,
				},
				"metadatas": map[string]interface{}{
					"type":        "array",
					"description": "Optional scalar metadata objects, one per document",
					"items": map[string]interface{}{
						"type": "object",
					},
				},
			},
			Required: []string{"collection", "documents"},
		},
	}
}

// listCollectionsTool returns the tool definition for list_collections
func listCollectionsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_collections",
		Description: "List all document collections with their document counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// deleteCollectionTool returns the tool definition for delete_collection
func deleteCollectionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_collection",
		Description: "Delete a collection and all of its documents irrevocably",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Name of the collection to delete",
				},
			},
			Required: []string{"collection"},
		},
	}
}

// indexDirectoryTool returns the tool definition for index_directory
func indexDirectoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_directory",
		Description: "Index the text files under a directory tree into a collection, honoring .ragignore/.gitignore rules",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"root": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of the directory to index",
				},
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Name of the target collection",
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"description": "Chunking strategy for file content",
					"enum":        []string{"fixed", "paragraph", "code", "semantic"},
					"default":     "fixed",
				},
			},
			Required: []string{"root", "collection"},
		},
	}
}
