package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mdekker/ragserve/internal/embedder"
	"github.com/mdekker/ragserve/internal/indexer"
	"github.com/mdekker/ragserve/internal/store"
)

const (
	// ServerName is the MCP server name
	ServerName = "ragserve"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// EnvDataPath overrides the data directory location
	EnvDataPath = "RAGSERVE_DATA_PATH"
	// DefaultDataDir is the data directory under the user's home
	DefaultDataDir = ".ragserve"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	store    *store.Store
	indexer  *indexer.Indexer
	registry *embedder.Registry
	logger   *log.Logger
}

// NewServer creates a new MCP server instance. An empty dataPath falls
// back to RAGSERVE_DATA_PATH, then ~/.ragserve.
func NewServer(dataPath string) (*Server, error) {
	if dataPath == "" {
		dataPath = os.Getenv(EnvDataPath)
	}
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataPath = filepath.Join(home, DefaultDataDir)
	}

	registry := embedder.NewRegistry()

	st, err := store.Open(dataPath, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		store:    st,
		indexer:  indexer.New(st, indexer.Config{}),
		registry: registry,
		// stdout carries the protocol; diagnostics go to stderr.
		logger: log.New(os.Stderr, "[ragserve] ", log.LstdFlags),
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool(), s.handleSearchDocuments)
	s.mcp.AddTool(addDocumentsTool(), s.handleAddDocuments)
	s.mcp.AddTool(listCollectionsTool(), s.handleListCollections)
	s.mcp.AddTool(deleteCollectionTool(), s.handleDeleteCollection)
	s.mcp.AddTool(indexDirectoryTool(), s.handleIndexDirectory)
}
