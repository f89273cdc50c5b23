// Command embedcheck probes the configured embedding backend. It loads
// the model the server would use, embeds a sample text, and prints the
// provider, model, dimension, and timing. Useful for verifying API keys
// and provider selection before wiring the server into an MCP client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mdekker/ragserve/internal/embedder"
)

func main() {
	log.SetFlags(0)

	modelID := flag.String("model", "", "model identifier (default: from environment)")
	text := flag.String("text", "the quick brown fox jumps over the lazy dog", "text to embed")
	flag.Parse()

	id := *modelID
	if id == "" {
		id = embedder.DefaultModelID()
	}

	fmt.Printf("Model: %s\n", id)

	registry := embedder.NewRegistry()

	start := time.Now()
	handle, err := registry.GetOrLoad(id)
	if err != nil {
		log.Printf("model load failed: %v", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded in: %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("Provider: %s\n", handle.Embedder.Provider())
	fmt.Printf("Dimension: %d\n", handle.Embedder.Dimension())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start = time.Now()
	emb, err := handle.Embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: *text})
	if err != nil {
		log.Printf("embedding failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Embedded %d chars in %s, vector length %d\n",
		len(*text), time.Since(start).Round(time.Millisecond), len(emb.Vector))
}
