// Package embedder generates vector embeddings for documents using various providers.
//
// The embedder supports multiple embedding providers (Jina AI, OpenAI, local)
// and provides batching, caching, and retry handling for production use.
//
// # Basic Usage
//
//	emb, err := embedder.NewForModel("openai/text-embedding-3-small")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	result, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{
//	    Text: "vector databases for retrieval augmented generation",
//	})
//	fmt.Printf("Vector dimension: %d\n", len(result.Vector))
//
// # Batch Processing
//
// For efficiency, embed in batches:
//
//	resp, err := emb.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{
//	    Texts: texts,
//	})
//
// Batching amortizes per-call model overhead and reduces API round trips
// significantly compared to sequential single requests.
//
// # Model Registry
//
// The Registry guarantees each embedding model is loaded at most once per
// process. Collections request their bound model through it:
//
//	reg := embedder.NewRegistry()
//	handle, err := reg.GetOrLoad("local")
//
// Concurrent GetOrLoad calls for the same unseen identifier collapse into
// a single underlying load; all callers receive the same handle. Failed
// loads are not cached, so the next call retries. Clear drops all handles
// without invalidating ones already captured by collections.
//
// # Provider Selection
//
// Model identifiers name a provider and optionally a model:
//
//	"local"                            offline deterministic embeddings
//	"jina"                             Jina AI, default model
//	"openai/text-embedding-3-small"    OpenAI, explicit model
//
// When no model is configured, DefaultModelID picks a provider from the
// environment: RAGSERVE_EMBEDDING_PROVIDER first, then whichever of
// JINA_API_KEY / OPENAI_API_KEY is set, falling back to local.
//
// # Result Caching
//
// Each provider holds an LRU cache keyed by SHA-256 of the input text, so
// re-embedding identical content (common during re-indexing) is free.
package embedder
