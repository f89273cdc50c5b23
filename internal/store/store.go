package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"github.com/mdekker/ragserve/internal/embedder"
	"github.com/mdekker/ragserve/pkg/types"
)

const (
	// CatalogFileName is the catalog database file inside the data directory
	CatalogFileName = "catalog.db"

	// CollectionsDirName holds the per-collection index snapshots
	CollectionsDirName = "collections"

	// SnapshotExt is the file extension for index snapshots
	SnapshotExt = ".vec"

	// MaxCollectionNameLen bounds collection names; the name doubles as a
	// snapshot file name.
	MaxCollectionNameLen = 64
)

var collectionNameRE = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Store provides add/search/list/delete semantics over persistent,
// model-bound document collections. Collection existence, model binding,
// and counts live in a SQLite catalog; vectors and payloads live in one
// snapshot file per collection.
type Store struct {
	dataPath string
	catalog  *Catalog
	registry *embedder.Registry

	defaultModelID string

	mu      sync.Mutex
	indexes map[string]*vecIndex
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultModel overrides the model bound to newly created collections.
func WithDefaultModel(modelID string) Option {
	return func(s *Store) { s.defaultModelID = modelID }
}

// Open initializes the store under dataPath, creating the directory
// layout and catalog as needed.
func Open(dataPath string, registry *embedder.Registry, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dataPath, CollectionsDirName), 0o755); err != nil {
		return nil, &types.StorageError{Op: "init data directory", Cause: err}
	}

	catalog, err := OpenCatalog(filepath.Join(dataPath, CatalogFileName))
	if err != nil {
		return nil, &types.StorageError{Op: "open catalog", Cause: err}
	}

	s := &Store{
		dataPath:       dataPath,
		catalog:        catalog,
		registry:       registry,
		defaultModelID: embedder.DefaultModelID(),
		indexes:        make(map[string]*vecIndex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases all open index handles and the catalog.
func (s *Store) Close() error {
	s.mu.Lock()
	for name, idx := range s.indexes {
		_ = idx.close()
		delete(s.indexes, name)
	}
	s.mu.Unlock()
	return s.catalog.Close()
}

// DataPath returns the root data directory.
func (s *Store) DataPath() string {
	return s.dataPath
}

// DefaultModelID returns the model bound to collections created without
// an explicit model.
func (s *Store) DefaultModelID() string {
	return s.defaultModelID
}

// ValidateCollectionName rejects names unusable as catalog keys or
// snapshot file names.
func ValidateCollectionName(name string) error {
	if name == "" {
		return types.NewValidationError("collection name must not be empty")
	}
	if len(name) > MaxCollectionNameLen {
		return types.NewValidationError("collection name exceeds %d characters", MaxCollectionNameLen)
	}
	if !collectionNameRE.MatchString(name) {
		return types.NewValidationError(
			"collection name %q is invalid: use letters, digits, '.', '_', '-', starting with a letter or digit", name)
	}
	return nil
}

// GetOrCreate returns the catalog row for name, creating the collection
// when absent. A non-empty modelID on an existing collection must match
// the bound model.
func (s *Store) GetOrCreate(ctx context.Context, name, modelID string) (*CollectionRow, error) {
	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}

	row, err := s.catalog.GetCollection(ctx, name)
	if err == nil {
		if modelID != "" && modelID != row.ModelID {
			return nil, &types.ModelMismatchError{Collection: name, Bound: row.ModelID, Requested: modelID}
		}
		return row, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, &types.StorageError{Op: "read collection", Cause: err}
	}

	if modelID == "" {
		modelID = s.defaultModelID
	}
	handle, err := s.registry.GetOrLoad(modelID)
	if err != nil {
		return nil, err
	}

	row, err = s.catalog.CreateCollection(ctx, name, modelID, handle.Embedder.Dimension())
	if err != nil {
		return nil, &types.StorageError{Op: "create collection", Cause: err}
	}
	return row, nil
}

// Add embeds texts with the collection's bound model and inserts them,
// creating the collection on first use. It returns one fresh id per text,
// in input order.
func (s *Store) Add(ctx context.Context, name string, texts []string, metas []types.Metadata) ([]string, error) {
	if metas != nil && len(metas) != len(texts) {
		return nil, types.NewValidationError(
			"metadatas length %d does not match documents length %d", len(metas), len(texts))
	}

	docs := make([]types.Document, len(texts))
	for i, text := range texts {
		docs[i] = types.Document{Text: text}
		if metas != nil {
			docs[i].Metadata = metas[i]
		}
	}
	return s.AddDocuments(ctx, name, "", docs)
}

// AddDocuments inserts pre-built documents. Documents without an ID get a
// fresh UUID. An empty modelID uses the collection's bound model (or the
// default when the collection is new).
func (s *Store) AddDocuments(ctx context.Context, name, modelID string, docs []types.Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, types.NewValidationError("documents must not be empty")
	}
	for i, doc := range docs {
		if doc.Text == "" {
			return nil, types.NewValidationError("document %d is empty", i)
		}
		if err := types.ValidateMetadata(doc.Metadata); err != nil {
			return nil, err
		}
	}

	row, err := s.GetOrCreate(ctx, name, modelID)
	if err != nil {
		return nil, err
	}

	handle, err := s.registry.GetOrLoad(row.ModelID)
	if err != nil {
		return nil, err
	}

	vectors, err := s.embedTexts(ctx, handle, docTexts(docs))
	if err != nil {
		return nil, err
	}

	firstSeq, err := s.catalog.AllocateSeqs(ctx, name, len(docs))
	if err != nil {
		return nil, &types.StorageError{Op: "allocate sequence numbers", Cause: err}
	}

	ids := make([]string, len(docs))
	payloads := make([]docPayload, len(docs))
	metas := make([]types.Metadata, len(docs))
	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id
		payloads[i] = docPayload{ID: id, Text: doc.Text, Seq: firstSeq + int64(i)}
		metas[i] = doc.Metadata
	}

	idx, err := s.index(name, row.Dimension)
	if err != nil {
		return nil, err
	}
	if err := idx.add(ctx, payloads, vectors, metas); err != nil {
		return nil, &types.StorageError{Op: "insert documents", Cause: err}
	}

	return ids, nil
}

// Search embeds query with the collection's bound model and returns up to
// n hits ordered by ascending distance, ties broken by insertion order.
// A collection with fewer than n documents returns all of them.
func (s *Store) Search(ctx context.Context, name, query string, n int) ([]types.SearchHit, error) {
	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, types.NewValidationError("query must not be empty")
	}
	if n <= 0 {
		return nil, types.NewValidationError("n_results must be a positive integer")
	}

	row, err := s.catalog.GetCollection(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil, &types.CollectionNotFoundError{Collection: name}
	}
	if err != nil {
		return nil, &types.StorageError{Op: "read collection", Cause: err}
	}

	if row.DocCount == 0 {
		return []types.SearchHit{}, nil
	}

	handle, err := s.registry.GetOrLoad(row.ModelID)
	if err != nil {
		return nil, err
	}

	emb, err := handle.Embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query})
	if err != nil {
		return nil, &types.ModelLoadError{ModelID: row.ModelID, Cause: err}
	}

	k := n
	if int64(k) > row.DocCount {
		k = int(row.DocCount)
	}

	idx, err := s.index(name, row.Dimension)
	if err != nil {
		return nil, err
	}
	hits, err := idx.search(ctx, emb.Vector, k)
	if err != nil {
		return nil, &types.StorageError{Op: "search", Cause: err}
	}
	return hits, nil
}

// List enumerates all collections. An empty slice is a valid result.
func (s *Store) List(ctx context.Context) ([]types.CollectionInfo, error) {
	rows, err := s.catalog.ListCollections(ctx)
	if err != nil {
		return nil, &types.StorageError{Op: "list collections", Cause: err}
	}

	infos := make([]types.CollectionInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, types.CollectionInfo{
			Name:          row.Name,
			ModelID:       row.ModelID,
			DocumentCount: row.DocCount,
			CreatedAt:     row.CreatedAt,
		})
	}
	return infos, nil
}

// Delete removes the collection and its documents irrevocably. Deleting
// an absent collection fails with CollectionNotFoundError; callers that
// need idempotence must check existence first.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ValidateCollectionName(name); err != nil {
		return err
	}

	s.mu.Lock()
	if idx, ok := s.indexes[name]; ok {
		_ = idx.close()
		delete(s.indexes, name)
	}
	s.mu.Unlock()

	err := s.catalog.DeleteCollection(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return &types.CollectionNotFoundError{Collection: name}
	}
	if err != nil {
		return &types.StorageError{Op: "delete collection", Cause: err}
	}

	if err := os.Remove(s.snapshotPath(name)); err != nil && !os.IsNotExist(err) {
		return &types.StorageError{Op: "remove index snapshot", Cause: err}
	}
	return nil
}

// index returns the open handle for name, loading or creating it lazily.
func (s *Store) index(name string, dimension int) (*vecIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.indexes[name]; ok {
		return idx, nil
	}

	idx, err := openVecIndex(s.snapshotPath(name), dimension)
	if err != nil {
		return nil, &types.StorageError{Op: "open index", Cause: err}
	}
	s.indexes[name] = idx
	return idx, nil
}

func (s *Store) snapshotPath(name string) string {
	return filepath.Join(s.dataPath, CollectionsDirName, name+SnapshotExt)
}

// embedTexts embeds texts in provider-sized batches.
func (s *Store) embedTexts(ctx context.Context, handle *embedder.ModelHandle, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedder.MaxBatchSize {
		end := start + embedder.MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		resp, err := handle.Embedder.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: texts[start:end]})
		if err != nil {
			return nil, &types.ModelLoadError{ModelID: handle.ModelID, Cause: err}
		}
		for _, emb := range resp.Embeddings {
			vectors = append(vectors, emb.Vector)
		}
	}
	if len(vectors) != len(texts) {
		return nil, &types.InternalError{Message: fmt.Sprintf(
			"embedding count %d does not match document count %d", len(vectors), len(texts))}
	}
	return vectors, nil
}

func docTexts(docs []types.Document) []string {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}
	return texts
}
