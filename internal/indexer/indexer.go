package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mdekker/ragserve/internal/chunker"
	"github.com/mdekker/ragserve/internal/ignore"
	"github.com/mdekker/ragserve/internal/store"
	"github.com/mdekker/ragserve/pkg/types"
)

const (
	// DefaultBatchSize is how many chunks are sent to the store per add
	DefaultBatchSize = 100

	// DefaultMaxFileSize skips files larger than this (10 MiB)
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// Config controls an indexing run. Zero values take the defaults.
type Config struct {
	BatchSize   int
	MaxFileSize int64

	Strategy     chunker.Strategy
	ChunkSize    int
	ChunkOverlap int
	MinChunkSize int
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	return c
}

// Result summarizes one indexing run. Per-file failures are contained:
// they land in Errors and FilesSkipped while the walk continues.
type Result struct {
	Collection   string   `json:"collection"`
	TotalFiles   int      `json:"total_files"`
	FilesIndexed int      `json:"files_indexed"`
	FilesSkipped int      `json:"files_skipped"`
	TotalChunks  int      `json:"total_chunks"`
	Errors       []string `json:"errors,omitempty"`
}

// Indexer walks a directory tree and feeds its text content into the
// collection store.
type Indexer struct {
	store *store.Store
	cfg   Config
}

// New creates an indexer backed by the given store.
func New(st *store.Store, cfg Config) *Indexer {
	return &Indexer{store: st, cfg: cfg.withDefaults()}
}

// IndexDirectory indexes every non-ignored text file under root into the
// named collection. The run only aborts on a fatal condition: a bad root,
// an unusable collection, or an embedding model that cannot be loaded.
func (ix *Indexer) IndexDirectory(ctx context.Context, root, collection, modelID string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, types.NewValidationError("directory does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, types.NewValidationError("path is not a directory: %s", root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &types.StorageError{Op: "resolve root path", Cause: err}
	}

	// Fail the whole run up front if the collection or its model is
	// unusable; nothing is partially indexed into a broken target.
	if _, err := ix.store.GetOrCreate(ctx, collection, modelID); err != nil {
		return nil, err
	}

	ck, err := chunker.New(ix.cfg.Strategy, chunker.Config{
		ChunkSize:    ix.cfg.ChunkSize,
		Overlap:      ix.cfg.ChunkOverlap,
		MinChunkSize: ix.cfg.MinChunkSize,
	})
	if err != nil {
		return nil, err
	}

	files := ix.collectFiles(absRoot)

	result := &Result{Collection: collection, TotalFiles: len(files)}
	var batch []types.Document

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := ix.store.AddDocuments(ctx, collection, modelID, batch)
		batch = batch[:0]
		return err
	}

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		docs, err := ix.indexFile(absRoot, rel, ck)
		if err != nil {
			result.FilesSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rel, err))
			continue
		}
		if docs == nil {
			// Unreadable as text, oversized, or empty. Not an error.
			result.FilesSkipped++
			continue
		}

		result.FilesIndexed++
		result.TotalChunks += len(docs)

		for _, doc := range docs {
			batch = append(batch, doc)
			if len(batch) >= ix.cfg.BatchSize {
				if err := flush(); err != nil {
					if fatal(err) {
						return result, err
					}
					result.Errors = append(result.Errors, fmt.Sprintf("batch add failed: %v", err))
				}
			}
		}
	}

	if err := flush(); err != nil {
		if fatal(err) {
			return result, err
		}
		result.Errors = append(result.Errors, fmt.Sprintf("batch add failed: %v", err))
	}

	return result, nil
}

// fatal reports whether an error invalidates the rest of the run rather
// than one file.
func fatal(err error) bool {
	switch types.KindOf(err) {
	case types.KindModelLoad, types.KindModelMismatch, types.KindCollectionNotFound:
		return true
	}
	return false
}

// collectFiles walks the tree breadth-first with an explicit worklist,
// consulting the ignore matcher before descending into any directory.
// Returned paths are slash-separated and relative to root.
func (ix *Indexer) collectFiles(root string) []string {
	matcher := ignore.NewMatcher(ignore.DefaultPatterns)

	var files []string
	queue := []string{""}

	for len(queue) > 0 {
		rel := queue[0]
		queue = queue[1:]

		dir := filepath.Join(root, filepath.FromSlash(rel))
		matcher.AddIgnoreFiles(dir, rel)

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			childRel := path.Join(rel, entry.Name())

			if entry.IsDir() {
				// Excluded directories are never traversed, so
				// negations naming paths inside them stay inert.
				if !matcher.Match(childRel, true) {
					queue = append(queue, childRel)
				}
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}
			if !matcher.Match(childRel, false) {
				files = append(files, childRel)
			}
		}
	}

	return files
}

// indexFile reads, hashes, and chunks one file. A nil, nil return means
// the file was skipped without error (binary, oversized, or empty).
func (ix *Indexer) indexFile(root, rel string, ck *chunker.Chunker) ([]types.Document, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	if info.Size() > ix.cfg.MaxFileSize {
		return nil, nil
	}

	raw, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}

	// Hash the raw bytes once; the same hash keys the chunk ids, so an
	// unchanged file re-indexes to identical ids.
	sum := sha256.Sum256(raw)
	fileHash := hex.EncodeToString(sum[:])

	if !utf8.Valid(raw) {
		return nil, nil
	}
	content := string(raw)
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	ext := strings.ToLower(path.Ext(rel))
	fileMeta := types.Metadata{
		"file_path":     full,
		"file_name":     path.Base(rel),
		"file_ext":      ext,
		"file_size":     info.Size(),
		"modified_time": info.ModTime().Unix(),
		"language":      chunker.LanguageForExtension(ext),
		"file_hash":     fileHash,
	}

	chunks := ck.Chunk(content)
	docs := make([]types.Document, 0, len(chunks))
	for _, c := range chunks {
		meta := make(types.Metadata, len(fileMeta)+6)
		for k, v := range fileMeta {
			meta[k] = v
		}
		meta["chunk_index"] = int64(c.Index)
		meta["total_chunks"] = int64(c.Total)
		meta["char_start"] = int64(c.CharStart)
		meta["char_end"] = int64(c.CharEnd)
		meta["token_count"] = int64(chunker.EstimateTokens(c.Text))
		meta["chunk_type"] = c.Type

		docs = append(docs, types.Document{
			ID:       chunker.ID(rel, fileHash[:8], c.Index),
			Text:     c.Text,
			Metadata: meta,
		})
	}
	return docs, nil
}
