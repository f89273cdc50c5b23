package store

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hupe1980/vecgo"
	"github.com/hupe1980/vecgo/metadata"

	"github.com/mdekker/ragserve/pkg/types"
)

// docPayload is the per-vector payload persisted inside the vector index
// snapshot. Seq is the insertion order, used to break distance ties.
type docPayload struct {
	ID   string
	Text string
	Seq  int64
}

// vecIndex wraps one collection's vector index. The index is an exact
// (flat) cosine index: collections here are personal-scale, well under
// the point where approximate search pays off.
type vecIndex struct {
	db   *vecgo.Vecgo[docPayload]
	path string
}

// openVecIndex loads the snapshot at path, or builds an empty index of
// the given dimension when no snapshot exists.
func openVecIndex(path string, dimension int) (*vecIndex, error) {
	if _, err := os.Stat(path); err == nil {
		db, err := vecgo.NewFromFile[docPayload](path)
		if err != nil {
			return nil, fmt.Errorf("failed to load index snapshot %s: %w", path, err)
		}
		return &vecIndex{db: db, path: path}, nil
	}

	db, err := vecgo.Flat[docPayload](dimension).Cosine().Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}
	return &vecIndex{db: db, path: path}, nil
}

// add inserts documents with their vectors and persists a fresh snapshot.
func (v *vecIndex) add(ctx context.Context, payloads []docPayload, vectors [][]float32, metas []types.Metadata) error {
	items := make([]vecgo.VectorWithData[docPayload], len(payloads))
	for i := range payloads {
		var doc metadata.Metadata
		if i < len(metas) && len(metas[i]) > 0 {
			var err error
			doc, err = metadata.DocumentFromAny(map[string]any(metas[i]))
			if err != nil {
				return fmt.Errorf("unsupported metadata for document %s: %w", payloads[i].ID, err)
			}
		}
		items[i] = vecgo.VectorWithData[docPayload]{
			Vector:   vectors[i],
			Data:     payloads[i],
			Metadata: doc,
		}
	}

	result := v.db.BatchInsert(ctx, items)
	for _, err := range result.Errors {
		if err != nil {
			return fmt.Errorf("batch insert failed: %w", err)
		}
	}

	return v.save()
}

// search runs a nearest-neighbor query and returns hits ordered by
// ascending distance, ties broken by insertion order.
func (v *vecIndex) search(ctx context.Context, query []float32, k int) ([]types.SearchHit, error) {
	if k <= 0 {
		return nil, nil
	}

	results, err := v.db.KNNSearch(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("knn search failed: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Data.Seq < results[j].Data.Seq
	})

	hits := make([]types.SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, types.SearchHit{
			Text:     r.Data.Text,
			Metadata: metadataToMap(r.Metadata),
			Distance: float64(r.Distance),
		})
	}
	return hits, nil
}

// save writes the current index state to the snapshot file.
func (v *vecIndex) save() error {
	if err := v.db.SaveToFile(v.path); err != nil {
		return fmt.Errorf("failed to save index snapshot %s: %w", v.path, err)
	}
	return nil
}

// close releases the index handle without touching the snapshot.
func (v *vecIndex) close() error {
	return v.db.Close()
}

// metadataToMap converts index metadata back to the scalar map shape the
// tool surface returns.
func metadataToMap(doc metadata.Metadata) types.Metadata {
	if len(doc) == 0 {
		return nil
	}
	out := make(types.Metadata, len(doc))
	for key, val := range doc {
		if s, ok := val.AsString(); ok {
			out[key] = s
		} else if b, ok := val.AsBool(); ok {
			out[key] = b
		} else if i, ok := val.AsInt64(); ok {
			out[key] = i
		} else if f, ok := val.AsFloat64(); ok {
			out[key] = f
		}
	}
	return out
}
