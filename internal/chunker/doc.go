// Package chunker splits document text into embedding-sized pieces.
//
// Three strategies are available:
//
//   - fixed: overlapping windows of roughly ChunkSize characters, cut at
//     the nearest sentence ending when one is close to the boundary
//   - paragraph: whole paragraphs packed up to ChunkSize, with an
//     overlap tail carried between chunks ("semantic" is an alias)
//   - code: top-level function/class blocks grouped up to ChunkSize,
//     falling back to fixed when no boundaries are found
//
// Every chunk records its index, the total chunk count for the document,
// and its character span in the source text. Text shorter than
// MinChunkSize comes back as a single "complete" chunk.
//
//	c, err := chunker.New(chunker.StrategyFixed, chunker.Config{})
//	chunks := c.Chunk(documentText)
//
// ID builds the stable per-chunk identifier used by the indexer, so a
// re-index of unchanged content produces identical document ids.
package chunker
