package types

import "time"

// Metadata is a flat mapping of string keys to scalar values attached to a
// document. Nested values are rejected at validation time.
type Metadata map[string]interface{}

// Document is an immutable text payload stored in a collection.
type Document struct {
	ID       string
	Text     string
	Metadata Metadata
}

// SearchHit is a single ranked result from a similarity search.
// Lower distance means more similar.
type SearchHit struct {
	Text     string
	Metadata Metadata
	Distance float64
}

// CollectionInfo describes a collection for listing purposes.
type CollectionInfo struct {
	Name          string
	ModelID       string
	DocumentCount int64
	CreatedAt     time.Time
}

// ValidateMetadata checks that a metadata mapping contains only scalar
// values. A nil map is valid.
func ValidateMetadata(m Metadata) error {
	for k, v := range m {
		switch v.(type) {
		case nil, string, bool, int, int32, int64, float32, float64:
		default:
			return NewValidationError("metadata key %q has non-scalar value of type %T", k, v)
		}
	}
	return nil
}
