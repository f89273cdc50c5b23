package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{
			name: "validation",
			err:  NewValidationError("bad input: %d", 42),
			want: KindValidation,
		},
		{
			name: "collection not found",
			err:  &CollectionNotFoundError{Collection: "notes"},
			want: KindCollectionNotFound,
		},
		{
			name: "model mismatch",
			err:  &ModelMismatchError{Collection: "notes", Bound: "local", Requested: "jina"},
			want: KindModelMismatch,
		},
		{
			name: "model load",
			err:  &ModelLoadError{ModelID: "jina", Cause: errors.New("no api key")},
			want: KindModelLoad,
		},
		{
			name: "storage",
			err:  &StorageError{Op: "search", Cause: errors.New("disk full")},
			want: KindStorage,
		},
		{
			name: "explicit internal",
			err:  &InternalError{Message: "unexpected"},
			want: KindInternal,
		},
		{
			name: "unclassified defaults to internal",
			err:  errors.New("something broke"),
			want: KindInternal,
		},
		{
			name: "wrapped typed error keeps its kind",
			err:  fmt.Errorf("during add: %w", &StorageError{Op: "insert", Cause: errors.New("io")}),
			want: KindStorage,
		},
		{
			name: "deeply wrapped validation",
			err:  fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", NewValidationError("nope"))),
			want: KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "bad value", NewValidationError("bad value").Error())
	assert.Contains(t, (&CollectionNotFoundError{Collection: "x"}).Error(), `"x"`)

	mm := &ModelMismatchError{Collection: "c", Bound: "local", Requested: "jina"}
	assert.Contains(t, mm.Error(), "local")
	assert.Contains(t, mm.Error(), "jina")
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")

	assert.ErrorIs(t, &ModelLoadError{ModelID: "m", Cause: cause}, cause)
	assert.ErrorIs(t, &StorageError{Op: "op", Cause: cause}, cause)
}

func TestValidateMetadata(t *testing.T) {
	tests := []struct {
		name    string
		meta    Metadata
		wantErr bool
	}{
		{"nil map", nil, false},
		{"empty map", Metadata{}, false},
		{"scalars", Metadata{"s": "v", "b": true, "i": int64(3), "f": 1.5, "n": nil}, false},
		{"json numbers", Metadata{"count": float64(10)}, false},
		{"nested map", Metadata{"m": map[string]string{"a": "b"}}, true},
		{"slice", Metadata{"list": []string{"a"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMetadata(tt.meta)
			if tt.wantErr {
				assert.Equal(t, KindValidation, KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
