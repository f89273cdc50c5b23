package embedder

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdekker/ragserve/pkg/types"
)

func TestRegistryGetOrLoadOnce(t *testing.T) {
	var loads atomic.Int32
	reg := NewRegistryWithLoader(func(modelID string) (Embedder, error) {
		loads.Add(1)
		return NewLocalProvider(nil)
	})

	h1, err := reg.GetOrLoad("local")
	require.NoError(t, err)
	h2, err := reg.GetOrLoad("local")
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryConcurrentGetOrLoad(t *testing.T) {
	var loads atomic.Int32
	ready := make(chan struct{})
	reg := NewRegistryWithLoader(func(modelID string) (Embedder, error) {
		loads.Add(1)
		// Hold the load until every goroutine is in flight, so they all
		// race on the same key.
		<-ready
		return NewLocalProvider(nil)
	})

	const goroutines = 32
	handles := make([]*ModelHandle, goroutines)

	var start, done sync.WaitGroup
	start.Add(goroutines)
	done.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer done.Done()
			start.Done()
			start.Wait()
			h, err := reg.GetOrLoad("local")
			require.NoError(t, err)
			handles[i] = h
		}(i)
	}

	start.Wait()
	close(ready)
	done.Wait()

	assert.Equal(t, int32(1), loads.Load(), "concurrent callers must trigger exactly one load")
	for i := 1; i < goroutines; i++ {
		assert.Same(t, handles[0], handles[i], "all callers must receive the same handle")
	}
}

func TestRegistryFailedLoadNotCached(t *testing.T) {
	var loads atomic.Int32
	fail := true
	reg := NewRegistryWithLoader(func(modelID string) (Embedder, error) {
		loads.Add(1)
		if fail {
			return nil, errors.New("backend unavailable")
		}
		return NewLocalProvider(nil)
	})

	_, err := reg.GetOrLoad("local")
	require.Error(t, err)
	assert.Equal(t, types.KindModelLoad, types.KindOf(err))
	assert.Equal(t, 0, reg.Len())

	// The next call retries instead of replaying the failure.
	fail = false
	h, err := reg.GetOrLoad("local")
	require.NoError(t, err)
	assert.NotNil(t, h)
	assert.Equal(t, int32(2), loads.Load())
}

func TestRegistryClear(t *testing.T) {
	var loads atomic.Int32
	reg := NewRegistryWithLoader(func(modelID string) (Embedder, error) {
		loads.Add(1)
		return NewLocalProvider(nil)
	})

	h1, err := reg.GetOrLoad("local")
	require.NoError(t, err)

	reg.Clear()
	assert.Equal(t, 0, reg.Len())

	// The old handle stays usable for anyone still holding it.
	emb, err := h1.Embedder.GenerateEmbedding(t.Context(), EmbeddingRequest{Text: "still works"})
	require.NoError(t, err)
	assert.Len(t, emb.Vector, LocalDimension)

	// A fresh request performs a fresh load.
	h2, err := reg.GetOrLoad("local")
	require.NoError(t, err)
	assert.NotSame(t, h1, h2)
	assert.Equal(t, int32(2), loads.Load())
}

func TestRegistryInfo(t *testing.T) {
	reg := NewRegistryWithLoader(func(modelID string) (Embedder, error) {
		return NewLocalProvider(nil)
	})

	_, err := reg.GetOrLoad("local")
	require.NoError(t, err)
	_, err = reg.GetOrLoad("other")
	require.NoError(t, err)

	info := reg.Info()
	assert.Len(t, info, 2)
	assert.Contains(t, info, "local")
	assert.Contains(t, info, "other")
}
