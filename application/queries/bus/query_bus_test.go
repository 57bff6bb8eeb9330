package bus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuery struct {
	Key     string
	invalid bool
}

func (q fakeQuery) Validate() error {
	if q.invalid {
		return errors.New("bad query")
	}
	return nil
}

type countingQueryHandler struct {
	calls  int
	result interface{}
	err    error
}

func (h *countingQueryHandler) Handle(ctx context.Context, query Query) (interface{}, error) {
	h.calls++
	return h.result, h.err
}

// mapCache is a trivial Cache for middleware tests
type mapCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMapCache() *mapCache {
	return &mapCache{items: map[string]interface{}{}}
}

func (c *mapCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

// nopRecorder satisfies Recorder while recording call counts
type nopRecorder struct {
	counts  int
	timings int
}

func (r *nopRecorder) Count(ctx context.Context, name string, value float64) { r.counts++ }
func (r *nopRecorder) Timing(ctx context.Context, name string, ms float64)   { r.timings++ }

func TestQueryBus_Ask_ReturnsHandlerResult(t *testing.T) {
	// Arrange
	b := NewQueryBus()
	handler := &countingQueryHandler{result: 42}
	require.NoError(t, b.Register(fakeQuery{}, handler))

	// Act
	result, err := b.Ask(context.Background(), fakeQuery{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, handler.calls)
}

func TestQueryBus_Ask_InvalidQuery(t *testing.T) {
	// Arrange
	b := NewQueryBus()
	handler := &countingQueryHandler{}
	require.NoError(t, b.Register(fakeQuery{}, handler))

	// Act
	_, err := b.Ask(context.Background(), fakeQuery{invalid: true})

	// Assert
	require.Error(t, err)
	assert.Zero(t, handler.calls)
}

func TestQueryBus_Ask_UnregisteredQuery(t *testing.T) {
	// Arrange
	b := NewQueryBus()

	// Act
	_, err := b.Ask(context.Background(), fakeQuery{})

	// Assert
	assert.Error(t, err)
}

func TestCachingMiddleware_SecondAskHitsCache(t *testing.T) {
	// Arrange
	handler := &countingQueryHandler{result: "catalog"}
	cached := NewCachingMiddleware(newMapCache(), 300).Wrap(handler)

	// Act
	first, err := cached.Handle(context.Background(), fakeQuery{Key: "templates"})
	require.NoError(t, err)
	second, err := cached.Handle(context.Background(), fakeQuery{Key: "templates"})
	require.NoError(t, err)

	// Assert: one real execution, identical results
	assert.Equal(t, first, second)
	assert.Equal(t, 1, handler.calls)
}

func TestCachingMiddleware_DistinctQueriesCachedSeparately(t *testing.T) {
	// Arrange
	handler := &countingQueryHandler{result: "x"}
	cached := NewCachingMiddleware(newMapCache(), 300).Wrap(handler)

	// Act
	_, err := cached.Handle(context.Background(), fakeQuery{Key: "a"})
	require.NoError(t, err)
	_, err = cached.Handle(context.Background(), fakeQuery{Key: "b"})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 2, handler.calls)
}

func TestCachingMiddleware_ErrorsNotCached(t *testing.T) {
	// Arrange
	handler := &countingQueryHandler{err: errors.New("boom")}
	cached := NewCachingMiddleware(newMapCache(), 300).Wrap(handler)

	// Act
	_, err1 := cached.Handle(context.Background(), fakeQuery{})
	_, err2 := cached.Handle(context.Background(), fakeQuery{})

	// Assert: both calls reached the handler
	assert.Error(t, err1)
	assert.Error(t, err2)
	assert.Equal(t, 2, handler.calls)
}

func TestMetricsMiddleware_RecordsSuccessAndFailure(t *testing.T) {
	// Arrange
	recorder := &nopRecorder{}
	ok := NewMetricsMiddleware(recorder).Wrap(&countingQueryHandler{result: 1})
	failing := NewMetricsMiddleware(recorder).Wrap(&countingQueryHandler{err: errors.New("boom")})

	// Act
	_, err := ok.Handle(context.Background(), fakeQuery{})
	require.NoError(t, err)
	_, err = failing.Handle(context.Background(), fakeQuery{})
	require.Error(t, err)

	// Assert: a timing and a count per call
	assert.Equal(t, 2, recorder.timings)
	assert.Equal(t, 2, recorder.counts)
}
