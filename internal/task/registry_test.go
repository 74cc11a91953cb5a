package task

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopHandler struct{}

func (nopHandler) Process(ctx context.Context, payload map[string]any) (any, error) {
	return nil, nil
}

func TestRegistryLookup(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	_, err := r.Handler("missing_type")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnregisteredType)
	assert.Contains(t, err.Error(), "missing_type")

	r.Register("echo", func() Handler { return nopHandler{} })

	factory, err := r.Handler("echo")
	require.NoError(t, err)
	require.NotNil(t, factory)
	assert.NotNil(t, factory())
}

func TestRegistryLastWriteWins(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	r.Register("echo", func() Handler { return nil })
	r.Register("echo", func() Handler { return nopHandler{} })

	factory, err := r.Handler("echo")
	require.NoError(t, err)
	assert.Equal(t, nopHandler{}, factory())
	assert.Equal(t, []string{"echo"}, r.Types())
}

func TestRegistryTypesSorted(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	assert.Empty(t, r.Types())

	for _, name := range []string{"question_generator", "mistake_analyzer", "daily_task_generator"} {
		r.Register(name, func() Handler { return nopHandler{} })
	}

	assert.Equal(t,
		[]string{"daily_task_generator", "mistake_analyzer", "question_generator"},
		r.Types())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register("echo", func() Handler { return nopHandler{} })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Handler("echo")
			assert.NoError(t, err)
			_ = r.Types()
		}()
	}
	wg.Wait()
}
