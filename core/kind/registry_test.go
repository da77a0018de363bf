package kind

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twin-sync/core/reconcile"
)

type stubExecutor struct {
	*Base
}

func (s stubExecutor) ExecuteRow(_ context.Context, row *reconcile.Row, _ string) (*reconcile.Row, error) {
	return row, nil
}

func stubKind(name string, columns ...string) Kind {
	fields := make([]Field, len(columns))
	for i, c := range columns {
		fields[i] = Field{Name: c}
	}
	return Kind{
		Schema:   Schema{Name: name, Fields: fields},
		Executor: stubExecutor{NewBase(name, Deps{})},
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubKind("first", "a", "b")))
	require.NoError(t, r.Register(stubKind("second", "a", "b")))
	require.NoError(t, r.Register(stubKind("third", "c")))

	t.Run("Duplicate", func(t *testing.T) {
		assert.EqualError(t, r.Register(stubKind("first", "x")), "kind first is already registered")
		assert.Error(t, r.Register(Kind{Schema: Schema{Name: "noexec"}}))
	})

	t.Run("Get", func(t *testing.T) {
		k, ok := r.Get("third")
		assert.True(t, ok)
		assert.Equal(t, "third", k.Name())
		_, ok = r.Get("missing")
		assert.False(t, ok)
	})

	t.Run("FindMatchingUsesRegistrationOrder", func(t *testing.T) {
		k, err := r.FindMatching([]string{"b", "a"})
		require.NoError(t, err)
		assert.Equal(t, "first", k.Name())

		k, err = r.FindMatching([]string{"C"})
		require.NoError(t, err)
		assert.Equal(t, "third", k.Name())
	})

	t.Run("NoMatch", func(t *testing.T) {
		_, err := r.FindMatching([]string{"a"})
		assert.True(t, IsValidation(err))
	})

	names := []string{}
	for _, k := range r.All() {
		names = append(names, k.Name())
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}
