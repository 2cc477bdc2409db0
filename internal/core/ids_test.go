package core

import (
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	g := UUIDGenerator{}
	id := g.NewID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, g.NewID())
	assert.Equal(t, "uuid", g.Type())
}

func TestULIDGeneratorIsMonotonicAndConcurrent(t *testing.T) {
	g := NewULIDGenerator()
	const n = 200
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = g.NewID()
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		_, err := ulid.ParseStrict(id)
		require.NoError(t, err)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	a, b := g.NewID(), g.NewID()
	assert.True(t, sort.StringsAreSorted([]string{a, b}))
}

func TestNewIDGenerator(t *testing.T) {
	g, err := NewIDGenerator("")
	require.NoError(t, err)
	assert.Equal(t, "uuid", g.Type())

	g, err = NewIDGenerator("ULID")
	require.NoError(t, err)
	assert.Equal(t, "ulid", g.Type())

	_, err = NewIDGenerator("snowflake")
	assert.Error(t, err)
}
