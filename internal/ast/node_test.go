package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstTriesExtractorsInOrder(t *testing.T) {
	n := Node{"colname": "id", "name": "ignored"}
	var calls []string
	byColumn := func(n Node) (string, bool) {
		calls = append(calls, "column")
		return String(n, "column", "column")
	}
	byColname := func(n Node) (string, bool) {
		calls = append(calls, "colname")
		return String(n, "colname")
	}
	byName := func(n Node) (string, bool) {
		calls = append(calls, "name")
		return String(n, "name")
	}

	got, ok := First[string](n, byColumn, byColname, byName)
	require.True(t, ok)
	assert.Equal(t, "id", got)
	assert.Equal(t, []string{"column", "colname"}, calls)

	_, ok = First[string](nil, byName)
	assert.False(t, ok)
}

func TestPathIndexesListsAndObjects(t *testing.T) {
	n := Node{"table": []any{Node{"table": "users"}}}
	got, ok := String(n, "table", 0, "table")
	require.True(t, ok)
	assert.Equal(t, "users", got)

	_, ok = String(n, "table", 1, "table")
	assert.False(t, ok)
	_, ok = String(n, "table", "x")
	assert.False(t, ok)
}

func TestIntAcceptsNumericShapes(t *testing.T) {
	doc, err := Decode([]byte(`{"a": 12, "b": "7", "c": 2.0, "d": true}`))
	require.NoError(t, err)

	for key, want := range map[string]int{"a": 12, "b": 7, "c": 2} {
		got, ok := Int(doc, key)
		require.True(t, ok, key)
		assert.Equal(t, want, got)
	}
	_, ok := Int(doc, "d")
	assert.False(t, ok)
}

func TestUnwrapAndKind(t *testing.T) {
	wrapped := Node{"ColumnDef": Node{"colname": "id"}}
	kind, ok := Kind(wrapped)
	require.True(t, ok)
	assert.Equal(t, "ColumnDef", kind)
	assert.Equal(t, "id", Unwrap(wrapped, "ColumnDef")["colname"])

	plain := Node{"colname": "id", "x": 1}
	assert.Equal(t, plain, Unwrap(plain, "ColumnDef"))
	_, ok = Kind(plain)
	assert.False(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	orig := Node{"list": []any{Node{"k": "v"}}}
	c := Clone(orig)
	c["list"].([]any)[0].(Node)["k"] = "changed"
	assert.Equal(t, "v", orig["list"].([]any)[0].(Node)["k"])
}

func TestObjectsSkipsScalars(t *testing.T) {
	n := Node{"items": []any{Node{"a": 1}, "x", 3, Node{"b": 2}}}
	assert.Len(t, Objects(n, "items"), 2)
	assert.Empty(t, Objects(n, "missing"))
}
