// Package ast models dialect syntax trees as loosely typed maps. Grammar
// front-ends emit these nodes and the normalizer reads them back through
// ordered extractor chains, so the same fact can arrive in several shapes.
package ast

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Node is one object of a syntax tree.
type Node = map[string]any

// Extractor reads one candidate shape from a node.
type Extractor[T any] func(n Node) (T, bool)

// First tries each extractor in order and returns the first hit.
func First[T any](n Node, extractors ...Extractor[T]) (T, bool) {
	var zero T
	if n == nil {
		return zero, false
	}
	for _, ex := range extractors {
		if v, ok := ex(n); ok {
			return v, true
		}
	}
	return zero, false
}

// Path walks nested objects by key. Integer path elements index lists.
func Path(n Node, keys ...any) (any, bool) {
	var cur any = n
	for _, k := range keys {
		switch key := k.(type) {
		case string:
			m, ok := cur.(Node)
			if !ok {
				return nil, false
			}
			cur, ok = m[key]
			if !ok {
				return nil, false
			}
		case int:
			list, ok := cur.([]any)
			if !ok || key < 0 || key >= len(list) {
				return nil, false
			}
			cur = list[key]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

// String returns a non-empty string at path.
func String(n Node, keys ...any) (string, bool) {
	v, ok := Path(n, keys...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// Int returns an integer at path, accepting the numeric shapes produced by
// JSON decoding and by grammar adapters.
func Int(n Node, keys ...any) (int, bool) {
	v, ok := Path(n, keys...)
	if !ok {
		return 0, false
	}
	return ToInt(v)
}

// ToInt converts a scalar to int.
func ToInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		return int(x), true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i), true
		}
		f, err := x.Float64()
		return int(f), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		return i, err == nil
	default:
		return 0, false
	}
}

// Bool returns a boolean at path.
func Bool(n Node, keys ...any) (value bool, ok bool) {
	v, ok := Path(n, keys...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Object returns a nested object at path.
func Object(n Node, keys ...any) (Node, bool) {
	v, ok := Path(n, keys...)
	if !ok {
		return nil, false
	}
	m, ok := v.(Node)
	return m, ok
}

// List returns a list at path.
func List(n Node, keys ...any) ([]any, bool) {
	v, ok := Path(n, keys...)
	if !ok {
		return nil, false
	}
	l, ok := v.([]any)
	return l, ok
}

// Objects returns the objects of the list at path, skipping other values.
func Objects(n Node, keys ...any) []Node {
	l, _ := List(n, keys...)
	out := make([]Node, 0, len(l))
	for _, v := range l {
		if m, ok := v.(Node); ok {
			out = append(out, m)
		}
	}
	return out
}

// Unwrap returns the payload of a single-key wrapper such as
// {"ColumnDef": {...}} when the key matches, otherwise n itself.
func Unwrap(n Node, key string) Node {
	if inner, ok := n[key].(Node); ok && len(n) == 1 {
		return inner
	}
	return n
}

// Kind returns the key of a single-key wrapper object.
func Kind(n Node) (string, bool) {
	if len(n) != 1 {
		return "", false
	}
	for k, v := range n {
		if _, ok := v.(Node); ok {
			return k, true
		}
	}
	return "", false
}

// Decode parses a JSON document into nodes. Numbers stay json.Number so
// large integers survive.
func Decode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n Node
	if err := dec.Decode(&n); err != nil {
		return nil, err
	}
	return n, nil
}

// Clone deep-copies a node so cached trees can be handed out safely.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	return cloneValue(n).(Node)
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Node:
		out := make(Node, len(x))
		for k, val := range x {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
