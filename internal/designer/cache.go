package designer

import (
	"hash/fnv"

	lru "github.com/hashicorp/golang-lru/v2"

	"ddlsync/internal/ast"
	"ddlsync/internal/core"
	"ddlsync/internal/parser"
)

// parseCache keeps the syntax trees of recently parsed scripts. Keys hash
// the dialect together with the text; failed parses are not cached.
type parseCache struct {
	cache *lru.Cache[uint64, []ast.Node]
}

func newParseCache(size int) (*parseCache, error) {
	if size <= 0 {
		return nil, nil
	}
	cache, err := lru.New[uint64, []ast.Node](size)
	if err != nil {
		return nil, err
	}
	return &parseCache{cache: cache}, nil
}

func cacheKey(d core.Dialect, sql string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(d))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(sql))
	return h.Sum64()
}

// wrap returns p backed by the cache. Hits hand out deep copies so callers
// may not alter cached trees.
func (c *parseCache) wrap(d core.Dialect, p parser.Parser) parser.Parser {
	if c == nil {
		return p
	}
	return &cachedParser{dialect: d, inner: p, cache: c.cache}
}

func (c *parseCache) len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

type cachedParser struct {
	dialect core.Dialect
	inner   parser.Parser
	cache   *lru.Cache[uint64, []ast.Node]
}

func (p *cachedParser) Parse(sql string) ([]ast.Node, error) {
	key := cacheKey(p.dialect, sql)
	if nodes, ok := p.cache.Get(key); ok {
		return cloneNodes(nodes), nil
	}
	nodes, err := p.inner.Parse(sql)
	if err != nil {
		return nil, err
	}
	p.cache.Add(key, cloneNodes(nodes))
	return nodes, nil
}

func cloneNodes(nodes []ast.Node) []ast.Node {
	out := make([]ast.Node, len(nodes))
	for i, n := range nodes {
		out[i] = ast.Clone(n)
	}
	return out
}
