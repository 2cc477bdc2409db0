package designer

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddlsync/internal/ast"
	"ddlsync/internal/core"
	"ddlsync/internal/dialect"
)

type seqIDs struct{ n atomic.Int64 }

func (g *seqIDs) NewID() string { return fmt.Sprintf("id-%d", g.n.Add(1)) }
func (g *seqIDs) Type() string  { return "seq" }

const blogSQL = `CREATE TABLE users (id SERIAL PRIMARY KEY, email VARCHAR(255) NOT NULL UNIQUE);
CREATE TABLE posts (id SERIAL PRIMARY KEY, author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE);`

func newService(t *testing.T, cacheSize int) *Service {
	t.Helper()
	s, err := New(Options{IDs: &seqIDs{}, CacheSize: cacheSize})
	require.NoError(t, err)
	return s
}

func TestParseSQL(t *testing.T) {
	s := newService(t, 8)
	res, err := s.ParseSQL(blogSQL, core.DialectPostgreSQL)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Tables, 2)
	require.Len(t, res.Relations, 1)
	assert.Equal(t, core.Cascade, res.Relations[0].OnDelete)
}

func TestParseSQLUnsupportedDialect(t *testing.T) {
	s := newService(t, 0)
	_, err := s.ParseSQL(blogSQL, core.Dialect("Oracle"))
	require.Error(t, err)
}

func TestParseCacheReturnsIndependentTrees(t *testing.T) {
	s := newService(t, 8)
	first, err := s.ParseSQL(blogSQL, core.DialectPostgreSQL)
	require.NoError(t, err)
	assert.Equal(t, 1, s.cache.len())

	second, err := s.ParseSQL(blogSQL, core.DialectPostgreSQL)
	require.NoError(t, err)
	assert.Equal(t, 1, s.cache.len())
	assert.NotEqual(t, first.Tables[0].ID, second.Tables[0].ID, "each extraction mints fresh ids")
	assert.Equal(t, first.Schema().TableNames(), second.Schema().TableNames())
}

func TestParseCacheSkipsErrors(t *testing.T) {
	s := newService(t, 8)
	res, err := s.ParseSQL("CREATE TABLE (", core.DialectPostgreSQL)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, s.cache.len())
}

func TestCacheKeyIncludesDialect(t *testing.T) {
	const sql = "CREATE TABLE t (id INTEGER);"
	assert.NotEqual(t, cacheKey(core.DialectMySQL, sql), cacheKey(core.DialectSQLite, sql))
}

func TestCachedParserClonesHits(t *testing.T) {
	c, err := newParseCache(2)
	require.NoError(t, err)
	inner := &countingParser{nodes: []ast.Node{{"k": []any{"v"}}}}
	p := c.wrap(core.DialectMySQL, inner)

	a, err := p.Parse("x")
	require.NoError(t, err)
	a[0]["k"] = "changed"
	b, err := p.Parse("x")
	require.NoError(t, err)
	assert.Equal(t, []any{"v"}, b[0]["k"])
	assert.Equal(t, 1, inner.calls)
}

type countingParser struct {
	nodes []ast.Node
	calls int
}

func (p *countingParser) Parse(string) ([]ast.Node, error) {
	p.calls++
	return p.nodes, nil
}

func TestValidateSQL(t *testing.T) {
	s := newService(t, 0)
	v, err := s.ValidateSQL("CREATE TABLE a (id INT);", core.DialectMySQL)
	require.NoError(t, err)
	assert.True(t, v.Valid)

	v, err = s.ValidateSQL("CREATE TABLE a (id INT,, x INT);", core.DialectMySQL)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.NotEmpty(t, v.Errors)
}

func TestConvert(t *testing.T) {
	s := newService(t, 0)
	out, res, err := s.Convert(blogSQL, core.DialectPostgreSQL, core.DialectMySQL)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, out, "-- Dialect: MySQL")
	assert.Contains(t, out, "id INT AUTO_INCREMENT PRIMARY KEY")
	assert.Contains(t, out, "ON DELETE CASCADE")
}

func TestConvertReportsSyntaxErrors(t *testing.T) {
	s := newService(t, 0)
	out, res, err := s.Convert("CREATE TABLE (", core.DialectPostgreSQL, core.DialectSQLite)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, res.Success)
}

func TestConvertUnsupportedTarget(t *testing.T) {
	s := newService(t, 0)
	_, _, err := s.Convert(blogSQL, core.DialectPostgreSQL, core.Dialect("Oracle"))
	require.Error(t, err)
}

func TestGenerateSQLUsesOptions(t *testing.T) {
	s, err := New(Options{IDs: &seqIDs{}, Generate: dialect.Options{Header: []string{"Project: blog"}}})
	require.NoError(t, err)
	res, err := s.ParseSQL(blogSQL, core.DialectPostgreSQL)
	require.NoError(t, err)
	out, err := s.GenerateSQL(res.Schema(), core.DialectSQLite)
	require.NoError(t, err)
	assert.Contains(t, out, "-- Project: blog")
}

func TestEditKeepsIdentityAcrossRename(t *testing.T) {
	s := newService(t, 8)
	res, err := s.ParseSQL(blogSQL, core.DialectPostgreSQL)
	require.NoError(t, err)
	previous := res.Schema()

	edited := strings.Replace(blogSQL, "TABLE posts", "TABLE articles", 1)
	merged, parsed, err := s.Edit(previous, blogSQL, edited, core.DialectPostgreSQL)
	require.NoError(t, err)
	require.True(t, parsed.Success)
	require.NotNil(t, merged)

	articles := merged.Schema.FindTable("articles")
	require.NotNil(t, articles)
	assert.Equal(t, previous.FindTable("posts").ID, articles.ID)
	require.Len(t, merged.Renamed, 1)
	assert.Equal(t, "posts", merged.Renamed[0].From)
	assert.Len(t, merged.Schema.Relations, 1)
}

func TestReconcileWithBrokenSnapshot(t *testing.T) {
	s := newService(t, 0)
	res, err := s.ParseSQL(blogSQL, core.DialectPostgreSQL)
	require.NoError(t, err)
	previous := res.Schema()

	current, err := s.ParseSQL(strings.Replace(blogSQL, "TABLE posts", "TABLE articles", 1), core.DialectPostgreSQL)
	require.NoError(t, err)

	merged, err := s.Reconcile(previous, "not sql at all (", current.Schema(), core.DialectPostgreSQL)
	require.NoError(t, err)
	assert.Empty(t, merged.Renamed)
	assert.Equal(t, previous.FindTable("users").ID, merged.Schema.FindTable("users").ID)
	assert.NotEqual(t, previous.FindTable("posts").ID, merged.Schema.FindTable("articles").ID)
}
