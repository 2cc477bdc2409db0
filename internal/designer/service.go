// Package designer is the entry point used by the CLI and by embedding
// applications. It wires the grammars, the extractor, the generator and the
// reconciler behind one service.
package designer

import (
	"fmt"

	"ddlsync/internal/core"
	"ddlsync/internal/dialect"
	_ "ddlsync/internal/dialect/mysql"
	_ "ddlsync/internal/dialect/postgres"
	_ "ddlsync/internal/dialect/sqlite"
	"ddlsync/internal/extract"
	"ddlsync/internal/parser"
	_ "ddlsync/internal/parser/mysql"
	_ "ddlsync/internal/parser/postgres"
	_ "ddlsync/internal/parser/sqlite"
	"ddlsync/internal/reconcile"
)

// Options configure a Service. A nil IDs selects UUIDs; a CacheSize of zero
// disables the parse cache.
type Options struct {
	IDs       core.IDGenerator
	CacheSize int
	Generate  dialect.Options
}

// Service is safe for concurrent use.
type Service struct {
	ids     core.IDGenerator
	cache   *parseCache
	genOpts dialect.Options
}

func New(opts Options) (*Service, error) {
	ids := opts.IDs
	if ids == nil {
		ids = core.UUIDGenerator{}
	}
	cache, err := newParseCache(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}
	return &Service{ids: ids, cache: cache, genOpts: opts.Generate}, nil
}

func (s *Service) extractor(d core.Dialect) (*extract.Extractor, error) {
	p, err := parser.ForDialect(d)
	if err != nil {
		return nil, err
	}
	return extract.New(s.cache.wrap(d, p), s.ids), nil
}

// ParseSQL extracts the schema of sql. The error is reserved for an
// unsupported dialect; syntax errors are reported in the result.
func (s *Service) ParseSQL(sql string, d core.Dialect) (extract.Result, error) {
	e, err := s.extractor(d)
	if err != nil {
		return extract.Result{}, err
	}
	return e.Extract(sql), nil
}

// ValidateSQL reports only whether sql parses.
func (s *Service) ValidateSQL(sql string, d core.Dialect) (extract.Validation, error) {
	e, err := s.extractor(d)
	if err != nil {
		return extract.Validation{}, err
	}
	return e.Validate(sql), nil
}

// GenerateSQL renders schema as DDL for d.
func (s *Service) GenerateSQL(schema *core.Schema, d core.Dialect) (string, error) {
	return dialect.Generate(schema, d, s.genOpts)
}

// Reconcile merges current into previous. originalSQL is the unedited
// script previous was extracted from; its table order drives rename
// detection. An unparsable snapshot only disables positional matching.
func (s *Service) Reconcile(previous *core.Schema, originalSQL string, current *core.Schema, d core.Dialect) (*reconcile.Result, error) {
	res, err := s.ParseSQL(originalSQL, d)
	if err != nil {
		return nil, err
	}
	var order []string
	if res.Success {
		order = res.Schema().TableNames()
	}
	return reconcile.Reconcile(previous, order, current), nil
}

// Edit re-parses an edited script and reconciles it against the schema of
// the original script in one step.
func (s *Service) Edit(previous *core.Schema, originalSQL, editedSQL string, d core.Dialect) (*reconcile.Result, extract.Result, error) {
	parsed, err := s.ParseSQL(editedSQL, d)
	if err != nil || !parsed.Success {
		return nil, parsed, err
	}
	merged, err := s.Reconcile(previous, originalSQL, parsed.Schema(), d)
	return merged, parsed, err
}

// Convert parses sql as from and regenerates it as to. When sql does not
// parse the extraction result carries the errors and the DDL is empty.
func (s *Service) Convert(sql string, from, to core.Dialect) (string, extract.Result, error) {
	if _, err := dialect.GetDialect(to); err != nil {
		return "", extract.Result{}, err
	}
	res, err := s.ParseSQL(sql, from)
	if err != nil || !res.Success {
		return "", res, err
	}
	out, err := s.GenerateSQL(res.Schema(), to)
	return out, res, err
}
