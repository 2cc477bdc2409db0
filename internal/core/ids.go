package core

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces opaque identifiers for tables, columns and relations.
// Implementations must be safe for concurrent use.
type IDGenerator interface {
	NewID() string
	Type() string
}

// UUIDGenerator generates UUID v4 values.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

func (UUIDGenerator) Type() string {
	return "uuid"
}

// ULIDGenerator generates lexicographically sortable ULID values.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

func (g *ULIDGenerator) Type() string {
	return "ulid"
}

// NewIDGenerator returns the generator registered under name. An empty name
// selects UUIDs.
func NewIDGenerator(name string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "uuid":
		return UUIDGenerator{}, nil
	case "ulid":
		return NewULIDGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown id format %q; use 'uuid' or 'ulid'", name)
	}
}

// NewTable creates an empty table with a fresh identifier.
func NewTable(ids IDGenerator, name string) *Table {
	return &Table{ID: ids.NewID(), Name: name, Columns: []*Column{}}
}

// AddColumn appends a nullable column with a fresh identifier.
func (t *Table) AddColumn(ids IDGenerator, name string, typ ColumnType) *Column {
	col := &Column{ID: ids.NewID(), Name: name, Type: typ, Nullable: true}
	t.Columns = append(t.Columns, col)
	return col
}
