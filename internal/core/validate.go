package core

import (
	"errors"
	"fmt"
	"strings"
)

// Validate runs the structural checks on a schema and joins every violation
// found. It never inspects column types for compatibility.
func (s *Schema) Validate() error {
	if s == nil {
		return errors.New("schema is nil")
	}
	var errs []error
	errs = append(errs, s.validateTables()...)
	errs = append(errs, s.validateRelations()...)
	return errors.Join(errs...)
}

func (s *Schema) validateTables() []error {
	var errs []error
	seen := make(map[string]bool, len(s.Tables))
	for i, t := range s.Tables {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("table #%d: name is required", i+1))
			continue
		}
		key := strings.ToLower(t.Name)
		if seen[key] {
			errs = append(errs, fmt.Errorf("duplicate table name %q", t.Name))
		}
		seen[key] = true
		errs = append(errs, t.validateColumns()...)
	}
	return errs
}

func (t *Table) validateColumns() []error {
	var errs []error
	seen := make(map[string]bool, len(t.Columns))
	for i, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("table %q: column #%d: name is required", t.Name, i+1))
			continue
		}
		key := strings.ToLower(c.Name)
		if seen[key] {
			errs = append(errs, fmt.Errorf("table %q: duplicate column name %q", t.Name, c.Name))
		}
		seen[key] = true
		if c.PrimaryKey && (c.Nullable || !c.Unique) {
			errs = append(errs, fmt.Errorf("table %q: primary key column %q must be NOT NULL and UNIQUE", t.Name, c.Name))
		}
	}
	return errs
}

func (s *Schema) validateRelations() []error {
	var errs []error
	for i, r := range s.Relations {
		src, dst := s.TableByID(r.SourceTableID), s.TableByID(r.TargetTableID)
		switch {
		case src == nil:
			errs = append(errs, fmt.Errorf("relation %s: unknown source table %q", r.ID, r.SourceTableID))
		case src.ColumnByID(r.SourceColumnID) == nil:
			errs = append(errs, fmt.Errorf("relation %s: column %q does not belong to table %q", r.ID, r.SourceColumnID, src.Name))
		}
		switch {
		case dst == nil:
			errs = append(errs, fmt.Errorf("relation %s: unknown target table %q", r.ID, r.TargetTableID))
		case dst.ColumnByID(r.TargetColumnID) == nil:
			errs = append(errs, fmt.Errorf("relation %s: column %q does not belong to table %q", r.ID, r.TargetColumnID, dst.Name))
		}
		for _, prev := range s.Relations[:i] {
			if prev.Connects(r.SourceColumnID, r.TargetColumnID) {
				errs = append(errs, fmt.Errorf("relation %s duplicates relation %s", r.ID, prev.ID))
				break
			}
		}
	}
	return errs
}
