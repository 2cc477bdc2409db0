// Package reconcile merges a freshly extracted schema into the previous one,
// keeping identifiers and canvas metadata stable across edits. Tables match
// by name first and by position in the original script second; columns
// match by name only.
package reconcile

import (
	"strings"

	"ddlsync/internal/core"
)

// TableRename records a table matched by position under a new name.
type TableRename struct {
	ID   string `json:"id" yaml:"id"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Result is the merged schema plus a summary of how tables were matched.
type Result struct {
	Schema        *core.Schema  `json:"schema" yaml:"schema"`
	Renamed       []TableRename `json:"renamed,omitempty" yaml:"renamed,omitempty"`
	AddedTables   []string      `json:"addedTables,omitempty" yaml:"addedTables,omitempty"`
	RemovedTables []string      `json:"removedTables,omitempty" yaml:"removedTables,omitempty"`
}

// Reconcile merges current into previous. originalOrder lists the table
// names of the unedited script in declaration order and drives positional
// rename detection. Inputs are not modified; every returned object is a
// copy. Reconcile never fails: with nothing matchable every table is new.
func Reconcile(previous *core.Schema, originalOrder []string, current *core.Schema) *Result {
	if previous == nil {
		previous = &core.Schema{}
	}
	if current == nil {
		current = &core.Schema{}
	}

	m := &matcher{
		previous:  previous,
		claimed:   make(map[string]bool),
		tableIDs:  make(map[string]string),
		columnIDs: make(map[string]string),
		newNames:  make(map[string]bool, len(current.Tables)),
	}
	for _, t := range current.Tables {
		m.newNames[strings.ToLower(t.Name)] = true
	}

	res := &Result{Schema: &core.Schema{
		Tables:    make([]*core.Table, 0, len(current.Tables)),
		Relations: []*core.Relation{},
	}}
	for i, t := range current.Tables {
		merged := t.Clone()
		old, renamed := m.match(t, i, originalOrder)
		if old == nil {
			res.AddedTables = append(res.AddedTables, t.Name)
		} else {
			m.adopt(merged, old)
			if renamed {
				res.Renamed = append(res.Renamed, TableRename{ID: old.ID, From: old.Name, To: t.Name})
			}
		}
		m.tableIDs[t.ID] = merged.ID
		res.Schema.Tables = append(res.Schema.Tables, merged)
	}
	for _, old := range previous.Tables {
		if !m.claimed[old.ID] {
			res.RemovedTables = append(res.RemovedTables, old.Name)
		}
	}

	for _, r := range previous.Relations {
		if _, _, _, _, ok := res.Schema.ResolveRelation(r); ok {
			rc := *r
			res.Schema.Relations = append(res.Schema.Relations, &rc)
		}
	}
	for _, r := range current.Relations {
		rc := *r
		rc.SourceTableID = m.remapTable(r.SourceTableID)
		rc.TargetTableID = m.remapTable(r.TargetTableID)
		rc.SourceColumnID = m.remapColumn(r.SourceColumnID)
		rc.TargetColumnID = m.remapColumn(r.TargetColumnID)
		if _, _, _, _, ok := res.Schema.ResolveRelation(&rc); !ok {
			continue
		}
		if res.Schema.HasRelation(rc.SourceColumnID, rc.TargetColumnID) {
			continue
		}
		res.Schema.Relations = append(res.Schema.Relations, &rc)
	}
	return res
}

type matcher struct {
	previous  *core.Schema
	claimed   map[string]bool
	tableIDs  map[string]string
	columnIDs map[string]string
	newNames  map[string]bool
}

// match finds the previous table for the new table at position i. A name
// match wins; otherwise the table that stood at position i in the original
// script is taken as renamed, provided nothing else claimed it and its old
// name is gone from the new script.
func (m *matcher) match(t *core.Table, i int, originalOrder []string) (old *core.Table, renamed bool) {
	if old := m.previous.FindTable(t.Name); old != nil && !m.claimed[old.ID] {
		m.claimed[old.ID] = true
		return old, false
	}
	if i >= len(originalOrder) {
		return nil, false
	}
	old = m.previous.FindTable(originalOrder[i])
	if old == nil || m.claimed[old.ID] || m.newNames[strings.ToLower(old.Name)] {
		return nil, false
	}
	m.claimed[old.ID] = true
	return old, true
}

// adopt transplants the identifier and canvas metadata of old onto merged,
// and the identifiers of same-named columns.
func (m *matcher) adopt(merged, old *core.Table) {
	merged.ID = old.ID
	merged.Position = old.Position
	merged.Color = old.Color
	merged.ParentID = old.ParentID
	for _, c := range merged.Columns {
		if oc := old.FindColumn(c.Name); oc != nil {
			m.columnIDs[c.ID] = oc.ID
			c.ID = oc.ID
		}
	}
}

func (m *matcher) remapTable(id string) string {
	if mapped, ok := m.tableIDs[id]; ok {
		return mapped
	}
	return id
}

func (m *matcher) remapColumn(id string) string {
	if mapped, ok := m.columnIDs[id]; ok {
		return mapped
	}
	return id
}
