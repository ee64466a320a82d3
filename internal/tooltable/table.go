// Package tooltable resolves (domain, diagram_type) pairs to rendering backends.
package tooltable

import (
	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/diagram"
)

// Resolution is the outcome of a table lookup.
type Resolution struct {
	diagram.Mapping
	// Defaulted is set when the pair had no entry and a default was used.
	Defaulted bool
}

// Table is the read-only tool selection table. Safe for concurrent use.
type Table struct {
	global  diagram.Mapping
	domains map[string]domainEntry
}

type domainEntry struct {
	def   diagram.Mapping
	types map[string]diagram.Mapping
}

// New copies the tool section of a validated catalog.
func New(cat *catalog.Catalog) *Table {
	t := &Table{
		global:  cat.GlobalDefault,
		domains: make(map[string]domainEntry, len(cat.Tools)),
	}
	for d, dt := range cat.Tools {
		types := make(map[string]diagram.Mapping, len(dt.Types))
		for typ, m := range dt.Types {
			types[typ] = m
		}
		t.domains[d] = domainEntry{def: dt.Default, types: types}
	}
	return t
}

// Resolve returns the configured backend for the pair. Unknown types resolve to
// the domain default; unknown domains resolve to the global default.
func (t *Table) Resolve(domain, diagramType string) Resolution {
	de, ok := t.domains[domain]
	if !ok {
		return Resolution{Mapping: t.global, Defaulted: true}
	}
	if m, ok := de.types[diagramType]; ok {
		return Resolution{Mapping: m}
	}
	return Resolution{Mapping: de.def, Defaulted: true}
}

// DomainDefault returns the default backend of a domain, or the global default.
func (t *Table) DomainDefault(domain string) diagram.Mapping {
	if de, ok := t.domains[domain]; ok {
		return de.def
	}
	return t.global
}

// Has reports whether the pair has an explicit entry.
func (t *Table) Has(domain, diagramType string) bool {
	_, ok := t.domains[domain].types[diagramType]
	return ok
}
