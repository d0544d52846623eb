// Package netlist reads KiCad netlists (intermediate XML, s-expression
// .net, a .kicad_sch hierarchy or the footprints of a .kicad_pcb) and answers the questions a BOM
// generator asks: which components belong in the BOM, which fields exist,
// how components group, and what a group's field values are.
package netlist

import "errors"

// ErrParse is wrapped by every error caused by malformed input.
var ErrParse = errors.New("netlist: parse error")

// Built-in field names every component reports.
const (
	FieldReference = "Reference"
	FieldValue     = "Value"
	FieldFootprint = "Footprint"
	FieldDatasheet = "Datasheet"
)

// Field is a named metadata attribute
type Field struct {
	Name  string
	Value string
}

// LibPart is a library part definition referenced by components
type LibPart struct {
	Lib         string
	Part        string
	Description string
	Fields      []Field
}

// Field returns the named field value, or "" when absent.
func (p *LibPart) Field(name string) string {
	return lookup(p.Fields, name)
}

// Component is one placed part
type Component struct {
	Ref        string
	Value      string
	Footprint  string
	Datasheet  string
	Lib        string // libsource lib
	Part       string // libsource part
	Fields     []Field
	Properties []Field // KiCad 7+ flags such as dnp and exclude_from_bom

	libPart *LibPart
}

// Reference returns the reference designator
func (c *Component) Reference() string {
	return c.Ref
}

// LibPart returns the library part this component was placed from, if the
// netlist declares one.
func (c *Component) LibPart() *LibPart {
	return c.libPart
}

// FieldNames lists the built-in names followed by the custom field names.
func (c *Component) FieldNames() []string {
	names := []string{FieldReference, FieldValue, FieldFootprint, FieldDatasheet}
	for _, f := range c.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Field returns the component's own value for name. When libraryToo is set
// and the component has no value, the library part's field is used.
func (c *Component) Field(name string, libraryToo bool) string {
	var v string
	switch name {
	case FieldReference:
		v = c.Ref
	case FieldValue:
		v = c.Value
	case FieldFootprint:
		v = c.Footprint
	case FieldDatasheet:
		v = c.Datasheet
	}
	if v == "" {
		v = lookup(c.Fields, name)
	}
	if v == "" && libraryToo && c.libPart != nil {
		v = c.libPart.Field(name)
	}
	return v
}

// HasProperty reports whether the component carries the named property.
func (c *Component) HasProperty(name string) bool {
	for _, p := range c.Properties {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Group is a set of components considered identical for BOM purposes
type Group []*Component

// Refs returns the member references in group order.
func (g Group) Refs() []string {
	refs := make([]string, len(g))
	for i, c := range g {
		refs[i] = c.Ref
	}
	return refs
}

// Netlist is a parsed design. It is read-only once constructed.
type Netlist struct {
	Source     string
	Tool       string
	Components []*Component
	LibParts   []*LibPart
}

func lookup(fields []Field, name string) string {
	for _, f := range fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// link resolves each component's library part.
func (n *Netlist) link() {
	byName := make(map[[2]string]*LibPart, len(n.LibParts))
	for _, p := range n.LibParts {
		byName[[2]string{p.Lib, p.Part}] = p
	}
	for _, c := range n.Components {
		c.libPart = byName[[2]string{c.Lib, c.Part}]
	}
}
