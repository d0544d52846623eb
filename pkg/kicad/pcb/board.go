package pcb

import "github.com/OpenTraceLab/bom2md/pkg/kicad/sexp"

// Property is a footprint property such as (property "MPN" "RC0603...")
type Property = sexp.Property

// Board holds the parts of a KiCad PCB file that matter for a BOM.
type Board struct {
	Version    int
	Generator  string
	Footprints []Footprint
}

// Footprint represents a placed component footprint
type Footprint struct {
	Library    string     // Library name
	Name       string     // Footprint name
	Layer      string     // Layer (F.Cu or B.Cu typically)
	Reference  string     // Reference designator (e.g., "R1")
	Value      string     // Component value
	Properties []Property // Remaining properties, in file order
	Attributes []string   // (attr smd exclude_from_bom dnp ...)
}

// LibID returns "Library:Name", or just the name for unqualified footprints.
func (fp *Footprint) LibID() string {
	if fp.Library == "" {
		return fp.Name
	}
	return fp.Library + ":" + fp.Name
}

// HasAttribute reports whether the (attr ...) list carries attr.
func (fp *Footprint) HasAttribute(attr string) bool {
	for _, a := range fp.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

// Property returns the value of the named property, or "".
func (fp *Footprint) Property(key string) string {
	for _, p := range fp.Properties {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// GetFootprint finds a footprint by reference designator
func (b *Board) GetFootprint(ref string) *Footprint {
	for i := range b.Footprints {
		if b.Footprints[i].Reference == ref {
			return &b.Footprints[i]
		}
	}
	return nil
}
