// Package schematic provides parsing for the BOM-relevant parts of KiCad
// schematic files (.kicad_sch)
package schematic

import (
	"strings"

	"github.com/OpenTraceLab/bom2md/pkg/kicad/sexp"
)

type Property = sexp.Property

// Schematic represents one KiCad schematic sheet
type Schematic struct {
	Version      int         // File format version
	Generator    string      // Generator info (e.g., "eeschema")
	GeneratorVer string      // Generator version
	UUID         string      // Sheet uuid, the first element of every instance path
	LibSymbols   []LibSymbol // Embedded library symbols
	Symbols      []Symbol    // Symbol instances on the schematic
	Sheets       []Sheet     // Hierarchical sheet references
	// SymbolInstances is the KiCad 6 root table keyed by
	// "/<sheet uuid>.../<symbol uuid>".
	SymbolInstances []Instance
}

// LibSymbol represents an embedded library symbol definition
type LibSymbol struct {
	Name       string     // Symbol name (e.g., "Device:R")
	InBom      bool       // Include in BOM
	Properties []Property // Symbol properties
}

// Symbol represents a symbol instance placed on the schematic
type Symbol struct {
	LibID      string     // Library identifier (e.g., "Device:R")
	Unit       int        // Unit number (for multi-unit symbols)
	InBom      bool       // Include in BOM
	OnBoard    bool       // Place on board
	DNP        bool       // Do not populate
	UUID       string
	Properties []Property // Instance properties (Reference, Value, etc.)
	Instances  []Instance // References recorded per hierarchical instance path
}

// Instance is one (path "/..." (reference "R1") (unit 1)) entry.
type Instance struct {
	Path      string
	Reference string
	Unit      int
}

// Sheet represents a hierarchical sheet reference
type Sheet struct {
	UUID     string
	Name     string
	FileName string
}

// Property returns the value of the named property and whether it exists.
func (s *Symbol) Property(key string) (string, bool) {
	return findProperty(s.Properties, key)
}

// Reference returns the reference designator. Unannotated references
// ("R?") fall back to the first annotated instance path.
func (s *Symbol) Reference() string {
	ref, _ := s.Property("Reference")
	if strings.HasSuffix(ref, "?") && len(s.Instances) > 0 {
		return s.Instances[0].Reference
	}
	return ref
}

// ReferenceAt returns the reference recorded for the sheet instance path,
// e.g. "/<root uuid>/<sheet uuid>".
func (s *Symbol) ReferenceAt(path string) (string, bool) {
	for _, inst := range s.Instances {
		if inst.Path == path {
			return inst.Reference, true
		}
	}
	return "", false
}

// Property returns the value of the named library property.
func (l *LibSymbol) Property(key string) (string, bool) {
	return findProperty(l.Properties, key)
}

func findProperty(props []Property, key string) (string, bool) {
	for _, p := range props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// GetLibSymbol returns the embedded library symbol with the given name
func (s *Schematic) GetLibSymbol(name string) *LibSymbol {
	for i := range s.LibSymbols {
		if s.LibSymbols[i].Name == name {
			return &s.LibSymbols[i]
		}
	}
	return nil
}

// InstanceReference looks up the KiCad 6 root table entry for path.
func (s *Schematic) InstanceReference(path string) (string, bool) {
	for _, inst := range s.SymbolInstances {
		if inst.Path == path {
			return inst.Reference, true
		}
	}
	return "", false
}
