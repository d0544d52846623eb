package netlist

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/bom2md/pkg/kicad/schematic"
)

// FromSchematic builds a netlist straight from a .kicad_sch file, following
// hierarchical sheets relative to the file that references them. A sheet
// file placed more than once is walked once per placement, and each symbol
// takes the reference recorded for that instance path. Power symbols
// ("#PWR01") and repeated units of multi-unit parts are dropped the way
// KiCad's own netlist export does.
func FromSchematic(path string) (*Netlist, error) {
	b := &schematicBuilder{
		net:   &Netlist{Source: path, Tool: "bom2md schematic reader"},
		stack: make(map[string]bool),
		refs:  make(map[string]bool),
		parts: make(map[[2]string]bool),
	}
	if err := b.addSheet(path, sheetPath{}); err != nil {
		return nil, err
	}
	b.net.link()
	return b.net, nil
}

type schematicBuilder struct {
	net   *Netlist
	root  *schematic.Schematic
	stack map[string]bool
	refs  map[string]bool
	parts map[[2]string]bool
}

// sheetPath locates one sheet instance. full is the KiCad 7+ form
// "/<root uuid>/<sheet uuid>...", rel omits the root uuid as KiCad 6's
// symbol_instances table does.
type sheetPath struct {
	full string
	rel  string
}

func (p sheetPath) child(uuid string) sheetPath {
	return sheetPath{full: p.full + "/" + uuid, rel: p.rel + "/" + uuid}
}

func (b *schematicBuilder) addSheet(path string, at sheetPath) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	if b.stack[abs] {
		return nil
	}
	b.stack[abs] = true
	defer delete(b.stack, abs)

	sch, err := schematic.ParseFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	if b.root == nil {
		b.root = sch
		at = sheetPath{full: "/" + sch.UUID}
	}

	for i := range sch.LibSymbols {
		b.addLibSymbol(&sch.LibSymbols[i])
	}
	for i := range sch.Symbols {
		b.addSymbol(sch, &sch.Symbols[i], at)
	}

	dir := filepath.Dir(path)
	for _, sheet := range sch.Sheets {
		if sheet.FileName == "" {
			continue
		}
		if err := b.addSheet(filepath.Join(dir, sheet.FileName), at.child(sheet.UUID)); err != nil {
			return err
		}
	}
	return nil
}

func (b *schematicBuilder) addLibSymbol(sym *schematic.LibSymbol) {
	lib, part := splitLibID(sym.Name)
	key := [2]string{lib, part}
	if b.parts[key] {
		return
	}
	b.parts[key] = true

	p := &LibPart{Lib: lib, Part: part}
	for _, prop := range sym.Properties {
		if strings.HasPrefix(prop.Key, "ki_") {
			if prop.Key == "ki_description" {
				p.Description = prop.Value
			}
			continue
		}
		p.Fields = append(p.Fields, Field{Name: prop.Key, Value: prop.Value})
	}
	b.net.LibParts = append(b.net.LibParts, p)
}

// reference resolves the designator of sym on the sheet instance at.
func (b *schematicBuilder) reference(sym *schematic.Symbol, at sheetPath) string {
	if ref, ok := sym.ReferenceAt(at.full); ok {
		return ref
	}
	if sym.UUID != "" {
		if ref, ok := b.root.InstanceReference(at.rel + "/" + sym.UUID); ok {
			return ref
		}
	}
	return sym.Reference()
}

func (b *schematicBuilder) addSymbol(sch *schematic.Schematic, sym *schematic.Symbol, at sheetPath) {
	ref := b.reference(sym, at)
	if ref == "" || strings.HasPrefix(ref, "#") || b.refs[ref] {
		return
	}
	b.refs[ref] = true

	c := &Component{Ref: ref}
	c.Lib, c.Part = splitLibID(sym.LibID)
	for _, prop := range sym.Properties {
		switch prop.Key {
		case FieldReference:
		case FieldValue:
			c.Value = prop.Value
		case FieldFootprint:
			c.Footprint = prop.Value
		case FieldDatasheet:
			c.Datasheet = prop.Value
		default:
			if !strings.HasPrefix(prop.Key, "ki_") {
				c.Fields = append(c.Fields, Field{Name: prop.Key, Value: prop.Value})
			}
		}
	}

	inBom := sym.InBom
	if lib := sch.GetLibSymbol(sym.LibID); lib != nil && !lib.InBom {
		inBom = false
	}
	if !inBom {
		c.Properties = append(c.Properties, Field{Name: "exclude_from_bom"})
	}
	if sym.DNP {
		c.Properties = append(c.Properties, Field{Name: "dnp"})
	}
	b.net.Components = append(b.net.Components, c)
}

// splitLibID splits "Device:R" into ("Device", "R").
func splitLibID(id string) (lib, part string) {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}
