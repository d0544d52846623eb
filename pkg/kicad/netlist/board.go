package netlist

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/bom2md/pkg/kicad/pcb"
)

// Footprint properties that describe where a part came from rather than
// what it is.
var boardNoiseProperties = map[string]bool{
	"Sheetfile":   true,
	"Sheetname":   true,
	"Description": true,
}

// FromBoard builds a netlist from the footprints of a .kicad_pcb file. A
// board has no library parts, so every field comes from the footprint.
// Footprints without a reference and board-only items are dropped.
func FromBoard(path string) (*Netlist, error) {
	board, err := pcb.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	n := &Netlist{Source: path, Tool: board.Generator}
	seen := make(map[string]bool)
	for i := range board.Footprints {
		fp := &board.Footprints[i]
		ref := fp.Reference
		if ref == "" || strings.HasPrefix(ref, "#") || seen[ref] || fp.HasAttribute("board_only") {
			continue
		}
		seen[ref] = true
		n.Components = append(n.Components, componentFromFootprint(fp))
	}
	return n, nil
}

func componentFromFootprint(fp *pcb.Footprint) *Component {
	c := &Component{
		Ref:       fp.Reference,
		Value:     fp.Value,
		Footprint: fp.LibID(),
	}
	for _, prop := range fp.Properties {
		switch {
		case prop.Key == FieldDatasheet:
			c.Datasheet = prop.Value
		case prop.Key == FieldFootprint:
		case boardNoiseProperties[prop.Key] || strings.HasPrefix(prop.Key, "ki_"):
		default:
			c.Fields = append(c.Fields, Field{Name: prop.Key, Value: prop.Value})
		}
	}
	if fp.HasAttribute("exclude_from_bom") {
		c.Properties = append(c.Properties, Field{Name: "exclude_from_bom"})
	}
	if fp.HasAttribute("dnp") {
		c.Properties = append(c.Properties, Field{Name: "dnp"})
	}
	return c
}
