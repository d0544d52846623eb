package netlist

import (
	"fmt"
	"io"

	"github.com/OpenTraceLab/bom2md/pkg/kicad/sexp"
	"github.com/OpenTraceLab/bom2md/pkg/kicad/sexp/kicadsexp"
)

// ParseSexp reads a KiCad s-expression netlist (.net), the
// (export (version "E") ...) format written by "Export Netlist".
func ParseSexp(r io.Reader) (*Netlist, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("%w: empty netlist", ErrParse)
	}

	root := sexps[0]
	if name, _ := sexp.GetNodeName(root); name != "export" || root.IsLeaf() {
		return nil, fmt.Errorf("%w: expected 'export' root, got %q", ErrParse, name)
	}

	n := &Netlist{}
	if design, ok := sexp.FindNode(root, "design"); ok {
		n.Source, _ = sexp.ChildValue(design, "source")
		n.Tool, _ = sexp.ChildValue(design, "tool")
	}

	if comps, ok := sexp.FindNode(root, "components"); ok {
		for _, node := range sexp.FindAllNodes(comps, "comp") {
			c, err := parseSexpComp(node)
			if err != nil {
				return nil, err
			}
			n.Components = append(n.Components, c)
		}
	}

	if parts, ok := sexp.FindNode(root, "libparts"); ok {
		for _, node := range sexp.FindAllNodes(parts, "libpart") {
			p := &LibPart{}
			p.Lib, _ = sexp.ChildValue(node, "lib")
			p.Part, _ = sexp.ChildValue(node, "part")
			p.Description, _ = sexp.ChildValue(node, "description")
			p.Fields = parseSexpFields(node)
			n.LibParts = append(n.LibParts, p)
		}
	}

	n.link()
	return n, nil
}

func parseSexpComp(node kicadsexp.Sexp) (*Component, error) {
	c := &Component{}
	c.Ref, _ = sexp.ChildValue(node, "ref")
	if c.Ref == "" {
		return nil, fmt.Errorf("%w: component without ref", ErrParse)
	}
	c.Value, _ = sexp.ChildValue(node, "value")
	c.Footprint, _ = sexp.ChildValue(node, "footprint")
	c.Datasheet, _ = sexp.ChildValue(node, "datasheet")
	if src, ok := sexp.FindNode(node, "libsource"); ok {
		c.Lib, _ = sexp.ChildValue(src, "lib")
		c.Part, _ = sexp.ChildValue(src, "part")
	}
	c.Fields = parseSexpFields(node)

	// (property (name "dnp")) or (property (name "Sheetname") (value "Root"))
	for _, pn := range sexp.FindAllNodes(node, "property") {
		name, ok := sexp.ChildValue(pn, "name")
		if !ok {
			continue
		}
		value, _ := sexp.ChildValue(pn, "value")
		c.Properties = append(c.Properties, Field{Name: name, Value: value})
	}
	return c, nil
}

func parseSexpFields(node kicadsexp.Sexp) []Field {
	fields, ok := sexp.FindNode(node, "fields")
	if !ok {
		return nil
	}
	var out []Field
	for _, fn := range sexp.FindAllNodes(fields, "field") {
		if f, err := sexp.GetField(fn); err == nil {
			out = append(out, Field{Name: f.Key, Value: f.Value})
		}
	}
	return out
}
