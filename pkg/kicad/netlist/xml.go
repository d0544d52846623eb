package netlist

import (
	"encoding/xml"
	"fmt"
	"io"
)

// xmlExport mirrors the KiCad intermediate netlist handed to BOM plugins.
type xmlExport struct {
	XMLName xml.Name `xml:"export"`
	Design  struct {
		Source string `xml:"source"`
		Tool   string `xml:"tool"`
	} `xml:"design"`
	Components []xmlComp    `xml:"components>comp"`
	LibParts   []xmlLibPart `xml:"libparts>libpart"`
}

type xmlComp struct {
	Ref       string     `xml:"ref,attr"`
	Value     string     `xml:"value"`
	Footprint string     `xml:"footprint"`
	Datasheet string     `xml:"datasheet"`
	Fields    []xmlField `xml:"fields>field"`
	LibSource struct {
		Lib  string `xml:"lib,attr"`
		Part string `xml:"part,attr"`
	} `xml:"libsource"`
	Properties []struct {
		Name  string `xml:"name,attr"`
		Value string `xml:"value,attr"`
	} `xml:"property"`
}

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlLibPart struct {
	Lib         string     `xml:"lib,attr"`
	Part        string     `xml:"part,attr"`
	Description string     `xml:"description"`
	Fields      []xmlField `xml:"fields>field"`
}

// ParseXML reads a KiCad intermediate XML netlist.
func ParseXML(r io.Reader) (*Netlist, error) {
	var doc xmlExport
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: xml: %v", ErrParse, err)
	}

	n := &Netlist{
		Source: doc.Design.Source,
		Tool:   doc.Design.Tool,
	}
	for _, xc := range doc.Components {
		if xc.Ref == "" {
			return nil, fmt.Errorf("%w: xml: component without ref", ErrParse)
		}
		c := &Component{
			Ref:       xc.Ref,
			Value:     xc.Value,
			Footprint: xc.Footprint,
			Datasheet: xc.Datasheet,
			Lib:       xc.LibSource.Lib,
			Part:      xc.LibSource.Part,
			Fields:    convertXMLFields(xc.Fields),
		}
		for _, p := range xc.Properties {
			c.Properties = append(c.Properties, Field{Name: p.Name, Value: p.Value})
		}
		n.Components = append(n.Components, c)
	}
	for _, xp := range doc.LibParts {
		n.LibParts = append(n.LibParts, &LibPart{
			Lib:         xp.Lib,
			Part:        xp.Part,
			Description: xp.Description,
			Fields:      convertXMLFields(xp.Fields),
		})
	}
	n.link()
	return n, nil
}

func convertXMLFields(in []xmlField) []Field {
	var out []Field
	for _, f := range in {
		out = append(out, Field{Name: f.Name, Value: f.Value})
	}
	return out
}
