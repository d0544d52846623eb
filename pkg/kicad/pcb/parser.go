package pcb

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OpenTraceLab/bom2md/pkg/kicad/sexp"
	"github.com/OpenTraceLab/bom2md/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version (6.0 = 20211014)
const MinSupportedVersion = 20211014

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad board from an io.Reader. Only the header
// and the footprints are decoded; tracks, zones and graphics are skipped.
func Parse(r io.Reader) (*Board, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	root := sexps[0]
	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}
	if rootName != "kicad_pcb" {
		return nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got '%s'", rootName)
	}

	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	board := &Board{
		Version:   version,
		Generator: generator,
	}
	for _, node := range sexp.FindAllNodes(root, "footprint") {
		fp, err := parseFootprint(node)
		if err != nil {
			return nil, fmt.Errorf("failed to parse footprint: %w", err)
		}
		board.Footprints = append(board.Footprints, *fp)
	}

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root kicadsexp.Sexp) (version int, generator string, err error) {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return 0, "", fmt.Errorf("missing required 'version' field")
	}

	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}
	if ver < MinSupportedVersion {
		return 0, "", fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}

	// Older boards use (host pcbnew "(6.0.0)")
	gen := "unknown"
	if g, ok := sexp.ChildValue(root, "generator"); ok && g != "" {
		gen = g
	} else if h, ok := sexp.ChildValue(root, "host"); ok && h != "" {
		gen = h
	}

	return ver, gen, nil
}

// parseFootprint extracts the identity and BOM data of a footprint.
// KiCad 8 writes (property "Reference" "R1" ...); KiCad 6 and 7 use
// (fp_text reference "R1" ...) and (fp_text value "10k" ...).
func parseFootprint(node kicadsexp.Sexp) (*Footprint, error) {
	fpName, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}

	footprint := &Footprint{}
	if i := strings.IndexByte(fpName, ':'); i > 0 {
		footprint.Library = fpName[:i]
		footprint.Name = fpName[i+1:]
	} else {
		footprint.Name = fpName
	}
	footprint.Layer, _ = sexp.ChildValue(node, "layer")

	for _, textNode := range sexp.FindAllNodes(node, "fp_text") {
		kind, _ := sexp.GetString(textNode, 1)
		text, _ := sexp.GetString(textNode, 2)
		switch kind {
		case "reference":
			footprint.Reference = text
		case "value":
			footprint.Value = text
		}
	}

	for _, propNode := range sexp.FindAllNodes(node, "property") {
		prop, err := sexp.GetProperty(propNode)
		if err != nil {
			continue
		}
		switch prop.Key {
		case "Reference":
			footprint.Reference = prop.Value
		case "Value":
			footprint.Value = prop.Value
		default:
			footprint.Properties = append(footprint.Properties, prop)
		}
	}

	if attrNode, found := sexp.FindNode(node, "attr"); found {
		for _, item := range sexp.Items(attrNode)[1:] {
			if sym, ok := item.(kicadsexp.Symbol); ok {
				footprint.Attributes = append(footprint.Attributes, string(sym))
			}
		}
	}

	return footprint, nil
}
