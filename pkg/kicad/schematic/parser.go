package schematic

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/bom2md/pkg/kicad/sexp"
	"github.com/OpenTraceLab/bom2md/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version for schematics (6.0 = 20211014)
const MinSupportedVersion = 20211014

// ParseFile reads and parses a KiCad schematic file
func ParseFile(filename string) (*Schematic, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad schematic from an io.Reader
func Parse(r io.Reader) (*Schematic, error) {
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
	if rootName != "kicad_sch" {
		return nil, fmt.Errorf("not a KiCad schematic file: expected 'kicad_sch', got '%s'", rootName)
	}

	sch := &Schematic{}
	if err := parseHeader(root, sch); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	if libSymbolsNode, found := sexp.FindNode(root, "lib_symbols"); found {
		sch.LibSymbols = parseLibSymbols(libSymbolsNode)
	}
	sch.Symbols = parseSymbols(root)
	sch.Sheets = parseSheets(root)
	if node, found := sexp.FindNode(root, "symbol_instances"); found {
		sch.SymbolInstances = parseInstancePaths(node)
	}

	return sch, nil
}

// parseHeader extracts version and generator information
func parseHeader(root kicadsexp.Sexp, sch *Schematic) error {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return fmt.Errorf("missing required 'version' field")
	}

	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return fmt.Errorf("failed to parse version: %w", err)
	}
	if ver < MinSupportedVersion {
		return fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}
	sch.Version = ver

	sch.Generator, _ = sexp.ChildValue(root, "generator")
	sch.GeneratorVer, _ = sexp.ChildValue(root, "generator_version")
	sch.UUID, _ = sexp.ChildValue(root, "uuid")
	return nil
}

func parseProperties(node kicadsexp.Sexp) []Property {
	var props []Property
	for _, pn := range sexp.FindAllNodes(node, "property") {
		if prop, err := sexp.GetProperty(pn); err == nil {
			props = append(props, prop)
		}
	}
	return props
}

// parseLibSymbols parses embedded library symbols. Nested unit symbols
// ("R_0_1") carry graphics only and are skipped.
func parseLibSymbols(node kicadsexp.Sexp) []LibSymbol {
	symbolNodes := sexp.FindAllNodes(node, "symbol")
	symbols := make([]LibSymbol, 0, len(symbolNodes))

	for _, symNode := range symbolNodes {
		sym := LibSymbol{InBom: true}
		sym.Name, _ = sexp.GetString(symNode, 1)
		sym.Properties = parseProperties(symNode)
		if inBom, ok := sexp.GetYesNo(symNode, "in_bom"); ok {
			sym.InBom = inBom
		}
		symbols = append(symbols, sym)
	}

	return symbols
}

// parseSymbols parses the symbol instances placed on the sheet
func parseSymbols(root kicadsexp.Sexp) []Symbol {
	symbolNodes := sexp.FindAllNodes(root, "symbol")
	symbols := make([]Symbol, 0, len(symbolNodes))

	for _, node := range symbolNodes {
		sym := Symbol{
			InBom:   true,
			OnBoard: true,
			Unit:    1,
		}
		sym.LibID, _ = sexp.ChildValue(node, "lib_id")
		sym.UUID, _ = sexp.ChildValue(node, "uuid")
		if unitNode, found := sexp.FindNode(node, "unit"); found {
			sym.Unit, _ = sexp.GetInt(unitNode, 1)
		}
		if v, ok := sexp.GetYesNo(node, "in_bom"); ok {
			sym.InBom = v
		}
		if v, ok := sexp.GetYesNo(node, "on_board"); ok {
			sym.OnBoard = v
		}
		if v, ok := sexp.GetYesNo(node, "dnp"); ok {
			sym.DNP = v
		}
		sym.Properties = parseProperties(node)
		sym.Instances = parseInstances(node)

		symbols = append(symbols, sym)
	}

	return symbols
}

// parseInstances collects the per-path references from
// (instances (project "p" (path "/..." (reference "R1") (unit 1)))).
func parseInstances(node kicadsexp.Sexp) []Instance {
	instances, found := sexp.FindNode(node, "instances")
	if !found {
		return nil
	}
	var out []Instance
	for _, project := range sexp.FindAllNodes(instances, "project") {
		out = append(out, parseInstancePaths(project)...)
	}
	return out
}

func parseInstancePaths(node kicadsexp.Sexp) []Instance {
	var out []Instance
	for _, pn := range sexp.FindAllNodes(node, "path") {
		inst := Instance{Unit: 1}
		inst.Path, _ = sexp.GetString(pn, 1)
		inst.Reference, _ = sexp.ChildValue(pn, "reference")
		if unitNode, found := sexp.FindNode(pn, "unit"); found {
			inst.Unit, _ = sexp.GetInt(unitNode, 1)
		}
		if inst.Reference != "" {
			out = append(out, inst)
		}
	}
	return out
}

// parseSheets parses hierarchical sheet references. KiCad 6 names the
// properties "Sheet name"/"Sheet file", later versions drop the space.
func parseSheets(root kicadsexp.Sexp) []Sheet {
	sheetNodes := sexp.FindAllNodes(root, "sheet")
	sheets := make([]Sheet, 0, len(sheetNodes))

	for _, sn := range sheetNodes {
		sheet := Sheet{}
		sheet.UUID, _ = sexp.ChildValue(sn, "uuid")
		for _, prop := range parseProperties(sn) {
			switch prop.Key {
			case "Sheetname", "Sheet name":
				sheet.Name = prop.Value
			case "Sheetfile", "Sheet file":
				sheet.FileName = prop.Value
			}
		}
		sheets = append(sheets, sheet)
	}

	return sheets
}
