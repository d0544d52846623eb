package netlist

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdata = "../../../testdata"

func demoFiles() []string {
	return []string{
		filepath.Join(testdata, "demo.xml"),
		filepath.Join(testdata, "demo.net"),
		filepath.Join(testdata, "demo.kicad_sch"),
		filepath.Join(testdata, "demo.kicad_pcb"),
	}
}

func refsOf(components []*Component) []string {
	refs := make([]string, len(components))
	for i, c := range components {
		refs[i] = c.Ref
	}
	return refs
}

func TestParseFileFormats(t *testing.T) {
	for _, path := range demoFiles() {
		t.Run(filepath.Base(path), func(t *testing.T) {
			n, err := ParseFile(path)
			require.NoError(t, err)

			comps := n.InterestingComponents()
			assert.Equal(t, []string{"C1", "R1", "R2", "R3"}, refsOf(comps))

			groups := n.GroupComponents(comps)
			require.Len(t, groups, 3)
			assert.Equal(t, []string{"C1"}, groups[0].Refs())
			assert.Equal(t, []string{"R1", "R2"}, groups[1].Refs())
			assert.Equal(t, []string{"R3"}, groups[2].Refs())

			assert.Equal(t, "RC0603FR-0710KL", n.GroupField(groups[1], "MPN"))
			assert.Equal(t, "Yageo", n.GroupField(groups[1], "Manufacturer"))
			assert.Equal(t, "16V", n.GroupField(groups[0], "Voltage"))
			assert.Equal(t, "", n.GroupField(groups[0], "Manufacturer"))

			assert.Equal(t,
				[]string{"Datasheet", "Footprint", "MPN", "Manufacturer", "Value", "Voltage"},
				n.FieldCandidates(comps))
		})
	}
}

func TestFieldCandidatesIsUnionWithoutReference(t *testing.T) {
	n, err := ParseFile(filepath.Join(testdata, "demo.xml"))
	require.NoError(t, err)
	comps := n.InterestingComponents()

	want := make(map[string]bool)
	for _, f := range n.ComponentFieldUnion(comps) {
		want[f] = true
	}
	for _, f := range n.LibPartFieldUnion() {
		want[f] = true
	}
	delete(want, FieldReference)

	got := n.FieldCandidates(comps)
	assert.Len(t, got, len(want))
	for _, f := range got {
		assert.True(t, want[f], "unexpected candidate %q", f)
	}
	assert.NotContains(t, got, FieldReference)
}

func TestExcluded(t *testing.T) {
	tests := []struct {
		name string
		comp Component
		want bool
	}{
		{"plain resistor", Component{Ref: "R1", Value: "10k"}, false},
		{"test point", Component{Ref: "TP12", Value: "TestPoint"}, true},
		{"test point prefix only", Component{Ref: "TPX1", Value: "x"}, false},
		{"mounting hole", Component{Ref: "H1", Value: "MOUNTHOLE"}, true},
		{"solder bridge", Component{Ref: "JP1", Value: "SOLDER_BRIDGE_2"}, true},
		{"dnp property", Component{Ref: "R2", Properties: []Field{{Name: "dnp"}}}, true},
		{"exclude_from_bom", Component{Ref: "R3", Properties: []Field{{Name: "exclude_from_bom"}}}, true},
		{"dnp field value", Component{Ref: "C3", Value: "1u", Fields: []Field{{Name: "Config", Value: "Do Not Place"}}}, true},
		{"dnp value", Component{Ref: "C4", Value: "DNF"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.comp
			assert.Equal(t, tt.want, Excluded(&c))
		})
	}
}

func TestRefLess(t *testing.T) {
	refs := []string{"R10", "C2", "R2", "R1", "U1", "C10", "Q"}
	n := &Netlist{}
	for _, r := range refs {
		n.Components = append(n.Components, &Component{Ref: r})
	}
	assert.Equal(t, []string{"C2", "C10", "Q", "R1", "R2", "R10", "U1"}, refsOf(n.InterestingComponents()))
}

func TestGroupComponentsPartition(t *testing.T) {
	n := &Netlist{Components: []*Component{
		{Ref: "R1", Value: "10k", Footprint: "0603"},
		{Ref: "R2", Value: "10k", Footprint: "0805"},
		{Ref: "R3", Value: "10k", Footprint: "0603"},
		{Ref: "C1", Value: "10k", Footprint: "0603"},
	}}
	comps := n.InterestingComponents()
	groups := n.GroupComponents(comps)

	total := 0
	seen := make(map[string]bool)
	for _, g := range groups {
		total += len(g)
		for _, ref := range g.Refs() {
			assert.False(t, seen[ref], "%s appears twice", ref)
			seen[ref] = true
		}
	}
	assert.Equal(t, len(comps), total)
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"C1"}, groups[0].Refs())
	assert.Equal(t, []string{"R1", "R3"}, groups[1].Refs())
	assert.Equal(t, []string{"R2"}, groups[2].Refs())
}

func TestGroupFieldMissing(t *testing.T) {
	n := &Netlist{}
	g := Group{{Ref: "R1", Value: "1k"}}
	assert.Equal(t, "", n.GroupField(g, "DoesNotExist"))
	assert.Equal(t, "", n.GroupField(Group{}, "Value"))
}

func TestParseFileErrors(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.txt")
	require.NoError(t, os.WriteFile(garbage, []byte("not a netlist"), 0o644))
	_, err := ParseFile(garbage)
	assert.True(t, errors.Is(err, ErrParse))

	broken := filepath.Join(dir, "broken.xml")
	require.NoError(t, os.WriteFile(broken, []byte("<export><components><comp ref=\"R1\">"), 0o644))
	_, err = ParseFile(broken)
	assert.True(t, errors.Is(err, ErrParse))

	brokenNet := filepath.Join(dir, "broken.net")
	require.NoError(t, os.WriteFile(brokenNet, []byte("(export (components (comp (ref R1)"), 0o644))
	_, err = ParseFile(brokenNet)
	assert.True(t, errors.Is(err, ErrParse))

	_, err = ParseFile(filepath.Join(dir, "missing.xml"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrParse))
}

func TestParseSexpRejectsOtherRoots(t *testing.T) {
	_, err := ParseSexp(strings.NewReader(`(kicad_pcb (version 20231120))`))
	assert.True(t, errors.Is(err, ErrParse))
}

func TestParseSexpHashPrefixedAtoms(t *testing.T) {
	n, err := ParseSexp(strings.NewReader(`(export (version D)
		(components
			(comp (ref R1) (value #NC) (footprint F))
			(comp (ref R2) (value 1k) (footprint F))))`))
	require.NoError(t, err)
	require.Len(t, n.Components, 2)
	assert.Equal(t, "#NC", n.Components[0].Value)
}

func TestFromSchematicWalksEverySheetInstance(t *testing.T) {
	dir := t.TempDir()
	root := `(kicad_sch (version 20231120) (generator eeschema) (uuid "root")
		(symbol (lib_id "Device:R") (unit 1) (uuid "r1a") (property "Reference" "R1") (property "Value" "1k")
			(instances (project "demo" (path "/root" (reference "R1") (unit 1)))))
		(symbol (lib_id "Device:R") (unit 2) (uuid "r1b") (property "Reference" "R1") (property "Value" "1k")
			(instances (project "demo" (path "/root" (reference "R1") (unit 2)))))
		(sheet (uuid "sa") (property "Sheetname" "A") (property "Sheetfile" "ch.kicad_sch"))
		(sheet (uuid "sb") (property "Sheetname" "B") (property "Sheetfile" "ch.kicad_sch")))`
	child := `(kicad_sch (version 20231120) (generator eeschema) (uuid "ch")
		(symbol (lib_id "Device:C") (unit 1) (uuid "c") (property "Reference" "C1") (property "Value" "1u")
			(instances (project "demo"
				(path "/root/sa" (reference "C1") (unit 1))
				(path "/root/sb" (reference "C2") (unit 1)))))
		(sheet (uuid "loop") (property "Sheetname" "Loop") (property "Sheetfile" "root.kicad_sch")))`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "root.kicad_sch"), []byte(root), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ch.kicad_sch"), []byte(child), 0o644))

	n, err := ParseFile(filepath.Join(dir, "root.kicad_sch"))
	require.NoError(t, err)
	comps := n.InterestingComponents()
	assert.Equal(t, []string{"C1", "C2", "R1"}, refsOf(comps))

	groups := n.GroupComponents(comps)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"C1", "C2"}, groups[0].Refs())
	assert.Equal(t, []string{"R1"}, groups[1].Refs())
}

func TestFromSchematicLegacySymbolInstances(t *testing.T) {
	dir := t.TempDir()
	root := `(kicad_sch (version 20211123) (generator eeschema) (uuid "root")
		(sheet (uuid "sa") (property "Sheet name" "A") (property "Sheet file" "ch.kicad_sch"))
		(sheet (uuid "sb") (property "Sheet name" "B") (property "Sheet file" "ch.kicad_sch"))
		(symbol_instances
			(path "/sa/c" (reference "C3") (unit 1))
			(path "/sb/c" (reference "C4") (unit 1))))`
	child := `(kicad_sch (version 20211123) (generator eeschema) (uuid "ch")
		(symbol (lib_id "Device:C") (unit 1) (uuid "c") (property "Reference" "C?") (property "Value" "1u")))`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "root.kicad_sch"), []byte(root), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ch.kicad_sch"), []byte(child), 0o644))

	n, err := ParseFile(filepath.Join(dir, "root.kicad_sch"))
	require.NoError(t, err)
	assert.Equal(t, []string{"C3", "C4"}, refsOf(n.InterestingComponents()))
}

func TestFromSchematicUnresolvablePath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs getcwd to fail in a removed directory")
	}
	gone := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.Mkdir(gone, 0o755))
	t.Chdir(gone)
	require.NoError(t, os.Remove(gone))

	_, err := FromSchematic("root.kicad_sch")
	assert.ErrorIs(t, err, ErrParse)
}

func TestFromBoardSkipsBoardOnlyItems(t *testing.T) {
	n, err := ParseFile(filepath.Join(testdata, "demo.kicad_pcb"))
	require.NoError(t, err)
	assert.Equal(t, "pcbnew", n.Tool)
	assert.Empty(t, n.LibParts)

	var refs []string
	for _, c := range n.Components {
		refs = append(refs, c.Ref)
	}
	assert.NotContains(t, refs, "G1")
	assert.Contains(t, refs, "R4")

	for _, c := range n.Components {
		if c.Ref != "C1" {
			continue
		}
		assert.Equal(t, "Capacitor_SMD:C_0402_1005Metric", c.Footprint)
		assert.Equal(t, "~", c.Datasheet)
		assert.Equal(t, []Field{{Name: "Voltage", Value: "16V"}}, c.Fields)
	}
}

func TestFromBoardMarksExcludedFootprints(t *testing.T) {
	dir := t.TempDir()
	board := `(kicad_pcb (version 20240108) (generator "pcbnew")
		(footprint "R_0603" (layer "F.Cu") (property "Reference" "R1") (property "Value" "1k") (attr smd dnp))
		(footprint "R_0603" (layer "F.Cu") (property "Reference" "R2") (property "Value" "1k") (attr smd exclude_from_bom))
		(footprint "R_0603" (layer "F.Cu") (property "Reference" "R3") (property "Value" "1k") (attr smd)))`
	path := filepath.Join(dir, "b.kicad_pcb")
	require.NoError(t, os.WriteFile(path, []byte(board), 0o644))

	n, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"R3"}, refsOf(n.InterestingComponents()))
}
