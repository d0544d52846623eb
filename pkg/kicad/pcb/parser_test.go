package pcb

import (
	"strings"
	"testing"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantVer   int
		wantGen   string
		wantError bool
	}{
		{
			name:    "KiCad 8 generator",
			input:   `(kicad_pcb (version 20240108) (generator "pcbnew") (generator_version "8.0"))`,
			wantVer: 20240108,
			wantGen: "pcbnew",
		},
		{
			name:    "KiCad 6 host",
			input:   `(kicad_pcb (version 20211014) (host pcbnew "(6.0.0)"))`,
			wantVer: 20211014,
			wantGen: "pcbnew",
		},
		{
			name:    "no generator",
			input:   `(kicad_pcb (version 20221018))`,
			wantVer: 20221018,
			wantGen: "unknown",
		},
		{
			name:      "too old",
			input:     `(kicad_pcb (version 20171130) (host pcbnew 5.1.9))`,
			wantError: true,
		},
		{
			name:      "missing version",
			input:     `(kicad_pcb (generator pcbnew))`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, err := Parse(strings.NewReader(tt.input))
			if tt.wantError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if board.Version != tt.wantVer {
				t.Errorf("Expected version %d, got %d", tt.wantVer, board.Version)
			}
			if board.Generator != tt.wantGen {
				t.Errorf("Expected generator %q, got %q", tt.wantGen, board.Generator)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	inputs := []string{
		``,
		`(kicad_sch (version 20231120))`,
		`(kicad_pcb (version 20240108)`,
	}
	for _, input := range inputs {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}

func TestParseFootprintsKiCad8(t *testing.T) {
	input := `(kicad_pcb (version 20240108) (generator "pcbnew")
		(net 0 "")
		(footprint "Resistor_SMD:R_0603_1608Metric"
			(layer "F.Cu")
			(uuid "a")
			(at 100 50 90)
			(property "Reference" "R1" (at 0 -1.43 90) (layer "F.SilkS"))
			(property "Value" "10k" (at 0 1.43 90) (layer "F.Fab"))
			(property "Datasheet" "~" (at 0 0 0) (layer "F.Fab") (hide yes))
			(property "MPN" "RC0603FR-0710KL" (at 0 0 0) (layer "F.Fab") (hide yes))
			(attr smd)
			(pad "1" smd roundrect (at -0.825 0 90) (size 0.8 0.95) (layers "F.Cu" "F.Mask" "F.Paste"))
		)
		(footprint "R_0603_1608Metric"
			(layer "B.Cu")
			(at 10 10)
			(property "Reference" "R2" (at 0 0 0) (layer "B.SilkS"))
			(property "Value" "0R" (at 0 0 0) (layer "B.Fab"))
			(attr smd exclude_from_bom dnp)
		)
		(gr_line (start 0 0) (end 10 0) (layer "Edge.Cuts"))
	)`

	board, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse board: %v", err)
	}
	if len(board.Footprints) != 2 {
		t.Fatalf("Expected 2 footprints, got %d", len(board.Footprints))
	}

	r1 := board.GetFootprint("R1")
	if r1 == nil {
		t.Fatal("R1 not found")
	}
	if r1.Library != "Resistor_SMD" || r1.Name != "R_0603_1608Metric" {
		t.Errorf("Unexpected footprint id %q:%q", r1.Library, r1.Name)
	}
	if r1.LibID() != "Resistor_SMD:R_0603_1608Metric" {
		t.Errorf("Unexpected LibID %q", r1.LibID())
	}
	if r1.Layer != "F.Cu" {
		t.Errorf("Expected layer F.Cu, got %q", r1.Layer)
	}
	if r1.Value != "10k" {
		t.Errorf("Expected value 10k, got %q", r1.Value)
	}
	if got := r1.Property("MPN"); got != "RC0603FR-0710KL" {
		t.Errorf("Expected MPN property, got %q", got)
	}
	if r1.Property("Reference") != "" {
		t.Errorf("Reference should not be kept as a plain property")
	}
	if !r1.HasAttribute("smd") || r1.HasAttribute("dnp") {
		t.Errorf("Unexpected attributes %v", r1.Attributes)
	}

	r2 := board.GetFootprint("R2")
	if r2 == nil {
		t.Fatal("R2 not found")
	}
	if r2.LibID() != "R_0603_1608Metric" {
		t.Errorf("Unexpected LibID %q", r2.LibID())
	}
	if !r2.HasAttribute("exclude_from_bom") || !r2.HasAttribute("dnp") {
		t.Errorf("Expected exclude_from_bom and dnp, got %v", r2.Attributes)
	}

	if board.GetFootprint("R3") != nil {
		t.Errorf("Did not expect R3")
	}
}

func TestParseFootprintsKiCad6(t *testing.T) {
	input := `(kicad_pcb (version 20211014) (generator pcbnew)
		(footprint "Capacitor_SMD:C_0402_1005Metric" (layer "F.Cu")
			(at 5 5)
			(property "Sheetfile" "demo.kicad_sch")
			(property "Voltage" "16V")
			(attr smd)
			(fp_text reference "C1" (at 0 -1.16) (layer "F.SilkS"))
			(fp_text value "100n" (at 0 1.16) (layer "F.Fab"))
			(fp_text user "${REFERENCE}" (at 0 0) (layer "F.Fab"))
		)
	)`

	board, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse board: %v", err)
	}
	c1 := board.GetFootprint("C1")
	if c1 == nil {
		t.Fatal("C1 not found")
	}
	if c1.Value != "100n" {
		t.Errorf("Expected value 100n, got %q", c1.Value)
	}
	if c1.Property("Voltage") != "16V" {
		t.Errorf("Expected Voltage 16V, got %q", c1.Property("Voltage"))
	}
}
