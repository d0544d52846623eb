package netlist

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ParseFile reads a netlist from path. The format is taken from the file
// content rather than its extension: XML for '<', an s-expression netlist
// for (export ...), a schematic for (kicad_sch ...) and a board for
// (kicad_pcb ...).
func ParseFile(path string) (*Netlist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	br := bufio.NewReader(file)
	head, err := br.Peek(64)
	if err != nil && len(head) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", ErrParse, path)
	}
	if bytes.HasPrefix(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
		head = head[len(utf8BOM):]
	}
	head = bytes.TrimLeft(head, " \t\r\n")

	switch {
	case bytes.HasPrefix(head, []byte("<")):
		return ParseXML(br)
	case bytes.HasPrefix(head, []byte("(kicad_sch")):
		return FromSchematic(path)
	case bytes.HasPrefix(head, []byte("(kicad_pcb")):
		return FromBoard(path)
	case bytes.HasPrefix(head, []byte("(")):
		return ParseSexp(br)
	}
	return nil, fmt.Errorf("%w: %s: unrecognized netlist format", ErrParse, path)
}
