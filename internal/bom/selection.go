// Package bom turns grouped netlist components and a user's field selection
// into a Markdown bill of materials.
package bom

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Column is one selected field: the netlist field it reads and the title
// shown in the header.
type Column struct {
	Field string
	Title string
}

// selectionLexer splits a line into colons and the text between them.
var selectionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Colon", Pattern: `:`},
	{Name: "Text", Pattern: `[^:]+`},
})

// selectionLine is "Field" or "Field:Title". Everything after the first
// colon, further colons included, belongs to the title.
type selectionLine struct {
	Field   string `@Text?`
	Renamed bool   `( @Colon`
	Title   string `  @( Text | Colon )* )?`
}

var selectionParser = participle.MustBuild[selectionLine](
	participle.Lexer(selectionLexer),
)

// ParseLine resolves a single selection line.
func ParseLine(line string) (Column, error) {
	parsed, err := selectionParser.ParseString("", line)
	if err != nil {
		return Column{}, fmt.Errorf("selection line %q: %w", line, err)
	}
	if !parsed.Renamed {
		return Column{Field: line, Title: line}, nil
	}
	return Column{Field: parsed.Field, Title: parsed.Title}, nil
}

// ParseSelection resolves the raw lines returned by a field selector into
// columns, keeping order and duplicates. Blank lines are dropped.
func ParseSelection(lines []string) ([]Column, error) {
	columns := make([]Column, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		col, err := ParseLine(line)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return columns, nil
}
