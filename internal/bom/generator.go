package bom

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/phuslu/log"

	"github.com/OpenTraceLab/bom2md/pkg/kicad/netlist"
)

// Netlist is what the generator needs from a parsed design.
type Netlist interface {
	GroupSource
	InterestingComponents() []*netlist.Component
	FieldCandidates(components []*netlist.Component) []string
	GroupComponents(components []*netlist.Component) []netlist.Group
}

// Selector asks the user which fields to show. It blocks until the user
// confirms and returns the edited lines.
type Selector interface {
	Select(ctx context.Context, candidates []string) ([]string, error)
}

// Generator runs one BOM generation pass.
type Generator struct {
	Netlist  Netlist
	Selector Selector
	Stdout   io.Writer
	Logger   *log.Logger
}

// Run groups the components, prompts for the fields and writes the table
// to outPath. Nothing is written if the selection fails.
func (g *Generator) Run(ctx context.Context, outPath string) error {
	logger := g.Logger
	if logger == nil {
		logger = &log.DefaultLogger
	}
	stdout := g.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	components := g.Netlist.InterestingComponents()
	groups := g.Netlist.GroupComponents(components)
	fmt.Fprintf(stdout, "Loaded list of %d components\n", len(components))
	logger.Debug().Int("components", len(components)).Int("groups", len(groups)).Msg("grouped components")

	candidates := g.Netlist.FieldCandidates(components)
	logger.Debug().Strs("candidates", candidates).Msg("prompting for fields")

	lines, err := g.Selector.Select(ctx, candidates)
	if err != nil {
		return fmt.Errorf("field selection: %w", err)
	}

	columns, err := ParseSelection(lines)
	if err != nil {
		return err
	}
	for _, col := range columns {
		logger.Debug().Str("field", col.Field).Str("title", col.Title).Msg("column")
	}

	table := Build(g.Netlist, groups, columns)
	if err := WriteFile(outPath, table); err != nil {
		return err
	}
	logger.Info().Str("path", outPath).Int("rows", len(table.Rows)).Int("columns", len(columns)).Msg("BOM written")
	return nil
}
