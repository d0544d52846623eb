package bom

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/bom2md/pkg/kicad/netlist"
)

// ErrWrite is wrapped by failures to write the output file.
var ErrWrite = errors.New("bom: write failed")

// Header titles of the two fixed columns.
const (
	QuantityTitle   = "Q.ty"
	ReferencesTitle = "References"
)

// GroupSource resolves a field value for a component group.
type GroupSource interface {
	GroupField(group netlist.Group, field string) string
}

// Row is one BOM line.
type Row struct {
	Quantity   int
	References []string
	Values     []string // aligned with Table.Titles
}

// Table is an in-memory BOM.
type Table struct {
	Titles []string
	Rows   []Row
}

// Build creates one row per group, in the order given, with the values of
// the selected columns.
func Build(src GroupSource, groups []netlist.Group, columns []Column) *Table {
	t := &Table{Titles: make([]string, len(columns))}
	for i, col := range columns {
		t.Titles[i] = col.Title
	}
	for _, g := range groups {
		row := Row{
			Quantity:   len(g),
			References: g.Refs(),
			Values:     make([]string, len(columns)),
		}
		for i, col := range columns {
			row.Values[i] = src.GroupField(g, col.Field)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WriteMarkdown writes the header, the separator and one line per row.
// Cell contents are written as is; a '|' inside a value splits the cell.
func (t *Table) WriteMarkdown(w io.Writer) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("|" + QuantityTitle + "|" + ReferencesTitle + "|")
	for _, title := range t.Titles {
		bw.WriteString(title + "|")
	}
	bw.WriteString("\n")

	bw.WriteString(strings.Repeat("|---", 2+len(t.Titles)) + "|\n")

	for _, row := range t.Rows {
		bw.WriteString(strconv.Itoa(row.Quantity))
		bw.WriteString("|")
		bw.WriteString(strings.Join(row.References, ","))
		bw.WriteString("|")
		bw.WriteString(strings.Join(row.Values, "|"))
		bw.WriteString("\n")
	}

	return bw.Flush()
}

// String renders the table as Markdown.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.WriteMarkdown(&sb)
	return sb.String()
}

// WriteFile writes the table to path, replacing any existing file.
func WriteFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := t.WriteMarkdown(f); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	return nil
}
