// Package prompt implements the terminal field selectors.
//
// Every selector offers the candidate field names one per line and returns
// the lines the user kept, in order. A line may be rewritten as
// "Field:Title" to rename the column.
package prompt

import (
	"errors"
	"strings"
)

// ErrCancelled is returned when the user dismisses the prompt without
// confirming a selection.
var ErrCancelled = errors.New("field selection cancelled")

// Instructions shown next to the candidate list.
const (
	Heading     = "Fields to show in BOM:"
	HowToEdit   = "Delete, reorder, and rename the desired columns."
	HowToRename = "To rename a field, use the \"OldName:NewName\" format"
)

// SplitLines splits edited text into lines. Carriage returns are dropped
// and a trailing newline does not produce an extra line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// JoinLines is the inverse of SplitLines for the initial editor contents.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
