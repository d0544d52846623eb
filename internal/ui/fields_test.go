package ui

import (
	"errors"
	"image"
	"testing"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"github.com/oligo/gioview/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/bom2md/internal/prompt"
)

func testContext() layout.Context {
	return layout.Context{
		Ops:         new(op.Ops),
		Constraints: layout.Exact(image.Pt(600, 400)),
		Metric:      unit.Metric{PxPerDp: 1, PxPerSp: 1},
	}
}

func TestFieldsFormPrefilled(t *testing.T) {
	f := newFieldsForm(theme.NewTheme("", nil, true), []string{"Datasheet", "MPN", "Value"})
	assert.Equal(t, "Datasheet\nMPN\nValue\n", f.editor.Text())
	assert.Equal(t, []string{"Datasheet", "MPN", "Value"}, f.Lines())
}

func TestFieldsFormEditedLines(t *testing.T) {
	f := newFieldsForm(theme.NewTheme("", nil, true), []string{"MPN", "Value"})
	f.editor.SetText("Value:Nominal\r\n\r\nMPN\r\n")
	assert.Equal(t, []string{"Value:Nominal", "", "MPN"}, f.Lines())
}

func TestFieldsFormLayoutWithoutClick(t *testing.T) {
	f := newFieldsForm(theme.NewTheme("", nil, true), []string{"Value"})
	called := false
	f.onConfirm = func() { called = true }

	dims := f.Layout(testContext())

	assert.Positive(t, dims.Size.X)
	assert.False(t, f.confirmed)
	assert.False(t, called)

	lines, err := f.closed(nil)
	assert.ErrorIs(t, err, prompt.ErrCancelled)
	assert.Nil(t, lines)
}

func TestFieldsFormGenerateConfirms(t *testing.T) {
	f := newFieldsForm(theme.NewTheme("", nil, true), []string{"MPN", "Value"})
	calls := 0
	f.onConfirm = func() { calls++ }
	f.editor.SetText("Value\nMPN:Part\n")

	f.generate.Click()
	f.Layout(testContext())
	assert.True(t, f.confirmed)
	assert.Equal(t, 1, calls)

	f.generate.Click()
	f.Layout(testContext())
	assert.Equal(t, 1, calls)

	lines, err := f.closed(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Value", "MPN:Part"}, lines)
}

func TestFieldsFormWindowErrorWins(t *testing.T) {
	f := newFieldsForm(theme.NewTheme("", nil, true), []string{"Value"})
	f.confirmed = true

	failed := errors.New("no display")
	lines, err := f.closed(failed)
	assert.ErrorIs(t, err, failed)
	assert.Nil(t, lines)
}
