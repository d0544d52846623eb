// Package ui holds the Gio field selection window.
package ui

import (
	"context"
	"image/color"
	"os"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/oligo/gioview/theme"
	"github.com/phuslu/log"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenTraceLab/bom2md/internal/prompt"
)

const (
	WindowTitle = "BOM Fields Configuration"
	ButtonText  = "Generate BOM"
)

// Main runs fn on a worker goroutine while the Gio event loop owns the
// calling goroutine, which must be the main one. The process exits with the
// code fn returns.
func Main(fn func() int) {
	go func() {
		os.Exit(fn())
	}()
	app.Main()
}

// Selector opens a window with the candidates in an editable text box and
// blocks until the user presses "Generate BOM" or closes the window.
// Select must not be called from the main goroutine.
type Selector struct {
	Logger *log.Logger
}

func (s *Selector) Select(ctx context.Context, candidates []string) ([]string, error) {
	logger := s.Logger
	if logger == nil {
		logger = &log.DefaultLogger
	}

	w := new(app.Window)
	w.Option(app.Title(WindowTitle), app.Size(unit.Dp(600), unit.Dp(400)))

	form := newFieldsForm(theme.NewTheme("", nil, true), candidates)
	form.onConfirm = func() { w.Perform(system.ActionClose) }

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			w.Perform(system.ActionClose)
		case <-stop:
		}
	}()

	var ops op.Ops
	for {
		switch ev := w.Event().(type) {
		case app.DestroyEvent:
			lines, err := form.closed(ev.Err)
			switch {
			case ev.Err != nil:
				logger.Error().Err(ev.Err).Msg("field window failed")
			case err != nil:
				logger.Debug().Msg("field window closed without confirmation")
			}
			return lines, err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			form.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}

// fieldsForm is the window content, kept apart from the window so it can be
// laid out without one.
type fieldsForm struct {
	th        *theme.Theme
	editor    widget.Editor
	generate  widget.Clickable
	icon      *widget.Icon
	confirmed bool
	onConfirm func()
}

func newFieldsForm(th *theme.Theme, candidates []string) *fieldsForm {
	f := &fieldsForm{th: th}
	f.editor.SingleLine = false
	f.editor.Submit = false
	f.editor.SetText(prompt.JoinLines(candidates))
	if icon, err := widget.NewIcon(icons.FileFileDownload); err == nil {
		f.icon = icon
	}
	return f
}

// Lines returns the current editor contents, one entry per line.
func (f *fieldsForm) Lines() []string {
	return prompt.SplitLines(f.editor.Text())
}

// closed decides the outcome once the window is gone: a window error wins,
// closing without pressing the button cancels, otherwise the edited lines
// are the selection.
func (f *fieldsForm) closed(windowErr error) ([]string, error) {
	if windowErr != nil {
		return nil, windowErr
	}
	if !f.confirmed {
		return nil, prompt.ErrCancelled
	}
	return f.Lines(), nil
}

func (f *fieldsForm) Layout(gtx layout.Context) layout.Dimensions {
	if f.generate.Clicked(gtx) && !f.confirmed {
		f.confirmed = true
		if f.onConfirm != nil {
			f.onConfirm()
		}
	}

	th := f.th.Theme
	return layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(material.Subtitle1(th, prompt.Heading).Layout),
			layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
			layout.Rigid(material.Body2(th, prompt.HowToEdit).Layout),
			layout.Rigid(material.Body2(th, prompt.HowToRename).Layout),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Flexed(1, f.layoutEditor),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Rigid(f.layoutButton),
		)
	})
}

func (f *fieldsForm) layoutEditor(gtx layout.Context) layout.Dimensions {
	border := widget.Border{
		Color:        color.NRGBA{R: 180, G: 184, B: 196, A: 255},
		CornerRadius: unit.Dp(4),
		Width:        unit.Dp(1),
	}
	return border.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = gtx.Constraints.Max
		return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			ed := material.Editor(f.th.Theme, &f.editor, "")
			ed.Font.Typeface = "monospace"
			return ed.Layout(gtx)
		})
	})
}

func (f *fieldsForm) layoutButton(gtx layout.Context) layout.Dimensions {
	th := f.th.Theme
	return material.ButtonLayout(th, &f.generate).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Top: unit.Dp(10), Bottom: unit.Dp(10), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if f.icon == nil {
						return layout.Dimensions{}
					}
					gtx.Constraints.Min.X = gtx.Dp(unit.Dp(18))
					return f.icon.Layout(gtx, th.Palette.ContrastFg)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body1(th, ButtonText)
					lbl.Color = th.Palette.ContrastFg
					return lbl.Layout(gtx)
				}),
			)
		})
	})
}
