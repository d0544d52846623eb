package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/bom2md/internal/bom"
	"github.com/OpenTraceLab/bom2md/internal/config"
	"github.com/OpenTraceLab/bom2md/internal/prompt"
	"github.com/OpenTraceLab/bom2md/internal/ui"
	"github.com/OpenTraceLab/bom2md/pkg/kicad/netlist"
)

// Exit codes
const (
	exitOK        = 0
	exitUsage     = 1
	exitInput     = 2
	exitCancelled = 3
	exitOutput    = 4
)

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bom2md [flags] <netlist> <output.md>",
		Short: "Generate a Markdown bill of materials from a KiCad netlist",
		Long: `bom2md reads a KiCad netlist (intermediate XML, .net or a .kicad_sch
schematic), groups equivalent components and writes a Markdown BOM table.

Before writing, it asks which fields to show. Delete, reorder or rename
the offered fields; "OldName:NewName" renames a column.

Examples:
  bom2md board.xml bom.md                       # Pick fields in a window
  bom2md --prompt editor board.net bom.md       # Pick fields in $EDITOR
  printf 'Value\nMPN\n' | bom2md --prompt stdin board.kicad_sch bom.md`,
		Version:       "0.1.0",
		Args:          exactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBOM(cmd, args[0], args[1])
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &exitError{exitUsage, fmt.Errorf("expected %d arguments, got %d", n, len(args))}
		}
		return nil
	}
}

func runBOM(cmd *cobra.Command, input, output string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return &exitError{exitUsage, err}
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	n, err := netlist.ParseFile(input)
	if err != nil {
		return &exitError{exitInput, err}
	}
	logger.Debug().Str("input", input).Str("tool", n.Tool).Int("components", len(n.Components)).Msg("netlist loaded")

	gen := &bom.Generator{
		Netlist:  n,
		Selector: newSelector(cmd, cfg, logger),
		Stdout:   cmd.OutOrStdout(),
		Logger:   logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	if cfg.Prompt != config.PromptGUI {
		defer stop()
		return generate(ctx, gen, output)
	}

	// Gio needs the main goroutine; the generator finishes the process.
	ui.Main(func() int {
		defer stop()
		return report(cmd, generate(ctx, gen, output))
	})
	return nil
}

func newSelector(cmd *cobra.Command, cfg *config.Config, logger *log.Logger) bom.Selector {
	switch cfg.Prompt {
	case config.PromptEditor:
		return &prompt.Editor{
			Command: cfg.Editor,
			Stdin:   cmd.InOrStdin(),
			Stdout:  cmd.OutOrStdout(),
			Stderr:  cmd.ErrOrStderr(),
		}
	case config.PromptStdin:
		return &prompt.Stdin{In: cmd.InOrStdin(), Err: cmd.ErrOrStderr()}
	default:
		return &ui.Selector{Logger: logger}
	}
}

func generate(ctx context.Context, gen *bom.Generator, output string) error {
	err := gen.Run(ctx, output)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bom.ErrWrite):
		return &exitError{exitOutput, err}
	default:
		return &exitError{exitCancelled, err}
	}
}

// report prints err and returns the exit code for it.
func report(cmd *cobra.Command, err error) int {
	if err == nil {
		return exitOK
	}
	code := exitUsage
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	if code == exitUsage {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	}
	return code
}

// run executes the command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	return report(cmd, cmd.ExecuteContext(context.Background()))
}

// Execute runs the root command
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
