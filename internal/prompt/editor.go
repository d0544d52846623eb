package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultEditor is used when neither a command nor $VISUAL/$EDITOR is set.
const DefaultEditor = "vi"

// Editor round-trips the candidates through a text editor. The file holds
// one candidate per line; whatever is left when the editor exits is the
// selection.
type Editor struct {
	// Command overrides $VISUAL and $EDITOR. It may carry arguments,
	// e.g. "code --wait".
	Command string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ResolveCommand returns the editor command line, split into words.
func (e *Editor) ResolveCommand() []string {
	for _, cmd := range []string{e.Command, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if f := strings.Fields(cmd); len(f) > 0 {
			return f
		}
	}
	return []string{DefaultEditor}
}

func (e *Editor) Select(ctx context.Context, candidates []string) ([]string, error) {
	f, err := os.CreateTemp("", "bom2md-fields-*.txt")
	if err != nil {
		return nil, fmt.Errorf("creating selection file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := io.WriteString(f, JoinLines(candidates)); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing selection file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("writing selection file: %w", err)
	}

	argv := append(e.ResolveCommand(), path)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = e.Stdin, e.Stdout, e.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) || ctx.Err() != nil {
			return nil, fmt.Errorf("%w: editor %s: %v", ErrCancelled, argv[0], err)
		}
		return nil, fmt.Errorf("running editor %s: %w", argv[0], err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading selection file: %w", err)
	}
	return SplitLines(string(data)), nil
}
