package prompt

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Stdin lists the candidates on Err and reads the selection from In until
// EOF.
type Stdin struct {
	In  io.Reader
	Err io.Writer
}

func (s *Stdin) Select(ctx context.Context, candidates []string) ([]string, error) {
	in, errw := s.In, s.Err
	if in == nil {
		in = os.Stdin
	}
	if errw == nil {
		errw = os.Stderr
	}

	fmt.Fprintln(errw, Heading)
	for _, c := range candidates {
		fmt.Fprintf(errw, "  %s\n", c)
	}
	fmt.Fprintln(errw, HowToEdit)
	fmt.Fprintln(errw, HowToRename)
	fmt.Fprintln(errw, "Enter one field per line, then end input (Ctrl-D):")

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(in)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("reading selection: %w", r.err)
		}
		return SplitLines(string(r.data)), nil
	}
}
