package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// RunOption customises the terminal loop.
type RunOption func(*runOptions)

type runOptions struct {
	prompt string
	format func(Reply) string
}

// WithPrompt sets the text written before each read.
func WithPrompt(prompt string) RunOption {
	return func(o *runOptions) { o.prompt = prompt }
}

// WithFormatter controls how replies are written.
func WithFormatter(fn func(Reply) string) RunOption {
	return func(o *runOptions) {
		if fn != nil {
			o.format = fn
		}
	}
}

func plainReply(r Reply) string {
	if r.Command != "" || r.Done {
		return r.Text
	}
	return "DM: " + r.Text
}

// Run reads player input line by line from in and writes replies to out
// until quit, end of input or ctx cancellation. End of input terminates the
// session like quit.
func (o *Orchestrator) Run(ctx context.Context, in io.Reader, out io.Writer, opts ...RunOption) error {
	ro := runOptions{prompt: "\nYour action: ", format: plainReply}
	for _, opt := range opts {
		opt(&ro)
	}

	if err := o.requireActive(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			o.Terminate(context.WithoutCancel(ctx))
			return err
		}

		fmt.Fprint(out, ro.prompt)
		if !scanner.Scan() {
			reply := o.Terminate(ctx)
			fmt.Fprintln(out)
			fmt.Fprintln(out, ro.format(reply))
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply, err := o.Handle(ctx, line)
		if err != nil {
			if errors.Is(err, ErrTerminated) {
				return nil
			}
			return err
		}
		fmt.Fprintln(out, ro.format(reply))
		if reply.Done {
			return nil
		}
	}
}
