package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrAborted is returned by a Prompter when the user gives up on input
// (Ctrl+C, Escape, end of input). The menu loop ends cleanly on it.
var ErrAborted = errors.New("input aborted")

// Prompter collects raw input from the user.
type Prompter interface {
	// Choose shows options under title and returns the index picked.
	Choose(title string, options []string) (int, error)

	// Ask shows prompt and returns the line entered, without the line ending.
	Ask(prompt string) (string, error)
}

// LinePrompter is a Prompter over plain line oriented streams. It is used
// when stdin is not a terminal.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Choose(title string, options []string) (int, error) {
	for {
		fmt.Fprintf(p.out, " ----- %s -----\n", title)
		for i, o := range options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
		}
		line, err := p.readLine("> ")
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(strings.TrimSpace(line)); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d\n", len(options))
	}
}

func (p *LinePrompter) Ask(prompt string) (string, error) {
	return p.readLine(prompt + ": ")
}

func (p *LinePrompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", ErrAborted
		}
	} else if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// WithContext returns a Prompter that stops waiting on p once ctx is done and
// returns ctx's error. The abandoned read is left to finish on its own, so p
// must not be used again after that.
func WithContext(ctx context.Context, p Prompter) Prompter {
	return &contextPrompter{ctx: ctx, p: p}
}

type contextPrompter struct {
	ctx context.Context
	p   Prompter
}

type answer struct {
	i   int
	s   string
	err error
}

func (c *contextPrompter) Choose(title string, options []string) (int, error) {
	a, err := c.wait(func() answer {
		i, err := c.p.Choose(title, options)
		return answer{i: i, err: err}
	})
	return a.i, err
}

func (c *contextPrompter) Ask(prompt string) (string, error) {
	a, err := c.wait(func() answer {
		s, err := c.p.Ask(prompt)
		return answer{s: s, err: err}
	})
	return a.s, err
}

func (c *contextPrompter) wait(fn func() answer) (answer, error) {
	if err := c.ctx.Err(); err != nil {
		return answer{}, err
	}
	done := make(chan answer, 1)
	go func() {
		done <- fn()
	}()
	select {
	case a := <-done:
		return a, a.err
	case <-c.ctx.Done():
		return answer{}, c.ctx.Err()
	}
}
