// Package script replays gesture commands against a game, one per line:
//
//	d <row> <column>   dig (chords a cleared cell)
//	f <row> <column>   toggle a flag
//	n                  start a new round
//	g                  no-op
//
// Blank lines and lines starting with '#' are skipped.
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArgCount       = errors.New("invalid number of arguments")
	ErrCoordinate     = errors.New("coordinates must be integers")
)

type Verb string

const (
	Noop     Verb = "g"
	Dig      Verb = "d"
	Flag     Verb = "f"
	NewRound Verb = "n"
)

var verbNargs = map[Verb]int{
	Noop:     0,
	Dig:      2,
	Flag:     2,
	NewRound: 0,
}

type Command struct {
	Verb   Verb
	Row    int
	Column int
}

func (c Command) String() string {
	if verbNargs[c.Verb] == 0 {
		return string(c.Verb)
	}
	return fmt.Sprintf("%s %d %d", c.Verb, c.Row, c.Column)
}

// Target is the set of gestures a script can perform.
type Target interface {
	Dig(row, column int)
	Flag(row, column int)
	Reset()
}

func parseRowColumn(args []string) (row int, column int, err error) {
	if row, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: row %q", ErrCoordinate, args[0])
	}
	if column, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: column %q", ErrCoordinate, args[1])
	}
	return row, column, nil
}

// Parse reads a single command. Coordinates are not range checked.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}

	verb := Verb(strings.ToLower(fields[0]))
	nargs, ok := verbNargs[verb]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	if nargs != len(fields)-1 {
		return Command{}, fmt.Errorf("%w: %q takes %d, got %d", ErrArgCount, verb, nargs, len(fields)-1)
	}

	c := Command{Verb: verb}
	if nargs == 2 {
		row, column, err := parseRowColumn(fields[1:])
		if err != nil {
			return Command{}, err
		}
		c.Row, c.Column = row, column
	}
	return c, nil
}

func (c Command) Apply(t Target) {
	switch c.Verb {
	case Dig:
		t.Dig(c.Row, c.Column)
	case Flag:
		t.Flag(c.Row, c.Column)
	case NewRound:
		t.Reset()
	}
}

// ParseError locates a malformed line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Commands yields the commands of r in order. Iteration stops after the first
// error, which is a [*ParseError] for malformed lines.
func Commands(r io.Reader) iter.Seq2[Command, error] {
	return func(yield func(Command, error) bool) {
		scanner := bufio.NewScanner(r)
		n := 0
		for scanner.Scan() {
			n++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			c, err := Parse(line)
			if err != nil {
				yield(Command{}, &ParseError{Line: n, Err: err})
				return
			}
			if !yield(c, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Command{}, fmt.Errorf("unable to read script: %w", err))
		}
	}
}

// Run applies every command of r to t and returns how many were applied. It
// stops at the first malformed line or when ctx is done.
func Run(ctx context.Context, t Target, r io.Reader) (int, error) {
	applied := 0
	for c, err := range Commands(r) {
		if err != nil {
			return applied, err
		}
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		c.Apply(t)
		applied++
	}
	return applied, nil
}
