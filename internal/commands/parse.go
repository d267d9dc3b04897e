package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	statsCommand  = "stats"
	removeCommand = "remove"
)

var (
	ErrMissingArgument = errors.New("missing argument")
	ErrInvalidValue    = errors.New("invalid value")
)

type Kind int

const (
	KindHelp Kind = iota
	KindStats
	KindRemove
	KindAdjust
)

func (k Kind) String() string {
	switch k {
	case KindHelp:
		return "help"
	case KindStats:
		return "stats"
	case KindRemove:
		return "remove"
	case KindAdjust:
		return "adjust"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Command is a classified command body. Only the fields relevant to Kind
// are set.
type Command struct {
	Kind         Kind
	Target       string
	TargetFilter string
	Value        int64
}

// ParseError reports which command family failed to parse so the caller can
// show the matching usage text.
type ParseError struct {
	Kind Kind
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s command: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse classifies a command body (the text after the prefix). The first
// word must be exactly "stats" or "remove" to select those commands;
// anything else is read as "<nick> <value>".
func Parse(body string) (Command, error) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return Command{Kind: KindHelp}, nil
	}

	switch fields[0] {
	case statsCommand:
		cmd := Command{Kind: KindStats}
		if len(fields) > 1 {
			cmd.TargetFilter = fields[1]
		}
		return cmd, nil

	case removeCommand:
		if len(fields) < 2 {
			return Command{}, &ParseError{Kind: KindRemove, Err: ErrMissingArgument}
		}
		return Command{Kind: KindRemove, Target: fields[1]}, nil
	}

	if len(fields) != 2 {
		return Command{}, &ParseError{
			Kind: KindAdjust,
			Err:  fmt.Errorf("%w: want <nick> <value>, got %d words", ErrInvalidValue, len(fields)),
		}
	}
	value, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Command{}, &ParseError{Kind: KindAdjust, Err: fmt.Errorf("%w: %q", ErrInvalidValue, fields[1])}
	}
	return Command{Kind: KindAdjust, Target: fields[0], Value: value}, nil
}
