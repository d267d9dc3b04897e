package commands

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/susu3304/pointbot/internal/ledger"
	"github.com/susu3304/pointbot/internal/templates"
)

const (
	DefaultPrefix = "!points"
	TopCount      = 20
)

// Dispatcher turns channel messages into ledger operations and reply lines.
// Callers must deliver messages one at a time.
type Dispatcher struct {
	prefix    string
	ledger    *ledger.Ledger
	templates *templates.Selector
	logger    *zap.Logger
}

func NewDispatcher(prefix string, l *ledger.Ledger, sel *templates.Selector, logger *zap.Logger) *Dispatcher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		prefix:    prefix,
		ledger:    l,
		templates: sel,
		logger:    logger,
	}
}

func (d *Dispatcher) Prefix() string {
	return d.prefix
}

// Handle processes one message from source and returns the lines to post to
// the channel. Messages that are not commands yield nil.
func (d *Dispatcher) Handle(ctx context.Context, source, text string) []string {
	body, ok := d.commandBody(text)
	if !ok {
		return nil
	}
	cmd, err := Parse(body)
	if err != nil {
		return []string{d.usage(err)}
	}
	return d.Execute(ctx, source, cmd)
}

// Execute runs an already parsed command, as delivered by slash commands.
func (d *Dispatcher) Execute(ctx context.Context, source string, cmd Command) (lines []string) {
	source = strings.TrimSpace(source)
	defer d.recoverCommand(source, cmd, &lines)
	return d.execute(ctx, source, cmd)
}

func (d *Dispatcher) execute(ctx context.Context, source string, cmd Command) []string {
	d.logger.Debug("Command received",
		zap.String("source", source),
		zap.Stringer("kind", cmd.Kind),
		zap.String("target", cmd.Target),
	)

	switch cmd.Kind {
	case KindStats:
		return d.stats(cmd.TargetFilter)
	case KindRemove:
		if cmd.Target == "" {
			return []string{d.usage(&ParseError{Kind: KindRemove, Err: ErrMissingArgument})}
		}
		return []string{d.remove(ctx, source, cmd.Target)}
	case KindAdjust:
		if cmd.Target == "" {
			return []string{d.usage(&ParseError{Kind: KindAdjust, Err: ErrMissingArgument})}
		}
		return []string{d.adjust(ctx, source, cmd.Target, cmd.Value)}
	default:
		return []string{d.help()}
	}
}

func (d *Dispatcher) recoverCommand(source string, cmd Command, lines *[]string) {
	if r := recover(); r != nil {
		d.logger.Error("Command panicked",
			zap.String("source", source),
			zap.Stringer("kind", cmd.Kind),
			zap.Any("panic", r),
		)
		*lines = []string{templates.InternalError}
	}
}

// commandBody strips the prefix. "!pointsfoo" is not a command.
func (d *Dispatcher) commandBody(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, d.prefix) {
		return "", false
	}
	rest := text[len(d.prefix):]
	if rest != "" {
		r, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsSpace(r) {
			return "", false
		}
	}
	return strings.TrimSpace(rest), true
}

func (d *Dispatcher) help() string {
	return templates.Format(templates.HelpFormat, map[string]string{"prefix": d.prefix})
}

func (d *Dispatcher) usage(err error) string {
	vars := map[string]string{"prefix": d.prefix}
	var perr *ParseError
	if errors.As(err, &perr) && perr.Kind == KindRemove {
		return templates.Format(templates.RemovalHelpFormat, vars)
	}
	return templates.Format(templates.PointsHelpFormat, vars)
}

func (d *Dispatcher) stats(filter string) []string {
	entries, ok := d.ledger.TopN(TopCount, filter)
	if !ok {
		return []string{templates.NoEntries}
	}

	lines := make([]string, 0, len(entries)+1)
	if filter == "" {
		lines = append(lines, templates.Format(templates.TopFormat, map[string]string{
			"count": strconv.Itoa(TopCount),
		}))
	}
	for _, e := range entries {
		lines = append(lines, templates.Format(templates.TopEntryFormat, map[string]string{
			"value": strconv.FormatInt(e.Score, 10),
			"nick":  e.Identity,
		}))
	}
	d.logger.Info("Sent stats", zap.String("filter", filter), zap.Int("entries", len(entries)))
	return lines
}

func (d *Dispatcher) remove(ctx context.Context, source, target string) string {
	if source == target {
		return d.templates.Next(templates.SelfRemoval)
	}

	vars := map[string]string{"source": source, "target": target}
	if err := d.ledger.Remove(ctx, target); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return templates.Format(templates.NoPointsFormat, vars)
		}
		// The entry is already gone from memory; confirm anyway.
		d.logger.Error("Failed to persist removal", zap.String("target", target), zap.Error(err))
	}

	d.logger.Info("Removed points", zap.String("source", source), zap.String("target", target))
	return templates.Format(templates.RemovalFormat, vars)
}

func (d *Dispatcher) adjust(ctx context.Context, source, target string, value int64) string {
	if source == target {
		return d.templates.Next(templates.SelfAdjust)
	}

	d.logger.Info("Giving points",
		zap.String("source", source),
		zap.String("target", target),
		zap.Int64("value", value),
	)
	if _, err := d.ledger.Adjust(ctx, target, value); err != nil {
		d.logger.Error("Failed to persist points", zap.String("target", target), zap.Int64("value", value), zap.Error(err))
	}

	magnitude := uint64(value)
	if value < 0 {
		magnitude = uint64(-(value + 1)) + 1
	}
	return templates.Format(d.templates.NextPair().Pick(value), map[string]string{
		"source": source,
		"target": target,
		"value":  strconv.FormatUint(magnitude, 10),
		"plural": templates.Plural(value),
	})
}
