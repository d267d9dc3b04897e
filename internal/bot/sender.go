package bot

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// maxMessageLength is Discord's per-message content limit.
const maxMessageLength = 2000

// Minimal session interface for sending channel messages.
type channelSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// sendLines posts reply lines to the channel, packing as many lines into
// each message as the length limit allows.
func (b *Bot) sendLines(ctx context.Context, lines []string) error {
	var errs []error
	for _, msg := range packLines(lines, maxMessageLength) {
		if err := b.sendWithRetry(ctx, b.channelID, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func packLines(lines []string, limit int) []string {
	var out []string
	var buffer strings.Builder
	for _, line := range lines {
		if buffer.Len() > 0 && buffer.Len()+len(line)+1 > limit {
			out = append(out, buffer.String())
			buffer.Reset()
		}
		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
	}
	if buffer.Len() > 0 {
		out = append(out, buffer.String())
	}
	return out
}

func (b *Bot) sendWithRetry(ctx context.Context, channelID, content string) error {
	const attemptTimeout = 12 * time.Second
	const maxAttempts = 2

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		_, err := b.sender.ChannelMessageSend(channelID, content, discordgo.WithContext(sendCtx))
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTemporaryOrTimeout(err) || attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(300+rand.Intn(500)) * time.Millisecond):
		}
	}
	return lastErr
}

func isTemporaryOrTimeout(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
