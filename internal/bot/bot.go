package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/susu3304/pointbot/internal/commands"
)

// Bot connects the dispatcher to a single Discord channel.
type Bot struct {
	session    *discordgo.Session
	sender     channelSender
	dispatcher *commands.Dispatcher
	channelID  string
	logger     *zap.Logger

	// mu keeps commands strictly one at a time; discordgo runs handlers
	// on their own goroutines.
	mu sync.Mutex
}

func New(token, channelID string, dispatcher *commands.Dispatcher, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := newBot(session, channelID, dispatcher, logger)
	bot.session = session

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onMessageCreate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	return bot, nil
}

func newBot(sender channelSender, channelID string, dispatcher *commands.Dispatcher, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		sender:     sender,
		dispatcher: dispatcher,
		channelID:  channelID,
		logger:     logger,
	}
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.logger.Info("Discord bot is running", zap.String("channel", b.channelID))
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

// Run starts the bot and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	b.logger.Info("Closing discord session")
	return b.Stop()
}
