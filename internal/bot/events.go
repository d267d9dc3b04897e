package bot

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/susu3304/pointbot/internal/commands"
)

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("Connected", zap.String("user", event.User.Username))

	// Register commands for all guilds
	for _, guild := range event.Guilds {
		if err := b.registerGuildCommands(s, guild.ID); err != nil {
			b.logger.Warn("Failed to register commands", zap.String("guild", guild.ID), zap.Error(err))
		}
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	b.logger.Debug("Guild available", zap.String("guild", event.ID), zap.String("name", event.Name))
	if err := b.registerGuildCommands(s, event.ID); err != nil {
		b.logger.Warn("Failed to register commands", zap.String("guild", event.ID), zap.Error(err))
	}
}

func (b *Bot) registerGuildCommands(s *discordgo.Session, guildID string) error {
	cmds := commands.GetCommands()
	// Delete existing commands and register new ones
	_, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, cmds)
	if err != nil {
		return err
	}

	b.logger.Info("Registered application commands", zap.String("guild", guildID))
	return nil
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(context.Background(), m.Message)
}

func (b *Bot) handleMessage(ctx context.Context, m *discordgo.Message) {
	// Ignore bot messages
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.ChannelID != b.channelID {
		return
	}

	b.mu.Lock()
	lines := b.dispatcher.Handle(ctx, m.Author.Username, m.Content)
	b.mu.Unlock()

	if len(lines) == 0 {
		return
	}
	if err := b.sendLines(ctx, lines); err != nil {
		b.logger.Error("Failed to send reply", zap.String("channel", b.channelID), zap.Error(err))
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != "points" {
		return
	}

	content := b.handleInteraction(context.Background(), i.Interaction, data)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
	if err != nil {
		b.logger.Error("Failed to respond to interaction", zap.Error(err))
	}
}

func (b *Bot) handleInteraction(ctx context.Context, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) string {
	if i.ChannelID != b.channelID {
		return "Points are only kept in <#" + b.channelID + ">"
	}
	user := interactionUser(i)
	if user == nil {
		return "Could not tell who you are"
	}

	b.mu.Lock()
	lines := b.dispatcher.Execute(ctx, user.Username, commands.InteractionCommand(data))
	b.mu.Unlock()

	return strings.Join(lines, "\n")
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
