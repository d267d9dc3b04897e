package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// GetCommands returns the slash command mirroring the text prefix commands.
func GetCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:         "points",
			Description:  "Keep score for the channel",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "give",
					Description: "Give (or take, with a negative value) points",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "nick",
							Description: "Who gets the points",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "value",
							Description: "How many points",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stats",
					Description: "Show the leaderboard",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "nick",
							Description: "Only nicks starting with this",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Forget someone's points",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "nick",
							Description: "Whose points to forget",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "help",
					Description: "How to use the bot",
				},
			},
		},
	}
}

// InteractionCommand converts a /points interaction into a Command.
func InteractionCommand(data discordgo.ApplicationCommandInteractionData) Command {
	if len(data.Options) == 0 {
		return Command{Kind: KindHelp}
	}
	sub := data.Options[0]

	var nick string
	var value int64
	for _, opt := range sub.Options {
		switch opt.Name {
		case "nick":
			nick = strings.TrimSpace(opt.StringValue())
		case "value":
			value = opt.IntValue()
		}
	}

	switch sub.Name {
	case "give":
		return Command{Kind: KindAdjust, Target: nick, Value: value}
	case "stats":
		return Command{Kind: KindStats, TargetFilter: nick}
	case "remove":
		return Command{Kind: KindRemove, Target: nick}
	default:
		return Command{Kind: KindHelp}
	}
}

func boolPtr(b bool) *bool {
	return &b
}
