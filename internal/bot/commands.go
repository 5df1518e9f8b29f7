package bot

import (
	"context"
	"fmt"

	"luna/internal/domain"
	"luna/internal/service"

	"github.com/bwmarrin/discordgo"
)

const (
	submitKindBulk = "bulk"
	contentField   = "content"
)

func commands() []*discordgo.ApplicationCommand {
	guildOnly := &[]discordgo.InteractionContextType{discordgo.InteractionContextGuild}
	return []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Start a game of Truth or Dare",
			Contexts:    guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Lobby name",
					MaxLength:   100,
				},
			},
		},
		{
			Name:        "statistics",
			Description: "Show Truth or Dare statistics",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Whose statistics to show (you by default)",
				},
			},
		},
		{
			Name:        "submit",
			Description: "Submit new truths or dares",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "kind",
					Description: "What you are submitting",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Truth", Value: "truth"},
						{Name: "Dare", Value: "dare"},
						{Name: "Several (one per line)", Value: submitKindBulk},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "for",
					Description: "Only this member can receive the prompt",
				},
			},
		},
	}
}

func (b *Bot) handleCommand(ctx context.Context, user domain.UserID, channelID string, data discordgo.ApplicationCommandInteractionData) *discordgo.InteractionResponse {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, o := range data.Options {
		opts[o.Name] = o
	}

	switch data.Name {
	case "play":
		return b.play(ctx, user, channelID, opts)
	case "statistics":
		return b.statistics(ctx, user, opts)
	case "submit":
		return b.submitModal(opts)
	default:
		return ephemeral("Unknown command.")
	}
}

func (b *Bot) play(ctx context.Context, user domain.UserID, channelID string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponse {
	var name string
	if o, ok := opts["name"]; ok {
		name = o.StringValue()
	}

	presenter := newChannelPresenter(b.api, channelID, b.log.With("channel_id", channelID))
	lobby, err := b.svc.Parties.Open(ctx, service.OpenRequest{Leader: user, Name: name, Presenter: presenter})
	if err != nil {
		return b.fail(err, "command", "play")
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("%s opened **%s**. Press Join to play!", user.Mention(), lobby.Name),
		},
	}
}

func (b *Bot) statistics(ctx context.Context, user domain.UserID, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponse {
	target := user
	if o, ok := opts["member"]; ok {
		id, err := domain.ParseUserID(o.UserValue(nil).ID)
		if err != nil {
			return b.fail(err, "command", "statistics")
		}
		target = id
	}

	profile, err := b.svc.Statistics.Profile(ctx, target)
	if err != nil {
		return b.fail(err, "command", "statistics")
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{renderProfile(target, profile)}},
	}
}

// submitModal opens the prompt form. The kind and addressee travel in the modal id.
func (b *Bot) submitModal(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponse {
	kind := opts["kind"].StringValue()
	arg := kind
	if o, ok := opts["for"]; ok && kind != submitKindBulk {
		arg += ":" + o.UserValue(nil).ID
	}

	input := discordgo.TextInput{
		CustomID:  contentField,
		Label:     "Prompt",
		Style:     discordgo.TextInputParagraph,
		Required:  true,
		MinLength: service.MinPromptLength,
		MaxLength: 1000,
	}
	title := "Submit a " + kind
	if kind == submitKindBulk {
		title = "Submit prompts"
		input.Label = "One per line: truth - ... or dare - ..."
		input.Placeholder = "truth - What is the last lie you told?\ndare - Send your last photo to the chat."
		input.MaxLength = 4000
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customID{Lobby: submitScope, Action: actionPrompt, Arg: arg}.String(),
			Title:      title,
			Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{input}}},
		},
	}
}
