package bot

import (
	"context"
	"fmt"
	"strings"

	"luna/internal/domain"
	"luna/internal/game"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleComponent(ctx context.Context, user domain.UserID, data discordgo.MessageComponentInteractionData) *discordgo.InteractionResponse {
	id, err := parseCustomID(data.CustomID)
	if err != nil {
		return b.fail(err, "custom_id", data.CustomID)
	}
	log := []any{"lobby_id", id.Lobby, "action", id.Action}

	switch id.Action {
	case actionJoin:
		if err := b.svc.Parties.Join(ctx, id.Lobby, user); err != nil {
			return b.fail(err, log...)
		}
		return acknowledge()
	case actionLeave:
		if err := b.svc.Parties.Leave(ctx, id.Lobby, user); err != nil {
			return b.fail(err, log...)
		}
		return acknowledge()
	case actionStart:
		if err := b.svc.Parties.StartEarly(ctx, id.Lobby, user); err != nil {
			return b.fail(err, log...)
		}
		return acknowledge()
	case actionRespond:
		return b.responseModal(user, id)
	}

	router, err := b.svc.Parties.Router(id.Lobby)
	if err != nil {
		return b.fail(err, log...)
	}

	switch id.Action {
	case actionCategory:
		c, err := domain.ParseCategory(id.Arg)
		if err != nil {
			return b.fail(game.ErrInvalidChoice, log...)
		}
		if err := router.DeliverCategory(user, c); err != nil {
			return b.fail(err, log...)
		}
		return settle(fmt.Sprintf("%s chose **%s**.", user.Mention(), c))
	case actionPass:
		// the Submit button stays usable in case the pass is cancelled
		if err := router.DeliverReply(user, game.Reply{Pass: true}); err != nil {
			return b.fail(err, log...)
		}
		return acknowledge()
	case actionConfirm, actionCancel:
		confirm := id.Action == actionConfirm
		if err := router.DeliverPassConfirmation(user, confirm); err != nil {
			return b.fail(err, log...)
		}
		if confirm {
			return settle(fmt.Sprintf("%s passed.", user.Mention()))
		}
		return settle(fmt.Sprintf("%s is not passing after all.", user.Mention()))
	case actionNext:
		next, err := domain.ParseUserID(id.Arg)
		if err != nil {
			return b.fail(game.ErrInvalidChoice, log...)
		}
		if err := router.DeliverNextPlayer(user, next); err != nil {
			return b.fail(err, log...)
		}
		return settle(fmt.Sprintf("%s picked %s.", user.Mention(), next.Mention()))
	default:
		return b.fail(errBadCustomID, "custom_id", data.CustomID)
	}
}

// responseModal opens the answer form, but only for the player being asked.
func (b *Bot) responseModal(user domain.UserID, id customID) *discordgo.InteractionResponse {
	if id.Arg != user.String() {
		return ephemeral(notYourInteraction)
	}
	input := discordgo.TextInput{
		CustomID: contentField,
		Label:    "Your response",
		Style:    discordgo.TextInputParagraph,
		Required: true,
		// the engine still checks the trimmed length
		MinLength: b.svc.MinResponseLength,
		MaxLength: 1024,
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customID{Lobby: id.Lobby, Action: actionResponse}.String(),
			Title:      "Truth or Dare",
			Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{input}}},
		},
	}
}

func (b *Bot) handleModal(ctx context.Context, user domain.UserID, data discordgo.ModalSubmitInteractionData) *discordgo.InteractionResponse {
	id, err := parseCustomID(data.CustomID)
	if err != nil {
		return b.fail(err, "custom_id", data.CustomID)
	}
	text := modalValue(data.Components, contentField)

	switch {
	case id.Lobby == submitScope && id.Action == actionPrompt:
		return b.submitPrompt(ctx, user, id.Arg, text)
	case id.Action == actionResponse:
		router, err := b.svc.Parties.Router(id.Lobby)
		if err != nil {
			return b.fail(err, "lobby_id", id.Lobby)
		}
		if err := router.DeliverReply(user, game.Reply{Text: text}); err != nil {
			return b.fail(err, "lobby_id", id.Lobby)
		}
		return ephemeral("Response submitted.")
	default:
		return b.fail(errBadCustomID, "custom_id", data.CustomID)
	}
}

// submitPrompt stores what the /submit modal collected. arg is "<kind>[:<user>]".
func (b *Bot) submitPrompt(ctx context.Context, user domain.UserID, arg, text string) *discordgo.InteractionResponse {
	kind, target, _ := strings.Cut(arg, ":")

	if kind == submitKindBulk {
		res, err := b.svc.Prompts.SubmitBulk(ctx, user, text)
		if err != nil {
			resp := b.fail(err, "command", "submit")
			if res != nil && len(res.Stored) > 0 {
				resp.Data.Content = fmt.Sprintf("Stored %d %s before stopping. %s",
					len(res.Stored), plural(len(res.Stored), "prompt", "prompts"), resp.Data.Content)
			}
			return resp
		}
		return ephemeral(fmt.Sprintf("Thanks! %d %s added.", len(res.Stored), plural(len(res.Stored), "prompt", "prompts")))
	}

	category, err := domain.ParseCategory(kind)
	if err != nil {
		return b.fail(errBadCustomID, "custom_id", arg)
	}
	var addressedTo *domain.UserID
	if target != "" {
		u, err := domain.ParseUserID(target)
		if err != nil {
			return b.fail(errBadCustomID, "custom_id", arg)
		}
		addressedTo = &u
	}

	p, err := b.svc.Prompts.Submit(ctx, user, category, text, addressedTo)
	if err != nil {
		return b.fail(err, "command", "submit")
	}
	return ephemeral(fmt.Sprintf("Thanks! Your %s was added as prompt #%d.", strings.ToLower(category.String()), p.ID))
}

func modalValue(components []discordgo.MessageComponent, field string) string {
	for _, c := range components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if in, ok := inner.(*discordgo.TextInput); ok && in.CustomID == field {
				return in.Value
			}
		}
	}
	return ""
}
