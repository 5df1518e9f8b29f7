package bot

import (
	"errors"
	"fmt"

	"luna/internal/game"
	"luna/internal/service"

	"github.com/bwmarrin/discordgo"
)

const notYourInteraction = "This is not your interaction."

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral},
	}
}

// acknowledge answers a component click without touching its message.
func acknowledge() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate}
}

// settle answers a component click and strips the buttons from its message, so a
// request can't be answered twice.
func settle(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			Components:      []discordgo.MessageComponent{},
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	}
}

// describe turns a domain error into something a player can read. ok is false for
// errors that are not the player's fault.
func describe(err error) (msg string, ok bool) {
	var dup *service.DuplicatePromptError
	var format *service.FormatError

	switch {
	case errors.As(err, &dup):
		msg = fmt.Sprintf("That prompt was already submitted by %s %s.",
			dup.Original.SubmitterID.Mention(), relative(dup.Original.SubmittedAt))
		if dup.Line > 0 {
			msg = fmt.Sprintf("Line %d: %s", dup.Line, msg)
		}
		return msg, true
	case errors.As(err, &format):
		if errors.Is(format.Err, service.ErrPromptTooShort) {
			return fmt.Sprintf("Line %d: prompts need at least %d characters.", format.Line, service.MinPromptLength), true
		}
		return fmt.Sprintf("Line %d should look like `truth - question` or `dare - challenge`.", format.Line), true
	case errors.Is(err, service.ErrDuplicatePrompt):
		return "That prompt was already submitted.", true
	case errors.Is(err, service.ErrPromptTooShort):
		return fmt.Sprintf("Prompts need at least %d characters.", service.MinPromptLength), true
	case errors.Is(err, service.ErrEmptySubmission):
		return "There was nothing to submit.", true
	case errors.Is(err, service.ErrInvalidCategory):
		return "Pick truth or dare.", true
	case errors.Is(err, service.ErrNoStatistics):
		return "No games played yet.", true
	case errors.Is(err, service.ErrLobbyNotFound), errors.Is(err, game.ErrLobbyClosed):
		return "This lobby is no longer open.", true
	case errors.Is(err, service.ErrShuttingDown):
		return "The bot is restarting, try again in a minute.", true
	case errors.Is(err, game.ErrAlreadyInLobby):
		return "You are already in a lobby.", true
	case errors.Is(err, game.ErrAlreadyJoined):
		return "You already joined this lobby.", true
	case errors.Is(err, game.ErrNotInLobby):
		return "You are not in this lobby.", true
	case errors.Is(err, game.ErrNotLeader):
		return "Only the lobby leader can do that.", true
	case errors.Is(err, game.ErrNotEnoughMembers):
		return "At least two players are needed to start.", true
	case errors.Is(err, game.ErrNoPendingRequest):
		return notYourInteraction, true
	case errors.Is(err, game.ErrInvalidChoice), errors.Is(err, errBadCustomID):
		return "That is not a valid choice.", true
	default:
		return "Something went wrong. Please try again.", false
	}
}
