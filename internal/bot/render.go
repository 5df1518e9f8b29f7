package bot

import (
	"fmt"
	"strings"
	"time"

	"luna/internal/domain"
	"luna/internal/game"
	"luna/internal/service"

	"github.com/bwmarrin/discordgo"
)

const (
	colorLobby  = 0x5865F2
	colorTruth  = 0x57F287
	colorDare   = 0xED4245
	colorResult = 0xFEE75C

	// Discord allows five buttons per row and five rows per message
	buttonsPerRow = 5
	maxButtons    = 25
)

// nameFunc resolves a display name for button labels, where mentions don't render.
type nameFunc func(domain.UserID) string

func relative(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

func mentions(users []domain.UserID) string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Mention())
	}
	return strings.Join(out, ", ")
}

func button(label string, style discordgo.ButtonStyle, id customID) discordgo.Button {
	return discordgo.Button{Label: label, Style: style, CustomID: id.String()}
}

// rows packs buttons into action rows, dropping anything past Discord's limit.
func rows(buttons []discordgo.Button) []discordgo.MessageComponent {
	if len(buttons) > maxButtons {
		buttons = buttons[:maxButtons]
	}
	out := make([]discordgo.MessageComponent, 0, (len(buttons)+buttonsPerRow-1)/buttonsPerRow)
	for start := 0; start < len(buttons); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(buttons))
		row := discordgo.ActionsRow{}
		for _, b := range buttons[start:end] {
			row.Components = append(row.Components, b)
		}
		out = append(out, row)
	}
	return out
}

func lobbyEmbed(l game.LobbySnapshot) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       l.Name,
		Description: fmt.Sprintf("%s started a game of Truth or Dare. Closes %s.", l.Leader.Mention(), relative(l.Deadline)),
		Color:       colorLobby,
		Fields: []*discordgo.MessageEmbedField{
			{Name: fmt.Sprintf("Players (%d)", len(l.Members)), Value: mentions(l.Members)},
		},
	}
}

func lobbyButtons(l game.LobbySnapshot) []discordgo.MessageComponent {
	start := button("Start Early", discordgo.SuccessButton, customID{Lobby: l.ID, Action: actionStart})
	start.Disabled = !l.CanStartEarly
	return rows([]discordgo.Button{
		button("Join", discordgo.PrimaryButton, customID{Lobby: l.ID, Action: actionJoin}),
		button("Leave", discordgo.SecondaryButton, customID{Lobby: l.ID, Action: actionLeave}),
		start,
	})
}

func renderLobby(l game.LobbySnapshot) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{lobbyEmbed(l)},
		Components: lobbyButtons(l),
	}
}

func lobbyOutcome(e game.LobbyResolved) string {
	switch {
	case e.ExitCode == domain.LobbyLeaderLeft:
		return fmt.Sprintf("%s left, so the lobby was closed.", e.Lobby.Leader.Mention())
	case e.Failed:
		return "Nobody else joined in time. Start another lobby with /play."
	case e.Started:
		return fmt.Sprintf("The game is starting with %s!", mentions(e.Lobby.Members))
	default:
		return "The lobby was closed."
	}
}

func renderCategory(lobbyID string, e game.CategoryRequested) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: fmt.Sprintf("%s, truth or dare? Choose %s.", e.Player.Mention(), relative(e.Deadline)),
		Components: rows([]discordgo.Button{
			button("Truth", discordgo.SuccessButton, customID{Lobby: lobbyID, Action: actionCategory, Arg: "truth"}),
			button("Dare", discordgo.DangerButton, customID{Lobby: lobbyID, Action: actionCategory, Arg: "dare"}),
		}),
	}
}

func promptEmbed(p *domain.Prompt) *discordgo.MessageEmbed {
	color := colorTruth
	if p.Category == domain.CategoryDare {
		color = colorDare
	}
	return &discordgo.MessageEmbed{
		Title:       strings.ToUpper(p.Category.String()),
		Description: p.Content,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Prompt #%d", p.ID)},
	}
}

func renderResponse(lobbyID string, e game.ResponseRequested) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: fmt.Sprintf("%s, you have %d %s left. Answer %s or pass and lose one.",
			e.Player.Mention(), e.Lives, plural(e.Lives, "life", "lives"), relative(e.Deadline)),
		Embeds: []*discordgo.MessageEmbed{promptEmbed(e.Prompt)},
		Components: rows([]discordgo.Button{
			button("Submit", discordgo.PrimaryButton, customID{Lobby: lobbyID, Action: actionRespond, Arg: e.Player.String()}),
			button("Pass", discordgo.DangerButton, customID{Lobby: lobbyID, Action: actionPass}),
		}),
	}
}

func renderPassConfirm(lobbyID string, e game.PassConfirmRequested) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: fmt.Sprintf("%s, passing costs a life and you have %d. Are you sure? Decide %s.",
			e.Player.Mention(), e.Lives, relative(e.Deadline)),
		Components: rows([]discordgo.Button{
			button("Confirm", discordgo.DangerButton, customID{Lobby: lobbyID, Action: actionConfirm}),
			button("Cancel", discordgo.SecondaryButton, customID{Lobby: lobbyID, Action: actionCancel}),
		}),
	}
}

func renderTurnAnswered(e game.TurnAnswered) *discordgo.MessageSend {
	embed := promptEmbed(e.Prompt)
	embed.Fields = []*discordgo.MessageEmbedField{{Name: "Response", Value: e.Response}}
	return &discordgo.MessageSend{
		Content: fmt.Sprintf("%s answered!", e.Player.Mention()),
		Embeds:  []*discordgo.MessageEmbed{embed},
	}
}

func renderTurnFailed(e game.TurnFailed) *discordgo.MessageSend {
	var what string
	switch {
	case e.Prompt == nil:
		what = "didn't pick truth or dare in time"
	case e.Reason == game.FailPassed:
		what = "passed"
	default:
		what = "ran out of time"
	}
	return &discordgo.MessageSend{
		Content: fmt.Sprintf("%s %s and lost a life. %d %s left.",
			e.Player.Mention(), what, e.LivesLeft, plural(e.LivesLeft, "life", "lives")),
	}
}

func renderNextPlayer(lobbyID string, e game.NextPlayerRequested, name nameFunc) *discordgo.MessageSend {
	buttons := make([]discordgo.Button, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		label := fmt.Sprintf("%s (%d)", name(c.Player), c.Lives)
		buttons = append(buttons, button(label, discordgo.SecondaryButton,
			customID{Lobby: lobbyID, Action: actionNext, Arg: c.Player.String()}))
	}
	return &discordgo.MessageSend{
		Content:    fmt.Sprintf("%s, who goes next? Pick %s or one is chosen for you.", e.Player.Mention(), relative(e.Deadline)),
		Components: rows(buttons),
	}
}

func renderNextChosen(e game.NextPlayerChosen) *discordgo.MessageSend {
	if e.Random {
		return &discordgo.MessageSend{Content: fmt.Sprintf("%s didn't choose, so %s goes next.", e.From.Mention(), e.To.Mention())}
	}
	return &discordgo.MessageSend{Content: fmt.Sprintf("%s chose %s.", e.From.Mention(), e.To.Mention())}
}

func renderEliminated(e game.PlayerEliminated) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: fmt.Sprintf("%s is out of lives! %d %s remaining.",
			e.Player.Mention(), e.Remaining, plural(e.Remaining, "player", "players")),
	}
}

func renderGameOver(r *game.Result) *discordgo.MessageSend {
	fields := []*discordgo.MessageEmbedField{
		{Name: "1st", Value: r.Podium.Winner.Mention(), Inline: true},
	}
	if r.Podium.Second != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "2nd", Value: r.Podium.Second.Mention(), Inline: true})
	}
	if r.Podium.Third != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "3rd", Value: r.Podium.Third.Mention(), Inline: true})
	}
	if len(r.Podium.Others) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Others", Value: mentions(r.Podium.Others)})
	}
	return &discordgo.MessageSend{
		Content: fmt.Sprintf("%s wins with %d %s left!", r.Winner.Mention(), r.WinnerLives, plural(r.WinnerLives, "life", "lives")),
		Embeds: []*discordgo.MessageEmbed{{
			Title:  "Game over",
			Color:  colorResult,
			Fields: fields,
			Footer: &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("%d turns in %s", r.Turns, service.FormatSeconds(int64(r.Duration().Seconds()))),
			},
		}},
	}
}

func renderProfile(user domain.UserID, p *service.Profile) *discordgo.MessageEmbed {
	st := p.Statistics
	field := func(name string, v int64) *discordgo.MessageEmbedField {
		return &discordgo.MessageEmbedField{Name: name, Value: fmt.Sprint(v), Inline: true}
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Statistics",
		Description: user.Mention(),
		Color:       colorLobby,
		Fields: []*discordgo.MessageEmbedField{
			field("Games played", st.GamesPlayed),
			field("Games won", st.GamesWon),
			field("Games lost", st.GamesLost),
			{Name: "Win rate", Value: fmt.Sprintf("%.0f%%", p.WinRate*100), Inline: true},
			field("Lobbies made", st.LobbiesMade),
			field("Passes", st.PassesMade),
			field("Truths picked", st.TruthsSelected),
			field("Truths answered", st.TruthsAnswered),
			field("Dares picked", st.DaresSelected),
			field("Dares completed", st.DaresCompleted),
			{Name: "Time played", Value: p.PlayTime, Inline: true},
		},
	}
	var awards []string
	if p.WinsAward != service.AwardNone {
		awards = append(awards, fmt.Sprintf("%s wins", p.WinsAward))
	}
	if p.PlayTimeAward != service.AwardNone {
		awards = append(awards, fmt.Sprintf("%s play time", p.PlayTimeAward))
	}
	if len(awards) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Awards", Value: strings.Join(awards, ", ")})
	}
	if st.LastPlayedAt != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Last played"}
		embed.Timestamp = st.LastPlayedAt.Format(time.RFC3339)
	}
	return embed
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
