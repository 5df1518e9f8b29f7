package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"luna/internal/domain"
	"luna/internal/game"

	"github.com/bwmarrin/discordgo"
)

var errNoLobbyMessage = errors.New("edit lobby message: no lobby message sent")

// messenger is the part of *discordgo.Session the presenter talks to.
type messenger interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

// channelPresenter posts one party's events into the channel /play was used in.
// The lobby message is sent once and edited afterwards.
type channelPresenter struct {
	api       messenger
	channelID string
	log       *slog.Logger

	mu        sync.Mutex
	lobbyID   string
	lobbyMsg  string
	nameCache map[domain.UserID]string
}

var _ game.Presenter = (*channelPresenter)(nil)

func newChannelPresenter(api messenger, channelID string, log *slog.Logger) *channelPresenter {
	return &channelPresenter{
		api:       api,
		channelID: channelID,
		log:       log,
		nameCache: make(map[domain.UserID]string),
	}
}

func (p *channelPresenter) Present(ctx context.Context, ev game.Event) error {
	opt := discordgo.WithContext(ctx)

	switch e := ev.(type) {
	case game.LobbyUpdated:
		return p.presentLobby(ctx, e.Lobby)
	case game.LobbyResolved:
		content := lobbyOutcome(e)
		embeds := []*discordgo.MessageEmbed{lobbyEmbed(e.Lobby)}
		components := []discordgo.MessageComponent{}
		return p.editLobby(&discordgo.MessageEdit{Content: &content, Embeds: &embeds, Components: &components}, opt)
	case game.CategoryRequested:
		return p.send(renderCategory(p.id(), e), opt)
	case game.ResponseRequested:
		return p.send(renderResponse(p.id(), e), opt)
	case game.PassConfirmRequested:
		return p.send(renderPassConfirm(p.id(), e), opt)
	case game.ResponseRejected:
		return p.send(&discordgo.MessageSend{
			Content: fmt.Sprintf("%s, that response is too short. Use at least %d characters.", e.Player.Mention(), e.MinLength),
		}, opt)
	case game.PassCancelled:
		return p.send(&discordgo.MessageSend{Content: fmt.Sprintf("%s decided not to pass. Keep going!", e.Player.Mention())}, opt)
	case game.TurnAnswered:
		return p.send(renderTurnAnswered(e), opt)
	case game.TurnFailed:
		return p.send(renderTurnFailed(e), opt)
	case game.NextPlayerRequested:
		return p.send(renderNextPlayer(p.id(), e, func(u domain.UserID) string { return p.name(ctx, u) }), opt)
	case game.NextPlayerChosen:
		return p.send(renderNextChosen(e), opt)
	case game.PlayerEliminated:
		return p.send(renderEliminated(e), opt)
	case game.GameOver:
		return p.send(renderGameOver(e.Result), opt)
	case game.SessionAborted:
		return p.send(&discordgo.MessageSend{Content: "Something went wrong and the game had to stop. Sorry!"}, opt)
	default:
		p.log.Debug("event not rendered", "event", ev.EventName())
		return nil
	}
}

func (p *channelPresenter) id() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lobbyID
}

func (p *channelPresenter) presentLobby(ctx context.Context, l game.LobbySnapshot) error {
	p.mu.Lock()
	p.lobbyID = l.ID
	msgID := p.lobbyMsg
	p.mu.Unlock()

	if msgID == "" {
		msg, err := p.api.ChannelMessageSendComplex(p.channelID, renderLobby(l), discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("send lobby message: %w", err)
		}
		p.mu.Lock()
		p.lobbyMsg = msg.ID
		p.mu.Unlock()
		return nil
	}

	embeds := []*discordgo.MessageEmbed{lobbyEmbed(l)}
	components := lobbyButtons(l)
	return p.editLobby(&discordgo.MessageEdit{Embeds: &embeds, Components: &components}, discordgo.WithContext(ctx))
}

func (p *channelPresenter) editLobby(edit *discordgo.MessageEdit, opt discordgo.RequestOption) error {
	p.mu.Lock()
	edit.ID = p.lobbyMsg
	p.mu.Unlock()
	edit.Channel = p.channelID
	if edit.ID == "" {
		return errNoLobbyMessage
	}
	if _, err := p.api.ChannelMessageEditComplex(edit, opt); err != nil {
		return fmt.Errorf("edit lobby message: %w", err)
	}
	return nil
}

func (p *channelPresenter) send(msg *discordgo.MessageSend, opt discordgo.RequestOption) error {
	msg.AllowedMentions = &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers}}
	if _, err := p.api.ChannelMessageSendComplex(p.channelID, msg, opt); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// name looks a user up once per game. Failures fall back to the raw id.
func (p *channelPresenter) name(ctx context.Context, u domain.UserID) string {
	p.mu.Lock()
	n, ok := p.nameCache[u]
	p.mu.Unlock()
	if ok {
		return n
	}

	n = u.String()
	user, err := p.api.User(u.String(), discordgo.WithContext(ctx))
	switch {
	case err != nil:
		p.log.Warn("user lookup failed", "user_id", u, "error", err)
	case user.GlobalName != "":
		n = user.GlobalName
	default:
		n = user.Username
	}

	p.mu.Lock()
	p.nameCache[u] = n
	p.mu.Unlock()
	return n
}
