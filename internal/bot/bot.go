package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"luna/internal/domain"
	"luna/internal/logger"
	"luna/internal/service"

	"github.com/bwmarrin/discordgo"
)

const (
	interactionTimeout = 10 * time.Second
	stopTimeout        = 10 * time.Second
)

// Services are what the bot's commands drive.
type Services struct {
	Parties    *service.PartyService
	Prompts    *service.PromptService
	Statistics *service.StatisticsService
	// MinResponseLength is enforced by the response modal as well as the engine.
	MinResponseLength int
}

// Bot is the Discord frontend: slash commands, buttons and modals in, channel
// messages out.
type Bot struct {
	session *discordgo.Session
	api     messenger
	guildID string
	svc     Services
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates the bot. Commands are registered in guildID, or globally when empty.
func New(token, guildID string, svc Services) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds

	b := newBot(s, svc)
	b.session = s
	b.guildID = guildID
	return b, nil
}

func newBot(api messenger, svc Services) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		api:    api,
		svc:    svc,
		log:    logger.Component("discord"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start connects to the gateway and registers the slash commands.
func (b *Bot) Start() error {
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.log.Info("discord bot connected", "username", r.User.Username, "guilds", len(r.Guilds))
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	cmds, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, commands())
	if err != nil {
		_ = b.session.Close()
		return fmt.Errorf("register commands: %w", err)
	}
	b.log.Info("slash commands registered", "count", len(cmds), "guild_id", b.guildID)
	return nil
}

// Stop closes the gateway connection and waits for running handlers. Games keep
// running in the party service until it is shut down.
func (b *Bot) Stop() {
	b.log.Info("stopping discord bot...")
	b.cancel()
	if err := b.session.Close(); err != nil {
		b.log.Warn("close discord session", "error", err)
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("discord bot stopped gracefully")
	case <-time.After(stopTimeout):
		b.log.Warn("discord bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.wg.Add(1)
	defer b.wg.Done()

	ctx, cancel := context.WithTimeout(b.ctx, interactionTimeout)
	defer cancel()

	user, err := interactionUser(i.Interaction)
	if err != nil {
		b.log.Warn("interaction without a user", "error", err)
		return
	}
	log := b.log.With("user_id", user, "interaction_id", i.ID)

	var resp *discordgo.InteractionResponse
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		resp = b.handleCommand(ctx, user, i.ChannelID, i.ApplicationCommandData())
	case discordgo.InteractionMessageComponent:
		resp = b.handleComponent(ctx, user, i.MessageComponentData())
	case discordgo.InteractionModalSubmit:
		resp = b.handleModal(ctx, user, i.ModalSubmitData())
	default:
		return
	}

	if err := s.InteractionRespond(i.Interaction, resp, discordgo.WithContext(ctx)); err != nil {
		log.Error("interaction respond failed", "error", err)
	}
}

// fail renders err for the player and logs the ones they didn't cause.
func (b *Bot) fail(err error, args ...any) *discordgo.InteractionResponse {
	msg, ok := describe(err)
	if !ok {
		b.log.Error("interaction failed", append(args, "error", err)...)
	}
	return ephemeral(msg)
}

func interactionUser(i *discordgo.Interaction) (domain.UserID, error) {
	var u *discordgo.User
	switch {
	case i.Member != nil && i.Member.User != nil:
		u = i.Member.User
	case i.User != nil:
		u = i.User
	default:
		return 0, fmt.Errorf("interaction %s has no user", i.ID)
	}
	return domain.ParseUserID(u.ID)
}
