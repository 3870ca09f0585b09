// Package discord подключает диспетчер команд к Discord через discordgo.
package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ignis-bot/internal/config"
	"ignis-bot/internal/service/chat"
	"ignis-bot/internal/storage/models"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Responder часть discordgo.Session, которой отвечают на взаимодействия
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ Responder = (*discordgo.Session)(nil)

type Bot struct {
	session *discordgo.Session
	service chat.ChatService
	cfg     config.DiscordConfig
	logger  *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

func New(cfg config.DiscordConfig, service chat.ChatService, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	return newBot(session, cfg, service, logger), nil
}

func newBot(session *discordgo.Session, cfg config.DiscordConfig, service chat.ChatService, logger *zap.Logger) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		session: session,
		service: service,
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "discord")),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start регистрирует обработчики и открывает соединение с gateway
func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handleInteraction(s, i.Interaction)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	return nil
}

// Stop ждет незавершенные ответы (не дольше ctx) и закрывает сессию
func (b *Bot) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		b.logger.Warn("Shutdown timeout, dropping in-flight replies")
	}

	b.cancel()
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("Logged in", zap.String("user", r.User.Username), zap.String("user_id", r.User.ID))

	if err := s.UpdateGameStatus(0, b.cfg.StatusText); err != nil {
		b.logger.Warn("Failed to update presence", zap.Error(err))
	}

	guildID := ""
	if b.cfg.Development {
		guildID = b.cfg.GuildID
	}

	synced, err := s.ApplicationCommandBulkOverwrite(r.User.ID, guildID, applicationCommands(chat.Commands()))
	if err != nil {
		b.logger.Error("Failed to sync commands", zap.String("guild_id", guildID), zap.Error(err))
		return
	}

	if guildID != "" {
		b.logger.Info("Commands synced to guild", zap.String("guild_id", guildID), zap.Strings("commands", commandNames(synced)))
	} else {
		b.logger.Info("Global commands synced", zap.Strings("commands", commandNames(synced)))
	}
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// handleInteraction быстрые команды отвечают сразу; команды с моделью сначала
// подтверждают получение, потом присылают followup
func (b *Bot) handleInteraction(r Responder, i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	user := interactionUser(i)
	if user == nil {
		b.logger.Warn("Interaction without user", zap.String("interaction_id", i.ID))
		return
	}

	data := i.ApplicationCommandData()
	inv := models.NewCommandInvocation(data.Name, user.ID, optionArgs(data.Options))

	logger := b.logger.With(
		zap.String("invocation_id", inv.ID),
		zap.String("command", inv.Command),
		zap.String("user_id", inv.UserID),
	)

	cmd, ok := chat.LookupCommand(inv.Command)
	if !ok {
		b.respond(r, i, chat.ErrorReply(chat.ErrUnknownCommand), true, logger)
		return
	}

	if err := chat.ValidateInvocation(cmd, inv); err != nil {
		b.respond(r, i, chat.ErrorReply(err), true, logger)
		return
	}

	if !cmd.Deferred {
		reply, err := b.service.Handle(b.ctx, inv)
		if err != nil {
			b.respond(r, i, chat.ErrorReply(err), true, logger)
			return
		}
		b.respond(r, i, reply.Content, false, logger)
		return
	}

	err := r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		logger.Error("Failed to defer interaction", zap.Error(err))
		return
	}

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()

		startTime := time.Now()
		var content string
		reply, err := b.service.Handle(b.ctx, inv)
		if err != nil {
			content = chat.ErrorReply(err)
		} else {
			content = reply.Content
		}

		if _, err := r.FollowupMessageCreate(i, true, &discordgo.WebhookParams{Content: content}); err != nil {
			logger.Error("Failed to send followup", zap.Error(err))
			return
		}

		logger.Debug("Followup sent", zap.Duration("duration", time.Since(startTime)))
	}()
}

func (b *Bot) respond(r Responder, i *discordgo.Interaction, content string, ephemeral bool, logger *zap.Logger) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		logger.Error("Failed to respond to interaction", zap.Error(err))
	}
}
