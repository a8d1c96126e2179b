package partnership

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"ignis/internal/bot"
	"ignis/internal/command"
	"ignis/internal/configstore"
)

const (
	notifyPrefix  = "parceria_notify:"
	requestColor  = 0x4B0082
	defaultWindow = 60 * time.Second

	requirements = `**Requisitos para a formação de uma parceria:**
1. Ter um servidor, de pelo menos 50 membros.
2. Seguir as regras do Discord.
3. Oferecer reciprocidade na divulgação.
4. Estar disposto a manter uma comunicação aberta.

Clique no botão abaixo e notifique sua intenção de parceria e você será respondido em breve.`

	msgNotified   = "O responsável foi notificado com sucesso!"
	msgNotifyFail = "Não foi possível notificar o responsável."
	msgExpired    = "⌛ Este botão expirou. Use `/parceria` novamente."
	msgNotYours   = "❌ Apenas quem usou o comando pode usar este botão."
)

type ChannelSource interface {
	Channels(ctx context.Context) (*configstore.Channels, error)
}

// pendingRequest is an unanswered notify button.
type pendingRequest struct {
	userID      string
	interaction *discordgo.Interaction
	timer       *time.Timer
}

// PartnershipCommand shows the partnership requirements and lets the member
// notify the partnership contact once, within Window.
type PartnershipCommand struct {
	Store     ChannelSource
	ContactID string
	Window    time.Duration

	mu      sync.Mutex
	pending map[string]*pendingRequest
}

func (c *PartnershipCommand) Name() string { return "parceria" }
func (c *PartnershipCommand) Description() string {
	return "Exibe os requisitos para a formação de uma parceria."
}
func (c *PartnershipCommand) Group() string { return "help" }

func (c *PartnershipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *PartnershipCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := slash.Session, slash.Event
	user := bot.InteractionUser(e)

	token := e.ID
	c.track(token, user.ID, e.Interaction, func() { c.expire(s, token) })
	err := bot.RespondData(s, e, &discordgo.InteractionResponseData{
		Content:    requirements,
		Components: []discordgo.MessageComponent{notifyRow(token, false)},
		Flags:      discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		c.claim(token, user.ID)
		return err
	}

	c.postUsageNotice(s, user)
	return nil
}

func (c *PartnershipCommand) Component(ctx *command.ComponentInteractionContext) error {
	s, e := ctx.Session, ctx.Event
	token, ok := strings.CutPrefix(e.MessageComponentData().CustomID, notifyPrefix)
	if !ok {
		return nil
	}
	user := bot.InteractionUser(e)

	req, status := c.claim(token, user.ID)
	switch status {
	case claimExpired:
		return bot.RespondEphemeral(s, e, msgExpired)
	case claimWrongUser:
		return bot.RespondEphemeral(s, e, msgNotYours)
	}

	content := msgNotified
	if err := c.notifyContact(s, requestEmbed(user, memberJoinedAt(req.interaction), time.Now())); err != nil {
		log.Error().Err(err).Str("user", user.ID).Str("contact", c.ContactID).Msg("Failed to notify partnership contact")
		content = msgNotifyFail
	}
	return bot.UpdateMessage(s, e, &discordgo.InteractionResponseData{
		Content:    content,
		Components: []discordgo.MessageComponent{notifyRow(token, true)},
	})
}

type claimStatus int

const (
	claimOK claimStatus = iota
	claimExpired
	claimWrongUser
)

func (c *PartnershipCommand) track(token, userID string, i *discordgo.Interaction, onExpire func()) {
	window := c.Window
	if window <= 0 {
		window = defaultWindow
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		c.pending = make(map[string]*pendingRequest)
	}
	c.pending[token] = &pendingRequest{
		userID:      userID,
		interaction: i,
		timer:       time.AfterFunc(window, onExpire),
	}
}

// claim consumes the pending request for token if userID owns it.
func (c *PartnershipCommand) claim(token, userID string) (*pendingRequest, claimStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.pending[token]
	if !ok {
		return nil, claimExpired
	}
	if req.userID != userID {
		return nil, claimWrongUser
	}
	req.timer.Stop()
	delete(c.pending, token)
	return req, claimOK
}

// expire drops an unused request and disables its button.
func (c *PartnershipCommand) expire(s *discordgo.Session, token string) {
	c.mu.Lock()
	req, ok := c.pending[token]
	delete(c.pending, token)
	c.mu.Unlock()
	if !ok {
		return
	}

	original := &discordgo.InteractionCreate{Interaction: req.interaction}
	components := []discordgo.MessageComponent{notifyRow(token, true)}
	if err := bot.EditResponse(s, original, requirements, components); err != nil {
		log.Debug().Err(err).Str("user", req.userID).Msg("Failed to disable expired partnership button")
	}
}

func (c *PartnershipCommand) notifyContact(s *discordgo.Session, embed *discordgo.MessageEmbed) error {
	dm, err := s.UserChannelCreate(c.ContactID)
	if err != nil {
		return fmt.Errorf("open DM: %w", err)
	}
	if err := bot.MessageEmbed(s, dm.ID, embed); err != nil {
		return fmt.Errorf("send DM: %w", err)
	}
	return nil
}

// postUsageNotice mirrors the command use into the member log channel when
// the bot can write there. Failures are only logged.
func (c *PartnershipCommand) postUsageNotice(s *discordgo.Session, user *discordgo.User) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	channels, err := c.Store.Channels(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("No channel configuration for partnership notice")
		return
	}
	channelID := channels.ChannelByName(configstore.ChannelMemberLog)
	if channelID == "" || !bot.CanSend(s, channelID) {
		return
	}
	if err := bot.MessageEmbed(s, channelID, usageEmbed(user, rand.Intn(0xFFFFFF+1), time.Now())); err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("Failed to post partnership notice")
	}
}

func notifyRow(token string, disabled bool) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "📥 Notificar Responsável",
			Style:    discordgo.PrimaryButton,
			CustomID: notifyPrefix + token,
			Disabled: disabled,
		},
	}}
}

func usageEmbed(user *discordgo.User, color int, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       color,
		Title:       user.Username + " usou",
		Description: "Usuário usou o comando `/parceria`",
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("512")},
		Timestamp:   now.Format(time.RFC3339),
	}
}

// requestEmbed is the DM sent to the partnership contact. joinedAt is zero
// when the member's join date is unknown.
func requestEmbed(user *discordgo.User, joinedAt time.Time, now time.Time) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "📋 Nome", Value: user.Username, Inline: true},
		{Name: "🆔 ID", Value: user.ID, Inline: true},
	}
	if created, err := discordgo.SnowflakeTimestamp(user.ID); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "📅 Conta Criada", Value: fmt.Sprintf("<t:%d:R>", created.Unix()), Inline: true,
		})
	}
	if !joinedAt.IsZero() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "📥 Entrou no Servidor", Value: fmt.Sprintf("<t:%d:R>", joinedAt.Unix()), Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Color:  requestColor,
		Title:  "Nova Solicitação de Parceria",
		Author: &discordgo.MessageEmbedAuthor{Name: user.Username, IconURL: user.AvatarURL("")},
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: user.AvatarURL("512"),
		},
		Description: fmt.Sprintf("O usuário [%s](https://discord.com/users/%s) solicitou informações sobre parceria.", user.Username, user.ID),
		Fields:      fields,
		Timestamp:   now.Format(time.RFC3339),
	}
}

func memberJoinedAt(i *discordgo.Interaction) time.Time {
	if i == nil || i.Member == nil {
		return time.Time{}
	}
	return i.Member.JoinedAt
}
