package memberlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"ignis/internal/configstore"
)

const (
	unknownExecutor = "Desconhecido"
	noReason        = "Não informado"

	colorBot      = 0x5865F2
	colorPositive = 0x57F287
	colorNegative = 0xED4245
	colorChange   = 0xFFA500
)

func newEmbed(color int, title, description string, user *discordgo.User, now time.Time) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Color:       color,
		Title:       title,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
	}
	if user != nil {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")}
	}
	return e
}

func orUnknown(executor string) string {
	if executor == "" {
		return unknownExecutor
	}
	return executor
}

func orNoReason(reason string) string {
	if reason == "" {
		return noReason
	}
	return reason
}

func joinEmbed(u *discordgo.User, now time.Time) *discordgo.MessageEmbed {
	color, title := colorPositive, "👤 Membro entrou"
	if u.Bot {
		color, title = colorBot, "🤖 Bot entrou"
	}
	return newEmbed(color, title, fmt.Sprintf("%s (%s) entrou no servidor.", u.String(), u.ID), u, now)
}

// kick describes the audit entry that explains a member removal.
type kick struct {
	Executor string
	Reason   string
}

func leaveEmbed(u *discordgo.User, k *kick, now time.Time) *discordgo.MessageEmbed {
	color := colorNegative
	if u.Bot {
		color = colorBot
	}
	who := "👤 Membro"
	if u.Bot {
		who = "🤖 Bot"
	}
	if k == nil {
		return newEmbed(color, who+" saiu", fmt.Sprintf("%s (%s) saiu do servidor.", u.String(), u.ID), u, now)
	}
	desc := fmt.Sprintf("%s (%s) foi expulso do servidor por %s.\nMotivo: %s",
		u.String(), u.ID, orUnknown(k.Executor), orNoReason(k.Reason))
	return newEmbed(color, who+" expulso", desc, u, now)
}

func banEmbed(u *discordgo.User, executor, reason string, now time.Time) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("%s (%s) foi banido.\nPor: %s\nMotivo: %s", u.String(), u.ID, orUnknown(executor), orNoReason(reason))
	return newEmbed(colorNegative, "🚫 Usuário Banido", desc, u, now)
}

func unbanEmbed(u *discordgo.User, executor string, now time.Time) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("%s (%s) foi desbanido.\nPor: %s", u.String(), u.ID, orUnknown(executor))
	return newEmbed(colorPositive, "♻️ Usuário Desbanido", desc, u, now)
}

func roleMentions(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = "<@&" + id + ">"
	}
	return strings.Join(out, ", ")
}

func rolesEmbed(u *discordgo.User, added, removed []string, executor string, now time.Time) *discordgo.MessageEmbed {
	e := newEmbed(colorChange, "🔄 Atualização de Cargos", "", u, now)
	if len(added) > 0 {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Cargos Adicionados", Value: roleMentions(added)})
	}
	if len(removed) > 0 {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Cargos Removidos", Value: roleMentions(removed)})
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Alterado por", Value: orUnknown(executor)})
	return e
}

func timeoutEmbed(u *discordgo.User, until time.Time, executor, reason string, now time.Time) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("%s (%s) recebeu timeout até <t:%d:F>.\nPor: %s\nMotivo: %s",
		u.String(), u.ID, until.Unix(), orUnknown(executor), orNoReason(reason))
	return newEmbed(colorNegative, "⏳ Timeout aplicado", desc, u, now)
}

func timeoutRemovedEmbed(u *discordgo.User, executor string, now time.Time) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("%s (%s) teve o timeout removido.\nPor: %s", u.String(), u.ID, orUnknown(executor))
	return newEmbed(colorPositive, "⏳ Timeout removido", desc, u, now)
}

func nickname(nick string) string {
	if nick == "" {
		return "Nenhum"
	}
	return nick
}

func nicknameEmbed(u *discordgo.User, before, after, executor string, now time.Time) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("De: %s\nPara: %s\nPor: %s", nickname(before), nickname(after), orUnknown(executor))
	return newEmbed(colorChange, "✏️ Apelido alterado", desc, u, now)
}

// profileEmbed reports username and avatar changes; nil when neither changed.
func profileEmbed(before, after *discordgo.User, now time.Time) *discordgo.MessageEmbed {
	renamed := before.Username != after.Username || before.Discriminator != after.Discriminator
	newAvatar := before.Avatar != after.Avatar
	if !renamed && !newAvatar {
		return nil
	}
	e := newEmbed(colorChange, "📝 Perfil atualizado", fmt.Sprintf("Usuário: %s (%s)", after.String(), after.ID), after, now)
	if renamed {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:  "Nome de usuário alterado",
			Value: fmt.Sprintf("De: %s\nPara: %s", before.String(), after.String()),
		})
	}
	if newAvatar {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:  "Avatar alterado",
			Value: fmt.Sprintf("[Ver novo avatar](%s)", after.AvatarURL("")),
		})
	}
	return e
}

func voiceJoinEmbed(st *configstore.Status, userID, channelID string, now time.Time) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("**Usuário:** <@%s>\n**Canal:** <#%s>", userID, channelID)
	return newEmbed(st.Color(configstore.StatusPositive), st.Emoji(configstore.StatusPositive)+" Entrou em canal de voz", desc, nil, now)
}

func voiceLeaveEmbed(st *configstore.Status, userID, channelID string, now time.Time) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("**Usuário:** <@%s>\n**Canal:** <#%s>", userID, channelID)
	return newEmbed(st.Color(configstore.StatusNegative), st.Emoji(configstore.StatusNegative)+" Saiu do canal de voz", desc, nil, now)
}

// voiceMoveEmbed names moverID when someone else moved the member.
func voiceMoveEmbed(st *configstore.Status, userID, fromID, toID, moverID string, now time.Time) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("**Usuário:** <@%s>\n**Canal anterior:** <#%s>\n**Canal próximo:** <#%s>", userID, fromID, toID)
	if moverID != "" && moverID != userID {
		desc += fmt.Sprintf("\n**Movido por:** <@%s>", moverID)
	}
	return newEmbed(st.Color(configstore.StatusChange), st.Emoji(configstore.StatusChange)+" Moveu-se de canal de voz", desc, nil, now)
}
