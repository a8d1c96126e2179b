package radio

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	rd "ignis/internal/radio"
)

const nowPlayingColor = 0x3498db

// truncate cuts s to n runes, the limit Discord applies to labels.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func countryOptions(cat *rd.Catalog, current string) []discordgo.SelectMenuOption {
	countries := cat.Countries()
	opts := make([]discordgo.SelectMenuOption, 0, len(countries))
	for _, c := range countries {
		stations, _ := cat.Stations(c)
		opts = append(opts, discordgo.SelectMenuOption{
			Label:       truncate(c, 100),
			Value:       rd.CountryValue(c),
			Description: fmt.Sprintf("%d rádios disponíveis", len(stations)),
			Default:     c == current,
		})
	}
	return opts
}

func countryMenu(cat *rd.Catalog, placeholder, current string) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.SelectMenu{
			CustomID:    rd.IDCountrySelect,
			Placeholder: placeholder,
			Options:     countryOptions(cat, current),
		},
	}}
}

// countryPrompt is the first screen of /radio.
func countryPrompt(cat *rd.Catalog) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    promptCountry,
		Components: []discordgo.MessageComponent{countryMenu(cat, "Escolha um país", "")},
	}
}

// stationPage lists one page of a country's stations as buttons.
func stationPage(cat *rd.Catalog, country string, page int) (*discordgo.InteractionResponseData, error) {
	p, err := cat.Page(country, page)
	if err != nil {
		return nil, err
	}

	buttons := make([]discordgo.MessageComponent, 0, len(p.Stations))
	for i, st := range p.Stations {
		buttons = append(buttons, discordgo.Button{
			Label:    truncate(st.Name, 80),
			Style:    discordgo.PrimaryButton,
			CustomID: rd.PlayID(p.Offset+i, country),
		})
	}

	// disabled edge buttons point at the current page so IDs stay unique
	nav := []discordgo.MessageComponent{}
	content := fmt.Sprintf(promptStation, country)
	if p.Total > 1 {
		content = fmt.Sprintf(promptStationPaged, country, p.Number+1, p.Total)
		nav = append(nav,
			discordgo.Button{
				Label:    "◀️ Anterior",
				Style:    discordgo.SecondaryButton,
				CustomID: rd.PageID(max(p.Number-1, 0), country),
				Disabled: !p.HasPrev(),
			},
			discordgo.Button{
				Label:    "Próxima ▶️",
				Style:    discordgo.SecondaryButton,
				CustomID: rd.PageID(min(p.Number+1, p.Total-1), country),
				Disabled: !p.HasNext(),
			},
		)
	}
	nav = append(nav, discordgo.Button{
		Label:    "⬅️ Voltar",
		Style:    discordgo.SecondaryButton,
		CustomID: rd.IDBack,
	})

	return &discordgo.InteractionResponseData{
		Content: content,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: buttons},
			discordgo.ActionsRow{Components: nav},
		},
	}, nil
}

func controlButtons() discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{Label: "⏮️ Anterior", Style: discordgo.SecondaryButton, CustomID: rd.IDPrev},
		discordgo.Button{Label: "⏹️ Parar", Style: discordgo.DangerButton, CustomID: rd.IDStop},
		discordgo.Button{Label: "⏭️ Próxima", Style: discordgo.SecondaryButton, CustomID: rd.IDNext},
	}}
}

func nowPlayingEmbed(sess rd.Session, total int, now time.Time) *discordgo.MessageEmbed {
	st := sess.Station
	desc := st.Description
	if desc == "" {
		desc = "Sem descrição"
	}
	place := st.Place
	if place == "" {
		place = "Desconhecido"
	}
	return &discordgo.MessageEmbed{
		Color:       nowPlayingColor,
		Title:       "🎵 Rádio: " + st.Name,
		Description: desc,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📍 Local", Value: place},
			{Name: "🎧 Canal", Value: "<#" + sess.VoiceChannelID + ">"},
			{Name: "🎭 DJ", Value: "<@" + sess.OwnerID + ">"},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Rádio %d/%d de %s", sess.Index+1, total, sess.Country)},
		Timestamp: now.Format(time.RFC3339),
	}
}

// nowPlaying is the control message posted for a running session.
func nowPlaying(cat *rd.Catalog, sess rd.Session, total int, now time.Time) *discordgo.WebhookParams {
	return &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{nowPlayingEmbed(sess, total, now)},
		Components: []discordgo.MessageComponent{
			countryMenu(cat, "Mudar país", sess.Country),
			controlButtons(),
		},
	}
}
