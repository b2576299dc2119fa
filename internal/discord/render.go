// internal/discord/render.go
package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jason-s-yu/truthorlie/internal/lobby"
	"github.com/jason-s-yu/truthorlie/internal/scoring"
	"github.com/jason-s-yu/truthorlie/internal/session"
)

const (
	colorInfo    = 0x0099ff
	colorSuccess = 0x00ff00
	colorFailure = 0xff0000
	colorGold    = 0xffd700
)

func mention(id string) string { return "<@" + id + ">" }

func mentions(ids []string) string {
	if len(ids) == 0 {
		return "None"
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = mention(id)
	}
	return strings.Join(out, "\n")
}

func truthWord(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func standings(list []scoring.Standing) string {
	if len(list) == 0 {
		return "No points awarded"
	}
	lines := make([]string, len(list))
	for i, s := range list {
		lines[i] = fmt.Sprintf("%d. %s: %d Points", s.Position, mention(s.Player), s.Points)
	}
	return strings.Join(lines, "\n")
}

func button(label string, style discordgo.ButtonStyle, a Action) discordgo.Button {
	return discordgo.Button{Label: label, Style: style, CustomID: a.CustomID()}
}

// Render turns a directive into a DM. Unknown kinds yield nil.
func Render(d session.Directive) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{Color: colorInfo}
	msg := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}

	switch data := d.Data.(type) {
	case session.LobbyCreatedData:
		embed.Color = colorSuccess
		embed.Title = "🎉 Created lobby successfully!"
		embed.Description = fmt.Sprintf("**Lobby-Code:** `%s`\n\nOther players can join using `/join-lobby %s`.\n\nUse `/start-round` to start the next round.", data.Code, data.Code)

	case session.JoinData:
		switch d.Kind {
		case session.KindJoinConfirmed:
			embed.Color = colorSuccess
			embed.Title = "✅ Joined lobby!"
			embed.Description = fmt.Sprintf("You joined lobby `%s`.\n\n**Players in this lobby:** %d", data.Code, data.PlayerCount)
		default:
			embed.Title = "👋 New player"
			embed.Description = fmt.Sprintf("%s joined lobby `%s`.\n\n**Players in this lobby:** %d", mention(data.Player), data.Code, data.PlayerCount)
		}

	case session.RoundData:
		if d.Kind == session.KindYourTurn {
			embed.Title = fmt.Sprintf("🎯 It's your turn! - Round %d", data.Round)
			embed.Description = fmt.Sprintf("**Topic:** %s\n\nMake a true or false statement about this topic:", data.Topic)
			msg.Components = []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				button("My statement is TRUE.", discordgo.SuccessButton, Action{Action: ActionStatement, Value: "true", Code: data.Code}),
				button("My statement is FALSE.", discordgo.DangerButton, Action{Action: ActionStatement, Value: "false", Code: data.Code}),
			}}}
			break
		}
		embed.Title = fmt.Sprintf("🎯 Round %d", data.Round)
		embed.Description = fmt.Sprintf("**Topic:** %s\n\n**It's %s's turn!**\n\nA true or false statement on this topic will be sent shortly.", data.Topic, mention(data.TurnPlayer))

	case session.StatementData:
		if d.Kind == session.KindStatementRecorded {
			embed.Color = colorSuccess
			embed.Title = "✅ Statement saved"
			embed.Description = "Your statement was sent to all players."
			break
		}
		embed.Title = fmt.Sprintf("🤔 Round %d - Voting", data.Round)
		embed.Description = fmt.Sprintf("**Statement from %s:**\n“%s”\n\n**Is this statement true or false?**", mention(data.TurnPlayer), data.Text)
		msg.Components = []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			button("TRUE", discordgo.SuccessButton, Action{Action: ActionVote, Value: "true", Code: data.Code}),
			button("FALSE", discordgo.DangerButton, Action{Action: ActionVote, Value: "false", Code: data.Code}),
		}}}

	case session.VoteData:
		embed.Color = colorSuccess
		embed.Title = "✅ Vote cast!"
		embed.Description = fmt.Sprintf("You voted for “%s”.\n\n%d of %d votes are in.", truthWord(data.Guess), data.Cast, data.Needed)

	case session.ResultData:
		embed.Color = colorFailure
		if data.Truth {
			embed.Color = colorSuccess
		}
		embed.Title = "📊 Round result"
		embed.Description = fmt.Sprintf("**The statement was: %s**\n\n“%s”\n\n*From %s*", truthWord(data.Truth), data.Statement, mention(data.TurnPlayer))
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "✅ Guessed right (+1 Point)", Value: mentions(data.CorrectVoters), Inline: true},
			{Name: "❌ Guessed wrong", Value: mentions(data.WrongVoters), Inline: true},
		}
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Round %d finished", data.Round)}

	case session.ScoreBoardData:
		embed.Title = "🏆 Current score"
		embed.Description = standings(data.Standings)
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Wait for the next round..."}

	case session.ControlsData:
		embed.Title = "🎮 Host controls"
		embed.Description = fmt.Sprintf("Round %d is over.", data.Round)
		msg.Components = []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			button("🎯 Start next round", discordgo.PrimaryButton, Action{Action: ActionNextRound, Code: data.Code}),
			button("🏁 End game", discordgo.DangerButton, Action{Action: ActionEndGame, Code: data.Code}),
		}}}

	case session.GameEndedData:
		embed.Color = colorGold
		embed.Title = "🏆 Game over - Final rankings"
		embed.Description = standings(data.Ranking)
		embed.Fields = []*discordgo.MessageEmbedField{{
			Name:  "📈 Statistics",
			Value: fmt.Sprintf("%d rounds played\n%d participants", data.Rounds, data.Participants),
		}}
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Thank you for playing"}

	case session.StatusData:
		embed.Title = "📊 Lobby Status - " + data.Code
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "👥 Players", Value: statusPlayers(data.Snapshot)},
			{Name: "🔄 Rounds", Value: fmt.Sprint(data.Round), Inline: true},
			{Name: "🎮 Status", Value: statusLine(data.Snapshot), Inline: true},
		}

	case session.StatsData:
		embed.Title = "📊 Bot Statistics"
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "🎮 Lobbies created", Value: fmt.Sprint(data.LobbiesCreated), Inline: true},
			{Name: "🕹 Live lobbies", Value: fmt.Sprint(data.LiveLobbies), Inline: true},
			{Name: "⏱ Uptime", Value: uptime(data.Uptime), Inline: true},
			{Name: "📭 Failed deliveries", Value: fmt.Sprint(data.DeliveryFailures), Inline: true},
		}

	case session.ErrorData:
		return &discordgo.MessageSend{Content: "❌ " + data.Message}

	default:
		return nil
	}
	return msg
}

func statusPlayers(s lobby.Snapshot) string {
	if len(s.Scores) == 0 {
		return "No players"
	}
	lines := make([]string, len(s.Scores))
	for i, sc := range s.Scores {
		line := fmt.Sprintf("%s: %d Points", mention(sc.Player), sc.Points)
		if sc.Player == s.HostID {
			line += " 👑"
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func statusLine(s lobby.Snapshot) string {
	if s.RoundActive {
		return "Round in progress"
	}
	return "Ready"
}

func uptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, sec)
}

// statementModal asks the turn player for the statement text.
func statementModal(truth bool, code string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: Action{Action: ActionStatementModal, Value: boolValue(truth), Code: code}.CustomID(),
			Title:    "Enter your statement",
			Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    statementInputID,
					Label:       "Your statement",
					Style:       discordgo.TextInputParagraph,
					Placeholder: "Enter your true or false statement here...",
					Required:    true,
					MaxLength:   lobby.MaxStatementLength,
				},
			}}},
		},
	}
}
