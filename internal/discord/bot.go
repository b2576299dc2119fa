// internal/discord/bot.go
package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/jason-s-yu/truthorlie/internal/lobby"
	"github.com/jason-s-yu/truthorlie/internal/notify"
	"github.com/jason-s-yu/truthorlie/internal/session"
	"github.com/sirupsen/logrus"
)

// Commands are the slash commands the bot registers.
var Commands = []*discordgo.ApplicationCommand{
	{Name: "create-lobby", Description: "Create a new lobby"},
	{
		Name:        "join-lobby",
		Description: "Join a lobby",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "code",
			Description: "Lobby-Code",
			Required:    true,
		}},
	},
	{Name: "start-round", Description: "Start the next round (only for host)"},
	{Name: "lobby-status", Description: "Show current lobby status"},
	{Name: "end-game", Description: "End the current game (only for host)"},
	{Name: "stats", Description: "Show bot statistics"},
}

// errNotInDM marks interactions made in a guild channel.
var errNotInDM = errors.New("interaction outside direct messages")

// Bot routes Discord interactions into the controller and answers them.
type Bot struct {
	session    *discordgo.Session
	handler    notify.Handler
	dispatcher *notify.Dispatcher
	log        logrus.FieldLogger
	guildID    string
	registered []*discordgo.ApplicationCommand
}

// NewBot wires a bot. The dispatcher should deliver through a Transport over s.
func NewBot(s *discordgo.Session, handler notify.Handler, dispatcher *notify.Dispatcher, log logrus.FieldLogger, guildID string) *Bot {
	s.Identify.Intents = discordgo.IntentsDirectMessages
	return &Bot{session: s, handler: handler, dispatcher: dispatcher, log: log, guildID: guildID}
}

// Open connects to the gateway and registers the slash commands.
func (b *Bot) Open() error {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.WithField("user", s.State.User.Username).Info("bot is online")
	})
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	cmds, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, Commands)
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	b.registered = cmds
	b.log.WithField("commands", len(cmds)).Info("slash commands registered")
	return nil
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	logger := b.log.WithField("interaction", i.ID)

	in, resp, err := intentFor(i)
	switch {
	case errors.Is(err, errNotInDM):
		resp = ephemeral(&discordgo.MessageEmbed{
			Color:       colorFailure,
			Title:       "❌ Please use this command in DMs!",
			Description: "**This game has to be played in DMs**\n\nPlease use the commands there.",
		})
	case err != nil:
		logger.WithError(err).Warn("unroutable interaction")
		resp = ephemeralText("❌ " + lobby.KindInvalidIntent.Message())
	}
	if resp != nil {
		if err := s.InteractionRespond(i.Interaction, resp); err != nil {
			logger.WithError(err).Warn("failed to respond to interaction")
		}
		return
	}

	directives := b.handler.Handle(ctx, in)
	reply, rest := splitReply(directives, in.Requester())
	if err := s.InteractionRespond(i.Interaction, replyResponse(reply)); err != nil {
		logger.WithError(err).Warn("failed to respond to interaction")
		if reply != nil {
			rest = append([]session.Directive{*reply}, rest...)
		}
	}
	b.dispatcher.Deliver(ctx, rest)
}

// splitReply picks the first directive addressed to the requester so it can
// answer the interaction in place. The rest go out as DMs.
func splitReply(ds []session.Directive, requester string) (*session.Directive, []session.Directive) {
	for idx, d := range ds {
		if d.Recipient != requester {
			continue
		}
		rest := make([]session.Directive, 0, len(ds)-1)
		rest = append(rest, ds[:idx]...)
		rest = append(rest, ds[idx+1:]...)
		return &ds[idx], rest
	}
	return nil, ds
}

func replyResponse(d *session.Directive) *discordgo.InteractionResponse {
	if d == nil {
		return ephemeralText("✅")
	}
	msg := Render(*d)
	if msg == nil {
		return ephemeralText("✅")
	}
	data := &discordgo.InteractionResponseData{
		Content:    msg.Content,
		Embeds:     msg.Embeds,
		Components: msg.Components,
	}
	if d.Kind == session.KindErrorMessage {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return &discordgo.InteractionResponse{Type: discordgo.InteractionResponseChannelMessageWithSource, Data: data}
}

func ephemeral(embed *discordgo.MessageEmbed) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}
}

func ephemeralText(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

// interactionUser is the acting user, wherever the interaction happened.
func interactionUser(i *discordgo.InteractionCreate) string {
	if i.User != nil {
		return i.User.ID
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	return ""
}

// intentFor maps an interaction to an intent. When the interaction is answered
// without touching lobby state (the statement modal) a response is returned instead.
func intentFor(i *discordgo.InteractionCreate) (session.Intent, *discordgo.InteractionResponse, error) {
	if i.GuildID != "" {
		return nil, nil, errNotInDM
	}
	actor := session.Actor{UserID: interactionUser(i)}
	if actor.UserID == "" {
		return nil, nil, fmt.Errorf("interaction without user")
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case "create-lobby":
			return session.CreateLobby{Actor: actor}, nil, nil
		case "join-lobby":
			for _, opt := range data.Options {
				if opt.Name == "code" && opt.Type == discordgo.ApplicationCommandOptionString {
					return session.JoinLobby{Actor: actor, Code: opt.StringValue()}, nil, nil
				}
			}
			return nil, nil, fmt.Errorf("join-lobby without code")
		case "start-round":
			return session.StartRound{Actor: actor}, nil, nil
		case "lobby-status":
			return session.QueryStatus{Actor: actor}, nil, nil
		case "end-game":
			return session.EndGame{Actor: actor}, nil, nil
		case "stats":
			return session.QueryStats{Actor: actor}, nil, nil
		}
		return nil, nil, fmt.Errorf("unknown command %q", data.Name)

	case discordgo.InteractionMessageComponent:
		a, err := ParseAction(i.MessageComponentData().CustomID)
		if err != nil {
			return nil, nil, err
		}
		switch a.Action {
		case ActionStatement:
			truth, err := a.Bool()
			if err != nil {
				return nil, nil, err
			}
			return nil, statementModal(truth, a.Code), nil
		case ActionVote:
			guess, err := a.Bool()
			if err != nil {
				return nil, nil, err
			}
			return session.CastVote{Actor: actor, Code: a.Code, Guess: guess}, nil, nil
		case ActionNextRound:
			return session.RequestNextRound{Actor: actor, Code: a.Code}, nil, nil
		case ActionEndGame:
			return session.EndGame{Actor: actor, Code: a.Code}, nil, nil
		}
		return nil, nil, fmt.Errorf("unknown component action %q", a.Action)

	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		a, err := ParseAction(data.CustomID)
		if err != nil {
			return nil, nil, err
		}
		if a.Action != ActionStatementModal {
			return nil, nil, fmt.Errorf("unknown modal %q", a.Action)
		}
		truth, err := a.Bool()
		if err != nil {
			return nil, nil, err
		}
		return session.SubmitStatement{Actor: actor, Code: a.Code, Text: modalText(data), Truth: truth}, nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported interaction type %v", i.Type)
}

func modalText(data discordgo.ModalSubmitInteractionData) string {
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if in, ok := inner.(*discordgo.TextInput); ok && in.CustomID == statementInputID {
				return in.Value
			}
		}
	}
	return ""
}
