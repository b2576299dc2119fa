package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/jason-s-yu/truthorlie/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dm(typ discordgo.InteractionType, data discordgo.InteractionData) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: typ,
		User: &discordgo.User{ID: "U"},
		Data: data,
	}}
}

func TestIntentForCommands(t *testing.T) {
	in, resp, err := intentFor(dm(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{
		Name: "join-lobby",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "code", Type: discordgo.ApplicationCommandOptionString, Value: "ab12"},
		},
	}))
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, session.JoinLobby{Actor: session.Actor{UserID: "U"}, Code: "ab12"}, in)

	cases := map[string]session.Intent{
		"create-lobby": session.CreateLobby{Actor: session.Actor{UserID: "U"}},
		"start-round":  session.StartRound{Actor: session.Actor{UserID: "U"}},
		"lobby-status": session.QueryStatus{Actor: session.Actor{UserID: "U"}},
		"end-game":     session.EndGame{Actor: session.Actor{UserID: "U"}},
		"stats":        session.QueryStats{Actor: session.Actor{UserID: "U"}},
	}
	for name, want := range cases {
		in, _, err := intentFor(dm(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{Name: name}))
		require.NoError(t, err, name)
		assert.Equal(t, want, in, name)
	}
}

func TestIntentForRefusesGuildChannels(t *testing.T) {
	i := dm(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{Name: "create-lobby"})
	i.GuildID = "guild"
	i.User = nil
	i.Member = &discordgo.Member{User: &discordgo.User{ID: "U"}}

	_, _, err := intentFor(i)
	assert.ErrorIs(t, err, errNotInDM)
}

func TestIntentForButtons(t *testing.T) {
	vote := Action{Action: ActionVote, Value: "true", Code: "K1K1"}
	in, _, err := intentFor(dm(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{CustomID: vote.CustomID()}))
	require.NoError(t, err)
	assert.Equal(t, session.CastVote{Actor: session.Actor{UserID: "U"}, Code: "K1K1", Guess: true}, in)

	next := Action{Action: ActionNextRound, Code: "K1K1"}
	in, _, err = intentFor(dm(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{CustomID: next.CustomID()}))
	require.NoError(t, err)
	assert.Equal(t, session.RequestNextRound{Actor: session.Actor{UserID: "U"}, Code: "K1K1"}, in)

	// the statement button opens a modal without touching the lobby
	open := Action{Action: ActionStatement, Value: "false", Code: "K1K1"}
	in, resp, err := intentFor(dm(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{CustomID: open.CustomID()}))
	require.NoError(t, err)
	assert.Nil(t, in)
	require.NotNil(t, resp)
	assert.Equal(t, discordgo.InteractionResponseModal, resp.Type)

	modal, err := ParseAction(resp.Data.CustomID)
	require.NoError(t, err)
	assert.Equal(t, Action{Action: ActionStatementModal, Value: "false", Code: "K1K1"}, modal)
}

func TestIntentForModalSubmit(t *testing.T) {
	id := Action{Action: ActionStatementModal, Value: "true", Code: "K1K1"}.CustomID()
	in, _, err := intentFor(dm(discordgo.InteractionModalSubmit, discordgo.ModalSubmitInteractionData{
		CustomID: id,
		Components: []discordgo.MessageComponent{&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: statementInputID, Value: "I have visited Japan"},
		}}},
	}))
	require.NoError(t, err)
	assert.Equal(t, session.SubmitStatement{
		Actor: session.Actor{UserID: "U"},
		Code:  "K1K1",
		Text:  "I have visited Japan",
		Truth: true,
	}, in)
}

func TestSplitReply(t *testing.T) {
	ds := []session.Directive{
		{Recipient: "A", Kind: session.KindRoundStarted},
		{Recipient: "U", Kind: session.KindYourTurn},
		{Recipient: "B", Kind: session.KindRoundStarted},
	}
	reply, rest := splitReply(ds, "U")
	require.NotNil(t, reply)
	assert.Equal(t, session.KindYourTurn, reply.Kind)
	require.Len(t, rest, 2)
	assert.Equal(t, "A", rest[0].Recipient)
	assert.Equal(t, "B", rest[1].Recipient)

	reply, rest = splitReply(ds, "Z")
	assert.Nil(t, reply)
	assert.Len(t, rest, 3)
}
