package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jason-s-yu/truthorlie/internal/scoring"
	"github.com/jason-s-yu/truthorlie/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderYourTurnCarriesStatementButtons(t *testing.T) {
	msg := Render(session.Directive{
		Recipient: "H",
		Kind:      session.KindYourTurn,
		Lobby:     "K1K1",
		Data:      session.RoundData{Code: "K1K1", Round: 2, TurnPlayer: "H", Topic: "Travel"},
	})
	require.NotNil(t, msg)
	require.Len(t, msg.Embeds, 1)
	assert.Contains(t, msg.Embeds[0].Description, "Travel")

	require.Len(t, msg.Components, 1)
	row, ok := msg.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)

	btn := row.Components[0].(discordgo.Button)
	a, err := ParseAction(btn.CustomID)
	require.NoError(t, err)
	assert.Equal(t, Action{Action: ActionStatement, Value: "true", Code: "K1K1"}, a)
}

func TestRenderResultListsVoters(t *testing.T) {
	msg := Render(session.Directive{
		Recipient: "A",
		Kind:      session.KindRoundResult,
		Data: session.ResultData{
			Round: 1, TurnPlayer: "A", Statement: "I have visited Japan", Truth: true,
			CorrectVoters: []string{"B"}, WrongVoters: nil,
		},
	})
	require.NotNil(t, msg)
	e := msg.Embeds[0]
	assert.Contains(t, e.Description, "TRUE")
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "<@B>", e.Fields[0].Value)
	assert.Equal(t, "None", e.Fields[1].Value)
}

func TestRenderGameEndedRanking(t *testing.T) {
	msg := Render(session.Directive{
		Kind: session.KindGameEnded,
		Data: session.GameEndedData{
			Code: "K1K1", Rounds: 3, Participants: 2,
			Ranking: []scoring.Standing{{Position: 1, Player: "B", Points: 2}, {Position: 2, Player: "A", Points: 1}},
		},
	})
	require.NotNil(t, msg)
	assert.Equal(t, "1. <@B>: 2 Points\n2. <@A>: 1 Points", msg.Embeds[0].Description)
	assert.Contains(t, msg.Embeds[0].Fields[0].Value, "3 rounds played")
}

func TestRenderErrorAndUnknown(t *testing.T) {
	msg := Render(session.Directive{Kind: session.KindErrorMessage, Data: session.ErrorData{Message: "Only the host can do that."}})
	require.NotNil(t, msg)
	assert.Equal(t, "❌ Only the host can do that.", msg.Content)

	assert.Nil(t, Render(session.Directive{Kind: "mystery", Data: 42}))
}

func TestUptime(t *testing.T) {
	assert.Equal(t, "26h 3m 4s", uptime(26*time.Hour+3*time.Minute+4*time.Second))
}

type fakeDM struct {
	opened int
	sent   map[string][]*discordgo.MessageSend
	fail   bool
}

func (f *fakeDM) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.opened++
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeDM) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.fail {
		return nil, errors.New("Cannot send messages to this user")
	}
	f.sent[channelID] = append(f.sent[channelID], data)
	return &discordgo.Message{}, nil
}

func TestTransportCachesDMChannels(t *testing.T) {
	fake := &fakeDM{sent: map[string][]*discordgo.MessageSend{}}
	tr := NewTransport(fake)
	d := session.Directive{Recipient: "A", Kind: session.KindLobbyCreated, Data: session.LobbyCreatedData{Code: "K1K1"}}

	require.NoError(t, tr.Send(context.Background(), d))
	require.NoError(t, tr.Send(context.Background(), d))
	assert.Equal(t, 1, fake.opened)
	assert.Len(t, fake.sent["dm-A"], 2)

	fake.fail = true
	assert.Error(t, tr.Send(context.Background(), d))
	assert.Error(t, tr.Send(context.Background(), session.Directive{Recipient: "A", Kind: "mystery"}))
}
