// internal/discord/transport.go
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/jason-s-yu/truthorlie/internal/session"
)

// dmSession is the subset of *discordgo.Session the transport needs.
type dmSession interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Transport delivers directives as direct messages.
type Transport struct {
	s        dmSession
	mu       sync.Mutex
	channels map[string]string // user id -> DM channel id
}

// NewTransport sends through s.
func NewTransport(s dmSession) *Transport {
	return &Transport{s: s, channels: make(map[string]string)}
}

// Send renders d and posts it to the recipient's DM channel.
func (t *Transport) Send(ctx context.Context, d session.Directive) error {
	msg := Render(d)
	if msg == nil {
		return fmt.Errorf("no rendering for %s", d.Kind)
	}
	channelID, err := t.channel(ctx, d.Recipient)
	if err != nil {
		return err
	}
	if _, err := t.s.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send %s to %s: %w", d.Kind, d.Recipient, err)
	}
	return nil
}

func (t *Transport) channel(ctx context.Context, userID string) (string, error) {
	t.mu.Lock()
	id, ok := t.channels[userID]
	t.mu.Unlock()
	if ok {
		return id, nil
	}

	ch, err := t.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("open DM with %s: %w", userID, err)
	}
	t.mu.Lock()
	t.channels[userID] = ch.ID
	t.mu.Unlock()
	return ch.ID, nil
}
