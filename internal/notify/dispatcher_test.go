package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/truthorlie/internal/lobby"
	"github.com/jason-s-yu/truthorlie/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTransport records deliveries and fails for selected recipients.
type mockTransport struct {
	mu        sync.Mutex
	delivered []session.Directive
	failFor   map[string]bool
	panicFor  map[string]bool
}

func (m *mockTransport) Send(_ context.Context, d session.Directive) error {
	if m.panicFor[d.Recipient] {
		panic("boom")
	}
	if m.failFor[d.Recipient] {
		return errors.New("cannot send messages to this user")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered = append(m.delivered, d)
	return nil
}

func directivesFor(ids ...string) []session.Directive {
	out := make([]session.Directive, 0, len(ids))
	for _, id := range ids {
		out = append(out, session.Directive{Recipient: id, Kind: session.KindRoundResult, Lobby: "K1K1"})
	}
	return out
}

func TestDeliverContinuesPastFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	tr := &mockTransport{failFor: map[string]bool{"B": true}, panicFor: map[string]bool{"C": true}}
	d := NewDispatcher(tr, logger, time.Second)

	d.Deliver(context.Background(), directivesFor("A", "B", "C", "D"))

	require.Len(t, tr.delivered, 2)
	assert.Equal(t, "A", tr.delivered[0].Recipient)
	assert.Equal(t, "D", tr.delivered[1].Recipient)
	assert.Equal(t, int64(2), d.Failures())

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[0].Level)
	assert.Equal(t, lobby.KindDeliveryFailure, hook.Entries[0].Data["failure"])
	assert.Equal(t, logrus.ErrorLevel, hook.Entries[1].Level)
}

func TestDeliverAppliesTimeout(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var deadlineSet bool
	tr := TransportFunc(func(ctx context.Context, _ session.Directive) error {
		_, deadlineSet = ctx.Deadline()
		return nil
	})
	NewDispatcher(tr, logger, 50*time.Millisecond).Deliver(context.Background(), directivesFor("A"))
	assert.True(t, deadlineSet)
}

func TestProcessRunsIntentThroughController(t *testing.T) {
	logger, _ := test.NewNullLogger()
	tr := &mockTransport{}
	d := NewDispatcher(tr, logger, 0)
	ctrl := session.NewController(lobby.NewRegistry())

	d.Process(context.Background(), ctrl, session.CreateLobby{Actor: session.Actor{UserID: "H"}})

	require.Len(t, tr.delivered, 1)
	assert.Equal(t, session.KindLobbyCreated, tr.delivered[0].Kind)
	assert.Zero(t, d.Failures())
}
