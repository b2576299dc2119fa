package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/truthorlie/internal/models"
	"github.com/jason-s-yu/truthorlie/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connectOrSkip needs a local Redis, as the historian tests do.
func connectOrSkip(t *testing.T) *Publisher {
	t.Helper()
	rdb, err := Connect(context.Background(), "localhost:6379", 0)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	queue := "truthorlie_test_" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(context.Background(), queue) })
	return NewPublisher(rdb, queue)
}

func TestNewPublisherDefaultQueue(t *testing.T) {
	assert.Equal(t, DefaultQueueName, NewPublisher(nil, "").Queue())
	assert.Equal(t, "custom", NewPublisher(nil, "custom").Queue())
}

func TestPublisherRecordPushesJSON(t *testing.T) {
	p := connectOrSkip(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rec := models.EventRecord{
		LobbyID:   uuid.New(),
		LobbyCode: "K1K1",
		Type:      models.EventGameEnded,
		Round:     3,
		GameResult: &models.GameEntry{
			HostID:  "H",
			Rounds:  3,
			Ranking: []scoring.Standing{{Position: 1, Player: "P", Points: 2}},
		},
		Timestamp: time.Now().UnixMilli(),
	}
	require.NoError(t, p.Record(ctx, rec))

	raw, err := p.rdb.LPop(ctx, p.Queue()).Result()
	require.NoError(t, err)

	var got models.EventRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, rec, got)
}
