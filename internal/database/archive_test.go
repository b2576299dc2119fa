package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/truthorlie/internal/models"
	"github.com/jason-s-yu/truthorlie/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A deeper test requires a running Postgres; set TEST_DATABASE_URL to enable it.
func connectOrSkip(t *testing.T) *Archive {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	a := NewArchive(pool)
	require.NoError(t, a.EnsureSchema(context.Background()))
	return a
}

func TestArchiveStoresRoundsAndGame(t *testing.T) {
	a := connectOrSkip(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := uuid.New()
	now := time.Now().UnixMilli()
	batch := []models.EventRecord{
		{
			LobbyID: id, LobbyCode: "K1K1", Type: models.EventRoundResolved, Round: 1, Timestamp: now,
			RoundResult: &models.RoundEntry{
				TurnPlayer: "H", Statement: "I have visited Japan", Truth: true,
				CorrectVoters: []string{"P"}, WrongVoters: []string{},
			},
		},
		{
			LobbyID: id, LobbyCode: "K1K1", Type: models.EventGameEnded, Round: 1, Timestamp: now + 1,
			GameResult: &models.GameEntry{
				HostID: "H", Rounds: 1,
				Ranking: []scoring.Standing{
					{Position: 1, Player: "P", Points: 1},
					{Position: 2, Player: "H", Points: 0},
				},
			},
		},
	}
	require.NoError(t, a.Store(ctx, batch))
	// replay is idempotent
	require.NoError(t, a.Store(ctx, batch))

	games, err := a.RecentGames(ctx, 50)
	require.NoError(t, err)

	var found *GameRow
	for i := range games {
		if games[i].LobbyID == id {
			found = &games[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "completed", found.Status)
	assert.Equal(t, "H", found.HostID)
	assert.Equal(t, 1, found.Rounds)
}

func TestArchiveStoreEmptyBatch(t *testing.T) {
	a := &Archive{}
	assert.NoError(t, a.Store(context.Background(), nil))
}
