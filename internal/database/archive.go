// internal/database/archive.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/truthorlie/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	lobby_id   UUID PRIMARY KEY,
	lobby_code TEXT NOT NULL,
	host_id    TEXT NOT NULL DEFAULT '',
	rounds     INT NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT 'in_progress',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS game_rounds (
	lobby_id       UUID NOT NULL REFERENCES games (lobby_id) ON DELETE CASCADE,
	round          INT NOT NULL,
	turn_player    TEXT NOT NULL,
	statement      TEXT NOT NULL,
	truth          BOOLEAN NOT NULL,
	correct_voters TEXT[] NOT NULL,
	wrong_voters   TEXT[] NOT NULL,
	resolved_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (lobby_id, round)
);

CREATE TABLE IF NOT EXISTS game_results (
	lobby_id  UUID NOT NULL REFERENCES games (lobby_id) ON DELETE CASCADE,
	player_id TEXT NOT NULL,
	position  INT NOT NULL,
	score     INT NOT NULL,
	PRIMARY KEY (lobby_id, player_id)
);
`

// Archive persists resolved rounds and finished games.
type Archive struct {
	pool *pgxpool.Pool
}

// NewArchive wraps an open pool.
func NewArchive(pool *pgxpool.Pool) *Archive {
	return &Archive{pool: pool}
}

// EnsureSchema creates the archive tables if they are missing.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create archive schema: %w", err)
	}
	return nil
}

// Store writes a batch of events in a single transaction. Replaying a batch is harmless.
func (a *Archive) Store(ctx context.Context, records []models.EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, a.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			var err error
			switch rec.Type {
			case models.EventRoundResolved:
				err = storeRound(ctx, tx, rec)
			case models.EventGameEnded:
				err = storeGame(ctx, tx, rec)
			default:
				err = fmt.Errorf("unknown event type %q", rec.Type)
			}
			if err != nil {
				return fmt.Errorf("lobby %s round %d: %w", rec.LobbyCode, rec.Round, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx store events: %w", err)
	}
	return nil
}

func upsertGame(ctx context.Context, tx pgx.Tx, rec models.EventRecord, status, hostID string) error {
	q := `
		INSERT INTO games (lobby_id, lobby_code, host_id, rounds, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (lobby_id) DO UPDATE SET
			rounds     = GREATEST(games.rounds, EXCLUDED.rounds),
			host_id    = CASE WHEN EXCLUDED.host_id = '' THEN games.host_id ELSE EXCLUDED.host_id END,
			status     = CASE WHEN games.status = 'completed' THEN games.status ELSE EXCLUDED.status END,
			updated_at = EXCLUDED.updated_at
	`
	_, err := tx.Exec(ctx, q, rec.LobbyID, rec.LobbyCode, hostID, rec.Round, status, time.UnixMilli(rec.Timestamp))
	return err
}

func storeRound(ctx context.Context, tx pgx.Tx, rec models.EventRecord) error {
	if rec.RoundResult == nil {
		return fmt.Errorf("round event without result")
	}
	if err := upsertGame(ctx, tx, rec, "in_progress", ""); err != nil {
		return err
	}
	r := rec.RoundResult
	q := `
		INSERT INTO game_rounds (lobby_id, round, turn_player, statement, truth, correct_voters, wrong_voters, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (lobby_id, round) DO NOTHING
	`
	_, err := tx.Exec(ctx, q, rec.LobbyID, rec.Round, r.TurnPlayer, r.Statement, r.Truth,
		r.CorrectVoters, r.WrongVoters, time.UnixMilli(rec.Timestamp))
	return err
}

func storeGame(ctx context.Context, tx pgx.Tx, rec models.EventRecord) error {
	if rec.GameResult == nil {
		return fmt.Errorf("game event without result")
	}
	if err := upsertGame(ctx, tx, rec, "completed", rec.GameResult.HostID); err != nil {
		return err
	}
	q := `
		INSERT INTO game_results (lobby_id, player_id, position, score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (lobby_id, player_id)
		DO UPDATE SET position = $3, score = $4
	`
	for _, s := range rec.GameResult.Ranking {
		if _, err := tx.Exec(ctx, q, rec.LobbyID, s.Player, s.Position, s.Points); err != nil {
			return err
		}
	}
	return nil
}

// MarkAbandoned flags a game that is still in progress as abandoned.
// It reports whether a row changed.
func (a *Archive) MarkAbandoned(ctx context.Context, lobbyID uuid.UUID) (bool, error) {
	q := `
		UPDATE games
		SET status = 'abandoned', updated_at = NOW()
		WHERE lobby_id = $1 AND status = 'in_progress'
	`
	tag, err := a.pool.Exec(ctx, q, lobbyID)
	if err != nil {
		return false, fmt.Errorf("mark game %s abandoned: %w", lobbyID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// GameRow is one archived game.
type GameRow struct {
	LobbyID   uuid.UUID `json:"lobbyId"`
	LobbyCode string    `json:"lobbyCode"`
	HostID    string    `json:"hostId"`
	Rounds    int       `json:"rounds"`
	Status    string    `json:"status"` // in_progress, completed or abandoned
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecentGames returns the most recently updated games, newest first.
func (a *Archive) RecentGames(ctx context.Context, limit int) ([]GameRow, error) {
	q := `
		SELECT lobby_id, lobby_code, host_id, rounds, status, updated_at
		FROM games
		ORDER BY updated_at DESC
		LIMIT $1
	`
	rows, err := a.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameRow
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.LobbyID, &g.LobbyCode, &g.HostID, &g.Rounds, &g.Status, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
