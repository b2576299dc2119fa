// internal/models/event.go
package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/truthorlie/internal/scoring"
)

// EventType is the kind of lobby event handed to the historian.
type EventType string

const (
	EventRoundResolved EventType = "round_resolved"
	EventGameEnded     EventType = "game_ended"
)

// EventRecord is the envelope pushed onto the historian queue. Exactly one of
// RoundResult or GameResult is set, matching Type.
type EventRecord struct {
	LobbyID     uuid.UUID   `json:"lobby_id"`
	LobbyCode   string      `json:"lobby_code"`
	Type        EventType   `json:"type"`
	Round       int         `json:"round"`
	RoundResult *RoundEntry `json:"round_result,omitempty"`
	GameResult  *GameEntry  `json:"game_result,omitempty"`
	Timestamp   int64       `json:"timestamp"` // epoch millis
}

// RoundEntry is one resolved round as stored in the archive.
type RoundEntry struct {
	TurnPlayer    string   `json:"turn_player"`
	Statement     string   `json:"statement"`
	Truth         bool     `json:"truth"`
	CorrectVoters []string `json:"correct_voters"`
	WrongVoters   []string `json:"wrong_voters"`
}

// GameEntry is the final outcome of a game.
type GameEntry struct {
	HostID  string             `json:"host_id"`
	Rounds  int                `json:"rounds"`
	Ranking []scoring.Standing `json:"ranking"`
}

// Validate checks that rec names a lobby and carries the payload its Type requires.
func (rec EventRecord) Validate() error {
	if rec.LobbyID == uuid.Nil {
		return fmt.Errorf("event %q without lobby id", rec.Type)
	}
	switch rec.Type {
	case EventRoundResolved:
		if rec.RoundResult == nil {
			return fmt.Errorf("round event without result")
		}
	case EventGameEnded:
		if rec.GameResult == nil {
			return fmt.Errorf("game event without result")
		}
	default:
		return fmt.Errorf("unknown event type %q", rec.Type)
	}
	return nil
}
