// internal/session/directive.go
package session

import (
	"time"

	"github.com/jason-s-yu/truthorlie/internal/lobby"
	"github.com/jason-s-yu/truthorlie/internal/scoring"
)

// Kind tells the transport which message to render.
type Kind string

const (
	KindLobbyCreated      Kind = "lobby_created"
	KindJoinConfirmed     Kind = "join_confirmed"
	KindHostNotified      Kind = "host_notified"
	KindPlayerJoined      Kind = "player_joined"
	KindYourTurn          Kind = "your_turn"
	KindRoundStarted      Kind = "round_started"
	KindStatementRecorded Kind = "statement_recorded"
	KindVotingOpen        Kind = "voting_open"
	KindVoteRecorded      Kind = "vote_recorded"
	KindRoundResult       Kind = "round_result"
	KindScoreBoard        Kind = "score_board"
	KindNextRoundControls Kind = "next_round_controls"
	KindGameEnded         Kind = "game_ended"
	KindLobbyStatus       Kind = "lobby_status"
	KindStats             Kind = "stats"
	KindErrorMessage      Kind = "error_message"
)

// Directive instructs a transport to deliver one payload to one recipient.
// Data holds the payload type documented on each Kind's constructor below.
type Directive struct {
	Recipient string `json:"recipient"`
	Kind      Kind   `json:"kind"`
	Lobby     string `json:"lobby,omitempty"`
	Data      any    `json:"data"`
}

// LobbyCreatedData accompanies KindLobbyCreated.
type LobbyCreatedData struct {
	Code string `json:"code"`
}

// JoinData accompanies KindJoinConfirmed, KindHostNotified and KindPlayerJoined.
type JoinData struct {
	Code        string `json:"code"`
	Player      string `json:"player"`
	PlayerCount int    `json:"playerCount"`
}

// RoundData accompanies KindYourTurn and KindRoundStarted.
type RoundData struct {
	Code       string `json:"code"`
	Round      int    `json:"round"`
	TurnPlayer string `json:"turnPlayer"`
	Topic      string `json:"topic"`
}

// StatementData accompanies KindStatementRecorded and KindVotingOpen.
type StatementData struct {
	Code       string `json:"code"`
	Round      int    `json:"round"`
	TurnPlayer string `json:"turnPlayer"`
	Text       string `json:"text"`
}

// VoteData accompanies KindVoteRecorded.
type VoteData struct {
	Code   string `json:"code"`
	Round  int    `json:"round"`
	Guess  bool   `json:"guess"`
	Cast   int    `json:"cast"`
	Needed int    `json:"needed"`
}

// ResultData accompanies KindRoundResult.
type ResultData struct {
	Code          string   `json:"code"`
	Round         int      `json:"round"`
	TurnPlayer    string   `json:"turnPlayer"`
	Statement     string   `json:"statement"`
	Truth         bool     `json:"truth"`
	CorrectVoters []string `json:"correctVoters"`
	WrongVoters   []string `json:"wrongVoters"`
}

// ScoreBoardData accompanies KindScoreBoard.
type ScoreBoardData struct {
	Code      string             `json:"code"`
	Round     int                `json:"round"`
	Standings []scoring.Standing `json:"standings"`
}

// ControlsData accompanies KindNextRoundControls.
type ControlsData struct {
	Code  string `json:"code"`
	Round int    `json:"round"`
}

// GameEndedData accompanies KindGameEnded.
type GameEndedData struct {
	Code         string             `json:"code"`
	Rounds       int                `json:"rounds"`
	Participants int                `json:"participants"`
	Ranking      []scoring.Standing `json:"ranking"`
}

// StatusData accompanies KindLobbyStatus.
type StatusData struct {
	lobby.Snapshot
}

// StatsData accompanies KindStats.
type StatsData struct {
	LobbiesCreated   int64         `json:"lobbiesCreated"`
	LiveLobbies      int           `json:"liveLobbies"`
	Uptime           time.Duration `json:"uptime"`
	DeliveryFailures int64         `json:"deliveryFailures"`
}

// ErrorData accompanies KindErrorMessage.
type ErrorData struct {
	Error   lobby.Kind `json:"error"`
	Message string     `json:"message"`
}

func fanOut(recipients []string, kind Kind, code string, data any) []Directive {
	out := make([]Directive, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, Directive{Recipient: r, Kind: kind, Lobby: code, Data: data})
	}
	return out
}

func without(ids []string, exclude ...string) []string {
	out := make([]string, 0, len(ids))
outer:
	for _, id := range ids {
		for _, ex := range exclude {
			if id == ex {
				continue outer
			}
		}
		out = append(out, id)
	}
	return out
}
