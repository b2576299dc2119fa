// internal/lobby/errors.go
package lobby

import (
	"errors"
	"fmt"
)

// Kind names a recoverable game rule violation. The value is stable and is
// what transports receive in error directives.
type Kind string

const (
	KindAlreadyHosting            Kind = "already_hosting"
	KindLobbyNotFound             Kind = "lobby_not_found"
	KindAlreadyJoined             Kind = "already_joined"
	KindGameAlreadyActive         Kind = "game_already_active"
	KindNotInLobby                Kind = "not_in_lobby"
	KindNotHost                   Kind = "not_host"
	KindInsufficientPlayers       Kind = "insufficient_players"
	KindRoundAlreadyActive        Kind = "round_already_active"
	KindNotYourTurn               Kind = "not_your_turn"
	KindStatementAlreadySubmitted Kind = "statement_already_submitted"
	KindIsCurrentTurnPlayer       Kind = "is_current_turn_player"
	KindNoStatementYet            Kind = "no_statement_yet"
	KindAlreadyVoted              Kind = "already_voted"
	KindEmptyStatement            Kind = "empty_statement"
	KindStatementTooLong          Kind = "statement_too_long"
	KindDeliveryFailure           Kind = "delivery_failure"
	KindInvalidIntent             Kind = "invalid_intent"
	KindInternal                  Kind = "internal"
)

var messages = map[Kind]string{
	KindAlreadyHosting:            "You are already hosting a lobby! Please end the current game first.",
	KindLobbyNotFound:             "Lobby not found!",
	KindAlreadyJoined:             "You are already in this lobby!",
	KindGameAlreadyActive:         "The game is already running! You cannot join now.",
	KindNotInLobby:                "You are not in a lobby!",
	KindNotHost:                   "Only the host can do that!",
	KindInsufficientPlayers:       "At least two players are required to start a round!",
	KindRoundAlreadyActive:        "A round is already underway!",
	KindNotYourTurn:               "It's not your turn to make a statement!",
	KindStatementAlreadySubmitted: "You already submitted a statement this round!",
	KindIsCurrentTurnPlayer:       "You cannot vote on your own statement!",
	KindNoStatementYet:            "There is no statement to vote on yet!",
	KindAlreadyVoted:              "You have already voted!",
	KindEmptyStatement:            "Your statement cannot be empty!",
	KindStatementTooLong:          fmt.Sprintf("Your statement must be at most %d characters!", MaxStatementLength),
	KindDeliveryFailure:           "A message could not be delivered.",
	KindInvalidIntent:             "That request could not be understood.",
	KindInternal:                  "Something went wrong.",
}

// Message is the default user-facing text for the kind.
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return string(k)
}

// Error is a rule violation raised by the registry or a lobby.
type Error struct {
	Kind Kind
	Code string // lobby code, empty when not known
}

func (e *Error) Error() string {
	if e.Code == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("lobby %s: %s", e.Code, e.Kind)
}

// Is matches on Kind so that errors.Is(err, ErrNotHost) holds for any lobby.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrAlreadyHosting            = &Error{Kind: KindAlreadyHosting}
	ErrLobbyNotFound             = &Error{Kind: KindLobbyNotFound}
	ErrAlreadyJoined             = &Error{Kind: KindAlreadyJoined}
	ErrGameAlreadyActive         = &Error{Kind: KindGameAlreadyActive}
	ErrNotInLobby                = &Error{Kind: KindNotInLobby}
	ErrNotHost                   = &Error{Kind: KindNotHost}
	ErrInsufficientPlayers       = &Error{Kind: KindInsufficientPlayers}
	ErrRoundAlreadyActive        = &Error{Kind: KindRoundAlreadyActive}
	ErrNotYourTurn               = &Error{Kind: KindNotYourTurn}
	ErrStatementAlreadySubmitted = &Error{Kind: KindStatementAlreadySubmitted}
	ErrIsCurrentTurnPlayer       = &Error{Kind: KindIsCurrentTurnPlayer}
	ErrNoStatementYet            = &Error{Kind: KindNoStatementYet}
	ErrAlreadyVoted              = &Error{Kind: KindAlreadyVoted}
	ErrEmptyStatement            = &Error{Kind: KindEmptyStatement}
	ErrStatementTooLong          = &Error{Kind: KindStatementTooLong}
)

func newError(kind Kind, code string) error {
	return &Error{Kind: kind, Code: code}
}

// KindOf returns the kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
