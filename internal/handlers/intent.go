// internal/handlers/intent.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jason-s-yu/truthorlie/internal/session"
)

// ErrBadIntent wraps every client frame that cannot be turned into an intent.
var ErrBadIntent = errors.New("bad intent")

// inbound is the JSON frame clients send. Type matches session.Intent.Name().
type inbound struct {
	Type  string `json:"type"`
	Code  string `json:"code,omitempty"`
	Text  string `json:"text,omitempty"`
	Truth *bool  `json:"truth,omitempty"`
	Guess *bool  `json:"guess,omitempty"`
}

// decodeIntent parses a client frame on behalf of userID.
func decodeIntent(userID string, msg []byte) (session.Intent, error) {
	var in inbound
	if err := json.Unmarshal(msg, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadIntent, err)
	}
	actor := session.Actor{UserID: userID}

	switch in.Type {
	case "create_lobby":
		return session.CreateLobby{Actor: actor}, nil
	case "join_lobby":
		if in.Code == "" {
			return nil, fmt.Errorf("%w: join_lobby requires code", ErrBadIntent)
		}
		return session.JoinLobby{Actor: actor, Code: in.Code}, nil
	case "start_round":
		return session.StartRound{Actor: actor}, nil
	case "request_next_round":
		return session.RequestNextRound{Actor: actor, Code: in.Code}, nil
	case "submit_statement":
		if in.Truth == nil {
			return nil, fmt.Errorf("%w: submit_statement requires truth", ErrBadIntent)
		}
		return session.SubmitStatement{Actor: actor, Code: in.Code, Text: in.Text, Truth: *in.Truth}, nil
	case "cast_vote":
		if in.Guess == nil {
			return nil, fmt.Errorf("%w: cast_vote requires guess", ErrBadIntent)
		}
		return session.CastVote{Actor: actor, Code: in.Code, Guess: *in.Guess}, nil
	case "end_game":
		return session.EndGame{Actor: actor, Code: in.Code}, nil
	case "query_status":
		return session.QueryStatus{Actor: actor}, nil
	case "query_stats":
		return session.QueryStats{Actor: actor}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrBadIntent, in.Type)
	}
}
