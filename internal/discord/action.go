// internal/discord/action.go
package discord

import (
	"encoding/json"
	"fmt"
)

// Component actions carried in custom ids.
const (
	ActionStatement      = "statement"       // opens the statement modal; Value is "true" or "false"
	ActionStatementModal = "modal_statement" // modal submit; Value is "true" or "false"
	ActionVote           = "vote"            // Value is the guess
	ActionNextRound      = "next_round"
	ActionEndGame        = "end_game"
)

// statementInputID is the custom id of the modal's text input.
const statementInputID = "statement_text"

// Action is the payload of a button or modal custom id. Code binds it to a lobby.
type Action struct {
	Action string `json:"a"`
	Value  string `json:"v,omitempty"`
	Code   string `json:"c"`
}

// CustomID encodes the action for a component. Discord caps custom ids at 100 chars.
func (a Action) CustomID() string {
	b, _ := json.Marshal(a)
	return string(b)
}

// Bool reads Value as a boolean choice.
func (a Action) Bool() (bool, error) {
	switch a.Value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("action %s: value %q is not a boolean", a.Action, a.Value)
}

// ParseAction decodes a custom id produced by CustomID.
func ParseAction(customID string) (Action, error) {
	var a Action
	if err := json.Unmarshal([]byte(customID), &a); err != nil {
		return Action{}, fmt.Errorf("parse custom id: %w", err)
	}
	if a.Action == "" {
		return Action{}, fmt.Errorf("parse custom id: missing action")
	}
	return a, nil
}

func boolValue(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
