package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEventRecordValidate(t *testing.T) {
	id := uuid.New()
	assert.NoError(t, EventRecord{LobbyID: id, Type: EventRoundResolved, RoundResult: &RoundEntry{}}.Validate())
	assert.NoError(t, EventRecord{LobbyID: id, Type: EventGameEnded, GameResult: &GameEntry{}}.Validate())

	for name, rec := range map[string]EventRecord{
		"unknown type":       {LobbyID: id, Type: "bogus"},
		"missing lobby":      {Type: EventRoundResolved, RoundResult: &RoundEntry{}},
		"round without body": {LobbyID: id, Type: EventRoundResolved},
		"game without body":  {LobbyID: id, Type: EventGameEnded},
	} {
		assert.Error(t, rec.Validate(), name)
	}
}
