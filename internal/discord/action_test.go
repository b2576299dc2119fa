package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionRoundTrip(t *testing.T) {
	a := Action{Action: ActionVote, Value: "false", Code: "K1K1"}
	id := a.CustomID()
	assert.LessOrEqual(t, len(id), 100)

	got, err := ParseAction(id)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	guess, err := got.Bool()
	require.NoError(t, err)
	assert.False(t, guess)
}

func TestParseActionRejectsGarbage(t *testing.T) {
	_, err := ParseAction("vote_true_K1K1")
	assert.Error(t, err)

	_, err = ParseAction(`{"c":"K1K1"}`)
	assert.Error(t, err)

	_, err = Action{Action: ActionVote, Value: "maybe"}.Bool()
	assert.Error(t, err)
}
