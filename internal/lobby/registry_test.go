package lobby

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateAndFind(t *testing.T) {
	r := NewRegistry()

	l, err := r.Create("H")
	require.NoError(t, err)
	assert.Len(t, l.Code, CodeLength)
	for _, c := range l.Code {
		assert.Contains(t, CodeChars, string(c))
	}

	got, err := r.Find(l.Code)
	require.NoError(t, err)
	assert.Same(t, l, got)

	got, err = r.Find("  " + strings.ToLower(l.Code) + " ")
	require.NoError(t, err)
	assert.Same(t, l, got)

	_, err = r.Find("ZZZZ-missing")
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestRegistryFindIsCaseInsensitive(t *testing.T) {
	r := NewRegistry(WithCodeGenerator(func() string { return "ab12" }))
	l, err := r.Create("H")
	require.NoError(t, err)
	assert.Equal(t, "AB12", l.Code)

	got, err := r.Find("aB12")
	require.NoError(t, err)
	assert.Same(t, l, got)
}

func TestRegistryOneHostedLobbyPerUser(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create("H")
	require.NoError(t, err)

	_, err = r.Create("H")
	assert.ErrorIs(t, err, ErrAlreadyHosting)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, int64(1), r.Created())
}

func TestRegistryRetriesCodeCollisions(t *testing.T) {
	codes := []string{"AAAA", "AAAA", "AAAA", "BBBB"}
	i := 0
	r := NewRegistry(WithCodeGenerator(func() string {
		c := codes[i]
		i++
		return c
	}))

	a, err := r.Create("H1")
	require.NoError(t, err)
	b, err := r.Create("H2")
	require.NoError(t, err)

	assert.Equal(t, "AAAA", a.Code)
	assert.Equal(t, "BBBB", b.Code)
	assert.Equal(t, 4, i)
}

func TestRegistryCodesReusableAfterRemove(t *testing.T) {
	r := NewRegistry(WithCodeGenerator(func() string { return "K1K1" }))
	a, err := r.Create("H")
	require.NoError(t, err)
	r.Remove(a.Code)

	b, err := r.Create("H")
	require.NoError(t, err)
	assert.Equal(t, "K1K1", b.Code)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int64(2), r.Created())
	assert.Equal(t, 1, r.Len())
}

func TestRegistryFindByMember(t *testing.T) {
	r := NewRegistry()
	a, err := r.Create("H1")
	require.NoError(t, err)
	b, err := r.Create("H2")
	require.NoError(t, err)

	_, err = a.Join("P")
	require.NoError(t, err)
	_, err = b.Join("P")
	require.NoError(t, err)
	_, err = a.Join("H2")
	require.NoError(t, err)

	got, err := r.FindByMember("P")
	require.NoError(t, err)
	assert.Same(t, a, got, "oldest joined lobby wins")

	got, err = r.FindByMember("H2")
	require.NoError(t, err)
	assert.Same(t, b, got, "hosted lobby wins")

	_, err = r.FindByMember("nobody")
	assert.ErrorIs(t, err, ErrNotInLobby)
}

func TestRegistriesAreIsolated(t *testing.T) {
	r1 := NewRegistry(WithCodeGenerator(func() string { return "SAME" }))
	r2 := NewRegistry(WithCodeGenerator(func() string { return "SAME" }))

	_, err := r1.Create("H")
	require.NoError(t, err)
	_, err = r2.Create("H")
	require.NoError(t, err)

	assert.Equal(t, int64(1), r1.Created())
	assert.Equal(t, int64(1), r2.Created())
}
