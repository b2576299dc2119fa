package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/truthorlie/internal/database"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	rows      []database.GameRow
	err       error
	lastLimit int
}

func (f *fakeHistory) RecentGames(_ context.Context, limit int) ([]database.GameRow, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func historyMux(h History) *http.ServeMux {
	logger, _ := test.NewNullLogger()
	g := NewGateway(logger, nil, NewHub(), nil, nil, nil)
	if h != nil {
		g.SetHistory(h)
	}
	mux := http.NewServeMux()
	g.Routes(mux)
	return mux
}

func TestGamesListsArchive(t *testing.T) {
	h := &fakeHistory{rows: []database.GameRow{
		{LobbyID: uuid.New(), LobbyCode: "K1K1", HostID: "H", Rounds: 3, Status: "completed", UpdatedAt: time.Now()},
		{LobbyID: uuid.New(), LobbyCode: "Z9Z9", HostID: "Q", Rounds: 1, Status: "abandoned", UpdatedAt: time.Now()},
	}}
	mux := historyMux(h)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultGamesLimit, h.lastLimit)

	var rows []database.GameRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "K1K1", rows[0].LobbyCode)
	assert.Equal(t, "abandoned", rows[1].Status)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games?limit=5000", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxGamesLimit, h.lastLimit)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGamesReportsArchiveFailure(t *testing.T) {
	mux := historyMux(&fakeHistory{err: errors.New("db down")})
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGamesEmptyArchiveIsEmptyList(t *testing.T) {
	mux := historyMux(&fakeHistory{})
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGamesNotServedWithoutArchive(t *testing.T) {
	w := httptest.NewRecorder()
	historyMux(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
