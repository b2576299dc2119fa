// internal/handlers/gateway.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/truthorlie/internal/auth"
	"github.com/jason-s-yu/truthorlie/internal/database"
	"github.com/jason-s-yu/truthorlie/internal/lobby"
	"github.com/jason-s-yu/truthorlie/internal/middleware"
	"github.com/jason-s-yu/truthorlie/internal/notify"
	"github.com/jason-s-yu/truthorlie/internal/session"
	"github.com/sirupsen/logrus"
)

const pingInterval = 30 * time.Second

// Limits for /games.
const (
	defaultGamesLimit = 20
	maxGamesLimit     = 100
)

// History lists archived games.
type History interface {
	RecentGames(ctx context.Context, limit int) ([]database.GameRow, error)
}

// Gateway is the websocket transport: JSON intents in, directive frames out.
type Gateway struct {
	Hub *Hub

	issuer     *auth.Issuer
	handler    notify.Handler
	dispatcher *notify.Dispatcher
	logger     *logrus.Logger
	origins    []string
	history    History
}

// NewGateway wires a gateway. The dispatcher must deliver through hub.
func NewGateway(logger *logrus.Logger, issuer *auth.Issuer, hub *Hub, handler notify.Handler, dispatcher *notify.Dispatcher, origins []string) *Gateway {
	return &Gateway{
		Hub:        hub,
		issuer:     issuer,
		handler:    handler,
		dispatcher: dispatcher,
		logger:     logger,
		origins:    origins,
	}
}

// SetHistory enables /games backed by h.
func (g *Gateway) SetHistory(h History) {
	g.history = h
}

// Routes registers the gateway endpoints on mux. /games is only served when a
// History is set.
func (g *Gateway) Routes(mux *http.ServeMux) {
	logged := middleware.LogMiddleware(g.logger)
	mux.Handle("/session", logged(g.SessionHandler()))
	mux.Handle("/stats", logged(g.StatsHandler()))
	mux.Handle("/ws", logged(g.WSHandler()))
	if g.history != nil {
		mux.Handle("/games", logged(g.GamesHandler()))
	}
}

// GamesHandler lists the most recently archived games. ?limit= caps the result.
func (g *Gateway) GamesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		limit := defaultGamesLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = min(n, maxGamesLimit)
		}

		games, err := g.history.RecentGames(r.Context(), limit)
		if err != nil {
			g.logger.WithError(err).Error("failed to list games")
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		if games == nil {
			games = []database.GameRow{}
		}
		writeJSON(w, http.StatusOK, games)
	}
}

type sessionResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// SessionHandler issues an identity. A caller presenting a valid token keeps its id.
func (g *Gateway) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if token := requestToken(r); token != "" {
			if userID, err := g.issuer.Authenticate(token); err == nil {
				writeJSON(w, http.StatusOK, sessionResponse{UserID: userID, Token: token})
				return
			}
		}

		userID := uuid.NewString()
		token, err := g.issuer.Create(userID)
		if err != nil {
			g.logger.WithError(err).Error("failed to create identity token")
			http.Error(w, "could not create session", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     authCookie,
			Value:    token,
			HttpOnly: true,
			Path:     "/",
		})
		g.logger.WithField("user", userID).Info("issued session")
		writeJSON(w, http.StatusCreated, sessionResponse{UserID: userID, Token: token})
	}
}

// StatsHandler reports process-wide counters.
func (g *Gateway) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		out := g.handler.Handle(r.Context(), session.QueryStats{})
		if len(out) != 1 {
			http.Error(w, "stats unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out[0].Data)
	}
}

// WSHandler upgrades an authenticated request and runs the read and write pumps.
func (g *Gateway) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := g.issuer.Authenticate(requestToken(r))
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: g.origins,
		})
		if err != nil {
			g.logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the "+Subprotocol+" subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		conn := g.Hub.Register(userID, cancel)
		middleware.LogWebSocketConnect(g.logger, r.RemoteAddr, r.URL.Path)

		go g.writePump(ctx, c, conn)
		readErr := g.readPump(ctx, c, conn)

		if !g.Hub.Unregister(conn) {
			middleware.LogWebSocketDisconnect(g.logger, r.RemoteAddr, r.URL.Path, errors.New("replaced by newer connection"))
			c.Close(ReplacedConnection, "replaced by newer connection")
			return
		}
		middleware.LogWebSocketDisconnect(g.logger, r.RemoteAddr, r.URL.Path, readErr)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readPump decodes client frames into intents until the connection closes.
// Disconnecting never removes the user from a lobby.
func (g *Gateway) readPump(ctx context.Context, c *websocket.Conn, conn *Connection) error {
	logger := g.logger.WithField("user", conn.UserID)
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			logger.Warnf("ignoring non-text message type %d", typ)
			continue
		}

		in, err := decodeIntent(conn.UserID, msg)
		if err != nil {
			logger.WithError(err).Debug("rejected client frame")
			g.dispatcher.Deliver(ctx, []session.Directive{{
				Recipient: conn.UserID,
				Kind:      session.KindErrorMessage,
				Data:      session.ErrorData{Error: lobby.KindInvalidIntent, Message: lobby.KindInvalidIntent.Message()},
			}})
			continue
		}
		g.dispatcher.Process(ctx, g.handler, in)
	}
}

// writePump drains the connection's queue onto the socket and keeps it alive with pings.
func (g *Gateway) writePump(ctx context.Context, c *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-conn.OutChan:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				g.logger.Warnf("failed to write to websocket for user %v: %v", conn.UserID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				g.logger.Warnf("failed to ping user %v: %v, assuming disconnect", conn.UserID, err)
				return
			}
		}
	}
}
