// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the gateway.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	ReplacedConnection  = 3004 // The same user opened a newer connection.
)

// Subprotocol is the only websocket subprotocol the gateway speaks.
const Subprotocol = "truthorlie"
