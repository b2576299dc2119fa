// internal/session/intent.go
package session

// Intent is a request from a transport to act on lobby state. Every intent
// carries the acting user's platform id.
type Intent interface {
	isIntent()
	// Requester is the platform id of the acting user.
	Requester() string
	// Name is a stable label used in logs.
	Name() string
}

// Actor identifies who issued an intent.
type Actor struct {
	UserID string `json:"userId"`
}

func (a Actor) Requester() string { return a.UserID }

// CreateLobby opens a new lobby hosted by the requester.
type CreateLobby struct{ Actor }

// JoinLobby adds the requester to the lobby with the given code.
type JoinLobby struct {
	Actor
	Code string `json:"code"`
}

// StartRound starts the next round of the requester's lobby.
type StartRound struct{ Actor }

// SubmitStatement records the turn player's statement. Code is set when the
// intent originates from a message component bound to a lobby; otherwise the
// requester's lobby is looked up by membership.
type SubmitStatement struct {
	Actor
	Code  string `json:"code,omitempty"`
	Text  string `json:"text"`
	Truth bool   `json:"truth"`
}

// CastVote records the requester's guess on the current statement.
type CastVote struct {
	Actor
	Code  string `json:"code,omitempty"`
	Guess bool   `json:"guess"`
}

// RequestNextRound is the host's "next round" control on the result screen.
type RequestNextRound struct {
	Actor
	Code string `json:"code,omitempty"`
}

// EndGame terminates the requester's lobby and publishes the final ranking.
type EndGame struct {
	Actor
	Code string `json:"code,omitempty"`
}

// QueryStatus asks for the state of the requester's lobby.
type QueryStatus struct{ Actor }

// QueryStats asks for process-wide counters.
type QueryStats struct{ Actor }

func (CreateLobby) isIntent()      {}
func (JoinLobby) isIntent()        {}
func (StartRound) isIntent()       {}
func (SubmitStatement) isIntent()  {}
func (CastVote) isIntent()         {}
func (RequestNextRound) isIntent() {}
func (EndGame) isIntent()          {}
func (QueryStatus) isIntent()      {}
func (QueryStats) isIntent()       {}

func (CreateLobby) Name() string      { return "create_lobby" }
func (JoinLobby) Name() string        { return "join_lobby" }
func (StartRound) Name() string       { return "start_round" }
func (SubmitStatement) Name() string  { return "submit_statement" }
func (CastVote) Name() string         { return "cast_vote" }
func (RequestNextRound) Name() string { return "request_next_round" }
func (EndGame) Name() string          { return "end_game" }
func (QueryStatus) Name() string      { return "query_status" }
func (QueryStats) Name() string       { return "query_stats" }
