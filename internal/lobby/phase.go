// internal/lobby/phase.go
package lobby

import "github.com/jason-s-yu/truthorlie/internal/scoring"

// Phase is where a lobby is in its round lifecycle. Each variant carries only
// the fields that are valid in that phase.
type Phase interface {
	isPhase()
	// Name is a stable label for status output.
	Name() string
	// Active is true from round start until the result is revealed.
	Active() bool
	// TurnPlayer is the player judged this round, empty before the first round.
	TurnPlayer() string
}

// Waiting is the phase before the first round.
type Waiting struct{}

// AwaitingStatement is a started round whose turn player has not submitted yet.
type AwaitingStatement struct {
	Turn  string
	Topic string
}

// AwaitingVotes is a round with a statement on the table.
type AwaitingVotes struct {
	Turn      string
	Topic     string
	Statement Statement
	votes     *ballot
}

// Resolved is a round whose result has been revealed.
type Resolved struct {
	Turn      string
	Topic     string
	Statement Statement
	Result    scoring.Result
}

func (Waiting) isPhase()           {}
func (AwaitingStatement) isPhase() {}
func (AwaitingVotes) isPhase()     {}
func (Resolved) isPhase()          {}

func (Waiting) Name() string           { return "waiting_for_players" }
func (AwaitingStatement) Name() string { return "awaiting_statement" }
func (AwaitingVotes) Name() string     { return "awaiting_votes" }
func (Resolved) Name() string          { return "round_complete" }

func (Waiting) Active() bool           { return false }
func (AwaitingStatement) Active() bool { return true }
func (AwaitingVotes) Active() bool     { return true }
func (Resolved) Active() bool          { return false }

func (Waiting) TurnPlayer() string             { return "" }
func (p AwaitingStatement) TurnPlayer() string { return p.Turn }
func (p AwaitingVotes) TurnPlayer() string     { return p.Turn }
func (p Resolved) TurnPlayer() string          { return p.Turn }

// ballot holds one round's votes in the order they were cast.
type ballot struct {
	order []scoring.Vote
	seen  map[string]struct{}
}

func newBallot() *ballot {
	return &ballot{seen: make(map[string]struct{})}
}

// record adds a vote unless voter already voted or the ballot is full. closing
// is true only for the vote that brings the count to needed.
func (b *ballot) record(voter string, guess bool, needed int) (closing, recorded bool) {
	if _, dup := b.seen[voter]; dup {
		return false, false
	}
	if len(b.order) >= needed {
		return false, false
	}
	b.seen[voter] = struct{}{}
	b.order = append(b.order, scoring.Vote{Voter: voter, Guess: guess})
	return len(b.order) == needed, true
}

func (b *ballot) len() int { return len(b.order) }

func (b *ballot) list() []scoring.Vote {
	return append([]scoring.Vote(nil), b.order...)
}
