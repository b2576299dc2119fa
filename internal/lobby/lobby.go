// internal/lobby/lobby.go
package lobby

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jason-s-yu/truthorlie/internal/scoring"
	"github.com/jason-s-yu/truthorlie/internal/topic"
)

// MaxStatementLength is the longest statement, in characters, a player may submit.
const MaxStatementLength = 500

// MinPlayers is the number of players needed before a round can start.
const MinPlayers = 2

// Statement is what the turn player claims, and whether it is true.
type Statement struct {
	Text  string `json:"text"`
	Truth bool   `json:"truth"`
}

// Lobby is one game session: a host, the players who joined, and the round in play.
// All methods are safe for concurrent use; each runs as a single critical section.
type Lobby struct {
	ID        uuid.UUID // unique per lobby instance, codes are reused
	Code      string
	HostID    string
	CreatedAt time.Time

	mu        sync.Mutex
	seq       uint64
	players   map[string]struct{}
	turnOrder []string
	scores    map[string]int
	round     int
	phase     Phase
	ended     bool
	topics    topic.Provider
}

func newLobby(code, hostID string, seq uint64, topics topic.Provider, now time.Time) *Lobby {
	l := &Lobby{
		ID:        uuid.New(),
		Code:      code,
		HostID:    hostID,
		CreatedAt: now,
		seq:       seq,
		players:   make(map[string]struct{}),
		scores:    make(map[string]int),
		phase:     Waiting{},
		topics:    topics,
	}
	l.addPlayerUnsafe(hostID)
	return l
}

// addPlayerUnsafe registers userID in every per-player collection. Assumes lock is held.
func (l *Lobby) addPlayerUnsafe(userID string) {
	l.players[userID] = struct{}{}
	l.scores[userID] = 0
	l.turnOrder = append(l.turnOrder, userID)
}

// othersUnsafe returns players in turn order, minus the excluded ids. Assumes lock is held.
func (l *Lobby) othersUnsafe(exclude ...string) []string {
	out := make([]string, 0, len(l.turnOrder))
outer:
	for _, id := range l.turnOrder {
		for _, ex := range exclude {
			if id == ex {
				continue outer
			}
		}
		out = append(out, id)
	}
	return out
}

// scoresUnsafe returns scores in join order. Assumes lock is held.
func (l *Lobby) scoresUnsafe() []scoring.Score {
	out := make([]scoring.Score, 0, len(l.turnOrder))
	for _, id := range l.turnOrder {
		out = append(out, scoring.Score{Player: id, Points: l.scores[id]})
	}
	return out
}

// Has reports whether userID joined the lobby.
func (l *Lobby) Has(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.players[userID]
	return ok
}

// Players returns the player ids in join order.
func (l *Lobby) Players() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.othersUnsafe()
}

// Joined is returned by a successful Join.
type Joined struct {
	Player  string
	Players []string // in join order, including the new player
}

// Join adds userID to the lobby and to the end of the turn order.
func (l *Lobby) Join(userID string) (Joined, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ended {
		return Joined{}, newError(KindLobbyNotFound, l.Code)
	}
	if _, ok := l.players[userID]; ok {
		return Joined{}, newError(KindAlreadyJoined, l.Code)
	}
	if l.phase.Active() {
		return Joined{}, newError(KindGameAlreadyActive, l.Code)
	}

	l.addPlayerUnsafe(userID)
	return Joined{Player: userID, Players: l.othersUnsafe()}, nil
}

// RoundStart describes a round that just began.
type RoundStart struct {
	Round      int
	TurnPlayer string
	Topic      string
	Players    []string
}

// StartRound begins the next round. Only the host may start rounds, and only
// when no round is in progress.
func (l *Lobby) StartRound(requesterID string) (RoundStart, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ended {
		return RoundStart{}, newError(KindLobbyNotFound, l.Code)
	}
	if requesterID != l.HostID {
		return RoundStart{}, newError(KindNotHost, l.Code)
	}
	if len(l.players) < MinPlayers {
		return RoundStart{}, newError(KindInsufficientPlayers, l.Code)
	}
	if l.phase.Active() {
		return RoundStart{}, newError(KindRoundAlreadyActive, l.Code)
	}

	l.round++
	turn := l.turnOrder[(l.round-1)%len(l.turnOrder)]
	t := l.topics.Next()
	l.phase = AwaitingStatement{Turn: turn, Topic: t}

	return RoundStart{
		Round:      l.round,
		TurnPlayer: turn,
		Topic:      t,
		Players:    l.othersUnsafe(),
	}, nil
}

// StartNextRound is StartRound issued from the result screen.
func (l *Lobby) StartNextRound(requesterID string) (RoundStart, error) {
	return l.StartRound(requesterID)
}

// StatementAccepted is returned once the turn player's statement is recorded.
type StatementAccepted struct {
	Round      int
	TurnPlayer string
	Topic      string
	Text       string
	Voters     []string // everyone except the turn player
}

// SubmitStatement records the turn player's statement and opens voting.
func (l *Lobby) SubmitStatement(requesterID, text string, truth bool) (StatementAccepted, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ended {
		return StatementAccepted{}, newError(KindLobbyNotFound, l.Code)
	}

	var awaiting AwaitingStatement
	switch p := l.phase.(type) {
	case AwaitingStatement:
		if requesterID != p.Turn {
			return StatementAccepted{}, newError(KindNotYourTurn, l.Code)
		}
		awaiting = p
	case AwaitingVotes:
		if requesterID != p.Turn {
			return StatementAccepted{}, newError(KindNotYourTurn, l.Code)
		}
		return StatementAccepted{}, newError(KindStatementAlreadySubmitted, l.Code)
	default:
		return StatementAccepted{}, newError(KindNotYourTurn, l.Code)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return StatementAccepted{}, newError(KindEmptyStatement, l.Code)
	}
	if utf8.RuneCountInString(text) > MaxStatementLength {
		return StatementAccepted{}, newError(KindStatementTooLong, l.Code)
	}

	stmt := Statement{Text: text, Truth: truth}
	l.phase = AwaitingVotes{
		Turn:      awaiting.Turn,
		Topic:     awaiting.Topic,
		Statement: stmt,
		votes:     newBallot(),
	}

	return StatementAccepted{
		Round:      l.round,
		TurnPlayer: awaiting.Turn,
		Topic:      awaiting.Topic,
		Text:       text,
		Voters:     l.othersUnsafe(awaiting.Turn),
	}, nil
}

// RoundResult is the outcome of a resolved round.
type RoundResult struct {
	scoring.Result
	Round      int
	TurnPlayer string
	Statement  Statement
	Scores     []scoring.Score // running totals in join order, after this round
	Players    []string
}

// VoteOutcome is returned by CastVote. Result is set only on the vote that
// closed the round.
type VoteOutcome struct {
	Round  int
	Guess  bool
	Cast   int
	Needed int
	Result *RoundResult
}

// Closing reports whether this vote resolved the round.
func (v VoteOutcome) Closing() bool { return v.Result != nil }

// CastVote records requesterID's guess. When every non-turn player has voted,
// the round is resolved and scored in the same critical section, so exactly one
// caller per round receives the result.
func (l *Lobby) CastVote(requesterID string, guess bool) (VoteOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ended {
		return VoteOutcome{}, newError(KindLobbyNotFound, l.Code)
	}
	if _, ok := l.players[requesterID]; !ok {
		return VoteOutcome{}, newError(KindNotInLobby, l.Code)
	}
	if requesterID == l.phase.TurnPlayer() {
		return VoteOutcome{}, newError(KindIsCurrentTurnPlayer, l.Code)
	}
	p, ok := l.phase.(AwaitingVotes)
	if !ok {
		return VoteOutcome{}, newError(KindNoStatementYet, l.Code)
	}

	needed := len(l.players) - 1
	closing, recorded := p.votes.record(requesterID, guess, needed)
	if !recorded {
		return VoteOutcome{}, newError(KindAlreadyVoted, l.Code)
	}

	out := VoteOutcome{
		Round:  l.round,
		Guess:  guess,
		Cast:   p.votes.len(),
		Needed: needed,
	}
	if closing {
		out.Result = l.resolveUnsafe(p)
	}
	return out, nil
}

// resolveUnsafe scores the round and moves to Resolved. Assumes lock is held.
func (l *Lobby) resolveUnsafe(p AwaitingVotes) *RoundResult {
	res := scoring.Resolve(p.Statement.Truth, p.votes.list())
	for id, delta := range res.ScoreDeltas {
		l.scores[id] += delta
	}
	l.phase = Resolved{
		Turn:      p.Turn,
		Topic:     p.Topic,
		Statement: p.Statement,
		Result:    res,
	}
	return &RoundResult{
		Result:     res,
		Round:      l.round,
		TurnPlayer: p.Turn,
		Statement:  p.Statement,
		Scores:     l.scoresUnsafe(),
		Players:    l.othersUnsafe(),
	}
}

// GameSummary is the final state of an ended game.
type GameSummary struct {
	LobbyID uuid.UUID
	Code    string
	HostID  string
	Rounds  int
	Players []string
	Ranking []scoring.Standing
}

// EndGame terminates the lobby. Afterwards every operation fails with
// KindLobbyNotFound; the caller must remove the lobby from its registry.
func (l *Lobby) EndGame(requesterID string) (GameSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ended {
		return GameSummary{}, newError(KindLobbyNotFound, l.Code)
	}
	if requesterID != l.HostID {
		return GameSummary{}, newError(KindNotHost, l.Code)
	}

	l.ended = true
	l.phase = Waiting{}
	return GameSummary{
		LobbyID: l.ID,
		Code:    l.Code,
		HostID:  l.HostID,
		Rounds:  l.round,
		Players: l.othersUnsafe(),
		Ranking: scoring.Rank(l.scoresUnsafe()),
	}, nil
}

// Ended reports whether EndGame has run.
func (l *Lobby) Ended() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ended
}

// Snapshot is a consistent read-only copy of a lobby's state.
type Snapshot struct {
	Code         string          `json:"code"`
	HostID       string          `json:"hostId"`
	Players      []string        `json:"players"`
	TurnOrder    []string        `json:"turnOrder"`
	Scores       []scoring.Score `json:"scores"`
	Round        int             `json:"round"`
	RoundActive  bool            `json:"roundActive"`
	Phase        string          `json:"phase"`
	TurnPlayer   string          `json:"turnPlayer,omitempty"`
	Topic        string          `json:"topic,omitempty"`
	VotesCast    int             `json:"votesCast"`
	HasStatement bool            `json:"hasStatement"`
}

// Snapshot copies the current state.
func (l *Lobby) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Snapshot{
		Code:        l.Code,
		HostID:      l.HostID,
		Players:     l.othersUnsafe(),
		TurnOrder:   append([]string(nil), l.turnOrder...),
		Scores:      l.scoresUnsafe(),
		Round:       l.round,
		RoundActive: l.phase.Active(),
		Phase:       l.phase.Name(),
		TurnPlayer:  l.phase.TurnPlayer(),
	}
	switch p := l.phase.(type) {
	case AwaitingStatement:
		s.Topic = p.Topic
	case AwaitingVotes:
		s.Topic = p.Topic
		s.VotesCast = p.votes.len()
		s.HasStatement = true
	case Resolved:
		s.Topic = p.Topic
	}
	return s
}
