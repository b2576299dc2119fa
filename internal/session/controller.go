// internal/session/controller.go
package session

import (
	"context"
	"errors"
	"time"

	"github.com/jason-s-yu/truthorlie/internal/lobby"
	"github.com/jason-s-yu/truthorlie/internal/models"
	"github.com/jason-s-yu/truthorlie/internal/scoring"
	"github.com/sirupsen/logrus"
)

// Recorder receives resolved rounds and ended games for archiving.
// Errors are logged and never affect the intent that produced the event.
type Recorder interface {
	Record(ctx context.Context, rec models.EventRecord) error
}

// FailureCounter reports how many directives could not be delivered.
type FailureCounter interface {
	Failures() int64
}

// Controller maps intents onto lobby operations and decides who must be told what.
// It performs no I/O of its own apart from the optional Recorder.
type Controller struct {
	registry *lobby.Registry
	log      logrus.FieldLogger
	recorder Recorder
	failures FailureCounter
	started  time.Time
	now      func() time.Time

	recordTimeout time.Duration
}

// DefaultRecordTimeout bounds how long Handle waits on the Recorder.
const DefaultRecordTimeout = 500 * time.Millisecond

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithRecorder sets the event recorder.
func WithRecorder(r Recorder) ControllerOption {
	return func(c *Controller) { c.recorder = r }
}

// WithRecordTimeout bounds each Recorder call. Zero or negative keeps the default.
func WithRecordTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.recordTimeout = d
		}
	}
}

// WithFailureCounter sets the source of the delivery failure count reported by QueryStats.
func WithFailureCounter(f FailureCounter) ControllerOption {
	return func(c *Controller) { c.failures = f }
}

// WithLogger sets the controller logger.
func WithLogger(l logrus.FieldLogger) ControllerOption {
	return func(c *Controller) { c.log = l }
}

// WithClock sets the time source used for uptime and event timestamps.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// NewController builds a controller over the given registry.
func NewController(registry *lobby.Registry, opts ...ControllerOption) *Controller {
	c := &Controller{
		registry:      registry,
		now:           time.Now,
		recordTimeout: DefaultRecordTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		silent := logrus.New()
		silent.SetLevel(logrus.PanicLevel)
		c.log = silent
	}
	c.started = c.now()
	return c
}

// Handle applies one intent and returns the directives the transport must deliver.
// A failed intent yields exactly one ErrorMessage directive addressed to the requester.
func (c *Controller) Handle(ctx context.Context, in Intent) []Directive {
	logger := c.log.WithFields(logrus.Fields{"intent": in.Name(), "user": in.Requester()})

	var (
		out []Directive
		err error
	)
	switch it := in.(type) {
	case CreateLobby:
		out, err = c.createLobby(it)
	case JoinLobby:
		out, err = c.joinLobby(it)
	case StartRound:
		out, err = c.startRound(it.UserID, "", false)
	case RequestNextRound:
		out, err = c.startRound(it.UserID, it.Code, true)
	case SubmitStatement:
		out, err = c.submitStatement(it)
	case CastVote:
		out, err = c.castVote(ctx, it)
	case EndGame:
		out, err = c.endGame(ctx, it)
	case QueryStatus:
		out, err = c.queryStatus(it)
	case QueryStats:
		out = c.queryStats(it)
	default:
		err = &lobby.Error{Kind: lobby.KindInvalidIntent}
	}

	if err != nil {
		kind := lobby.KindOf(err)
		logger.WithField("error", kind).Debug("intent rejected")
		code := ""
		var le *lobby.Error
		if errors.As(err, &le) {
			code = le.Code
		}
		return []Directive{{
			Recipient: in.Requester(),
			Kind:      KindErrorMessage,
			Lobby:     code,
			Data:      ErrorData{Error: kind, Message: kind.Message()},
		}}
	}
	return out
}

// locate finds the lobby an intent targets and checks the requester belongs to it.
func (c *Controller) locate(userID, code string) (*lobby.Lobby, error) {
	if code == "" {
		return c.registry.FindByMember(userID)
	}
	l, err := c.registry.Find(code)
	if err != nil {
		return nil, err
	}
	if !l.Has(userID) {
		return nil, &lobby.Error{Kind: lobby.KindNotInLobby, Code: l.Code}
	}
	return l, nil
}

func (c *Controller) createLobby(it CreateLobby) ([]Directive, error) {
	l, err := c.registry.Create(it.UserID)
	if err != nil {
		return nil, err
	}
	return []Directive{{
		Recipient: it.UserID,
		Kind:      KindLobbyCreated,
		Lobby:     l.Code,
		Data:      LobbyCreatedData{Code: l.Code},
	}}, nil
}

func (c *Controller) joinLobby(it JoinLobby) ([]Directive, error) {
	l, err := c.registry.Find(it.Code)
	if err != nil {
		return nil, err
	}
	joined, err := l.Join(it.UserID)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{"lobby": l.Code, "user": it.UserID}).Info("player joined")

	data := JoinData{Code: l.Code, Player: it.UserID, PlayerCount: len(joined.Players)}
	out := []Directive{
		{Recipient: it.UserID, Kind: KindJoinConfirmed, Lobby: l.Code, Data: data},
		{Recipient: l.HostID, Kind: KindHostNotified, Lobby: l.Code, Data: data},
	}
	out = append(out, fanOut(without(joined.Players, it.UserID, l.HostID), KindPlayerJoined, l.Code, data)...)
	return out, nil
}

func (c *Controller) startRound(userID, code string, next bool) ([]Directive, error) {
	l, err := c.locate(userID, code)
	if err != nil {
		return nil, err
	}
	begin := l.StartRound
	if next {
		begin = l.StartNextRound
	}
	start, err := begin(userID)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{"lobby": l.Code, "round": start.Round}).Info("round started")

	data := RoundData{Code: l.Code, Round: start.Round, TurnPlayer: start.TurnPlayer, Topic: start.Topic}
	out := []Directive{{Recipient: start.TurnPlayer, Kind: KindYourTurn, Lobby: l.Code, Data: data}}
	out = append(out, fanOut(without(start.Players, start.TurnPlayer), KindRoundStarted, l.Code, data)...)
	return out, nil
}

func (c *Controller) submitStatement(it SubmitStatement) ([]Directive, error) {
	l, err := c.locate(it.UserID, it.Code)
	if err != nil {
		return nil, err
	}
	acc, err := l.SubmitStatement(it.UserID, it.Text, it.Truth)
	if err != nil {
		return nil, err
	}

	data := StatementData{Code: l.Code, Round: acc.Round, TurnPlayer: acc.TurnPlayer, Text: acc.Text}
	out := []Directive{{Recipient: it.UserID, Kind: KindStatementRecorded, Lobby: l.Code, Data: data}}
	out = append(out, fanOut(acc.Voters, KindVotingOpen, l.Code, data)...)
	return out, nil
}

func (c *Controller) castVote(ctx context.Context, it CastVote) ([]Directive, error) {
	l, err := c.locate(it.UserID, it.Code)
	if err != nil {
		return nil, err
	}
	vote, err := l.CastVote(it.UserID, it.Guess)
	if err != nil {
		return nil, err
	}

	out := []Directive{{
		Recipient: it.UserID,
		Kind:      KindVoteRecorded,
		Lobby:     l.Code,
		Data:      VoteData{Code: l.Code, Round: vote.Round, Guess: vote.Guess, Cast: vote.Cast, Needed: vote.Needed},
	}}
	if !vote.Closing() {
		return out, nil
	}

	res := vote.Result
	c.log.WithFields(logrus.Fields{
		"lobby":   l.Code,
		"round":   res.Round,
		"correct": len(res.CorrectVoters),
		"wrong":   len(res.WrongVoters),
	}).Info("round resolved")

	out = append(out, fanOut(res.Players, KindRoundResult, l.Code, ResultData{
		Code:          l.Code,
		Round:         res.Round,
		TurnPlayer:    res.TurnPlayer,
		Statement:     res.Statement.Text,
		Truth:         res.Statement.Truth,
		CorrectVoters: res.CorrectVoters,
		WrongVoters:   res.WrongVoters,
	})...)
	out = append(out, fanOut(res.Players, KindScoreBoard, l.Code, ScoreBoardData{
		Code:      l.Code,
		Round:     res.Round,
		Standings: scoring.Rank(res.Scores),
	})...)
	out = append(out, Directive{
		Recipient: l.HostID,
		Kind:      KindNextRoundControls,
		Lobby:     l.Code,
		Data:      ControlsData{Code: l.Code, Round: res.Round},
	})

	c.record(ctx, models.EventRecord{
		LobbyID:   l.ID,
		LobbyCode: l.Code,
		Type:      models.EventRoundResolved,
		Round:     res.Round,
		RoundResult: &models.RoundEntry{
			TurnPlayer:    res.TurnPlayer,
			Statement:     res.Statement.Text,
			Truth:         res.Statement.Truth,
			CorrectVoters: res.CorrectVoters,
			WrongVoters:   res.WrongVoters,
		},
	})
	return out, nil
}

func (c *Controller) endGame(ctx context.Context, it EndGame) ([]Directive, error) {
	l, err := c.locate(it.UserID, it.Code)
	if err != nil {
		return nil, err
	}
	sum, err := l.EndGame(it.UserID)
	if err != nil {
		return nil, err
	}
	c.registry.Remove(sum.Code)
	c.log.WithFields(logrus.Fields{"lobby": sum.Code, "rounds": sum.Rounds}).Info("game ended")

	c.record(ctx, models.EventRecord{
		LobbyID:   sum.LobbyID,
		LobbyCode: sum.Code,
		Type:      models.EventGameEnded,
		Round:     sum.Rounds,
		GameResult: &models.GameEntry{
			HostID:  sum.HostID,
			Rounds:  sum.Rounds,
			Ranking: sum.Ranking,
		},
	})

	return fanOut(sum.Players, KindGameEnded, sum.Code, GameEndedData{
		Code:         sum.Code,
		Rounds:       sum.Rounds,
		Participants: len(sum.Players),
		Ranking:      sum.Ranking,
	}), nil
}

func (c *Controller) queryStatus(it QueryStatus) ([]Directive, error) {
	l, err := c.registry.FindByMember(it.UserID)
	if err != nil {
		return nil, err
	}
	snap := l.Snapshot()
	return []Directive{{
		Recipient: it.UserID,
		Kind:      KindLobbyStatus,
		Lobby:     snap.Code,
		Data:      StatusData{Snapshot: snap},
	}}, nil
}

func (c *Controller) queryStats(it QueryStats) []Directive {
	data := StatsData{
		LobbiesCreated: c.registry.Created(),
		LiveLobbies:    c.registry.Len(),
		Uptime:         c.now().Sub(c.started),
	}
	if c.failures != nil {
		data.DeliveryFailures = c.failures.Failures()
	}
	return []Directive{{Recipient: it.UserID, Kind: KindStats, Data: data}}
}

func (c *Controller) record(ctx context.Context, rec models.EventRecord) {
	if c.recorder == nil {
		return
	}
	rec.Timestamp = c.now().UnixMilli()
	ctx, cancel := context.WithTimeout(ctx, c.recordTimeout)
	defer cancel()
	if err := c.recorder.Record(ctx, rec); err != nil {
		c.log.WithFields(logrus.Fields{"lobby": rec.LobbyCode, "event": rec.Type}).
			WithError(err).Warn("failed to record lobby event")
	}
}
