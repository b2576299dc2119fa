// internal/historian/historian.go drains lobby events from a queue and persists them in batches.
package historian

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/truthorlie/internal/models"
	"github.com/sirupsen/logrus"
)

// Store persists event batches.
type Store interface {
	Store(ctx context.Context, records []models.EventRecord) error
	MarkAbandoned(ctx context.Context, lobbyID uuid.UUID) (bool, error)
}

// maxPendingBatches bounds how many failed batches are retained for retry.
const maxPendingBatches = 10

// Service batches records from a Source into a Store. A batch is flushed once it
// reaches BatchSize or FlushEvery has passed since the last flush. Lobbies that
// produce no event for Inactivity are marked abandoned.
type Service struct {
	source Source
	store  Store
	log    logrus.FieldLogger

	BatchSize  int
	FlushEvery time.Duration
	Inactivity time.Duration // zero disables the abandoned sweep

	now          func() time.Time
	batch        []models.EventRecord
	lastFlush    time.Time
	lastSweep    time.Time
	lastActivity map[uuid.UUID]time.Time
}

// NewService builds a historian with the given batching parameters.
func NewService(src Source, store Store, log logrus.FieldLogger, batchSize int, flushEvery, inactivity time.Duration) *Service {
	if batchSize <= 0 {
		batchSize = 1
	}
	if flushEvery <= 0 {
		flushEvery = 500 * time.Millisecond
	}
	return &Service{
		source:       src,
		store:        store,
		log:          log,
		BatchSize:    batchSize,
		FlushEvery:   flushEvery,
		Inactivity:   inactivity,
		now:          time.Now,
		batch:        make([]models.EventRecord, 0, batchSize),
		lastActivity: make(map[uuid.UUID]time.Time),
	}
}

// Run consumes the source until ctx is cancelled, then flushes what is pending.
func (s *Service) Run(ctx context.Context) error {
	s.lastFlush = s.now()
	s.lastSweep = s.lastFlush
	s.log.WithFields(logrus.Fields{
		"batchSize":  s.BatchSize,
		"flushEvery": s.FlushEvery,
	}).Info("historian started")

	for {
		if ctx.Err() != nil {
			s.flush(context.Background())
			s.log.Info("historian shutting down")
			return nil
		}

		rec, ok, err := s.source.Next(ctx, s.FlushEvery)
		switch {
		case err != nil && ctx.Err() != nil:
			continue
		case errors.Is(err, ErrMalformed):
			s.log.WithError(err).Warn("skipping invalid event record")
		case err != nil:
			s.log.WithError(err).Error("queue read failed")
			s.wait(ctx)
		case ok:
			s.append(rec)
		}

		if len(s.batch) > 0 && s.now().Sub(s.lastFlush) >= s.FlushEvery {
			s.flush(ctx)
		}
		s.sweep(ctx)
	}
}

// wait backs off after a queue error without outliving ctx.
func (s *Service) wait(ctx context.Context) {
	t := time.NewTimer(s.FlushEvery)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// append queues rec for the next flush. Invalid records are dropped here so
// they can never fail a batch of valid ones.
func (s *Service) append(rec models.EventRecord) {
	if err := rec.Validate(); err != nil {
		s.log.WithError(err).WithField("lobby", rec.LobbyCode).Warn("skipping invalid event record")
		return
	}
	if rec.Type == models.EventGameEnded {
		delete(s.lastActivity, rec.LobbyID)
	} else {
		s.lastActivity[rec.LobbyID] = s.now()
	}
	s.batch = append(s.batch, rec)
	if len(s.batch) >= s.BatchSize {
		s.flush(context.Background())
	}
}

// flush writes the pending batch. On failure the records stay queued for the
// next attempt, up to maxPendingBatches worth.
func (s *Service) flush(ctx context.Context) {
	s.lastFlush = s.now()
	if len(s.batch) == 0 {
		return
	}
	if err := s.store.Store(ctx, s.batch); err != nil {
		logger := s.log.WithError(err).WithField("records", len(s.batch))
		if len(s.batch) >= s.BatchSize*maxPendingBatches {
			logger.Error("dropping event batch after repeated failures")
			s.batch = s.batch[:0]
			return
		}
		logger.Warn("flush failed, will retry")
		return
	}
	s.log.WithField("records", len(s.batch)).Debug("flushed events")
	s.batch = s.batch[:0]
}

// sweep marks idle lobbies abandoned. Runs at most once per Inactivity/4.
func (s *Service) sweep(ctx context.Context) {
	if s.Inactivity <= 0 || s.now().Sub(s.lastSweep) < s.Inactivity/4 {
		return
	}
	now := s.now()
	s.lastSweep = now
	for id, last := range s.lastActivity {
		if now.Sub(last) <= s.Inactivity {
			continue
		}
		changed, err := s.store.MarkAbandoned(ctx, id)
		if err != nil {
			s.log.WithError(err).WithField("lobbyId", id).Warn("failed to mark game abandoned")
			continue
		}
		delete(s.lastActivity, id)
		if changed {
			s.log.WithField("lobbyId", id).Info("marked game abandoned due to inactivity")
		}
	}
}
