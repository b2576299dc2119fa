// internal/notify/dispatcher.go
package notify

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jason-s-yu/truthorlie/internal/lobby"
	"github.com/jason-s-yu/truthorlie/internal/session"
	"github.com/sirupsen/logrus"
)

// Transport delivers a single directive to its recipient.
type Transport interface {
	Send(ctx context.Context, d session.Directive) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, d session.Directive) error

func (f TransportFunc) Send(ctx context.Context, d session.Directive) error { return f(ctx, d) }

// Dispatcher hands directives to a Transport one at a time. A failed delivery is
// counted and logged, and never stops delivery of the remaining directives.
type Dispatcher struct {
	transport Transport
	log       logrus.FieldLogger
	timeout   time.Duration
	failures  atomic.Int64
}

// NewDispatcher returns a dispatcher over t. A zero timeout disables the per-send deadline.
func NewDispatcher(t Transport, log logrus.FieldLogger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{transport: t, log: log, timeout: timeout}
}

// Deliver sends every directive. It never returns an error.
func (d *Dispatcher) Deliver(ctx context.Context, directives []session.Directive) {
	for _, dir := range directives {
		d.deliverOne(ctx, dir)
	}
}

func (d *Dispatcher) deliverOne(ctx context.Context, dir session.Directive) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.failures.Add(1)
			d.log.WithFields(logrus.Fields{
				"recipient": dir.Recipient,
				"kind":      dir.Kind,
				"lobby":     dir.Lobby,
				"panic":     r,
			}).Error("transport panicked during delivery")
		}
	}()

	if err := d.transport.Send(ctx, dir); err != nil {
		d.failures.Add(1)
		d.log.WithFields(logrus.Fields{
			"recipient": dir.Recipient,
			"kind":      dir.Kind,
			"lobby":     dir.Lobby,
			"failure":   lobby.KindDeliveryFailure,
		}).WithError(err).Warn("could not deliver directive")
	}
}

// Failures is the number of deliveries that failed since start.
func (d *Dispatcher) Failures() int64 {
	return d.failures.Load()
}

// Handler is anything that turns an intent into directives.
type Handler interface {
	Handle(ctx context.Context, in session.Intent) []session.Directive
}

// Process runs an intent through h and delivers the resulting directives.
func (d *Dispatcher) Process(ctx context.Context, h Handler, in session.Intent) {
	d.Deliver(ctx, h.Handle(ctx, in))
}
