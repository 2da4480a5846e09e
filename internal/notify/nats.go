package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/AdamBeresnev/olympics-draws/internal/metrics"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
)

// Publisher is the part of *nats.Conn the emitter needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// NATSEmitter publishes an Envelope for every completed draw.
type NATSEmitter struct {
	pub     Publisher
	subject string
	clock   clockwork.Clock
	logger  *slog.Logger
}

func NewNATSEmitter(pub Publisher, subject string, clock clockwork.Clock, logger *slog.Logger) *NATSEmitter {
	return &NATSEmitter{pub: pub, subject: subject, clock: clock, logger: logger}
}

// ConnectNATS dials the server, naming the connection after the service.
func ConnectNATS(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("olympics-draws"),
		nats.MaxReconnects(-1),
	)
}

func (e *NATSEmitter) OnDrawCompleted(ctx context.Context, drawID uuid.UUID, standings bracket.Standings) {
	data, err := json.Marshal(newEnvelope(drawID, standings, e.clock.Now()))
	if err != nil {
		metrics.EmitterFailures.WithLabelValues("nats").Inc()
		e.logger.ErrorContext(ctx, "failed to encode draw results", "draw_id", drawID, "error", err)
		return
	}

	if err := e.pub.Publish(e.subject, data); err != nil {
		metrics.EmitterFailures.WithLabelValues("nats").Inc()
		e.logger.ErrorContext(ctx, "failed to publish draw results", "draw_id", drawID, "subject", e.subject, "error", err)
		return
	}
	e.logger.DebugContext(ctx, "draw results published", "draw_id", drawID, "subject", e.subject)
}
