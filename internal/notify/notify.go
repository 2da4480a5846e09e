// Package notify delivers final standings of completed draws to the result
// and certificate pipelines.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/google/uuid"
)

const EventDrawCompleted = "draw.completed"

// Envelope is the payload published for a completed draw.
type Envelope struct {
	ID         uuid.UUID         `json:"id"`
	Type       string            `json:"type"`
	DrawID     uuid.UUID         `json:"drawId"`
	OccurredAt time.Time         `json:"occurredAt"`
	Standings  bracket.Standings `json:"standings"`
}

func newEnvelope(drawID uuid.UUID, standings bracket.Standings, now time.Time) Envelope {
	return Envelope{
		ID:         uuid.New(),
		Type:       EventDrawCompleted,
		DrawID:     drawID,
		OccurredAt: now.UTC(),
		Standings:  standings,
	}
}

type Emitter interface {
	OnDrawCompleted(ctx context.Context, drawID uuid.UUID, standings bracket.Standings)
}

// Fanout hands each completion to every emitter in order.
type Fanout []Emitter

func (f Fanout) OnDrawCompleted(ctx context.Context, drawID uuid.UUID, standings bracket.Standings) {
	for _, e := range f {
		e.OnDrawCompleted(ctx, drawID, standings)
	}
}

type LogEmitter struct {
	Logger *slog.Logger
}

func (e LogEmitter) OnDrawCompleted(ctx context.Context, drawID uuid.UUID, standings bracket.Standings) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{"draw_id", drawID, "event_id", standings.EventID, "draw_type", standings.DrawType}
	if standings.Winner != nil {
		attrs = append(attrs, "winner", *standings.Winner)
	}
	if standings.RunnerUp != nil {
		attrs = append(attrs, "runner_up", *standings.RunnerUp)
	}
	logger.InfoContext(ctx, "draw results ready", attrs...)
}
