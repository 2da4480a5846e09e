package service

import (
	"context"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/AdamBeresnev/olympics-draws/internal/catalog"
	"github.com/google/uuid"
)

// DrawRepository persists whole draw aggregates. Save must be all-or-nothing.
type DrawRepository interface {
	Load(ctx context.Context, id uuid.UUID) (*bracket.Draw, error)
	LoadByEvent(ctx context.Context, eventID uuid.UUID) ([]bracket.Draw, error)
	Save(ctx context.Context, draw *bracket.Draw) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type EventCatalog interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*catalog.Event, error)
}

type ParticipantRoster interface {
	GetRegisteredParticipants(ctx context.Context, eventID uuid.UUID) ([]catalog.Registration, error)
}

type EntityRegistry interface {
	GetSchool(ctx context.Context, id uuid.UUID) (*catalog.School, error)
}

// ResultEmitter is told when a draw completes. Delivery is best effort;
// implementations handle their own failures.
type ResultEmitter interface {
	OnDrawCompleted(ctx context.Context, drawID uuid.UUID, standings bracket.Standings)
}

type nopEmitter struct{}

func (nopEmitter) OnDrawCompleted(context.Context, uuid.UUID, bracket.Standings) {}
