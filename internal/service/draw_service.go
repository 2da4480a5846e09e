package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/AdamBeresnev/olympics-draws/internal/catalog"
	"github.com/AdamBeresnev/olympics-draws/internal/metrics"
	users "github.com/AdamBeresnev/olympics-draws/internal/user"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const systemActor = "system"

// DrawListener is told about every saved change to a draw.
type DrawListener interface {
	OnDrawUpdated(ctx context.Context, draw *bracket.Draw)
}

type Collaborators struct {
	Events   EventCatalog
	Roster   ParticipantRoster
	Registry EntityRegistry
}

// Engine runs the draw lifecycle: generation, publishing and match
// progression. Every change to a draw is made under that draw's lock and
// saved as a whole.
type Engine struct {
	repo      DrawRepository
	collab    Collaborators
	emitter   ResultEmitter
	listeners []DrawListener
	clock     clockwork.Clock
	logger    *slog.Logger
	locks     *drawLocks

	// rand is shared by every CreateDraw call and *rand.Rand is not safe
	// for concurrent use.
	randMu sync.Mutex
	rand   *rand.Rand

	emitting sync.WaitGroup
}

type Option func(*Engine)

func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithRand fixes the source used for random seeding. The engine serialises
// its own use of r; callers must not share r elsewhere.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rand = r }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithEmitter(emitter ResultEmitter) Option {
	return func(e *Engine) { e.emitter = emitter }
}

func WithListener(listener DrawListener) Option {
	return func(e *Engine) { e.listeners = append(e.listeners, listener) }
}

func NewEngine(repo DrawRepository, collab Collaborators, opts ...Option) *Engine {
	e := &Engine{
		repo:    repo,
		collab:  collab,
		emitter: nopEmitter{},
		clock:   clockwork.NewRealClock(),
		logger:  slog.Default(),
		locks:   newDrawLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type CreateDrawInput struct {
	EventID       uuid.UUID
	DrawType      bracket.DrawType
	SeedingMethod bracket.SeedingMethod
	GroupSize     int
	Slots         []int
	// Participants optionally fixes the seeding order. Every entry must be an
	// eligible registration of the event. Empty means the whole roster in
	// registration order.
	Participants []bracket.ParticipantRef
}

func (e *Engine) CreateDraw(ctx context.Context, in CreateDrawInput) (*bracket.Draw, error) {
	var (
		event         *catalog.Event
		registrations []catalog.Registration
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = e.collab.Events.GetEvent(gctx, in.EventID)
		return err
	})
	g.Go(func() error {
		var err error
		registrations, err = e.collab.Roster.GetRegisteredParticipants(gctx, in.EventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, e.fail("create", fmt.Errorf("failed to load event %s: %w", in.EventID, err))
	}

	if event.Status == catalog.EventCancelled {
		return nil, e.fail("create", fmt.Errorf("%w: event %q is cancelled", bracket.ErrInvalidConfiguration, event.Name))
	}

	eligible, err := e.eligibleParticipants(ctx, registrations)
	if err != nil {
		return nil, e.fail("create", err)
	}

	participants := eligible
	if len(in.Participants) > 0 {
		if err := checkSubset(in.Participants, eligible); err != nil {
			return nil, e.fail("create", err)
		}
		participants = in.Participants
	}

	if event.MaxParticipants > 0 && len(participants) > event.MaxParticipants {
		return nil, e.fail("create", fmt.Errorf("%w: %d participants exceed the event limit of %d",
			bracket.ErrInvalidConfiguration, len(participants), event.MaxParticipants))
	}

	createdBy := systemActor
	if actor, ok := users.ActorFromContext(ctx); ok {
		createdBy = actor.ID
	}

	e.randMu.Lock()
	draw, err := Generate(event.ID, participants, in.DrawType, in.SeedingMethod, GenerateOptions{
		GroupSize: in.GroupSize,
		Slots:     in.Slots,
		CreatedBy: createdBy,
		Now:       e.clock.Now(),
		Rand:      e.rand,
	})
	e.randMu.Unlock()
	if err != nil {
		return nil, e.fail("create", err)
	}

	if err := e.repo.Save(ctx, draw); err != nil {
		return nil, e.fail("create", fmt.Errorf("failed to save draw: %w", err))
	}

	metrics.DrawsCreated.WithLabelValues(string(draw.DrawType)).Inc()
	e.logger.InfoContext(ctx, "draw created",
		"draw_id", draw.ID,
		"event_id", draw.EventID,
		"draw_type", draw.DrawType,
		"participants", len(draw.Participants),
		"matches", len(draw.Matches),
		"created_by", createdBy,
	)
	e.notifyUpdated(ctx, draw)
	return draw, nil
}

// Registrations from schools that are not approved never enter a draw.
func (e *Engine) eligibleParticipants(ctx context.Context, registrations []catalog.Registration) ([]bracket.ParticipantRef, error) {
	approved := make(map[uuid.UUID]bool)
	var participants []bracket.ParticipantRef

	for _, reg := range registrations {
		ok, seen := approved[reg.SchoolID]
		if !seen {
			school, err := e.collab.Registry.GetSchool(ctx, reg.SchoolID)
			switch {
			case errors.Is(err, catalog.ErrSchoolNotFound):
				ok = false
			case err != nil:
				return nil, fmt.Errorf("failed to get school %s: %w", reg.SchoolID, err)
			default:
				ok = school.Status == catalog.SchoolApproved
			}
			approved[reg.SchoolID] = ok
		}
		if ok {
			participants = append(participants, reg.ParticipantRef)
		} else {
			e.logger.DebugContext(ctx, "skipping registration", "participant", reg.ParticipantRef, "school_id", reg.SchoolID)
		}
	}
	return participants, nil
}

func checkSubset(requested, eligible []bracket.ParticipantRef) error {
	allowed := make(map[bracket.ParticipantRef]bool, len(eligible))
	for _, p := range eligible {
		allowed[p] = true
	}
	for _, p := range requested {
		if !allowed[p] {
			return fmt.Errorf("%w: %q is not an eligible registration", bracket.ErrInvalidConfiguration, p)
		}
	}
	return nil
}

func (e *Engine) Publish(ctx context.Context, drawID uuid.UUID) (*bracket.Draw, error) {
	draw, err := e.mutate(ctx, drawID, func(d *bracket.Draw) (bool, error) {
		return true, d.Publish()
	})
	if err != nil {
		return nil, e.fail("publish", err)
	}

	e.logger.InfoContext(ctx, "draw published", "draw_id", drawID)
	e.notifyUpdated(ctx, draw)
	return draw, nil
}

func (e *Engine) DeleteDraw(ctx context.Context, drawID uuid.UUID) error {
	unlock := e.locks.lock(drawID)
	defer unlock()

	draw, err := e.repo.Load(ctx, drawID)
	if err != nil {
		return e.fail("delete", err)
	}
	if err := draw.CheckDeletable(); err != nil {
		return e.fail("delete", err)
	}
	if err := e.repo.Delete(ctx, drawID); err != nil {
		return e.fail("delete", fmt.Errorf("failed to delete draw: %w", err))
	}

	e.logger.InfoContext(ctx, "draw deleted", "draw_id", drawID)
	return nil
}

func (e *Engine) GetDraw(ctx context.Context, drawID uuid.UUID) (*bracket.Draw, error) {
	return e.repo.Load(ctx, drawID)
}

func (e *Engine) ListDraws(ctx context.Context, eventID uuid.UUID) ([]bracket.Draw, error) {
	return e.repo.LoadByEvent(ctx, eventID)
}

func (e *Engine) Standings(ctx context.Context, drawID uuid.UUID) (bracket.Standings, error) {
	draw, err := e.repo.Load(ctx, drawID)
	if err != nil {
		return bracket.Standings{}, err
	}
	return draw.Standings(), nil
}

// mutate applies fn to a copy of the stored draw under the draw's lock and
// saves the copy when fn reports a change. A failing fn leaves the stored
// draw untouched.
func (e *Engine) mutate(ctx context.Context, drawID uuid.UUID, fn func(d *bracket.Draw) (bool, error)) (*bracket.Draw, error) {
	unlock := e.locks.lock(drawID)
	defer unlock()

	current, err := e.repo.Load(ctx, drawID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	changed, err := fn(next)
	if err != nil {
		return nil, err
	}
	if !changed {
		return current, nil
	}

	if err := e.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save draw: %w", err)
	}
	return next, nil
}

func (e *Engine) notifyUpdated(ctx context.Context, draw *bracket.Draw) {
	for _, l := range e.listeners {
		l.OnDrawUpdated(ctx, draw)
	}
}

func (e *Engine) fail(operation string, err error) error {
	metrics.OperationFailures.WithLabelValues(operation).Inc()
	e.logger.Debug("engine operation rejected", "operation", operation, "error", err)
	return err
}
