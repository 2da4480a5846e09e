package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/AdamBeresnev/olympics-draws/internal/catalog"
	"github.com/google/uuid"
)

// ------------------------
// Fake Draw Repo
// ------------------------

var errFakeVersion = fmt.Errorf("fake: version conflict")

// FakeDrawRepo keeps cloned aggregates in memory and enforces versions the
// way the sqlx store does.
type FakeDrawRepo struct {
	mu    sync.Mutex
	draws map[uuid.UUID]*bracket.Draw
	saves int

	SaveFunc func(ctx context.Context, draw *bracket.Draw) error
}

func NewFakeDrawRepo() *FakeDrawRepo {
	return &FakeDrawRepo{draws: make(map[uuid.UUID]*bracket.Draw)}
}

func (f *FakeDrawRepo) Load(_ context.Context, id uuid.UUID) (*bracket.Draw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.draws[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bracket.ErrDrawNotFound, id)
	}
	return d.Clone(), nil
}

func (f *FakeDrawRepo) LoadByEvent(_ context.Context, eventID uuid.UUID) ([]bracket.Draw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bracket.Draw
	for _, d := range f.draws {
		if d.EventID == eventID {
			out = append(out, *d.Clone())
		}
	}
	return out, nil
}

func (f *FakeDrawRepo) Save(ctx context.Context, draw *bracket.Draw) error {
	if f.SaveFunc != nil {
		if err := f.SaveFunc(ctx, draw); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.draws[draw.ID]
	switch {
	case !ok && draw.Version != 0:
		return errFakeVersion
	case ok && stored.Version != draw.Version:
		return errFakeVersion
	}
	draw.Version++
	f.draws[draw.ID] = draw.Clone()
	f.saves++
	return nil
}

func (f *FakeDrawRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.draws[id]; !ok {
		return fmt.Errorf("%w: %s", bracket.ErrDrawNotFound, id)
	}
	delete(f.draws, id)
	return nil
}

func (f *FakeDrawRepo) Saves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

var _ DrawRepository = (*FakeDrawRepo)(nil)

// ------------------------
// Fake Catalog
// ------------------------

type FakeCatalog struct {
	Events        map[uuid.UUID]*catalog.Event
	Schools       map[uuid.UUID]*catalog.School
	Registrations map[uuid.UUID][]catalog.Registration
}

func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		Events:        make(map[uuid.UUID]*catalog.Event),
		Schools:       make(map[uuid.UUID]*catalog.School),
		Registrations: make(map[uuid.UUID][]catalog.Registration),
	}
}

func (f *FakeCatalog) GetEvent(_ context.Context, id uuid.UUID) (*catalog.Event, error) {
	e, ok := f.Events[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrEventNotFound, id)
	}
	return e, nil
}

func (f *FakeCatalog) GetRegisteredParticipants(_ context.Context, eventID uuid.UUID) ([]catalog.Registration, error) {
	return f.Registrations[eventID], nil
}

func (f *FakeCatalog) GetSchool(_ context.Context, id uuid.UUID) (*catalog.School, error) {
	s, ok := f.Schools[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrSchoolNotFound, id)
	}
	return s, nil
}

// AddEvent registers an open event with the given participants, all entered
// by one approved school.
func (f *FakeCatalog) AddEvent(maxParticipants int, participants ...bracket.ParticipantRef) uuid.UUID {
	school := &catalog.School{ID: uuid.New(), Name: "Riverside High", Status: catalog.SchoolApproved}
	f.Schools[school.ID] = school

	event := &catalog.Event{ID: uuid.New(), Name: "Table Tennis", MaxParticipants: maxParticipants, Status: catalog.EventOpen}
	f.Events[event.ID] = event

	for _, p := range participants {
		f.Registrations[event.ID] = append(f.Registrations[event.ID], catalog.Registration{
			ID: uuid.New(), EventID: event.ID, SchoolID: school.ID, ParticipantRef: p,
		})
	}
	return event.ID
}

func (f *FakeCatalog) collaborators() Collaborators {
	return Collaborators{Events: f, Roster: f, Registry: f}
}

// ------------------------
// Fake Emitter / Listener
// ------------------------

type completion struct {
	DrawID    uuid.UUID
	Standings bracket.Standings
}

type FakeEmitter struct {
	mu        sync.Mutex
	completed []completion
	updates   int
}

func (f *FakeEmitter) OnDrawCompleted(_ context.Context, drawID uuid.UUID, standings bracket.Standings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, completion{DrawID: drawID, Standings: standings})
}

func (f *FakeEmitter) OnDrawUpdated(_ context.Context, _ *bracket.Draw) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
}

func (f *FakeEmitter) Completed() []completion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]completion(nil), f.completed...)
}

func (f *FakeEmitter) Updates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

var (
	_ ResultEmitter = (*FakeEmitter)(nil)
	_ DrawListener  = (*FakeEmitter)(nil)
)
