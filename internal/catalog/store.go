package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Store reads schools, events and registrations owned by the CRUD side of the
// dashboard.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetSchool(ctx context.Context, id uuid.UUID) (*School, error) {
	var school School
	err := s.db.GetContext(ctx, &school, s.db.Rebind("SELECT id, name, status FROM schools WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSchoolNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := s.db.GetContext(ctx, &event, s.db.Rebind("SELECT id, name, category, max_participants, status FROM events WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetRegisteredParticipants returns registrations in the order they were made,
// which doubles as the ranked seeding order.
func (s *Store) GetRegisteredParticipants(ctx context.Context, eventID uuid.UUID) ([]Registration, error) {
	var registrations []Registration
	err := s.db.SelectContext(ctx, &registrations, s.db.Rebind(`SELECT id, event_id, school_id, participant_ref, created_at
		FROM registrations WHERE event_id = ? ORDER BY created_at ASC, id ASC`), eventID)
	return registrations, err
}

func (s *Store) CreateSchool(ctx context.Context, school *School) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO schools (id, name, status) VALUES (:id, :name, :status)`, school)
	return err
}

func (s *Store) CreateEvent(ctx context.Context, event *Event) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO events (id, name, category, max_participants, status)
		VALUES (:id, :name, :category, :max_participants, :status)`, event)
	return err
}

func (s *Store) CreateRegistrations(ctx context.Context, registrations []Registration) error {
	if len(registrations) == 0 {
		return nil
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO registrations (id, event_id, school_id, participant_ref, created_at)
		VALUES (:id, :event_id, :school_id, :participant_ref, :created_at)`, registrations)
	return err
}
