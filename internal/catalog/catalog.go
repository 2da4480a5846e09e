package catalog

import (
	"errors"
	"time"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/google/uuid"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrSchoolNotFound = errors.New("school not found")
)

type SchoolStatus string

const (
	SchoolPending  SchoolStatus = "pending"
	SchoolApproved SchoolStatus = "approved"
	SchoolRejected SchoolStatus = "rejected"
)

type School struct {
	ID     uuid.UUID    `db:"id" json:"id"`
	Name   string       `db:"name" json:"name"`
	Status SchoolStatus `db:"status" json:"status"`
}

type EventStatus string

const (
	EventOpen      EventStatus = "open"
	EventClosed    EventStatus = "closed"
	EventCancelled EventStatus = "cancelled"
)

type Event struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Category string    `db:"category" json:"category"`
	// MaxParticipants of 0 means the event has no cap.
	MaxParticipants int         `db:"max_participants" json:"maxParticipants"`
	Status          EventStatus `db:"status" json:"status"`
}

// Registration is one participant entered into an event by a school.
type Registration struct {
	ID             uuid.UUID              `db:"id" json:"id"`
	EventID        uuid.UUID              `db:"event_id" json:"eventId"`
	SchoolID       uuid.UUID              `db:"school_id" json:"schoolId"`
	ParticipantRef bracket.ParticipantRef `db:"participant_ref" json:"participantRef"`
	CreatedAt      time.Time              `db:"created_at" json:"createdAt"`
}
