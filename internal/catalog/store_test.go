package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/AdamBeresnev/olympics-draws/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open(db.DriverSQLite, "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSchoolsAndEvents(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	school := &School{ID: uuid.New(), Name: "Hillcrest Academy", Status: SchoolApproved}
	require.NoError(t, store.CreateSchool(ctx, school))

	got, err := store.GetSchool(ctx, school.ID)
	require.NoError(t, err)
	assert.Equal(t, school, got)

	event := &Event{ID: uuid.New(), Name: "Chess", Category: "mind sports", MaxParticipants: 16, Status: EventOpen}
	require.NoError(t, store.CreateEvent(ctx, event))

	gotEvent, err := store.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event, gotEvent)

	_, err = store.GetSchool(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSchoolNotFound)
	_, err = store.GetEvent(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRegisteredParticipantsOrder(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	school := &School{ID: uuid.New(), Name: "Lakeside", Status: SchoolPending}
	require.NoError(t, store.CreateSchool(ctx, school))
	event := &Event{ID: uuid.New(), Name: "Badminton", Status: EventOpen}
	require.NoError(t, store.CreateEvent(ctx, event))

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	refs := []bracket.ParticipantRef{"Third", "First", "Second"}
	offsets := []time.Duration{3 * time.Minute, time.Minute, 2 * time.Minute}
	var registrations []Registration
	for i, ref := range refs {
		registrations = append(registrations, Registration{
			ID:             uuid.New(),
			EventID:        event.ID,
			SchoolID:       school.ID,
			ParticipantRef: ref,
			CreatedAt:      base.Add(offsets[i]),
		})
	}
	require.NoError(t, store.CreateRegistrations(ctx, registrations))
	require.NoError(t, store.CreateRegistrations(ctx, nil))

	got, err := store.GetRegisteredParticipants(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, bracket.ParticipantRef("First"), got[0].ParticipantRef)
	assert.Equal(t, bracket.ParticipantRef("Second"), got[1].ParticipantRef)
	assert.Equal(t, bracket.ParticipantRef("Third"), got[2].ParticipantRef)
	assert.Equal(t, school.ID, got[0].SchoolID)

	none, err := store.GetRegisteredParticipants(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRegistrationsAreUniquePerEvent(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	school := &School{ID: uuid.New(), Name: "Northfield", Status: SchoolApproved}
	require.NoError(t, store.CreateSchool(ctx, school))
	event := &Event{ID: uuid.New(), Name: "Judo", Status: EventOpen}
	require.NoError(t, store.CreateEvent(ctx, event))

	reg := Registration{ID: uuid.New(), EventID: event.ID, SchoolID: school.ID, ParticipantRef: "Kim", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateRegistrations(ctx, []Registration{reg}))

	reg.ID = uuid.New()
	assert.Error(t, store.CreateRegistrations(ctx, []Registration{reg}))
}
