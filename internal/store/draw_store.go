package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrVersionConflict means the draw changed between load and save.
var ErrVersionConflict = errors.New("draw was modified concurrently")

const drawColumns = `id, event_id, draw_type, seeding_method, group_size, participants, status,
	total_rounds, created_at, created_by, completed_at, version`

const matchColumns = `id, draw_id, round_number, position, group_number, participant_1, participant_2,
	winner, score_1, score_2, status, next_match_id, next_slot, scheduled_time, venue`

type DrawStore struct {
	db *sqlx.DB
}

func NewDrawStore(db *sqlx.DB) *DrawStore {
	return &DrawStore{db: db}
}

func (s *DrawStore) Load(ctx context.Context, id uuid.UUID) (*bracket.Draw, error) {
	var draw bracket.Draw
	err := s.db.GetContext(ctx, &draw, s.db.Rebind("SELECT "+drawColumns+" FROM draws WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", bracket.ErrDrawNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	err = s.db.SelectContext(ctx, &draw.Matches, s.db.Rebind("SELECT "+matchColumns+
		" FROM matches WHERE draw_id = ? ORDER BY round_number ASC, position ASC"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	return &draw, nil
}

func (s *DrawStore) LoadByEvent(ctx context.Context, eventID uuid.UUID) ([]bracket.Draw, error) {
	var draws []bracket.Draw
	err := s.db.SelectContext(ctx, &draws, s.db.Rebind("SELECT "+drawColumns+
		" FROM draws WHERE event_id = ? ORDER BY created_at ASC, id ASC"), eventID)
	if err != nil {
		return nil, err
	}
	if len(draws) == 0 {
		return draws, nil
	}

	var matches []bracket.Match
	err = s.db.SelectContext(ctx, &matches, s.db.Rebind("SELECT "+matchColumns+
		` FROM matches WHERE draw_id IN (SELECT id FROM draws WHERE event_id = ?)
		ORDER BY round_number ASC, position ASC`), eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	byDraw := make(map[uuid.UUID][]bracket.Match, len(draws))
	for _, m := range matches {
		byDraw[m.DrawID] = append(byDraw[m.DrawID], m)
	}
	for i := range draws {
		draws[i].Matches = byDraw[draws[i].ID]
	}
	return draws, nil
}

// Save replaces the stored aggregate in one transaction. The draw's Version
// must match the stored one (0 for a new draw) and is bumped on success.
func (s *DrawStore) Save(ctx context.Context, draw *bracket.Draw) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := *draw
	row.Version = draw.Version + 1

	if draw.Version == 0 {
		var exists int
		err = tx.GetContext(ctx, &exists, tx.Rebind("SELECT COUNT(*) FROM draws WHERE id = ?"), draw.ID)
		if err != nil {
			return err
		}
		if exists > 0 {
			return fmt.Errorf("%w: draw %s already exists", ErrVersionConflict, draw.ID)
		}
		_, err = tx.NamedExecContext(ctx, `INSERT INTO draws (`+drawColumns+`)
			VALUES (:id, :event_id, :draw_type, :seeding_method, :group_size, :participants, :status,
			:total_rounds, :created_at, :created_by, :completed_at, :version)`, &row)
		if err != nil {
			return fmt.Errorf("failed to insert draw: %w", err)
		}
	} else {
		// The version guard makes a concurrent writer lose here rather than
		// overwrite a newer aggregate.
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE draws SET status = ?, total_rounds = ?,
			completed_at = ?, version = ?
			WHERE id = ? AND version = ?`),
			row.Status, row.TotalRounds, row.CompletedAt, row.Version, draw.ID, draw.Version)
		if err != nil {
			return fmt.Errorf("failed to update draw: %w", err)
		}
		if err := checkAffectedRows(res); err != nil {
			return fmt.Errorf("%w: draw %s is missing or not at version %d", err, draw.ID, draw.Version)
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM matches WHERE draw_id = ?"), draw.ID); err != nil {
		return fmt.Errorf("failed to clear matches: %w", err)
	}
	if err := createMatches(ctx, tx, draw.ID, draw.Matches); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	draw.Version = row.Version
	return nil
}

func (s *DrawStore) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM matches WHERE draw_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM draws WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete draw: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", bracket.ErrDrawNotFound, id)
	}
	return tx.Commit()
}

func createMatches(ctx context.Context, tx *sqlx.Tx, drawID uuid.UUID, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	rows := make([]bracket.Match, len(matches))
	for i, m := range matches {
		m.DrawID = drawID
		rows[i] = m
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (`+matchColumns+`)
		VALUES (:id, :draw_id, :round_number, :position, :group_number, :participant_1, :participant_2,
		:winner, :score_1, :score_2, :status, :next_match_id, :next_slot, :scheduled_time, :venue)`, rows)
	if err != nil {
		return fmt.Errorf("failed to insert matches: %w", err)
	}
	return nil
}

func checkAffectedRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}
