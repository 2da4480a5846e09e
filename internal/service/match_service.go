package service

import (
	"context"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/AdamBeresnev/olympics-draws/internal/metrics"
	"github.com/google/uuid"
)

func (e *Engine) StartMatch(ctx context.Context, drawID, matchID uuid.UUID) (*bracket.Match, error) {
	var started *bracket.Match
	draw, err := e.mutate(ctx, drawID, func(d *bracket.Draw) (bool, error) {
		m, err := d.StartMatch(matchID)
		started = m
		return true, err
	})
	if err != nil {
		return nil, e.fail("start", err)
	}

	metrics.MatchTransitions.WithLabelValues("start").Inc()
	e.logger.InfoContext(ctx, "match started", "draw_id", drawID, "match_id", matchID)
	e.notifyUpdated(ctx, draw)
	return started, nil
}

func (e *Engine) RecordScore(ctx context.Context, drawID, matchID uuid.UUID, score1, score2 string) (*bracket.Match, error) {
	var scored *bracket.Match
	draw, err := e.mutate(ctx, drawID, func(d *bracket.Draw) (bool, error) {
		m, err := d.RecordScore(matchID, score1, score2)
		scored = m
		return true, err
	})
	if err != nil {
		return nil, e.fail("score", err)
	}

	metrics.MatchTransitions.WithLabelValues("score").Inc()
	e.notifyUpdated(ctx, draw)
	return scored, nil
}

// CompleteMatch decides a match and advances its winner. When this finishes
// the draw, the result emitter receives the standings in the background once
// the new state is saved; Wait blocks until those deliveries return.
func (e *Engine) CompleteMatch(ctx context.Context, drawID, matchID uuid.UUID, winner bracket.ParticipantRef) (*bracket.Match, *bracket.Draw, error) {
	var res bracket.CompleteResult
	draw, err := e.mutate(ctx, drawID, func(d *bracket.Draw) (bool, error) {
		var err error
		res, err = d.CompleteMatch(matchID, winner, e.clock.Now().UTC())
		return res.Changed, err
	})
	if err != nil {
		return nil, nil, e.fail("complete", err)
	}

	match, _ := draw.Match(matchID)
	if !res.Changed {
		return match, draw, nil
	}

	metrics.MatchTransitions.WithLabelValues("complete").Inc()
	e.logger.InfoContext(ctx, "match completed",
		"draw_id", drawID,
		"match_id", matchID,
		"round", match.Round,
		"position", match.Position,
		"winner", winner,
	)
	e.notifyUpdated(ctx, draw)

	if res.DrawCompleted {
		metrics.DrawsCompleted.WithLabelValues(string(draw.DrawType)).Inc()
		e.logger.InfoContext(ctx, "draw completed", "draw_id", drawID, "event_id", draw.EventID)
		e.emitCompleted(ctx, drawID, draw.Standings())
	}
	return match, draw, nil
}

// The emitter outlives the request, so it gets a context that keeps the
// request's values but not its cancellation.
func (e *Engine) emitCompleted(ctx context.Context, drawID uuid.UUID, standings bracket.Standings) {
	emitCtx := context.WithoutCancel(ctx)
	e.emitting.Add(1)
	go func() {
		defer e.emitting.Done()
		e.emitter.OnDrawCompleted(emitCtx, drawID, standings)
	}()
}

// Wait blocks until every pending result emission has returned.
func (e *Engine) Wait() {
	e.emitting.Wait()
}
