package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
)

// InsertEvents persists a batch of matchmaking events in a single transaction.
func (s *Store) InsertEvents(ctx context.Context, evs []models.MatchEvent) error {
	if len(evs) == 0 {
		return nil
	}
	q := `
	INSERT INTO matchmaking_events (event_type, viewer_id, proposal_id, lobby_id, user_id, score, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	err := pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, ev := range evs {
			_, err := tx.Exec(ctx, q,
				string(ev.Type), ev.ViewerID, ev.ProposalID, ev.LobbyID, ev.UserID, ev.Score,
				time.UnixMilli(ev.Timestamp).UTC(),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errs.Collaborator(err, "insert matchmaking events")
	}
	return nil
}
