package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
)

func (s *Store) UsersWithHistory(ctx context.Context, lobbyID uuid.UUID, userIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool)
	if len(userIDs) == 0 {
		return out, nil
	}
	q := `SELECT user_id FROM lobby_history WHERE lobby_id = $1 AND user_id = ANY($2)`
	rows, err := s.db.Query(ctx, q, lobbyID, userIDs)
	if err != nil {
		return nil, errs.Collaborator(err, "query history users")
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, errs.Collaborator(err, "scan history user")
		}
		out[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Collaborator(err, "iterate history users")
	}
	return out, nil
}

// InsertHistory writes the batch in one transaction. A record that already
// exists for the same lobby and user is skipped.
func (s *Store) InsertHistory(ctx context.Context, recs []models.HistoryRecord) error {
	if len(recs) == 0 {
		return nil
	}
	q := `
	INSERT INTO lobby_history (id, lobby_id, user_id, lobby_title, game_mode, role, joined_at, left_at, total_time_minutes)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (lobby_id, user_id) DO NOTHING
	`
	err := pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, h := range recs {
			_, err := tx.Exec(ctx, q,
				h.ID, h.LobbyID, h.UserID, h.LobbyTitle, string(h.GameMode), string(h.Role),
				h.JoinedAt, h.LeftAt, h.TotalTimeMinutes,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errs.Collaborator(err, "insert history")
	}
	return nil
}

func (s *Store) HistoryByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.HistoryRecord, error) {
	q := `
	SELECT id, lobby_id, user_id, lobby_title, game_mode, role, joined_at, left_at, total_time_minutes
	FROM lobby_history
	WHERE user_id = $1
	ORDER BY left_at DESC
	LIMIT $2
	`
	rows, err := s.db.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, errs.Collaborator(err, "query history")
	}
	defer rows.Close()

	var out []models.HistoryRecord
	for rows.Next() {
		var (
			h          models.HistoryRecord
			mode, role string
		)
		err := rows.Scan(&h.ID, &h.LobbyID, &h.UserID, &h.LobbyTitle, &mode, &role, &h.JoinedAt, &h.LeftAt, &h.TotalTimeMinutes)
		if err != nil {
			return nil, errs.Collaborator(err, "scan history")
		}
		h.GameMode = models.GameMode(mode)
		h.Role = models.Role(role)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Collaborator(err, "iterate history")
	}
	return out, nil
}
