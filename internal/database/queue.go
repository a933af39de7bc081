package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
)

const queueColumns = `id, user_id, game_mode, preferred_roles, rank_solo, rank_flex,
	required_rank_min, required_rank_max, playstyle_tags, created_at`

func scanQueueEntry(row scanner) (models.QueueEntry, error) {
	var (
		e                models.QueueEntry
		mode             string
		roles, ptags     []string
		solo, flex       *string
		rankMin, rankMax *string
	)
	err := row.Scan(
		&e.ID, &e.UserID, &mode, &roles, &solo, &flex,
		&rankMin, &rankMax, &ptags, &e.CreatedAt,
	)
	if err != nil {
		return models.QueueEntry{}, err
	}
	e.GameMode = models.GameMode(mode)
	e.PreferredRoles = decodeRoles(roles)
	e.RankSolo = decodeRank(solo)
	e.RankFlex = decodeRank(flex)
	e.RankMin = decodeRank(rankMin)
	e.RankMax = decodeRank(rankMax)
	e.PlaystyleTags = tags(ptags)
	return e, nil
}

func (s *Store) QueueByMode(ctx context.Context, mode models.GameMode, limit int) ([]models.QueueEntry, error) {
	q := `SELECT ` + queueColumns + `
	FROM queue_entries
	WHERE game_mode = $1
	ORDER BY created_at
	LIMIT $2`
	rows, err := s.db.Query(ctx, q, string(mode), limit)
	if err != nil {
		return nil, errs.Collaborator(err, "query queue")
	}
	defer rows.Close()

	var out []models.QueueEntry
	for rows.Next() {
		e, err := scanQueueEntry(rows)
		if err != nil {
			return nil, errs.Collaborator(err, "scan queue entry")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Collaborator(err, "iterate queue")
	}
	return out, nil
}

func (s *Store) QueueEntryByUser(ctx context.Context, userID uuid.UUID) (*models.QueueEntry, error) {
	q := `SELECT ` + queueColumns + ` FROM queue_entries WHERE user_id = $1`
	e, err := scanQueueEntry(s.db.QueryRow(ctx, q, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Collaborator(err, "get queue entry")
	}
	return &e, nil
}

// InsertQueueEntry relies on the unique user_id constraint to reject a second entry.
func (s *Store) InsertQueueEntry(ctx context.Context, e models.QueueEntry) error {
	q := `
	INSERT INTO queue_entries (
		id, user_id, game_mode, preferred_roles, rank_solo, rank_flex,
		required_rank_min, required_rank_max, playstyle_tags, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.Exec(ctx, q,
		e.ID, e.UserID, string(e.GameMode), encodeRoles(e.PreferredRoles),
		encodeRank(e.RankSolo), encodeRank(e.RankFlex),
		encodeRank(e.RankMin), encodeRank(e.RankMax), tags(e.PlaystyleTags), e.CreatedAt,
	)
	if isUniqueViolation(err) {
		return errs.Conflict("user %s is already queued", e.UserID)
	}
	if err != nil {
		return errs.Collaborator(err, "insert queue entry")
	}
	return nil
}

// DeleteQueueEntry reports whether the entry was still there. Two callers
// racing for the same entry see exactly one true.
func (s *Store) DeleteQueueEntry(ctx context.Context, entryID uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM queue_entries WHERE id = $1`, entryID)
	if err != nil {
		return false, errs.Collaborator(err, "delete queue entry")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteQueueEntryByUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM queue_entries WHERE user_id = $1`, userID)
	if err != nil {
		return false, errs.Collaborator(err, "delete queue entry by user")
	}
	return tag.RowsAffected() > 0, nil
}
