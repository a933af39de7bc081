package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
)

const memberColumns = `id, lobby_id, user_id, role, joined_at, left_at, total_time_minutes, can_evaluate`

func scanMembership(row scanner) (models.Membership, error) {
	var (
		m    models.Membership
		role string
	)
	err := row.Scan(&m.ID, &m.LobbyID, &m.UserID, &role, &m.JoinedAt, &m.LeftAt, &m.TotalTimeMinutes, &m.CanEvaluate)
	if err != nil {
		return models.Membership{}, err
	}
	m.Role = models.Role(role)
	return m, nil
}

func (s *Store) ActiveMembership(ctx context.Context, lobbyID, userID uuid.UUID) (*models.Membership, error) {
	q := `SELECT ` + memberColumns + `
	FROM lobby_members
	WHERE lobby_id = $1 AND user_id = $2 AND left_at IS NULL`
	m, err := scanMembership(s.db.QueryRow(ctx, q, lobbyID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Collaborator(err, "get active membership")
	}
	return &m, nil
}

func (s *Store) ListMemberships(ctx context.Context, lobbyID uuid.UUID) ([]models.Membership, error) {
	q := `SELECT ` + memberColumns + ` FROM lobby_members WHERE lobby_id = $1 ORDER BY joined_at`
	rows, err := s.db.Query(ctx, q, lobbyID)
	if err != nil {
		return nil, errs.Collaborator(err, "query memberships")
	}
	defer rows.Close()

	var out []models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, errs.Collaborator(err, "scan membership")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Collaborator(err, "iterate memberships")
	}
	return out, nil
}

// InsertMembership relies on the partial unique index over active records.
func (s *Store) InsertMembership(ctx context.Context, m models.Membership) error {
	q := `
	INSERT INTO lobby_members (id, lobby_id, user_id, role, joined_at, left_at, total_time_minutes, can_evaluate)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(ctx, q, m.ID, m.LobbyID, m.UserID, string(m.Role), m.JoinedAt, m.LeftAt, m.TotalTimeMinutes, m.CanEvaluate)
	if isUniqueViolation(err) {
		return errs.Conflict("user %s already active in lobby %s", m.UserID, m.LobbyID)
	}
	if err != nil {
		return errs.Collaborator(err, "insert membership")
	}
	return nil
}

func (s *Store) UpdateMembershipExit(ctx context.Context, m models.Membership) error {
	q := `
	UPDATE lobby_members
	SET left_at = $2, total_time_minutes = $3, can_evaluate = $4
	WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, q, m.ID, m.LeftAt, m.TotalTimeMinutes, m.CanEvaluate)
	if err != nil {
		return errs.Collaborator(err, "update membership exit")
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("membership %s not found", m.ID)
	}
	return nil
}

func (s *Store) DeleteMemberships(ctx context.Context, lobbyID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM lobby_members WHERE lobby_id = $1`, lobbyID); err != nil {
		return errs.Collaborator(err, "delete memberships")
	}
	return nil
}
