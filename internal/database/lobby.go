package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
)

const lobbyColumns = `id, creator_id, title, description, game_mode, preferred_roles,
	required_rank_min, required_rank_max, playstyle_tags,
	current_members, max_members, status, scheduled_time, created_at, updated_at`

func scanLobby(row scanner) (models.Lobby, error) {
	var (
		l                models.Lobby
		mode, status     string
		roles, ptags     []string
		rankMin, rankMax *string
	)
	err := row.Scan(
		&l.ID, &l.CreatorID, &l.Title, &l.Description, &mode, &roles,
		&rankMin, &rankMax, &ptags,
		&l.CurrentMembers, &l.MaxMembers, &status, &l.ScheduledTime, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return models.Lobby{}, err
	}
	l.GameMode = models.GameMode(mode)
	l.Status = models.LobbyStatus(status)
	l.PreferredRoles = decodeRoles(roles)
	l.RankMin = decodeRank(rankMin)
	l.RankMax = decodeRank(rankMax)
	l.PlaystyleTags = tags(ptags)
	return l, nil
}

func collectLobbies(rows pgx.Rows) ([]models.Lobby, error) {
	defer rows.Close()
	var out []models.Lobby
	for rows.Next() {
		l, err := scanLobby(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// InsertLobby creates a new lobby row.
func (s *Store) InsertLobby(ctx context.Context, l models.Lobby) error {
	q := `
	INSERT INTO lobbies (
		id, creator_id, title, description, game_mode, preferred_roles,
		required_rank_min, required_rank_max, playstyle_tags,
		current_members, max_members, status, scheduled_time, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6,
	        $7, $8, $9,
	        $10, $11, $12, $13, $14, $15)
	`
	err := pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q,
			l.ID, l.CreatorID, l.Title, l.Description, string(l.GameMode), encodeRoles(l.PreferredRoles),
			encodeRank(l.RankMin), encodeRank(l.RankMax), tags(l.PlaystyleTags),
			l.CurrentMembers, l.MaxMembers, string(l.Status), l.ScheduledTime, l.CreatedAt, l.UpdatedAt,
		)
		return err
	})
	if isUniqueViolation(err) {
		return errs.Conflict("lobby %s already exists", l.ID)
	}
	if err != nil {
		return errs.Collaborator(err, "insert lobby")
	}
	return nil
}

// GetLobby fetches a lobby by ID.
func (s *Store) GetLobby(ctx context.Context, lobbyID uuid.UUID) (models.Lobby, error) {
	q := `SELECT ` + lobbyColumns + ` FROM lobbies WHERE id = $1`
	l, err := scanLobby(s.db.QueryRow(ctx, q, lobbyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Lobby{}, errs.NotFound("lobby %s not found", lobbyID)
	}
	if err != nil {
		return models.Lobby{}, errs.Collaborator(err, "get lobby")
	}
	return l, nil
}

func (s *Store) LobbiesByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Lobby, error) {
	q := `SELECT ` + lobbyColumns + `
	FROM lobbies
	WHERE creator_id = $1 AND status <> 'cancelled'
	ORDER BY created_at`
	rows, err := s.db.Query(ctx, q, creatorID)
	if err != nil {
		return nil, errs.Collaborator(err, "query lobbies by creator")
	}
	out, err := collectLobbies(rows)
	if err != nil {
		return nil, errs.Collaborator(err, "scan lobbies by creator")
	}
	return out, nil
}

func (s *Store) OpenLobbies(ctx context.Context, mode models.GameMode, limit int) ([]models.Lobby, error) {
	q := `SELECT ` + lobbyColumns + `
	FROM lobbies
	WHERE game_mode = $1 AND status = 'waiting' AND current_members < max_members
	ORDER BY created_at
	LIMIT $2`
	rows, err := s.db.Query(ctx, q, string(mode), limit)
	if err != nil {
		return nil, errs.Collaborator(err, "query open lobbies")
	}
	out, err := collectLobbies(rows)
	if err != nil {
		return nil, errs.Collaborator(err, "scan open lobbies")
	}
	return out, nil
}

// IncrementMembers takes one slot in a single conditional update, so two
// concurrent joins can never push current_members past max_members.
func (s *Store) IncrementMembers(ctx context.Context, lobbyID uuid.UUID) (bool, error) {
	q := `
	UPDATE lobbies
	SET current_members = current_members + 1,
	    status = CASE WHEN current_members + 1 >= max_members THEN 'full' ELSE status END,
	    updated_at = NOW()
	WHERE id = $1 AND status = 'waiting' AND current_members < max_members
	`
	tag, err := s.db.Exec(ctx, q, lobbyID)
	if err != nil {
		return false, errs.Collaborator(err, "increment lobby members")
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) DecrementMembers(ctx context.Context, lobbyID uuid.UUID) error {
	q := `
	UPDATE lobbies
	SET current_members = GREATEST(current_members - 1, 0),
	    status = CASE WHEN status = 'full' THEN 'waiting' ELSE status END,
	    updated_at = NOW()
	WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, q, lobbyID)
	if err != nil {
		return errs.Collaborator(err, "decrement lobby members")
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("lobby %s not found", lobbyID)
	}
	return nil
}

func (s *Store) SetLobbyStatus(ctx context.Context, lobbyID uuid.UUID, status models.LobbyStatus) error {
	q := `UPDATE lobbies SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := s.db.Exec(ctx, q, lobbyID, string(status))
	if err != nil {
		return errs.Collaborator(err, "set lobby status")
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("lobby %s not found", lobbyID)
	}
	return nil
}
