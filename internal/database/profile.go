package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
)

// ProfilesByIDs loads every requested profile in one round trip.
func (s *Store) ProfilesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Profile, error) {
	out := make(map[uuid.UUID]models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := `
	SELECT user_id, nickname, icon_url, riot_id, roles_preference, playstyle_tags, rank_solo, rank_flex
	FROM profiles
	WHERE user_id = ANY($1)
	`
	rows, err := s.db.Query(ctx, q, ids)
	if err != nil {
		return nil, errs.Collaborator(err, "query profiles")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p            models.Profile
			roles, ptags []string
			solo, flex   *string
		)
		if err := rows.Scan(&p.UserID, &p.Nickname, &p.IconURL, &p.RiotID, &roles, &ptags, &solo, &flex); err != nil {
			return nil, errs.Collaborator(err, "scan profile")
		}
		p.RolesPreference = decodeRoles(roles)
		p.PlaystyleTags = tags(ptags)
		p.RankSolo = decodeRank(solo)
		p.RankFlex = decodeRank(flex)
		out[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Collaborator(err, "iterate profiles")
	}
	return out, nil
}

// UpsertProfile creates or replaces a profile row.
func (s *Store) UpsertProfile(ctx context.Context, p models.Profile) error {
	q := `
	INSERT INTO profiles (user_id, nickname, icon_url, riot_id, roles_preference, playstyle_tags, rank_solo, rank_flex)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (user_id) DO UPDATE SET
		nickname = EXCLUDED.nickname,
		icon_url = EXCLUDED.icon_url,
		riot_id = EXCLUDED.riot_id,
		roles_preference = EXCLUDED.roles_preference,
		playstyle_tags = EXCLUDED.playstyle_tags,
		rank_solo = EXCLUDED.rank_solo,
		rank_flex = EXCLUDED.rank_flex,
		updated_at = NOW()
	`
	_, err := s.db.Exec(ctx, q,
		p.UserID, p.Nickname, p.IconURL, p.RiotID,
		encodeRoles(p.RolesPreference), tags(p.PlaystyleTags),
		encodeRank(p.RankSolo), encodeRank(p.RankFlex),
	)
	if err != nil {
		return errs.Collaborator(err, "upsert profile")
	}
	return nil
}
