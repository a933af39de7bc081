package database

import (
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/samber/lo"
)

// Stored enum columns are decoded leniently: a value written by an older
// build that no longer parses is dropped rather than failing the whole read.

func decodeRank(s *string) *models.Rank {
	if s == nil {
		return nil
	}
	r, err := models.ParseOptionalRank(*s)
	if err != nil {
		return nil
	}
	return r
}

func encodeRank(r *models.Rank) *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}

func decodeRoles(in []string) models.RoleSet {
	out := models.RoleSet{}
	for _, s := range in {
		r, err := models.ParseRole(s)
		if err != nil || out.Contains(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func encodeRoles(rs models.RoleSet) []string {
	return lo.Map(rs, func(r models.Role, _ int) string { return string(r) })
}

func tags(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
