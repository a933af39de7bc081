// internal/models/profile.go
package models

import "github.com/google/uuid"

// Profile is the public face of a user.
type Profile struct {
	UserID          uuid.UUID `json:"user_id"`
	Nickname        string    `json:"nickname"`
	IconURL         string    `json:"icon_url,omitempty"`
	RiotID          string    `json:"riot_id,omitempty"`
	RolesPreference RoleSet   `json:"roles_preference"`
	PlaystyleTags   []string  `json:"playstyle_tags"`
	RankSolo        *Rank     `json:"rank_solo,omitempty"`
	RankFlex        *Rank     `json:"rank_flex,omitempty"`

	// Placeholder is set when the profile row was missing and a stand-in was built.
	Placeholder bool `json:"placeholder,omitempty"`
}

// RankFor returns the rank relevant to mode.
func (p Profile) RankFor(mode GameMode) *Rank {
	return rankForMode(mode, p.RankSolo, p.RankFlex)
}

// PlaceholderProfile stands in for a user whose profile could not be loaded.
func PlaceholderProfile(userID uuid.UUID, nickname string) Profile {
	return Profile{
		UserID:          userID,
		Nickname:        nickname,
		RolesPreference: RoleSet{},
		PlaystyleTags:   []string{},
		Placeholder:     true,
	}
}
