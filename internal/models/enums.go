// internal/models/enums.go
package models

import (
	"strings"

	"github.com/jason-s-yu/premade/internal/errs"
)

// Rank is a League of Legends competitive tier.
type Rank string

const (
	RankIron        Rank = "iron"
	RankBronze      Rank = "bronze"
	RankSilver      Rank = "silver"
	RankGold        Rank = "gold"
	RankPlatinum    Rank = "platinum"
	RankEmerald     Rank = "emerald"
	RankDiamond     Rank = "diamond"
	RankMaster      Rank = "master"
	RankGrandmaster Rank = "grandmaster"
	RankChallenger  Rank = "challenger"
)

// Ranks lists every tier from lowest to highest.
var Ranks = []Rank{
	RankIron, RankBronze, RankSilver, RankGold, RankPlatinum,
	RankEmerald, RankDiamond, RankMaster, RankGrandmaster, RankChallenger,
}

// ParseRank validates s as a Rank. Input is case-insensitive.
func ParseRank(s string) (Rank, error) {
	r := Rank(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Ranks {
		if r == known {
			return r, nil
		}
	}
	return "", errs.Validation("unknown rank %q", s)
}

// ParseOptionalRank returns nil for an empty string.
func ParseOptionalRank(s string) (*Rank, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	r, err := ParseRank(s)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Role is a lane position. RoleFill matches any role.
type Role string

const (
	RoleTop     Role = "top"
	RoleJungle  Role = "jungle"
	RoleMid     Role = "mid"
	RoleADC     Role = "adc"
	RoleSupport Role = "support"
	RoleFill    Role = "fill"
)

var roles = []Role{RoleTop, RoleJungle, RoleMid, RoleADC, RoleSupport, RoleFill}

// ParseRole validates s as a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range roles {
		if r == known {
			return r, nil
		}
	}
	return "", errs.Validation("unknown role %q", s)
}

// RoleSet is an ordered collection of roles. Order matters when picking a shared role.
type RoleSet []Role

// ParseRoleSet validates every entry and drops duplicates, keeping first occurrence.
func ParseRoleSet(in []string) (RoleSet, error) {
	out := make(RoleSet, 0, len(in))
	for _, s := range in {
		r, err := ParseRole(s)
		if err != nil {
			return nil, err
		}
		if !out.Contains(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Contains reports whether r is in the set.
func (rs RoleSet) Contains(r Role) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// HasFill reports whether the set includes the wildcard.
func (rs RoleSet) HasFill() bool { return rs.Contains(RoleFill) }

// GameMode is a queue type.
type GameMode string

const (
	ModeRankedSoloDuo GameMode = "ranked_solo_duo"
	ModeRankedFlex    GameMode = "ranked_flex"
	ModeNormalDraft   GameMode = "normal_draft"
	ModeARAM          GameMode = "aram"
)

var modes = []GameMode{ModeRankedSoloDuo, ModeRankedFlex, ModeNormalDraft, ModeARAM}

// ParseGameMode validates s as a GameMode.
func ParseGameMode(s string) (GameMode, error) {
	m := GameMode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range modes {
		if m == known {
			return m, nil
		}
	}
	return "", errs.Validation("unknown game mode %q", s)
}

// LobbyStatus is the lifecycle state of a lobby.
type LobbyStatus string

const (
	LobbyWaiting   LobbyStatus = "waiting"
	LobbyFull      LobbyStatus = "full"
	LobbyCancelled LobbyStatus = "cancelled"
)

// ParseLobbyStatus validates s as a LobbyStatus.
func ParseLobbyStatus(s string) (LobbyStatus, error) {
	switch st := LobbyStatus(s); st {
	case LobbyWaiting, LobbyFull, LobbyCancelled:
		return st, nil
	}
	return "", errs.Validation("unknown lobby status %q", s)
}

// rankForMode picks the flex rank for ranked_flex and the solo rank otherwise.
func rankForMode(mode GameMode, solo, flex *Rank) *Rank {
	if mode == ModeRankedFlex {
		return flex
	}
	return solo
}
