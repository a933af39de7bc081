// internal/matchmaking/roles.go
package matchmaking

import (
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/samber/lo"
)

// RolesOverlap is true when either side is willing to fill, otherwise when the
// sets share at least one role. Two empty sets never overlap.
func RolesOverlap(a, b models.RoleSet) bool {
	if a.HasFill() || b.HasFill() {
		return true
	}
	return len(lo.Intersect(a, b)) > 0
}

// PickSharedRole chooses the role a player takes when joining a lobby.
// lobbyRoles is searched first, so its order decides ties.
func PickSharedRole(lobbyRoles, playerRoles models.RoleSet) (models.Role, bool) {
	switch {
	case lobbyRoles.HasFill():
		if len(playerRoles) == 0 {
			return "", false
		}
		return playerRoles[0], true
	case playerRoles.HasFill():
		if len(lobbyRoles) == 0 {
			return "", false
		}
		return lobbyRoles[0], true
	}
	return lo.Find(lobbyRoles, playerRoles.Contains)
}

// sharesExactRole reports a common role other than fill.
func sharesExactRole(a, b models.RoleSet) bool {
	return lo.SomeBy(a, func(r models.Role) bool {
		return r != models.RoleFill && b.Contains(r)
	})
}

// sharedTags counts distinct tags present on both sides.
func sharedTags(a, b []string) int {
	return len(lo.Intersect(lo.Uniq(a), lo.Uniq(b)))
}
