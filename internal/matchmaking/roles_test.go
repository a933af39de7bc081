package matchmaking

import (
	"testing"

	"github.com/jason-s-yu/premade/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRolesOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b models.RoleSet
		want bool
	}{
		{"shared role", roles(models.RoleMid, models.RoleTop), roles(models.RoleTop), true},
		{"disjoint", roles(models.RoleMid), roles(models.RoleADC), false},
		{"fill left", roles(models.RoleFill), roles(models.RoleSupport), true},
		{"fill right", roles(models.RoleJungle), roles(models.RoleFill), true},
		{"fill against empty", roles(models.RoleFill), roles(), true},
		{"both empty", roles(), roles(), false},
		{"one empty", roles(models.RoleMid), roles(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RolesOverlap(tt.a, tt.b))
			assert.Equal(t, tt.want, RolesOverlap(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

func TestPickSharedRole(t *testing.T) {
	tests := []struct {
		name     string
		lobby    models.RoleSet
		player   models.RoleSet
		want     models.Role
		wantSome bool
	}{
		{"lobby fill takes player's first", roles(models.RoleFill), roles(models.RoleSupport, models.RoleMid), models.RoleSupport, true},
		{"player fill takes lobby's first", roles(models.RoleJungle, models.RoleTop), roles(models.RoleFill), models.RoleJungle, true},
		{"lobby order wins", roles(models.RoleADC, models.RoleMid), roles(models.RoleMid, models.RoleADC), models.RoleADC, true},
		{"no overlap", roles(models.RoleTop), roles(models.RoleMid), "", false},
		{"lobby fill, player empty", roles(models.RoleFill), roles(), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickSharedRole(tt.lobby, tt.player)
			assert.Equal(t, tt.wantSome, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
