package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Gopher0727/Concord/internal/model"
)

func TestCanPerform(t *testing.T) {
	tests := []struct {
		name         string
		role         model.MemberRole
		op           Operation
		isOwner      bool
		isSelfTarget bool
		want         bool
	}{
		{"owner updates server", model.RoleAdmin, OpUpdateServer, true, false, true},
		{"admin member cannot update server", model.RoleAdmin, OpUpdateServer, false, false, false},
		{"owner deletes server", model.RoleAdmin, OpDeleteServer, true, false, true},
		{"moderator cannot delete server", model.RoleModerator, OpDeleteServer, false, false, false},
		{"owner rotates invite code", model.RoleAdmin, OpRotateInviteCode, true, false, true},
		{"guest cannot rotate invite code", model.RoleGuest, OpRotateInviteCode, false, false, false},

		{"owner kicks another member", model.RoleAdmin, OpKickMember, true, false, true},
		{"owner cannot kick self", model.RoleAdmin, OpKickMember, true, true, false},
		{"admin member cannot kick", model.RoleAdmin, OpKickMember, false, false, false},
		{"owner changes another member's role", model.RoleAdmin, OpChangeMemberRole, true, false, true},
		{"owner cannot change own role", model.RoleAdmin, OpChangeMemberRole, true, true, false},
		{"moderator cannot change roles", model.RoleModerator, OpChangeMemberRole, false, false, false},

		{"guest leaves", model.RoleGuest, OpLeaveServer, false, true, true},
		{"moderator leaves", model.RoleModerator, OpLeaveServer, false, true, true},
		{"owner may never leave", model.RoleAdmin, OpLeaveServer, true, true, false},
		{"non-member cannot leave", model.MemberRole(""), OpLeaveServer, false, true, false},

		{"guest reads server", model.RoleGuest, OpReadServer, false, false, true},
		{"non-member cannot read", model.MemberRole(""), OpReadServer, false, false, false},
		{"guest creates channel", model.RoleGuest, OpCreateChannel, false, false, true},
		{"non-member cannot create channel", model.MemberRole(""), OpCreateChannel, false, false, false},

		{"unknown operation is denied", model.RoleAdmin, Operation("server.destroy"), true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanPerform(tt.role, tt.op, tt.isOwner, tt.isSelfTarget)
			assert.Equal(t, tt.want, got)
		})
	}
}
