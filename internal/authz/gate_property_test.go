package authz

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Gopher0727/Concord/internal/model"
)

func genRole() gopter.Gen {
	return gen.OneConstOf(
		model.RoleGuest,
		model.RoleModerator,
		model.RoleAdmin,
		model.MemberRole(""),
	)
}

func genOperation() gopter.Gen {
	return gen.OneConstOf(
		OpReadServer,
		OpUpdateServer,
		OpDeleteServer,
		OpRotateInviteCode,
		OpLeaveServer,
		OpCreateChannel,
		OpKickMember,
		OpChangeMemberRole,
	)
}

func TestCanPerformProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("self-targeted kicks and role changes are always denied", prop.ForAll(
		func(role model.MemberRole, isOwner bool) bool {
			return !CanPerform(role, OpKickMember, isOwner, true) &&
				!CanPerform(role, OpChangeMemberRole, isOwner, true)
		},
		genRole(), gen.Bool(),
	))

	properties.Property("owner-only operations never pass for non-owners", prop.ForAll(
		func(role model.MemberRole, isSelfTarget bool) bool {
			ownerOnly := []Operation{OpUpdateServer, OpDeleteServer, OpRotateInviteCode, OpKickMember, OpChangeMemberRole}
			for _, op := range ownerOnly {
				if CanPerform(role, op, false, isSelfTarget) {
					return false
				}
			}
			return true
		},
		genRole(), gen.Bool(),
	))

	properties.Property("the owner can never leave", prop.ForAll(
		func(role model.MemberRole) bool {
			return !CanPerform(role, OpLeaveServer, true, true)
		},
		genRole(),
	))

	properties.Property("non-members are denied every operation", prop.ForAll(
		func(op Operation, isSelfTarget bool) bool {
			return !CanPerform(model.MemberRole(""), op, false, isSelfTarget)
		},
		genOperation(), gen.Bool(),
	))

	properties.TestingRun(t)
}
