// Package authz is the pure decision layer consulted by the membership
// service before any mutation. It has no storage access and no side effects;
// callers translate a false result into a forbidden error.
package authz

import "github.com/Gopher0727/Concord/internal/model"

// Operation identifies a guarded membership operation.
type Operation string

const (
	OpReadServer       Operation = "server.read"
	OpUpdateServer     Operation = "server.update"
	OpDeleteServer     Operation = "server.delete"
	OpRotateInviteCode Operation = "server.rotate_invite"
	OpLeaveServer      Operation = "server.leave"
	OpCreateChannel    Operation = "channel.create"
	OpKickMember       Operation = "member.kick"
	OpChangeMemberRole Operation = "member.change_role"
)

// CanPerform decides whether an actor may perform op.
//
// actorRole is the actor's role in the target server; callers pass an invalid
// role when the actor is not a member at all. isOwner reports whether the
// actor owns the server, isSelfTarget whether the operation targets the
// actor's own member row.
//
// The privilege model is deliberately owner-centric: kicks and role changes
// are granted solely to the server owner, not to ADMIN members. Self-targeted
// kicks and role changes are always denied; leaving is the only way to remove
// oneself, and the owner may never leave (an owner deletes instead).
func CanPerform(actorRole model.MemberRole, op Operation, isOwner, isSelfTarget bool) bool {
	switch op {
	case OpUpdateServer, OpDeleteServer, OpRotateInviteCode:
		return isOwner
	case OpKickMember, OpChangeMemberRole:
		if isSelfTarget {
			return false
		}
		return isOwner
	case OpLeaveServer:
		if isOwner {
			return false
		}
		return actorRole.Valid()
	case OpReadServer, OpCreateChannel:
		return actorRole.Valid()
	}
	return false
}
