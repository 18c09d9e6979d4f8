package model

import "time"

// MemberRole is the closed set of roles a member can hold.
// Ordering for display is ascending privilege: GUEST < MODERATOR < ADMIN.
type MemberRole string

const (
	RoleGuest     MemberRole = "GUEST"
	RoleModerator MemberRole = "MODERATOR"
	RoleAdmin     MemberRole = "ADMIN"
)

// Valid reports whether r is one of the enumerated roles.
// Unrecognized values are rejected at every entry point, never coerced.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleGuest, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Rank returns the sort rank of the role, lowest privilege first.
func (r MemberRole) Rank() int {
	switch r {
	case RoleGuest:
		return 0
	case RoleModerator:
		return 1
	case RoleAdmin:
		return 2
	}
	return -1
}

// Member is the role-bearing relationship between a profile and a server.
// The composite unique index guarantees at most one row per (profile, server).
type Member struct {
	ID        string     `gorm:"primaryKey;type:varchar(32)" json:"id"`
	ProfileID string     `gorm:"not null;type:varchar(32);uniqueIndex:idx_members_profile_server" json:"profile_id"`
	ServerID  string     `gorm:"not null;index;type:varchar(32);uniqueIndex:idx_members_profile_server" json:"server_id"`
	Role      MemberRole `gorm:"not null;type:varchar(16);default:GUEST" json:"role"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Member) TableName() string {
	return "members"
}
