package model

import "time"

// Server is a tenant workspace containing channels and members.
// Exactly one profile owns it; the owner also always holds a Member row.
type Server struct {
	ID             string `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Name           string `gorm:"not null;type:varchar(255)" json:"name"`
	ImageURL       string `gorm:"not null;type:text" json:"image_url"`
	InviteCode     string `gorm:"uniqueIndex;not null;type:varchar(32)" json:"invite_code"`
	OwnerProfileID string `gorm:"index;not null;type:varchar(32)" json:"owner_profile_id"`

	Members  []*Member  `gorm:"foreignKey:ServerID" json:"members,omitempty"`
	Channels []*Channel `gorm:"foreignKey:ServerID" json:"channels,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Server) TableName() string {
	return "servers"
}
