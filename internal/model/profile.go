package model

import "time"

// Profile is the application-level user record bound to an external identity.
// It is created lazily on first authenticated access; the external UserID is
// immutable and its lifecycle is owned by the identity provider.
type Profile struct {
	ID       string `gorm:"primaryKey;type:varchar(32)" json:"id"`
	UserID   string `gorm:"uniqueIndex;not null;type:varchar(64)" json:"user_id"`
	Name     string `gorm:"not null;type:varchar(255)" json:"name"`
	ImageURL string `gorm:"type:text" json:"image_url"`
	Email    string `gorm:"type:varchar(255)" json:"email"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
