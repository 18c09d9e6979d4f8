package model

import "time"

// ChannelType is the closed set of channel kinds.
type ChannelType string

const (
	ChannelText  ChannelType = "TEXT"
	ChannelAudio ChannelType = "AUDIO"
	ChannelVideo ChannelType = "VIDEO"
)

// Valid reports whether t is one of the enumerated channel types.
func (t ChannelType) Valid() bool {
	switch t {
	case ChannelText, ChannelAudio, ChannelVideo:
		return true
	}
	return false
}

const (
	// GeneralChannelName is the reserved default channel. At most one channel
	// with this name may exist per server.
	GeneralChannelName = "general"

	// MaxChannelNameLen bounds channel names at creation time.
	MaxChannelNameLen = 30
)

// Channel is a named communication stream within a server.
type Channel struct {
	ID               string      `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Name             string      `gorm:"not null;type:varchar(64)" json:"name"`
	Type             ChannelType `gorm:"not null;type:varchar(16);default:TEXT" json:"type"`
	ServerID         string      `gorm:"index;not null;type:varchar(32)" json:"server_id"`
	CreatorProfileID string      `gorm:"not null;type:varchar(32)" json:"creator_profile_id"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Channel) TableName() string {
	return "channels"
}
