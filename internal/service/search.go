package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/model"
	"github.com/Gopher0727/Concord/internal/repository"
)

// IndexEntry is one searchable item in a server index.
type IndexEntry struct {
	ID   string           `json:"id"`
	Name string           `json:"name"`
	Role model.MemberRole `json:"role,omitempty"`
}

// IndexSection groups entries of one kind, mirroring the sections of the
// interactive search dialog.
type IndexSection struct {
	Label   string       `json:"label"`
	Entries []IndexEntry `json:"entries"`
}

// ServerIndex is a read-only, flattened snapshot of a server's channels and
// members for interactive lookup.
type ServerIndex struct {
	ServerID string         `json:"server_id"`
	Sections []IndexSection `json:"sections"`
}

// ISearchService builds search snapshots from membership state.
type ISearchService interface {
	BuildServerIndex(ctx context.Context, profileID, serverID string) (*ServerIndex, error)
}

// SearchService implements ISearchService on read-only repository snapshots.
type SearchService struct {
	servers repository.IServerRepository
}

// NewSearchService creates a new ISearchService instance.
func NewSearchService(servers repository.IServerRepository) ISearchService {
	return &SearchService{servers: servers}
}

// BuildServerIndex flattens a server's channels (grouped by type) and
// members (with roles) into sections. The caller must be a member.
func (s *SearchService) BuildServerIndex(ctx context.Context, profileID, serverID string) (*ServerIndex, error) {
	if _, err := s.servers.FindByID(ctx, serverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrInternal
	}
	if _, err := s.servers.FindMember(ctx, serverID, profileID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, ErrInternal
	}

	channels, err := s.servers.ListChannels(ctx, serverID)
	if err != nil {
		return nil, ErrInternal
	}
	members, err := s.servers.ListMembers(ctx, serverID)
	if err != nil {
		return nil, ErrInternal
	}

	sections := []IndexSection{
		{Label: "Text Channels"},
		{Label: "Audio Channels"},
		{Label: "Video Channels"},
		{Label: "Members"},
	}
	for _, ch := range channels {
		entry := IndexEntry{ID: ch.ID, Name: ch.Name}
		switch ch.Type {
		case model.ChannelText:
			sections[0].Entries = append(sections[0].Entries, entry)
		case model.ChannelAudio:
			sections[1].Entries = append(sections[1].Entries, entry)
		case model.ChannelVideo:
			sections[2].Entries = append(sections[2].Entries, entry)
		}
	}
	for _, m := range members {
		name := m.ProfileID
		if m.Profile != nil {
			name = m.Profile.Name
		}
		sections[3].Entries = append(sections[3].Entries, IndexEntry{ID: m.ID, Name: name, Role: m.Role})
	}

	return &ServerIndex{ServerID: serverID, Sections: sections}, nil
}
