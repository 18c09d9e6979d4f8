package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/model"
)

// memberOrder sorts member rows by ascending privilege, ties by join order.
const memberOrder = "CASE role WHEN 'GUEST' THEN 0 WHEN 'MODERATOR' THEN 1 WHEN 'ADMIN' THEN 2 ELSE 3 END, created_at ASC, id ASC"

// IServerRepository defines the interface for server, channel and member data
// operations. All multi-row writes run inside a single transaction so that a
// failed operation leaves no partial state.
type IServerRepository interface {
	CreateWithDefaults(ctx context.Context, server *model.Server, general *model.Channel, owner *model.Member) error
	FindByID(ctx context.Context, id string) (*model.Server, error)
	FindByIDAndOwner(ctx context.Context, id, ownerProfileID string) (*model.Server, error)
	FindByInviteCode(ctx context.Context, code string) (*model.Server, error)
	UpdateNameImage(ctx context.Context, id, name, imageURL string) error
	UpdateInviteCode(ctx context.Context, id, code string) error
	Delete(ctx context.Context, id string) error
	ListByProfile(ctx context.Context, profileID string) ([]*model.Server, error)

	CreateChannel(ctx context.Context, channel *model.Channel) error
	ChannelNameExists(ctx context.Context, serverID, name string) (bool, error)
	ListChannels(ctx context.Context, serverID string) ([]*model.Channel, error)

	CreateMember(ctx context.Context, member *model.Member) error
	FindMember(ctx context.Context, serverID, profileID string) (*model.Member, error)
	FindMemberByID(ctx context.Context, serverID, memberID string) (*model.Member, error)
	DeleteMember(ctx context.Context, serverID, memberID string) error
	UpdateMemberRole(ctx context.Context, serverID, memberID string, role model.MemberRole) error
	ListMembers(ctx context.Context, serverID string) ([]*model.Member, error)
}

// ServerRepository implements IServerRepository interface
type ServerRepository struct {
	db *gorm.DB
}

// NewServerRepository creates a new IServerRepository instance
func NewServerRepository(db *gorm.DB) IServerRepository {
	return &ServerRepository{db: db}
}

// CreateWithDefaults creates a server together with its default "general"
// channel and the owner's member row in one transaction.
func (r *ServerRepository) CreateWithDefaults(ctx context.Context, server *model.Server, general *model.Channel, owner *model.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(server).Error; err != nil {
			return err
		}
		if err := tx.Create(general).Error; err != nil {
			return err
		}
		if err := tx.Create(owner).Error; err != nil {
			return err
		}
		return nil
	})
}

// FindByID finds a server by ID
func (r *ServerRepository) FindByID(ctx context.Context, id string) (*model.Server, error) {
	var server model.Server
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&server).Error
	if err != nil {
		return nil, err
	}
	return &server, nil
}

// FindByIDAndOwner finds a server by ID owned by the given profile
func (r *ServerRepository) FindByIDAndOwner(ctx context.Context, id, ownerProfileID string) (*model.Server, error) {
	var server model.Server
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_profile_id = ?", id, ownerProfileID).
		First(&server).Error
	if err != nil {
		return nil, err
	}
	return &server, nil
}

// FindByInviteCode finds a server by its current invite code
func (r *ServerRepository) FindByInviteCode(ctx context.Context, code string) (*model.Server, error) {
	var server model.Server
	err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&server).Error
	if err != nil {
		return nil, err
	}
	return &server, nil
}

// UpdateNameImage updates a server's name and image URL
func (r *ServerRepository) UpdateNameImage(ctx context.Context, id, name, imageURL string) error {
	return r.db.WithContext(ctx).
		Model(&model.Server{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "image_url": imageURL}).Error
}

// UpdateInviteCode replaces a server's invite code
func (r *ServerRepository) UpdateInviteCode(ctx context.Context, id, code string) error {
	return r.db.WithContext(ctx).
		Model(&model.Server{}).
		Where("id = ?", id).
		Update("invite_code", code).Error
}

// Delete removes a server and cascades to its channels and members.
// The cascade is explicit and ordered rather than relying on storage-engine
// cascade semantics, so behavior is identical across backends.
func (r *ServerRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("server_id = ?", id).Delete(&model.Channel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("server_id = ?", id).Delete(&model.Member{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Server{}).Error
	})
}

// ListByProfile retrieves all servers the profile is a member of
func (r *ServerRepository) ListByProfile(ctx context.Context, profileID string) ([]*model.Server, error) {
	var servers []*model.Server
	err := r.db.WithContext(ctx).
		Table("servers").
		Joins("JOIN members ON servers.id = members.server_id").
		Where("members.profile_id = ?", profileID).
		Order("servers.created_at ASC").
		Find(&servers).Error
	if err != nil {
		return nil, err
	}
	return servers, nil
}

// CreateChannel creates a new channel in the database
func (r *ServerRepository) CreateChannel(ctx context.Context, channel *model.Channel) error {
	return r.db.WithContext(ctx).Create(channel).Error
}

// ChannelNameExists checks if a channel with the given name exists in a server
func (r *ServerRepository) ChannelNameExists(ctx context.Context, serverID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Channel{}).
		Where("server_id = ? AND name = ?", serverID, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListChannels retrieves all channels of a server in creation order
func (r *ServerRepository) ListChannels(ctx context.Context, serverID string) ([]*model.Channel, error) {
	var channels []*model.Channel
	err := r.db.WithContext(ctx).
		Where("server_id = ?", serverID).
		Order("created_at ASC, id ASC").
		Find(&channels).Error
	if err != nil {
		return nil, err
	}
	return channels, nil
}

// CreateMember adds a member row to a server
func (r *ServerRepository) CreateMember(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindMember finds a member row by server and profile
func (r *ServerRepository) FindMember(ctx context.Context, serverID, profileID string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("server_id = ? AND profile_id = ?", serverID, profileID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindMemberByID finds a member row by server and member ID
func (r *ServerRepository) FindMemberByID(ctx context.Context, serverID, memberID string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("server_id = ? AND id = ?", serverID, memberID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// DeleteMember removes a member row. The server ID is part of the predicate
// so a member of another server can never be removed by mistake.
func (r *ServerRepository) DeleteMember(ctx context.Context, serverID, memberID string) error {
	return r.db.WithContext(ctx).
		Where("server_id = ? AND id = ?", serverID, memberID).
		Delete(&model.Member{}).Error
}

// UpdateMemberRole changes a member's role
func (r *ServerRepository) UpdateMemberRole(ctx context.Context, serverID, memberID string, role model.MemberRole) error {
	return r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("server_id = ? AND id = ?", serverID, memberID).
		Update("role", role).Error
}

// ListMembers retrieves all members of a server with their profiles,
// ordered by ascending role
func (r *ServerRepository) ListMembers(ctx context.Context, serverID string) ([]*model.Member, error) {
	var members []*model.Member
	err := r.db.WithContext(ctx).
		Where("server_id = ?", serverID).
		Order(memberOrder).
		Preload("Profile").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
