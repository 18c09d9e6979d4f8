package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/authz"
	"github.com/Gopher0727/Concord/internal/cache"
	"github.com/Gopher0727/Concord/internal/events"
	"github.com/Gopher0727/Concord/internal/locks"
	"github.com/Gopher0727/Concord/internal/model"
	"github.com/Gopher0727/Concord/internal/repository"
	"github.com/Gopher0727/Concord/internal/utils"
	"github.com/Gopher0727/Concord/utils/bloom"
	"github.com/Gopher0727/Concord/utils/snowflake"
)

// IMembershipService defines the membership engine: every mutation of the
// server/channel/member space goes through here. Each operation is a single
// logically atomic transaction; concurrent callers never observe partial
// state.
type IMembershipService interface {
	CreateServer(ctx context.Context, profileID, name, imageURL string) (*model.Server, error)
	UpdateServer(ctx context.Context, profileID, serverID, name, imageURL string) (*model.Server, error)
	DeleteServer(ctx context.Context, profileID, serverID string) error
	RotateInviteCode(ctx context.Context, profileID, serverID string) (*model.Server, error)
	JoinByInviteCode(ctx context.Context, profileID, inviteCode string) (*model.Server, error)
	LeaveServer(ctx context.Context, profileID, serverID string) error
	CreateChannel(ctx context.Context, profileID, serverID, name string, channelType model.ChannelType) (*model.Channel, error)
	KickMember(ctx context.Context, profileID, serverID, memberID string) (*model.Server, error)
	ChangeMemberRole(ctx context.Context, profileID, serverID, memberID string, role model.MemberRole) (*model.Server, error)
	GetServer(ctx context.Context, profileID, serverID string) (*model.Server, error)
	ListUserServers(ctx context.Context, profileID string) ([]*model.Server, error)
}

// MembershipService implements IMembershipService.
//
// Per-server serialization comes from the striped lock manager: every
// mutation of a server acquires that server's stripe before reading, so
// check-then-act sequences (general-channel existence, member lookups
// followed by deletes) cannot interleave.
type MembershipService struct {
	servers  repository.IServerRepository
	ids      *snowflake.Generator
	locks    *locks.Manager
	invites  *cache.InviteCache // optional
	producer *events.Producer   // optional, nil in degraded mode
	pool     *utils.WorkerPool  // optional, publishes events off the request path
	seen     *bloom.Filter      // negative cache of issued invite codes
	logger   *zap.Logger
}

// NewMembershipService creates a new IMembershipService instance. invites,
// producer and pool may be nil; the engine degrades to direct database
// lookups and synchronous (or no) event publishing.
func NewMembershipService(
	servers repository.IServerRepository,
	ids *snowflake.Generator,
	lockMgr *locks.Manager,
	invites *cache.InviteCache,
	producer *events.Producer,
	pool *utils.WorkerPool,
	logger *zap.Logger,
) IMembershipService {
	return &MembershipService{
		servers:  servers,
		ids:      ids,
		locks:    lockMgr,
		invites:  invites,
		producer: producer,
		pool:     pool,
		seen:     bloom.NewWithEstimates(1<<20, 0.01),
		logger:   logger,
	}
}

// CreateServer creates a server, its default "general" TEXT channel, and the
// owner's member row in one transaction. The owner is auto-enrolled with the
// highest-privilege role.
func (s *MembershipService) CreateServer(ctx context.Context, profileID, name, imageURL string) (*model.Server, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "server name is required"}
	}
	if imageURL == "" {
		return nil, &ValidationError{Field: "image_url", Reason: "server image is required"}
	}

	code, err := s.generateUniqueInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	server := &model.Server{
		ID:             s.newID(),
		Name:           name,
		ImageURL:       imageURL,
		InviteCode:     code,
		OwnerProfileID: profileID,
	}
	general := &model.Channel{
		ID:               s.newID(),
		Name:             model.GeneralChannelName,
		Type:             model.ChannelText,
		ServerID:         server.ID,
		CreatorProfileID: profileID,
	}
	owner := &model.Member{
		ID:        s.newID(),
		ProfileID: profileID,
		ServerID:  server.ID,
		Role:      model.RoleAdmin,
	}

	if err := s.servers.CreateWithDefaults(ctx, server, general, owner); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("invite code collision: %w", ErrConflict)
		}
		return nil, s.internal(ctx, "create server", err)
	}

	s.seen.Add(code)
	s.cacheInvite(ctx, code, server.ID)
	s.publish(events.Event{Type: events.ServerCreated, ServerID: server.ID, ActorProfileID: profileID})

	return s.loadAggregate(ctx, server.ID)
}

// UpdateServer renames or re-images a server. Ownership is required; servers
// the actor does not own are reported as absent, matching the lookup by
// id+owner.
func (s *MembershipService) UpdateServer(ctx context.Context, profileID, serverID, name, imageURL string) (*model.Server, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "server name is required"}
	}
	if imageURL == "" {
		return nil, &ValidationError{Field: "image_url", Reason: "server image is required"}
	}

	s.locks.Lock(serverID)
	defer s.locks.Unlock(serverID)

	server, err := s.servers.FindByIDAndOwner(ctx, serverID, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.internal(ctx, "find server", err)
	}

	if !authz.CanPerform(model.RoleAdmin, authz.OpUpdateServer, server.OwnerProfileID == profileID, false) {
		return nil, ErrForbidden
	}

	if err := s.servers.UpdateNameImage(ctx, serverID, name, imageURL); err != nil {
		return nil, s.internal(ctx, "update server", err)
	}

	s.publish(events.Event{Type: events.ServerUpdated, ServerID: serverID, ActorProfileID: profileID})
	return s.loadAggregate(ctx, serverID)
}

// DeleteServer deletes a server and cascades to its channels and members.
func (s *MembershipService) DeleteServer(ctx context.Context, profileID, serverID string) error {
	s.locks.Lock(serverID)
	defer s.locks.Unlock(serverID)

	server, err := s.servers.FindByID(ctx, serverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return s.internal(ctx, "find server", err)
	}

	role := s.actorRole(ctx, serverID, profileID)
	if !authz.CanPerform(role, authz.OpDeleteServer, server.OwnerProfileID == profileID, false) {
		return ErrForbidden
	}

	if err := s.servers.Delete(ctx, serverID); err != nil {
		return s.internal(ctx, "delete server", err)
	}

	s.invalidateInvite(ctx, server.InviteCode)
	s.publish(events.Event{Type: events.ServerDeleted, ServerID: serverID, ActorProfileID: profileID})
	return nil
}

// RotateInviteCode replaces the invite code with a fresh unique token. The
// old code stops granting access immediately.
func (s *MembershipService) RotateInviteCode(ctx context.Context, profileID, serverID string) (*model.Server, error) {
	s.locks.Lock(serverID)
	defer s.locks.Unlock(serverID)

	server, err := s.servers.FindByID(ctx, serverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.internal(ctx, "find server", err)
	}

	role := s.actorRole(ctx, serverID, profileID)
	if !authz.CanPerform(role, authz.OpRotateInviteCode, server.OwnerProfileID == profileID, false) {
		return nil, ErrForbidden
	}

	code, err := s.generateUniqueInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.servers.UpdateInviteCode(ctx, serverID, code); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("invite code collision: %w", ErrConflict)
		}
		return nil, s.internal(ctx, "rotate invite code", err)
	}

	// Old code is dropped before the new one is cached so a stale entry can
	// never grant access.
	s.invalidateInvite(ctx, server.InviteCode)
	s.seen.Add(code)
	s.cacheInvite(ctx, code, serverID)
	s.publish(events.Event{Type: events.InviteRotated, ServerID: serverID, ActorProfileID: profileID})

	return s.loadAggregate(ctx, serverID)
}

// JoinByInviteCode adds the actor as a GUEST member of the server behind the
// code. Joining a server the actor already belongs to is idempotent.
func (s *MembershipService) JoinByInviteCode(ctx context.Context, profileID, inviteCode string) (*model.Server, error) {
	server, err := s.resolveInvite(ctx, inviteCode)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(server.ID)
	defer s.locks.Unlock(server.ID)

	if _, err := s.servers.FindMember(ctx, server.ID, profileID); err == nil {
		return s.loadAggregate(ctx, server.ID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.internal(ctx, "find member", err)
	}

	member := &model.Member{
		ID:        s.newID(),
		ProfileID: profileID,
		ServerID:  server.ID,
		Role:      model.RoleGuest,
	}
	if err := s.servers.CreateMember(ctx, member); err != nil {
		// A concurrent join of the same profile hit the unique index first;
		// the outcome the caller asked for already holds.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.loadAggregate(ctx, server.ID)
		}
		return nil, s.internal(ctx, "add member", err)
	}

	s.publish(events.Event{Type: events.MemberJoined, ServerID: server.ID, ActorProfileID: profileID, TargetMemberID: member.ID})
	return s.loadAggregate(ctx, server.ID)
}

// LeaveServer removes the actor's own member row. The owner may never leave;
// an owner deletes the server instead.
func (s *MembershipService) LeaveServer(ctx context.Context, profileID, serverID string) error {
	s.locks.Lock(serverID)
	defer s.locks.Unlock(serverID)

	server, err := s.servers.FindByID(ctx, serverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return s.internal(ctx, "find server", err)
	}

	member, err := s.servers.FindMember(ctx, serverID, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return s.internal(ctx, "find member", err)
	}

	if !authz.CanPerform(member.Role, authz.OpLeaveServer, server.OwnerProfileID == profileID, true) {
		return ErrForbidden
	}

	if err := s.servers.DeleteMember(ctx, serverID, member.ID); err != nil {
		return s.internal(ctx, "remove member", err)
	}

	s.publish(events.Event{Type: events.MemberLeft, ServerID: serverID, ActorProfileID: profileID, TargetMemberID: member.ID})
	return nil
}

// CreateChannel creates a channel in a server the actor is a member of.
// Only one channel named "general" may ever exist per server; the existence
// check and the insert run under the server's lock, so two concurrent
// creations cannot both succeed.
func (s *MembershipService) CreateChannel(ctx context.Context, profileID, serverID, name string, channelType model.ChannelType) (*model.Channel, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "channel name is required"}
	}
	if len(name) > model.MaxChannelNameLen {
		return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("channel name must be at most %d characters", model.MaxChannelNameLen)}
	}
	if !channelType.Valid() {
		return nil, &ValidationError{Field: "type", Reason: "invalid channel type"}
	}

	s.locks.Lock(serverID)
	defer s.locks.Unlock(serverID)

	if _, err := s.servers.FindByID(ctx, serverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.internal(ctx, "find server", err)
	}

	member, err := s.servers.FindMember(ctx, serverID, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, s.internal(ctx, "find member", err)
	}

	if !authz.CanPerform(member.Role, authz.OpCreateChannel, false, false) {
		return nil, ErrForbidden
	}

	if name == model.GeneralChannelName {
		exists, err := s.servers.ChannelNameExists(ctx, serverID, model.GeneralChannelName)
		if err != nil {
			return nil, s.internal(ctx, "check general channel", err)
		}
		if exists {
			return nil, fmt.Errorf("a general channel already exists: %w", ErrConflict)
		}
	}

	channel := &model.Channel{
		ID:               s.newID(),
		Name:             name,
		Type:             channelType,
		ServerID:         serverID,
		CreatorProfileID: profileID,
	}
	if err := s.servers.CreateChannel(ctx, channel); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("a general channel already exists: %w", ErrConflict)
		}
		return nil, s.internal(ctx, "create channel", err)
	}

	s.publish(events.Event{Type: events.ChannelCreated, ServerID: serverID, ActorProfileID: profileID, ChannelID: channel.ID})
	return channel, nil
}

// KickMember removes a member from a server. Only the owner may kick, and
// never their own row.
func (s *MembershipService) KickMember(ctx context.Context, profileID, serverID, memberID string) (*model.Server, error) {
	s.locks.Lock(serverID)
	defer s.locks.Unlock(serverID)

	server, err := s.servers.FindByID(ctx, serverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.internal(ctx, "find server", err)
	}

	target, err := s.servers.FindMemberByID(ctx, serverID, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.internal(ctx, "find target member", err)
	}

	role := s.actorRole(ctx, serverID, profileID)
	isOwner := server.OwnerProfileID == profileID
	if !authz.CanPerform(role, authz.OpKickMember, isOwner, target.ProfileID == profileID) {
		return nil, ErrForbidden
	}

	if err := s.servers.DeleteMember(ctx, serverID, memberID); err != nil {
		return nil, s.internal(ctx, "remove member", err)
	}

	s.publish(events.Event{Type: events.MemberKicked, ServerID: serverID, ActorProfileID: profileID, TargetMemberID: memberID})
	return s.loadAggregate(ctx, serverID)
}

// ChangeMemberRole sets a member's role. Only the owner may change roles, and
// never their own.
func (s *MembershipService) ChangeMemberRole(ctx context.Context, profileID, serverID, memberID string, role model.MemberRole) (*model.Server, error) {
	if !role.Valid() {
		return nil, &ValidationError{Field: "role", Reason: "invalid member role"}
	}

	s.locks.Lock(serverID)
	defer s.locks.Unlock(serverID)

	server, err := s.servers.FindByID(ctx, serverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.internal(ctx, "find server", err)
	}

	target, err := s.servers.FindMemberByID(ctx, serverID, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.internal(ctx, "find target member", err)
	}

	actorRole := s.actorRole(ctx, serverID, profileID)
	isOwner := server.OwnerProfileID == profileID
	if !authz.CanPerform(actorRole, authz.OpChangeMemberRole, isOwner, target.ProfileID == profileID) {
		return nil, ErrForbidden
	}

	if err := s.servers.UpdateMemberRole(ctx, serverID, memberID, role); err != nil {
		return nil, s.internal(ctx, "update member role", err)
	}

	s.publish(events.Event{Type: events.MemberRoleChanged, ServerID: serverID, ActorProfileID: profileID, TargetMemberID: memberID, Role: role})
	return s.loadAggregate(ctx, serverID)
}

// GetServer returns the server aggregate with ordered members and channels.
// Membership is required.
func (s *MembershipService) GetServer(ctx context.Context, profileID, serverID string) (*model.Server, error) {
	if _, err := s.servers.FindByID(ctx, serverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.internal(ctx, "find server", err)
	}

	member, err := s.servers.FindMember(ctx, serverID, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, s.internal(ctx, "find member", err)
	}

	if !authz.CanPerform(member.Role, authz.OpReadServer, false, false) {
		return nil, ErrForbidden
	}
	return s.loadAggregate(ctx, serverID)
}

// ListUserServers returns all servers the profile belongs to.
func (s *MembershipService) ListUserServers(ctx context.Context, profileID string) ([]*model.Server, error) {
	servers, err := s.servers.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, s.internal(ctx, "list servers", err)
	}
	return servers, nil
}

// resolveInvite maps an invite code to its server, consulting the cache
// first. A cached entry is re-verified against the authoritative row so a
// rotated code never grants access.
func (s *MembershipService) resolveInvite(ctx context.Context, code string) (*model.Server, error) {
	if code == "" {
		return nil, ErrNotFound
	}

	if s.invites != nil {
		serverID, ok, err := s.invites.Get(ctx, code)
		if err != nil {
			s.logger.Warn("invite cache lookup failed", zap.Error(err))
		} else if ok {
			server, err := s.servers.FindByID(ctx, serverID)
			if err == nil && server.InviteCode == code {
				return server, nil
			}
		}
	}

	server, err := s.servers.FindByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.internal(ctx, "find server by invite code", err)
	}

	s.cacheInvite(ctx, code, server.ID)
	return server, nil
}

// actorRole returns the actor's role in the server, or an invalid role when
// the actor is not a member.
func (s *MembershipService) actorRole(ctx context.Context, serverID, profileID string) model.MemberRole {
	member, err := s.servers.FindMember(ctx, serverID, profileID)
	if err != nil {
		return model.MemberRole("")
	}
	return member.Role
}

// loadAggregate assembles the server with its ordered members and channels.
func (s *MembershipService) loadAggregate(ctx context.Context, serverID string) (*model.Server, error) {
	server, err := s.servers.FindByID(ctx, serverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.internal(ctx, "find server", err)
	}

	members, err := s.servers.ListMembers(ctx, serverID)
	if err != nil {
		return nil, s.internal(ctx, "list members", err)
	}
	channels, err := s.servers.ListChannels(ctx, serverID)
	if err != nil {
		return nil, s.internal(ctx, "list channels", err)
	}

	server.Members = members
	server.Channels = channels
	return server, nil
}

// generateUniqueInviteCode produces a collision-free invite token. The bloom
// filter short-circuits the database check for codes that were never issued
// by this process; a positive still verifies against the authoritative row.
func (s *MembershipService) generateUniqueInviteCode(ctx context.Context) (string, error) {
	const maxAttempts = 10
	for range maxAttempts {
		code := randomInviteCode()

		if !s.seen.MayContain(code) {
			return code, nil
		}

		_, err := s.servers.FindByInviteCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return code, nil
			}
			return "", s.internal(ctx, "check invite code", err)
		}
	}
	return "", fmt.Errorf("failed to generate a unique invite code: %w", ErrConflict)
}

// randomInviteCode generates a 16-character hex token from crypto/rand.
func randomInviteCode() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand failure is effectively fatal anywhere else; fall back
		// to a UUID-derived token so server creation keeps working.
		return uuid.New().String()[:16]
	}
	return hex.EncodeToString(bytes)
}

// newID issues a snowflake entity ID, falling back to a UUID-derived ID if
// the generator refuses (clock moved backwards).
func (s *MembershipService) newID() string {
	id, err := s.ids.NextID()
	if err != nil {
		u := uuid.New()
		return hex.EncodeToString(u[:])
	}
	return snowflake.Format(id)
}

func (s *MembershipService) cacheInvite(ctx context.Context, code, serverID string) {
	if s.invites == nil {
		return
	}
	if err := s.invites.Set(ctx, code, serverID); err != nil {
		s.logger.Warn("invite cache set failed", zap.Error(err))
	}
}

func (s *MembershipService) invalidateInvite(ctx context.Context, code string) {
	if s.invites == nil {
		return
	}
	if err := s.invites.Invalidate(ctx, code); err != nil {
		s.logger.Warn("invite cache invalidate failed", zap.Error(err))
	}
}

// publish emits a membership event, off the request path when a worker pool
// is configured. Event delivery is best-effort; the state transition already
// committed.
func (s *MembershipService) publish(event events.Event) {
	if s.producer == nil {
		return
	}
	send := func() {
		if err := s.producer.Publish(event); err != nil {
			s.logger.Warn("membership event publish failed",
				zap.String("type", string(event.Type)),
				zap.String("server_id", event.ServerID),
				zap.Error(err),
			)
		}
	}
	if s.pool != nil && s.pool.TrySubmit(send) {
		return
	}
	send()
}

// internal logs an unexpected storage failure and surfaces a generic
// internal error without leaking detail.
func (s *MembershipService) internal(_ context.Context, op string, err error) error {
	s.logger.Error("membership engine storage failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, ErrInternal)
}
