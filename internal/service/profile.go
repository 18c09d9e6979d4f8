package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/model"
	"github.com/Gopher0727/Concord/internal/repository"
	"github.com/Gopher0727/Concord/utils/snowflake"
)

// IProfileService is the profile store: one profile per external identity,
// created lazily on first authenticated access.
type IProfileService interface {
	GetOrCreate(ctx context.Context, userID, name, imageURL, email string) (*model.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
}

// ProfileService implements IProfileService.
type ProfileService struct {
	profiles repository.IProfileRepository
	ids      *snowflake.Generator
	logger   *zap.Logger
}

// NewProfileService creates a new IProfileService instance.
func NewProfileService(profiles repository.IProfileRepository, ids *snowflake.Generator, logger *zap.Logger) IProfileService {
	return &ProfileService{profiles: profiles, ids: ids, logger: logger}
}

// GetOrCreate returns the profile bound to the external user ID, creating it
// on first access. Two concurrent first accesses race on the unique user_id
// index; the loser re-reads the winner's row.
func (s *ProfileService) GetOrCreate(ctx context.Context, userID, name, imageURL, email string) (*model.Profile, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "external user id is required"}
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("profile lookup failed", zap.Error(err))
		return nil, ErrInternal
	}

	id, err := s.ids.NextID()
	if err != nil {
		s.logger.Error("profile id generation failed", zap.Error(err))
		return nil, ErrInternal
	}
	profile = &model.Profile{
		ID:       snowflake.Format(id),
		UserID:   userID,
		Name:     name,
		ImageURL: imageURL,
		Email:    email,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.profiles.FindByUserID(ctx, userID)
		}
		s.logger.Error("profile creation failed", zap.Error(err))
		return nil, ErrInternal
	}
	return profile, nil
}

// GetByUserID returns the profile for an external user ID without creating
// one.
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("profile lookup failed", zap.Error(err))
		return nil, ErrInternal
	}
	return profile, nil
}
