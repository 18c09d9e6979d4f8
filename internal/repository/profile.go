package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/model"
)

// IProfileRepository defines the interface for profile data operations
type IProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	FindByUserID(ctx context.Context, userID string) (*model.Profile, error)
}

// ProfileRepository implements IProfileRepository interface
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new IProfileRepository instance
func NewProfileRepository(db *gorm.DB) IProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a new profile in the database
func (r *ProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// FindByID finds a profile by internal ID
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByUserID finds a profile by the external identity's user ID
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
