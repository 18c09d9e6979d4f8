package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/model"
	"github.com/Gopher0727/Concord/utils/snowflake"
)

type fakeProfileRepo struct {
	mu       sync.Mutex
	byID     map[string]*model.Profile
	byUserID map[string]*model.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		byID:     make(map[string]*model.Profile),
		byUserID: make(map[string]*model.Profile),
	}
}

func (f *fakeProfileRepo) Create(_ context.Context, profile *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byUserID[profile.UserID]; exists {
		return gorm.ErrDuplicatedKey
	}
	f.byID[profile.ID] = profile
	f.byUserID[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) FindByID(_ context.Context, id string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) FindByUserID(_ context.Context, userID string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.byUserID[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func newProfileService(t *testing.T, repo *fakeProfileRepo) IProfileService {
	t.Helper()
	ids, err := snowflake.NewGenerator(2)
	require.NoError(t, err)
	return NewProfileService(repo, ids, zap.NewNop())
}

func TestProfileGetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates on first access", func(t *testing.T) {
		svc := newProfileService(t, newFakeProfileRepo())

		profile, err := svc.GetOrCreate(ctx, "u1", "Alice", "https://img.example/a.png", "alice@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, profile.ID)
		assert.Equal(t, "u1", profile.UserID)
		assert.Equal(t, "Alice", profile.Name)
	})

	t.Run("returns the same profile on repeat access", func(t *testing.T) {
		svc := newProfileService(t, newFakeProfileRepo())

		first, err := svc.GetOrCreate(ctx, "u1", "Alice", "img", "a@example.com")
		require.NoError(t, err)
		second, err := svc.GetOrCreate(ctx, "u1", "Alice Renamed", "img2", "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Alice", second.Name)
	})

	t.Run("rejects empty user id", func(t *testing.T) {
		svc := newProfileService(t, newFakeProfileRepo())
		_, err := svc.GetOrCreate(ctx, "", "Alice", "img", "a@example.com")
		assert.True(t, IsValidation(err))
	})

	t.Run("concurrent first accesses converge on one row", func(t *testing.T) {
		repo := newFakeProfileRepo()
		svc := newProfileService(t, repo)

		const racers = 8
		var wg sync.WaitGroup
		profiles := make([]*model.Profile, racers)
		errs := make([]error, racers)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				profiles[i], errs[i] = svc.GetOrCreate(ctx, "u1", "Alice", "img", "a@example.com")
			}(i)
		}
		wg.Wait()

		for i := 0; i < racers; i++ {
			require.NoError(t, errs[i])
			assert.Equal(t, profiles[0].ID, profiles[i].ID)
		}
		assert.Len(t, repo.byUserID, 1)
	})
}

func TestProfileGetByUserID(t *testing.T) {
	ctx := context.Background()
	svc := newProfileService(t, newFakeProfileRepo())

	_, err := svc.GetByUserID(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := svc.GetOrCreate(ctx, "u1", "Alice", "img", "a@example.com")
	require.NoError(t, err)

	found, err := svc.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}
