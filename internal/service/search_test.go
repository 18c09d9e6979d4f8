package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/Concord/internal/model"
)

func TestBuildServerIndex(t *testing.T) {
	ctx := context.Background()
	repo := newFakeServerRepo()
	membership := newMembershipService(t, repo)
	search := NewSearchService(repo)

	server, err := membership.CreateServer(ctx, "owner", "team", "img")
	require.NoError(t, err)
	_, err = membership.JoinByInviteCode(ctx, "guest", server.InviteCode)
	require.NoError(t, err)
	_, err = membership.CreateChannel(ctx, "owner", server.ID, "standup", model.ChannelAudio)
	require.NoError(t, err)
	_, err = membership.CreateChannel(ctx, "owner", server.ID, "demos", model.ChannelVideo)
	require.NoError(t, err)

	t.Run("groups channels by type and lists members with roles", func(t *testing.T) {
		index, err := search.BuildServerIndex(ctx, "guest", server.ID)
		require.NoError(t, err)
		assert.Equal(t, server.ID, index.ServerID)
		require.Len(t, index.Sections, 4)

		text := index.Sections[0]
		assert.Equal(t, "Text Channels", text.Label)
		require.Len(t, text.Entries, 1)
		assert.Equal(t, model.GeneralChannelName, text.Entries[0].Name)

		audio := index.Sections[1]
		assert.Equal(t, "Audio Channels", audio.Label)
		require.Len(t, audio.Entries, 1)
		assert.Equal(t, "standup", audio.Entries[0].Name)

		video := index.Sections[2]
		assert.Equal(t, "Video Channels", video.Label)
		require.Len(t, video.Entries, 1)
		assert.Equal(t, "demos", video.Entries[0].Name)

		members := index.Sections[3]
		assert.Equal(t, "Members", members.Label)
		require.Len(t, members.Entries, 2)
		assert.Equal(t, model.RoleGuest, members.Entries[0].Role)
		assert.Equal(t, model.RoleAdmin, members.Entries[1].Role)
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		_, err := search.BuildServerIndex(ctx, "stranger", server.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown server", func(t *testing.T) {
		_, err := search.BuildServerIndex(ctx, "owner", "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
