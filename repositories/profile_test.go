package repositories

import (
	"chat-sync/errors"
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_Merge(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewProfileRepository(openDB(t))

	_, err := repo.Get(ctx, "alice")
	req.ErrorIs(err, errors.ErrNotFound)

	created, err := repo.Merge(ctx, "alice", DiskProfilePatch{Name: lo.ToPtr("Alice")})
	req.NoError(err)
	req.Equal("Alice", created.Name)
	req.Empty(created.PhotoURL)

	// merge keeps the name when only the picture changes
	merged, err := repo.Merge(ctx, "alice", DiskProfilePatch{PhotoURL: lo.ToPtr("https://img/alice.jpg")})
	req.NoError(err)
	req.Equal("Alice", merged.Name)
	req.Equal("https://img/alice.jpg", merged.PhotoURL)

	fetched, err := repo.Get(ctx, "alice")
	req.NoError(err)
	req.Equal(merged.Name, fetched.Name)
	req.Equal(merged.PhotoURL, fetched.PhotoURL)
	req.True(merged.UpdatedAt.Equal(fetched.UpdatedAt))
}

func TestProfileRepository_List(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewProfileRepository(openDB(t))

	for _, id := range []string{"carol", "alice", "bob"} {
		_, err := repo.Merge(ctx, id, DiskProfilePatch{Name: lo.ToPtr(id)})
		req.NoError(err)
	}

	profiles, err := repo.List(ctx)
	req.NoError(err)
	req.Equal([]string{"alice", "bob", "carol"},
		lo.Map(profiles, func(p DiskProfile, _ int) string { return p.ID }))
}

func TestProfileRepository_Ensure(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewProfileRepository(openDB(t))

	blank, created, err := repo.Ensure(ctx, "alice")
	req.NoError(err)
	req.True(created)
	req.Equal("alice", blank.ID)
	req.Empty(blank.Name)
	req.Empty(blank.PhotoURL)

	stored, err := repo.Get(ctx, "alice")
	req.NoError(err)
	req.Equal(blank, stored)

	// an existing profile is never overwritten
	_, err = repo.Merge(ctx, "alice", DiskProfilePatch{Name: lo.ToPtr("Alice")})
	req.NoError(err)
	again, created, err := repo.Ensure(ctx, "alice")
	req.NoError(err)
	req.False(created)
	req.Equal("Alice", again.Name)

	all, err := repo.List(ctx)
	req.NoError(err)
	req.Len(all, 1)
}
