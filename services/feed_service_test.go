package services

import (
	"chat-sync/domain/account"
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"chat-sync/mocks"
	"chat-sync/moderation"
	"chat-sync/repositories"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newFeedService(t *testing.T) (*FeedService, *repositories.ProfileRepository) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db := openDB(t)
	moderator, err := moderation.NewModerator([]string{"badger"}, '*', log)
	require.NoError(t, err)
	profiles := repositories.NewProfileRepository(db)
	return NewFeedService(log, repositories.NewPostRepository(db, log), profiles, moderator, 200), profiles
}

func TestFeedService_CreatePost(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, profiles := newFeedService(t)

	name, photo := "Alice", "https://img/alice.png"
	_, err := profiles.Merge(ctx, "alice", repositories.DiskProfilePatch{Name: &name, PhotoURL: &photo})
	req.NoError(err)

	post, err := svc.CreatePost(ctx, "alice", "  The badger is in the garden this morning, looking for something to eat with the other animals  ")
	req.NoError(err)
	req.NotEqual(uuid.Nil, post.ID)
	req.Equal("The ****** is in the garden this morning, looking for something to eat with the other animals", post.Content)
	req.Equal("Alice", post.AuthorName)
	req.Equal(photo, post.AuthorPhotoURL)
	req.Equal("en", post.Language)
	req.False(post.CreatedAt.IsZero())
	req.Zero(post.LikeCount())

	// An author without profile is published anonymously
	anonymous, err := svc.CreatePost(ctx, "bob", "bonjour tout le monde, quelle belle journée")
	req.NoError(err)
	req.Equal(account.AnonymousName, anonymous.AuthorName)
	req.Equal(account.PlaceholderPicture, anonymous.AuthorPhotoURL)

	posts, err := svc.ListPosts(ctx, 10)
	req.NoError(err)
	req.Len(posts, 2)
	req.Equal(anonymous.ID, posts[0].ID)
	req.True(posts[0].CreatedAt.After(posts[1].CreatedAt))
}

func TestFeedService_CreatePost_Rejections(t *testing.T) {
	svc, _ := newFeedService(t)
	tests := []struct {
		name    string
		author  chat.Participant
		content string
		err     error
	}{
		{"blank", "alice", " \n\t ", errors.ErrEmptyInput},
		{"too long", "alice", strings.Repeat("a", 201), errors.ErrContentTooLong},
		{"invalid author", "al ice", "hello", errors.ErrInvalidParticipant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(context.Background(), tt.author, tt.content)
			require.ErrorIs(t, err, tt.err)
		})
	}

	posts, err := svc.ListPosts(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestFeedService_ToggleLike_Is_An_Involution(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _ := newFeedService(t)

	post, err := svc.CreatePost(ctx, "alice", "hello")
	req.NoError(err)

	liked, err := svc.ToggleLike(ctx, post.ID, "bob")
	req.NoError(err)
	req.True(liked.IsLikedBy("bob"))
	req.Equal(1, liked.LikeCount())

	unliked, err := svc.ToggleLike(ctx, post.ID, "bob")
	req.NoError(err)
	req.False(unliked.IsLikedBy("bob"))
	req.Zero(unliked.LikeCount())

	_, err = svc.ToggleLike(ctx, uuid.New(), "bob")
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestFeedService_AddComment(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _ := newFeedService(t)

	post, err := svc.CreatePost(ctx, "alice", "hello")
	req.NoError(err)

	_, err = svc.AddComment(ctx, post.ID, "bob", "   ")
	req.ErrorIs(err, errors.ErrEmptyInput)

	updated, err := svc.AddComment(ctx, post.ID, "bob", "what a b4dger")
	req.NoError(err)
	req.Len(updated.Comments, 1)
	req.Equal("what a ******", updated.Comments[0].Text)
	req.Equal(chat.Participant("bob"), updated.Comments[0].AuthorID)
	req.True(updated.Comments[0].CreatedAt.After(post.CreatedAt))

	_, err = svc.AddComment(ctx, uuid.New(), "bob", "hello?")
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestFeedService_Store_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	posts := mocks.NewMockIPostRepository(ctrl)
	profiles := mocks.NewMockIProfileRepository(ctrl)
	censor := mocks.NewMockCensor(ctrl)

	profiles.EXPECT().Get(gomock.Any(), "alice").Return(repositories.DiskProfile{}, errors.ErrNotFound)
	censor.EXPECT().Censor("hello").Return("hello", nil)
	posts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repositories.DiskPost{}, fmt.Errorf("disk full"))
	posts.EXPECT().List(gomock.Any(), 5).Return(nil, fmt.Errorf("disk full"))

	svc := NewFeedService(slog.Default(), posts, profiles, censor, 0)
	_, err := svc.CreatePost(context.Background(), "alice", "hello")
	req.ErrorIs(err, errors.ErrStoreUnavailable)

	_, err = svc.ListPosts(context.Background(), 5)
	req.ErrorIs(err, errors.ErrStoreUnavailable)
}
