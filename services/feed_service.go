//go:generate go run go.uber.org/mock/mockgen -source=feed_service.go -destination=../mocks/mock_feed_service.go -package=mocks
package services

import (
	"chat-sync/domain/account"
	"chat-sync/domain/chat"
	"chat-sync/domain/feed"
	"chat-sync/errors"
	"chat-sync/repositories"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Censor masks forbidden words and reports which ones were found.
type Censor interface {
	Censor(original string) (string, []string)
}

type IFeedService interface {
	CreatePost(ctx context.Context, author chat.Participant, content string) (feed.Post, error)
	ListPosts(ctx context.Context, limit int) ([]feed.Post, error)
	ToggleLike(ctx context.Context, postID uuid.UUID, participant chat.Participant) (feed.Post, error)
	AddComment(ctx context.Context, postID uuid.UUID, author chat.Participant, text string) (feed.Post, error)
}

type FeedService struct {
	log              *slog.Logger
	posts            repositories.IPostRepository
	profiles         repositories.IProfileRepository
	censor           Censor
	maxContentLength int
}

func NewFeedService(log *slog.Logger, posts repositories.IPostRepository,
	profiles repositories.IProfileRepository, censor Censor, maxContentLength int) *FeedService {
	return &FeedService{
		log:              log,
		posts:            posts,
		profiles:         profiles,
		censor:           censor,
		maxContentLength: maxContentLength,
	}
}

// CreatePost publishes moderated content under the author's current name and picture.
func (s *FeedService) CreatePost(ctx context.Context, author chat.Participant, content string) (feed.Post, error) {
	content, err := s.checkContent(author, content)
	if err != nil {
		return feed.Post{}, err
	}
	profile, err := s.authorProfile(ctx, author)
	if err != nil {
		return feed.Post{}, err
	}

	language := whatlanggo.Detect(content).Lang.Iso6391()
	sanitized, words := s.censor.Censor(content)
	if len(words) > 0 {
		s.log.Info("Post censored", "author", author, "words", len(words), "lang", language)
	}

	stored, err := s.posts.Create(ctx, repositories.DiskPost{
		Author:      string(author),
		AuthorName:  profile.DisplayName(),
		AuthorPhoto: profile.Picture(),
		Content:     sanitized,
		Language:    language,
	})
	if err != nil {
		s.log.Error("Failed to create post", "author", author, "error", err)
		return feed.Post{}, storeError(err)
	}
	return toPost(stored), nil
}

func (s *FeedService) ListPosts(ctx context.Context, limit int) ([]feed.Post, error) {
	stored, err := s.posts.List(ctx, limit)
	if err != nil {
		return nil, storeError(err)
	}
	return lo.Map(stored, func(p repositories.DiskPost, _ int) feed.Post {
		return toPost(p)
	}), nil
}

// ToggleLike likes the post, or unlikes it when the participant already did.
func (s *FeedService) ToggleLike(ctx context.Context, postID uuid.UUID, participant chat.Participant) (feed.Post, error) {
	if err := participant.Validate(); err != nil {
		return feed.Post{}, err
	}
	stored, err := s.posts.Update(ctx, postID, func(current repositories.DiskPost) (repositories.DiskPost, error) {
		toggled := toPost(current).ToggleLike(participant)
		current.LikedBy = lo.Map(toggled.LikedBy, func(p chat.Participant, _ int) string {
			return string(p)
		})
		return current, nil
	})
	if err != nil {
		return feed.Post{}, storeError(err)
	}
	return toPost(stored), nil
}

// AddComment appends a moderated comment. The comment time is taken from
// the post store clock.
func (s *FeedService) AddComment(ctx context.Context, postID uuid.UUID, author chat.Participant, text string) (feed.Post, error) {
	text, err := s.checkContent(author, text)
	if err != nil {
		return feed.Post{}, err
	}
	profile, err := s.authorProfile(ctx, author)
	if err != nil {
		return feed.Post{}, err
	}
	sanitized, _ := s.censor.Censor(text)

	stored, err := s.posts.Update(ctx, postID, func(current repositories.DiskPost) (repositories.DiskPost, error) {
		current.Comments = append(current.Comments, repositories.DiskComment{
			Author:      string(author),
			AuthorName:  profile.DisplayName(),
			AuthorPhoto: profile.Picture(),
			Text:        sanitized,
		})
		return current, nil
	})
	if err != nil {
		return feed.Post{}, storeError(err)
	}
	return toPost(stored), nil
}

func (s *FeedService) checkContent(author chat.Participant, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.ErrEmptyInput
	}
	if err := author.Validate(); err != nil {
		return "", err
	}
	if s.maxContentLength > 0 && len([]rune(content)) > s.maxContentLength {
		return "", fmt.Errorf("%w: %d characters max", errors.ErrContentTooLong, s.maxContentLength)
	}
	return content, nil
}

// authorProfile tolerates participants who never saved a profile.
func (s *FeedService) authorProfile(ctx context.Context, author chat.Participant) (account.Profile, error) {
	stored, err := s.profiles.Get(ctx, string(author))
	if stderrors.Is(err, errors.ErrNotFound) {
		return account.Profile{ID: author}, nil
	}
	if err != nil {
		return account.Profile{}, storeError(err)
	}
	return toProfile(stored), nil
}

func toPost(p repositories.DiskPost) feed.Post {
	return feed.Post{
		ID:             p.ID,
		AuthorID:       chat.Participant(p.Author),
		AuthorName:     p.AuthorName,
		AuthorPhotoURL: p.AuthorPhoto,
		Content:        p.Content,
		Language:       p.Language,
		CreatedAt:      p.At,
		LikedBy: lo.Map(p.LikedBy, func(id string, _ int) chat.Participant {
			return chat.Participant(id)
		}),
		Comments: lo.Map(p.Comments, func(c repositories.DiskComment, _ int) feed.Comment {
			return feed.Comment{
				AuthorID:       chat.Participant(c.Author),
				AuthorName:     c.AuthorName,
				AuthorPhotoURL: c.AuthorPhoto,
				Text:           c.Text,
				CreatedAt:      c.At,
			}
		}),
	}
}
