// Package feed contains the social feed documents.
package feed

import (
	"chat-sync/domain/chat"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Post struct {
	ID             uuid.UUID
	AuthorID       chat.Participant
	AuthorName     string
	AuthorPhotoURL string
	Content        string
	Language       string
	CreatedAt      time.Time
	LikedBy        []chat.Participant
	Comments       []Comment
}

type Comment struct {
	AuthorID       chat.Participant
	AuthorName     string
	AuthorPhotoURL string
	Text           string
	CreatedAt      time.Time
}

func (p Post) IsLikedBy(participant chat.Participant) bool {
	return lo.Contains(p.LikedBy, participant)
}

func (p Post) LikeCount() int {
	return len(p.LikedBy)
}

// ToggleLike adds the participant to LikedBy, or removes it when already present.
func (p Post) ToggleLike(participant chat.Participant) Post {
	if p.IsLikedBy(participant) {
		p.LikedBy = lo.Without(p.LikedBy, participant)
		return p
	}
	p.LikedBy = append(append([]chat.Participant{}, p.LikedBy...), participant)
	return p
}
