package handler

import (
	"chat-sync/domain/account"
	"chat-sync/domain/chat"
	"chat-sync/domain/feed"
	"chat-sync/projection"
	"time"

	"github.com/samber/lo"
)

type errorResponse struct {
	Error string `json:"error"`
}

type textRequest struct {
	Text string `json:"text"`
}

type profileRequest struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

type postRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	ThreadKey  string    `json:"threadKey"`
	Text       string    `json:"text"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	CreatedAt  time.Time `json:"createdAt"`
	Mine       bool      `json:"mine"`
}

type threadResponse struct {
	ThreadKey string            `json:"threadKey"`
	Sequence  uint64            `json:"sequence,omitempty"`
	Messages  []messageResponse `json:"messages"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PhotoURL  string    `json:"photoUrl"`
	Theme     string    `json:"theme"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type commentResponse struct {
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	UserPhotoURL string    `json:"userPhotoURL"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"createdAt"`
}

type postResponse struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	UserName     string            `json:"userName"`
	UserPhotoURL string            `json:"userPhotoURL"`
	Content      string            `json:"content"`
	Language     string            `json:"language"`
	CreatedAt    time.Time         `json:"createdAt"`
	Likes        int               `json:"likes"`
	LikedByMe    bool              `json:"likedByMe"`
	Comments     []commentResponse `json:"comments"`
}

func toMessageResponse(m chat.Message, self chat.Participant) messageResponse {
	return messageResponse{
		ID:         m.ID.String(),
		ThreadKey:  string(m.Thread),
		Text:       m.Text,
		SenderID:   string(m.SenderID),
		ReceiverID: string(m.ReceiverID),
		CreatedAt:  m.CreatedAt,
		Mine:       m.SenderID == self,
	}
}

// toThreadResponse renders the ordered view of a thread as seen by its owner.
func toThreadResponse(key chat.ThreadKey, timeline *projection.Timeline) threadResponse {
	return threadResponse{
		ThreadKey: string(key),
		Sequence:  timeline.Sequence(),
		Messages: lo.Map(timeline.Entries(), func(e projection.Entry, _ int) messageResponse {
			res := toMessageResponse(e.Message, timeline.Owner)
			res.Mine = e.Mine
			return res
		}),
	}
}

func toProfileResponse(p account.Profile) profileResponse {
	return profileResponse{
		ID:        string(p.ID),
		Name:      p.DisplayName(),
		PhotoURL:  p.Picture(),
		Theme:     string(p.Theme),
		UpdatedAt: p.UpdatedAt,
	}
}

func toPostResponse(p feed.Post, self chat.Participant) postResponse {
	return postResponse{
		ID:           p.ID.String(),
		UserID:       string(p.AuthorID),
		UserName:     p.AuthorName,
		UserPhotoURL: p.AuthorPhotoURL,
		Content:      p.Content,
		Language:     p.Language,
		CreatedAt:    p.CreatedAt,
		Likes:        p.LikeCount(),
		LikedByMe:    p.IsLikedBy(self),
		Comments: lo.Map(p.Comments, func(c feed.Comment, _ int) commentResponse {
			return commentResponse{
				UserID:       string(c.AuthorID),
				UserName:     c.AuthorName,
				UserPhotoURL: c.AuthorPhotoURL,
				Text:         c.Text,
				CreatedAt:    c.CreatedAt,
			}
		}),
	}
}
