package feed

import (
	"chat-sync/domain/chat"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPost_ToggleLike(t *testing.T) {
	req := require.New(t)
	post := Post{LikedBy: []chat.Participant{"bob"}}

	liked := post.ToggleLike("alice")
	req.True(liked.IsLikedBy("alice"))
	req.Equal(2, liked.LikeCount())
	// the original is left untouched
	req.False(post.IsLikedBy("alice"))

	unliked := liked.ToggleLike("alice")
	req.False(unliked.IsLikedBy("alice"))
	req.Equal([]chat.Participant{"bob"}, unliked.LikedBy)
}
