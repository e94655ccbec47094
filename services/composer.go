package services

import (
	"chat-sync/domain/chat"
	"context"
	"sync"
)

// Composer holds the pending input of one thread screen. The input is only
// cleared once the message has been accepted by the store.
type Composer struct {
	mu    sync.Mutex
	chat  IChatService
	self  chat.Participant
	other chat.Participant
	input string
}

func NewComposer(chat IChatService, self, other chat.Participant) *Composer {
	return &Composer{chat: chat, self: self, other: other}
}

func (c *Composer) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

func (c *Composer) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Submit sends the current input. On error the input is kept for a retry.
func (c *Composer) Submit(ctx context.Context) (chat.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, err := c.chat.Send(ctx, c.self, c.other, c.input)
	if err != nil {
		return chat.Message{}, err
	}
	c.input = ""
	return msg, nil
}
