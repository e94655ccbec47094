//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-sync/contract"
	"chat-sync/domain/chat"
	"context"
)

// IChatService is the thread screen seen from one participant: it resolves
// the thread key from the pair and delegates to the synchronizer.
type IChatService interface {
	OpenThread(ctx context.Context, self, other chat.Participant) (chat.ThreadKey, contract.ISubscription, error)
	Send(ctx context.Context, self, other chat.Participant, text string) (chat.Message, error)
	History(ctx context.Context, self, other chat.Participant) ([]chat.Message, error)
}

type ChatService struct {
	synchronizer contract.ISynchronizer
}

func NewChatService(synchronizer contract.ISynchronizer) *ChatService {
	return &ChatService{synchronizer: synchronizer}
}

func (s *ChatService) OpenThread(ctx context.Context, self, other chat.Participant) (chat.ThreadKey, contract.ISubscription, error) {
	key, err := chat.ResolveThreadKey(self, other)
	if err != nil {
		return "", nil, err
	}
	sub, err := s.synchronizer.Subscribe(ctx, key)
	if err != nil {
		return "", nil, err
	}
	return key, sub, nil
}

// Send leaves an unresolvable pair to the command validation, so that blank
// text is reported before participant errors.
func (s *ChatService) Send(ctx context.Context, self, other chat.Participant, text string) (chat.Message, error) {
	key, _ := chat.ResolveThreadKey(self, other)
	return s.synchronizer.Send(ctx, chat.SendMessageCommand{
		Thread:     key,
		SenderID:   self,
		ReceiverID: other,
		Text:       text,
	})
}

func (s *ChatService) History(ctx context.Context, self, other chat.Participant) ([]chat.Message, error) {
	key, err := chat.ResolveThreadKey(self, other)
	if err != nil {
		return nil, err
	}
	return s.synchronizer.History(ctx, key)
}
