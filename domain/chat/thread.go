package chat

import (
	"chat-sync/errors"
	"fmt"
	"strings"
)

const threadKeySeparator = '_'

// ThreadKey identifies a two-party conversation.
type ThreadKey string

func (k ThreadKey) String() string { return string(k) }

// ResolveThreadKey derives the conversation key shared by self and other.
// The greater identifier comes first so both sides compute the same key.
// A participant talking to themself gets "{id}_{id}".
func ResolveThreadKey(self, other Participant) (ThreadKey, error) {
	if err := self.Validate(); err != nil {
		return "", err
	}
	if err := other.Validate(); err != nil {
		return "", err
	}
	greater, lesser := self, other
	if greater < lesser {
		greater, lesser = lesser, greater
	}
	return ThreadKey(string(greater) + string(threadKeySeparator) + string(lesser)), nil
}

// Participants splits a key back into its (greater, lesser) pair.
func (k ThreadKey) Participants() (Participant, Participant, error) {
	greater, lesser, ok := strings.Cut(string(k), string(threadKeySeparator))
	if !ok {
		return "", "", fmt.Errorf("%w: malformed thread key %q", errors.ErrInvalidParticipant, string(k))
	}
	g, l := Participant(greater), Participant(lesser)
	if err := g.Validate(); err != nil {
		return "", "", err
	}
	if err := l.Validate(); err != nil {
		return "", "", err
	}
	if g < l {
		return "", "", fmt.Errorf("%w: thread key %q is not canonical", errors.ErrInvalidParticipant, string(k))
	}
	return g, l, nil
}

// Validate checks that the key is canonical.
func (k ThreadKey) Validate() error {
	_, _, err := k.Participants()
	return err
}

// Includes tells whether p is one of the two parties of the thread.
func (k ThreadKey) Includes(p Participant) bool {
	g, l, err := k.Participants()
	if err != nil {
		return false
	}
	return p == g || p == l
}
