package chat

import (
	"chat-sync/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveThreadKey_AliceAndBob(t *testing.T) {
	req := require.New(t)

	fromAlice, err := ResolveThreadKey("alice", "bob")
	req.NoError(err)
	fromBob, err := ResolveThreadKey("bob", "alice")
	req.NoError(err)

	req.Equal(ThreadKey("bob_alice"), fromAlice)
	req.Equal(fromAlice, fromBob)
}

func TestResolveThreadKey_Symmetric(t *testing.T) {
	ids := []Participant{"u1", "u2", "U1", "zed", "a", "8f2c1e", "Xy9Lm2Qw"}
	for _, a := range ids {
		for _, b := range ids {
			ab, err := ResolveThreadKey(a, b)
			require.NoError(t, err)
			ba, err := ResolveThreadKey(b, a)
			require.NoError(t, err)
			require.Equal(t, ab, ba, "%s/%s", a, b)
		}
	}
}

func TestResolveThreadKey_SelfChat(t *testing.T) {
	req := require.New(t)
	first, err := ResolveThreadKey("alice", "alice")
	req.NoError(err)
	for i := 0; i < 10; i++ {
		again, err := ResolveThreadKey("alice", "alice")
		req.NoError(err)
		req.Equal(first, again)
	}
	req.Equal(ThreadKey("alice_alice"), first)
}

func TestResolveThreadKey_InvalidParticipant(t *testing.T) {
	tests := []struct {
		name        string
		self, other Participant
	}{
		{"empty self", "", "bob"},
		{"empty other", "alice", ""},
		{"separator", "al_ice", "bob"},
		{"colon", "alice", "b:ob"},
		{"whitespace", "alice", "bo b"},
		{"too long", Participant(strings.Repeat("x", MaxParticipantLength+1)), "bob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ResolveThreadKey(tt.self, tt.other)
			require.ErrorIs(t, err, errors.ErrInvalidParticipant)
			require.Empty(t, key)
		})
	}
}

func TestThreadKey_Participants(t *testing.T) {
	req := require.New(t)
	key, err := ResolveThreadKey("alice", "bob")
	req.NoError(err)

	g, l, err := key.Participants()
	req.NoError(err)
	req.Equal(Participant("bob"), g)
	req.Equal(Participant("alice"), l)
	req.True(key.Includes("alice"))
	req.False(key.Includes("carol"))

	req.ErrorIs(ThreadKey("alice_bob").Validate(), errors.ErrInvalidParticipant)
	req.ErrorIs(ThreadKey("nounderscore").Validate(), errors.ErrInvalidParticipant)
}

func TestSendMessageCommand_Validate(t *testing.T) {
	key, err := ResolveThreadKey("u1", "u2")
	require.NoError(t, err)

	tests := []struct {
		name string
		cmd  SendMessageCommand
		want error
	}{
		{"valid", SendMessageCommand{Thread: key, SenderID: "u1", ReceiverID: "u2", Text: "hello"}, nil},
		{"blank", SendMessageCommand{Thread: key, SenderID: "u1", ReceiverID: "u2", Text: " \t\n"}, errors.ErrEmptyInput},
		{"blank wins over bad sender", SendMessageCommand{Thread: key, Text: ""}, errors.ErrEmptyInput},
		{"missing sender", SendMessageCommand{Thread: key, ReceiverID: "u2", Text: "hi"}, errors.ErrInvalidParticipant},
		{"foreign thread", SendMessageCommand{Thread: "u9_u1", SenderID: "u1", ReceiverID: "u2", Text: "hi"}, errors.ErrInvalidParticipant},
		{"too long", SendMessageCommand{Thread: key, SenderID: "u1", ReceiverID: "u2", Text: "abcdef"}, errors.ErrContentTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate(5)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSubscriptionState_Terminal(t *testing.T) {
	req := require.New(t)
	for _, s := range []SubscriptionState{StateUnsubscribed, StateSubscribing, StateActive} {
		req.False(s.Terminal(), s.String())
	}
	req.True(StateFailed.Terminal())
	req.True(StateCancelled.Terminal())
	req.Equal("unknown", SubscriptionState(42).String())
}
