package chat

import (
	"chat-sync/errors"
	"fmt"
	"strings"
)

// SendMessageCommand is the intent of SenderID to post Text in Thread.
type SendMessageCommand struct {
	Thread     ThreadKey   `validate:"required"`
	SenderID   Participant `validate:"participant"`
	ReceiverID Participant `validate:"participant"`
	Text       string
}

// Validate rejects blank text before any participant check so that an empty
// input never reaches the store.
func (c SendMessageCommand) Validate(maxContentLength int) error {
	if strings.TrimSpace(c.Text) == "" {
		return errors.ErrEmptyInput
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidParticipant, err)
	}
	expected, err := ResolveThreadKey(c.SenderID, c.ReceiverID)
	if err != nil {
		return err
	}
	if expected != c.Thread {
		return fmt.Errorf("%w: %s and %s do not belong to %s",
			errors.ErrInvalidParticipant, c.SenderID, c.ReceiverID, c.Thread)
	}
	if maxContentLength > 0 && len([]rune(c.Text)) > maxContentLength {
		return fmt.Errorf("%w: %d characters max", errors.ErrContentTooLong, maxContentLength)
	}
	return nil
}
