// Package chat contains the direct-message concepts: participants, threads,
// messages and the snapshots delivered to live subscribers.
package chat

import (
	"chat-sync/errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxParticipantLength bounds identifiers handed out by the identity provider.
const MaxParticipantLength = 128

// Participant is the stable account identifier supplied by the auth collaborator.
type Participant string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("participant", func(fl validator.FieldLevel) bool {
		return isParticipant(fl.Field().String())
	})
	return v
}

// Validate reports ErrInvalidParticipant for identifiers that cannot take part
// in a thread key or a storage key.
func (p Participant) Validate() error {
	if !isParticipant(string(p)) {
		return fmt.Errorf("%w: %q", errors.ErrInvalidParticipant, string(p))
	}
	return nil
}

func isParticipant(s string) bool {
	if s == "" || len(s) > MaxParticipantLength {
		return false
	}
	if strings.ContainsAny(s, string(threadKeySeparator)+":") {
		return false
	}
	return strings.IndexFunc(s, unicode.IsSpace) < 0
}
