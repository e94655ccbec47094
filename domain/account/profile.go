// Package account holds the profile document of a participant.
package account

import (
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"fmt"
	"time"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidTheme, s)
	}
}

// Toggle flips between light and dark, light being the default.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

const (
	AnonymousName      = "Anonymous"
	PlaceholderPicture = "https://via.placeholder.com/150"
)

type Profile struct {
	ID        chat.Participant
	Name      string
	PhotoURL  string
	Theme     Theme
	UpdatedAt time.Time
}

// DisplayName falls back to AnonymousName when no name has been set.
func (p Profile) DisplayName() string {
	if p.Name == "" {
		return AnonymousName
	}
	return p.Name
}

// Picture falls back to PlaceholderPicture when no picture has been uploaded.
func (p Profile) Picture() string {
	if p.PhotoURL == "" {
		return PlaceholderPicture
	}
	return p.PhotoURL
}

// ProfilePatch is a merge-write: nil fields are left untouched.
type ProfilePatch struct {
	Name     *string
	PhotoURL *string
	Theme    *Theme
}
