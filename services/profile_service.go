//go:generate go run go.uber.org/mock/mockgen -source=profile_service.go -destination=../mocks/mock_profile_service.go -package=mocks
package services

import (
	"chat-sync/domain/account"
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"chat-sync/infrastructure/upload"
	"chat-sync/repositories"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"
)

type IProfileService interface {
	EnsureProfile(ctx context.Context, id chat.Participant) error
	Get(ctx context.Context, id chat.Participant) (account.Profile, error)
	Update(ctx context.Context, id chat.Participant, name, photoURL string) (account.Profile, error)
	UploadPicture(ctx context.Context, id chat.Participant, filename string, content []byte) (account.Profile, error)
	SetTheme(ctx context.Context, id chat.Participant, theme account.Theme) (account.Profile, error)
	ToggleTheme(ctx context.Context, id chat.Participant) (account.Profile, error)
	Directory(ctx context.Context, self chat.Participant, query string) ([]account.Profile, error)
}

type ProfileService struct {
	log            *slog.Logger
	profiles       repositories.IProfileRepository
	index          repositories.IDirectoryIndex
	uploader       upload.IUploader
	directoryLimit int
	// participants known to have a profile document
	ensured sync.Map
}

func NewProfileService(log *slog.Logger, profiles repositories.IProfileRepository,
	index repositories.IDirectoryIndex, uploader upload.IUploader, directoryLimit int) *ProfileService {
	return &ProfileService{
		log:            log,
		profiles:       profiles,
		index:          index,
		uploader:       uploader,
		directoryLimit: directoryLimit,
	}
}

// EnsureProfile gives a participant seen for the first time a blank profile,
// so that the directory lists them before they pick a name and picture.
// Participants already ensured by this process are not looked up again.
func (s *ProfileService) EnsureProfile(ctx context.Context, id chat.Participant) error {
	if _, ok := s.ensured.Load(id); ok {
		return nil
	}
	if err := id.Validate(); err != nil {
		return err
	}
	stored, created, err := s.profiles.Ensure(ctx, string(id))
	if err != nil {
		s.log.Error("Failed to ensure profile", "participant", id, "error", err)
		return storeError(err)
	}
	if created {
		s.log.Info("Profile created on first sign-in", "participant", id)
		if err := s.index.Index(stored); err != nil {
			s.log.Warn("Failed to index profile", "participant", id, "error", err)
		}
	}
	s.ensured.Store(id, struct{}{})
	return nil
}

func (s *ProfileService) Get(ctx context.Context, id chat.Participant) (account.Profile, error) {
	if err := id.Validate(); err != nil {
		return account.Profile{}, err
	}
	stored, err := s.profiles.Get(ctx, string(id))
	if err != nil {
		return account.Profile{}, storeError(err)
	}
	return toProfile(stored), nil
}

// Update saves name and picture together, both are mandatory.
func (s *ProfileService) Update(ctx context.Context, id chat.Participant, name, photoURL string) (account.Profile, error) {
	if err := id.Validate(); err != nil {
		return account.Profile{}, err
	}
	name, photoURL = strings.TrimSpace(name), strings.TrimSpace(photoURL)
	if name == "" || photoURL == "" {
		return account.Profile{}, fmt.Errorf("%w: name and picture are required", errors.ErrEmptyInput)
	}
	return s.merge(ctx, id, account.ProfilePatch{Name: &name, PhotoURL: &photoURL})
}

// UploadPicture pushes the picture to the image host and stores its URL on the profile.
func (s *ProfileService) UploadPicture(ctx context.Context, id chat.Participant, filename string, content []byte) (account.Profile, error) {
	if err := id.Validate(); err != nil {
		return account.Profile{}, err
	}
	url, err := s.uploader.Upload(ctx, filename, content)
	if err != nil {
		s.log.Warn("Picture upload failed", "participant", id, "error", err)
		return account.Profile{}, err
	}
	return s.merge(ctx, id, account.ProfilePatch{PhotoURL: &url})
}

func (s *ProfileService) SetTheme(ctx context.Context, id chat.Participant, theme account.Theme) (account.Profile, error) {
	if err := id.Validate(); err != nil {
		return account.Profile{}, err
	}
	if _, err := account.ParseTheme(string(theme)); err != nil {
		return account.Profile{}, err
	}
	return s.merge(ctx, id, account.ProfilePatch{Theme: &theme})
}

// ToggleTheme flips the stored theme, a participant without profile starts from light.
func (s *ProfileService) ToggleTheme(ctx context.Context, id chat.Participant) (account.Profile, error) {
	current, err := s.Get(ctx, id)
	if err != nil && !stderrors.Is(err, errors.ErrNotFound) {
		return account.Profile{}, err
	}
	return s.SetTheme(ctx, id, current.Theme.Toggle())
}

// Directory lists the other participants, blank profiles included. A
// non-blank query is matched as a case-insensitive substring of the name.
func (s *ProfileService) Directory(ctx context.Context, self chat.Participant, query string) ([]account.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		stored, err := s.profiles.List(ctx)
		if err != nil {
			return nil, storeError(err)
		}
		others := lo.Filter(stored, func(p repositories.DiskProfile, _ int) bool {
			return p.ID != string(self)
		})
		return lo.Map(others, func(p repositories.DiskProfile, _ int) account.Profile {
			return toProfile(p)
		}), nil
	}

	// one extra hit in case the caller matches
	ids, err := s.index.Search(ctx, query, s.directoryLimit+1)
	if err != nil {
		s.log.Error("Directory search failed", "query", query, "error", err)
		return nil, storeError(err)
	}
	var profiles []account.Profile
	for _, id := range ids {
		if id == string(self) {
			continue
		}
		if len(profiles) == s.directoryLimit {
			break
		}
		stored, err := s.profiles.Get(ctx, id)
		if stderrors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeError(err)
		}
		profiles = append(profiles, toProfile(stored))
	}
	return profiles, nil
}

// Reindex feeds every stored profile to the directory index.
func (s *ProfileService) Reindex(ctx context.Context) error {
	stored, err := s.profiles.List(ctx)
	if err != nil {
		return storeError(err)
	}
	for _, p := range stored {
		if err := s.index.Index(p); err != nil {
			return err
		}
	}
	s.log.Info("Directory reindexed", "profiles", len(stored))
	return nil
}

func (s *ProfileService) merge(ctx context.Context, id chat.Participant, patch account.ProfilePatch) (account.Profile, error) {
	stored, err := s.profiles.Merge(ctx, string(id), repositories.DiskProfilePatch{
		Name:     patch.Name,
		PhotoURL: patch.PhotoURL,
		Theme:    (*string)(patch.Theme),
	})
	if err != nil {
		s.log.Error("Failed to write profile", "participant", id, "error", err)
		return account.Profile{}, storeError(err)
	}
	// The index is derived data, a failure here only degrades search.
	if err := s.index.Index(stored); err != nil {
		s.log.Warn("Failed to index profile", "participant", id, "error", err)
	}
	return toProfile(stored), nil
}

func toProfile(p repositories.DiskProfile) account.Profile {
	theme, err := account.ParseTheme(p.Theme)
	if err != nil {
		theme = account.ThemeLight
	}
	return account.Profile{
		ID:        chat.Participant(p.ID),
		Name:      p.Name,
		PhotoURL:  p.PhotoURL,
		Theme:     theme,
		UpdatedAt: p.UpdatedAt,
	}
}

// storeError keeps domain errors and wraps everything else as a store outage.
func storeError(err error) error {
	if stderrors.Is(err, errors.ErrNotFound) || stderrors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
}
