//go:generate go run go.uber.org/mock/mockgen -source=profile.go -destination=../mocks/mock_profile_repository.go -package=mocks
package repositories

import (
	"chat-sync/errors"
	"context"
	stderrors "errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IProfileRepository interface {
	Get(ctx context.Context, id string) (DiskProfile, error)
	Merge(ctx context.Context, id string, patch DiskProfilePatch) (DiskProfile, error)
	Ensure(ctx context.Context, id string) (DiskProfile, bool, error)
	List(ctx context.Context) ([]DiskProfile, error)
}

type ProfileRepository struct {
	db  *badger.DB
	now func() time.Time
}

func NewProfileRepository(db *badger.DB) *ProfileRepository {
	return &ProfileRepository{db: db, now: time.Now}
}

// DiskProfile is the users/{id} document.
type DiskProfile struct {
	ID        string
	Name      string
	PhotoURL  string
	Theme     string
	UpdatedAt time.Time
}

// DiskProfilePatch only overwrites the non-nil fields.
type DiskProfilePatch struct {
	Name     *string
	PhotoURL *string
	Theme    *string
}

const profilePrefix = "user:"

func profileKey(id string) []byte {
	return []byte(profilePrefix + id)
}

// Get returns errors.ErrNotFound when the participant never wrote a profile.
func (p *ProfileRepository) Get(ctx context.Context, id string) (DiskProfile, error) {
	if err := ctx.Err(); err != nil {
		return DiskProfile{}, err
	}
	var profile DiskProfile
	err := p.db.View(func(txn *badger.Txn) error {
		var err error
		profile, err = readProfile(txn, id)
		return err
	})
	return profile, err
}

// Merge applies the patch over the stored document, creating it when absent.
func (p *ProfileRepository) Merge(ctx context.Context, id string, patch DiskProfilePatch) (DiskProfile, error) {
	if err := ctx.Err(); err != nil {
		return DiskProfile{}, err
	}
	var merged DiskProfile
	err := p.db.Update(func(txn *badger.Txn) error {
		current, err := readProfile(txn, id)
		if err != nil && !stderrors.Is(err, errors.ErrNotFound) {
			return err
		}
		current.ID = id
		if patch.Name != nil {
			current.Name = *patch.Name
		}
		if patch.PhotoURL != nil {
			current.PhotoURL = *patch.PhotoURL
		}
		if patch.Theme != nil {
			current.Theme = *patch.Theme
		}
		current.UpdatedAt = p.now().UTC()

		data, err := marshalProfile(current)
		if err != nil {
			return err
		}
		merged = current
		return txn.Set(profileKey(id), data)
	})
	if err != nil {
		return DiskProfile{}, err
	}
	return merged, nil
}

// Ensure creates a blank profile for a participant seen for the first time.
// An existing document is returned untouched; created reports whether a
// write happened.
func (p *ProfileRepository) Ensure(ctx context.Context, id string) (profile DiskProfile, created bool, err error) {
	if err := ctx.Err(); err != nil {
		return DiskProfile{}, false, err
	}
	err = p.db.Update(func(txn *badger.Txn) error {
		current, err := readProfile(txn, id)
		if err == nil {
			profile, created = current, false
			return nil
		}
		if !stderrors.Is(err, errors.ErrNotFound) {
			return err
		}
		profile = DiskProfile{ID: id, UpdatedAt: p.now().UTC()}
		data, err := marshalProfile(profile)
		if err != nil {
			return err
		}
		created = true
		return txn.Set(profileKey(id), data)
	})
	if err != nil {
		return DiskProfile{}, false, err
	}
	return profile, created, nil
}

// List returns every profile ordered by participant id.
func (p *ProfileRepository) List(ctx context.Context) ([]DiskProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var profiles []DiskProfile
	err := p.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(profilePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				profile, err := unmarshalProfile(val)
				if err != nil {
					return err
				}
				profiles = append(profiles, profile)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return profiles, err
}

func readProfile(txn *badger.Txn, id string) (DiskProfile, error) {
	item, err := txn.Get(profileKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return DiskProfile{}, errors.ErrNotFound
	}
	if err != nil {
		return DiskProfile{}, err
	}
	var profile DiskProfile
	err = item.Value(func(val []byte) error {
		profile, err = unmarshalProfile(val)
		return err
	})
	return profile, err
}

func marshalProfile(profile DiskProfile) ([]byte, error) {
	return marshalDocument(map[string]any{
		"id":        profile.ID,
		"name":      profile.Name,
		"photoURL":  profile.PhotoURL,
		"theme":     profile.Theme,
		"updatedAt": formatTime(profile.UpdatedAt),
	})
}

func unmarshalProfile(b []byte) (DiskProfile, error) {
	doc, err := unmarshalDocument(b)
	if err != nil {
		return DiskProfile{}, err
	}
	updatedAt, err := timeField(doc, "updatedAt")
	if err != nil {
		return DiskProfile{}, err
	}
	return DiskProfile{
		ID:        stringField(doc, "id"),
		Name:      stringField(doc, "name"),
		PhotoURL:  stringField(doc, "photoURL"),
		Theme:     stringField(doc, "theme"),
		UpdatedAt: updatedAt,
	}, nil
}
