//go:generate go run go.uber.org/mock/mockgen -source=directory.go -destination=../mocks/mock_directory_index.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blugelabs/bluge"
)

// IDirectoryIndex is the full-text index over profile names.
type IDirectoryIndex interface {
	Index(profile DiskProfile) error
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

var wildcardReplacer = strings.NewReplacer("*", "", "?", "", "\\", "")

type DirectoryIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewDirectoryIndex(writer *bluge.Writer, log *slog.Logger) *DirectoryIndex {
	return &DirectoryIndex{writer: writer, log: log}
}

const (
	nameField     = "name"
	fullNameField = "name_lower"
)

// Index upserts the searchable fields of a profile, keyed by participant id.
// The whole lowercased name is kept as one term so that any substring of it
// can be matched.
func (d *DirectoryIndex) Index(profile DiskProfile) error {
	doc := bluge.NewDocument(profile.ID).
		AddField(bluge.NewTextField(nameField, profile.Name)).
		AddField(bluge.NewKeywordField(fullNameField, strings.ToLower(profile.Name)))
	if err := d.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index profile %s: %w", profile.ID, err)
	}
	return nil
}

// Search returns the ids of profiles whose name contains the query,
// case-insensitively. Wildcard characters of the query are taken literally
// by dropping them.
func (d *DirectoryIndex) Search(ctx context.Context, query string, limit int) ([]string, error) {
	needle := wildcardReplacer.Replace(strings.ToLower(strings.TrimSpace(query)))
	if needle == "" {
		return nil, nil
	}
	q := bluge.NewWildcardQuery("*" + needle + "*").SetField(fullNameField)

	reader, err := d.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			d.log.Warn("Failed to close directory reader", "error", err)
		}
	}()

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}
	var ids []string
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}
