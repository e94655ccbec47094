//go:generate go run go.uber.org/mock/mockgen -source=post.go -destination=../mocks/mock_post_repository.go -package=mocks
package repositories

import (
	"chat-sync/errors"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
)

type IPostRepository interface {
	Create(ctx context.Context, post DiskPost) (DiskPost, error)
	List(ctx context.Context, limit int) ([]DiskPost, error)
	Get(ctx context.Context, id uuid.UUID) (DiskPost, error)
	Update(ctx context.Context, id uuid.UUID, mutate func(DiskPost) (DiskPost, error)) (DiskPost, error)
}

type PostRepository struct {
	db         *badger.DB
	log        *slog.Logger
	maxRetries int
	mu         sync.Mutex
	clock      serverClock
}

func NewPostRepository(db *badger.DB, log *slog.Logger) *PostRepository {
	return &PostRepository{db: db, log: log, maxRetries: 5, clock: seededClock(db, log, postPrefix, 1)}
}

// WithClock replaces the commit clock, mostly for tests.
func (p *PostRepository) WithClock(now func() time.Time) *PostRepository {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock.now = now
	return p
}

type DiskPost struct {
	ID          uuid.UUID
	Author      string
	AuthorName  string
	AuthorPhoto string
	Content     string
	Language    string
	At          time.Time
	LikedBy     []string
	Comments    []DiskComment
}

type DiskComment struct {
	Author      string
	AuthorName  string
	AuthorPhoto string
	Text        string
	At          time.Time
}

const (
	postPrefix      = "post:"
	postIndexPrefix = "idx:post:"
)

// Posts live under "post:{timestamp_padded}:{uuid}" so that a reverse scan
// yields the feed newest first. "idx:post:{uuid}" points back to that key.
func postKey(post DiskPost) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", postPrefix, post.At.UnixNano(), post.ID))
}

func postIndexKey(id uuid.UUID) []byte {
	return []byte(postIndexPrefix + id.String())
}

// Create stores a new post with a server-assigned id and timestamp.
func (p *PostRepository) Create(ctx context.Context, post DiskPost) (DiskPost, error) {
	if err := ctx.Err(); err != nil {
		return DiskPost{}, err
	}
	post.ID = uuid.New()

	p.mu.Lock()
	defer p.mu.Unlock()
	post.At = p.clock.next()

	data, err := marshalPost(post)
	if err != nil {
		return DiskPost{}, err
	}
	err = p.db.Update(func(txn *badger.Txn) error {
		key := postKey(post)
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(postIndexKey(post.ID), key)
	})
	if err != nil {
		return DiskPost{}, err
	}
	return post, nil
}

// List returns at most limit posts, newest first. A non-positive limit means no limit.
func (p *PostRepository) List(ctx context.Context, limit int) ([]DiskPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var posts []DiskPost
	err := p.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(postPrefix)
		for it.Seek(append(append([]byte{}, prefix...), 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(posts) == limit {
				break
			}
			err := it.Item().Value(func(val []byte) error {
				post, err := unmarshalPost(val)
				if err != nil {
					return err
				}
				posts = append(posts, post)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return posts, err
}

func (p *PostRepository) Get(ctx context.Context, id uuid.UUID) (DiskPost, error) {
	if err := ctx.Err(); err != nil {
		return DiskPost{}, err
	}
	var post DiskPost
	err := p.db.View(func(txn *badger.Txn) error {
		var err error
		post, _, err = readPost(txn, id)
		return err
	})
	return post, err
}

// Update runs a read-modify-write of one post inside a transaction. Concurrent
// likes on the same post conflict in badger; the transaction is replayed.
func (p *PostRepository) Update(ctx context.Context, id uuid.UUID,
	mutate func(DiskPost) (DiskPost, error)) (DiskPost, error) {
	var updated DiskPost
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return DiskPost{}, err
		}
		err := p.db.Update(func(txn *badger.Txn) error {
			current, key, err := readPost(txn, id)
			if err != nil {
				return err
			}
			next, err := mutate(current)
			if err != nil {
				return err
			}
			// identity and ordering fields are immutable
			next.ID, next.At = current.ID, current.At
			for i := range next.Comments {
				if next.Comments[i].At.IsZero() {
					next.Comments[i].At = p.nextTimestamp()
				}
			}
			data, err := marshalPost(next)
			if err != nil {
				return err
			}
			updated = next
			return txn.Set(key, data)
		})
		if stderrors.Is(err, badger.ErrConflict) && attempt < p.maxRetries {
			p.log.Debug("Post update conflict, retrying", "post_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return DiskPost{}, err
		}
		return updated, nil
	}
}

func (p *PostRepository) nextTimestamp() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clock.next()
}

func readPost(txn *badger.Txn, id uuid.UUID) (DiskPost, []byte, error) {
	idx, err := txn.Get(postIndexKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return DiskPost{}, nil, fmt.Errorf("%w: post %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return DiskPost{}, nil, err
	}
	key, err := idx.ValueCopy(nil)
	if err != nil {
		return DiskPost{}, nil, err
	}
	item, err := txn.Get(key)
	if err != nil {
		return DiskPost{}, nil, err
	}
	var post DiskPost
	err = item.Value(func(val []byte) error {
		post, err = unmarshalPost(val)
		return err
	})
	return post, key, err
}

func marshalPost(post DiskPost) ([]byte, error) {
	comments := lo.Map(post.Comments, func(c DiskComment, _ int) any {
		return map[string]any{
			"userId":       c.Author,
			"userName":     c.AuthorName,
			"userPhotoURL": c.AuthorPhoto,
			"text":         c.Text,
			"createdAt":    formatTime(c.At),
		}
	})
	likedBy := lo.Map(post.LikedBy, func(id string, _ int) any { return id })
	return marshalDocument(map[string]any{
		"id":           post.ID.String(),
		"userId":       post.Author,
		"userName":     post.AuthorName,
		"userPhotoURL": post.AuthorPhoto,
		"content":      post.Content,
		"language":     post.Language,
		"createdAt":    formatTime(post.At),
		"likedBy":      likedBy,
		"comments":     comments,
	})
}

func unmarshalPost(b []byte) (DiskPost, error) {
	doc, err := unmarshalDocument(b)
	if err != nil {
		return DiskPost{}, err
	}
	id, err := uuid.Parse(stringField(doc, "id"))
	if err != nil {
		return DiskPost{}, err
	}
	at, err := timeField(doc, "createdAt")
	if err != nil {
		return DiskPost{}, err
	}
	comments := make([]DiskComment, 0)
	for _, c := range structsField(doc, "comments") {
		comment, err := unmarshalComment(c)
		if err != nil {
			return DiskPost{}, err
		}
		comments = append(comments, comment)
	}
	return DiskPost{
		ID:          id,
		Author:      stringField(doc, "userId"),
		AuthorName:  stringField(doc, "userName"),
		AuthorPhoto: stringField(doc, "userPhotoURL"),
		Content:     stringField(doc, "content"),
		Language:    stringField(doc, "language"),
		At:          at,
		LikedBy:     stringsField(doc, "likedBy"),
		Comments:    comments,
	}, nil
}

func unmarshalComment(doc *structpb.Struct) (DiskComment, error) {
	at, err := timeField(doc, "createdAt")
	if err != nil {
		return DiskComment{}, err
	}
	return DiskComment{
		Author:      stringField(doc, "userId"),
		AuthorName:  stringField(doc, "userName"),
		AuthorPhoto: stringField(doc, "userPhotoURL"),
		Text:        stringField(doc, "text"),
		At:          at,
	}, nil
}
