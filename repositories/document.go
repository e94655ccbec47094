package repositories

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Documents are schema-less: each record is a protobuf Struct marshalled to
// bytes. Timestamps are kept as RFC3339Nano strings because Struct numbers are
// float64 and would lose nanosecond precision.

func marshalDocument(fields map[string]any) ([]byte, error) {
	doc, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	return proto.Marshal(doc)
}

func unmarshalDocument(b []byte) (*structpb.Struct, error) {
	var doc structpb.Struct
	if err := proto.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func stringField(doc *structpb.Struct, name string) string {
	return doc.GetFields()[name].GetStringValue()
}

func timeField(doc *structpb.Struct, name string) (time.Time, error) {
	raw := stringField(doc, name)
	if raw == "" {
		return time.Time{}, nil
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %s: %w", name, err)
	}
	return at.UTC(), nil
}

func formatTime(at time.Time) string {
	if at.IsZero() {
		return ""
	}
	return at.UTC().Format(time.RFC3339Nano)
}

func stringsField(doc *structpb.Struct, name string) []string {
	values := doc.GetFields()[name].GetListValue().GetValues()
	res := make([]string, 0, len(values))
	for _, v := range values {
		res = append(res, v.GetStringValue())
	}
	return res
}

func structsField(doc *structpb.Struct, name string) []*structpb.Struct {
	values := doc.GetFields()[name].GetListValue().GetValues()
	res := make([]*structpb.Struct, 0, len(values))
	for _, v := range values {
		if s := v.GetStructValue(); s != nil {
			res = append(res, s)
		}
	}
	return res
}

// serverClock hands out strictly increasing commit timestamps so that two
// writes never share a createdAt, even when the wall clock stalls or steps back.
type serverClock struct {
	now  func() time.Time
	last time.Time
}

func (c *serverClock) next() time.Time {
	at := c.now().UTC()
	if !at.After(c.last) {
		at = c.last.Add(time.Nanosecond)
	}
	c.last = at
	return at
}

// seededClock starts after the newest commit already on disk, so a restart
// with a clock running behind never hands out an older createdAt.
func seededClock(db *badger.DB, log *slog.Logger, prefix string, segment int) serverClock {
	clock := serverClock{now: time.Now}
	last, err := latestKeyTime(db, prefix, segment)
	if err != nil {
		log.Warn("Could not read the latest commit time", "prefix", prefix, "error", err)
		return clock
	}
	clock.last = last
	return clock
}

// latestKeyTime returns the highest %019d timestamp found at position segment
// of the ':' separated keys under prefix. Values are not read.
func latestKeyTime(db *badger.DB, prefix string, segment int) (time.Time, error) {
	var latest int64
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			parts := strings.Split(string(it.Item().Key()), ":")
			if len(parts) <= segment {
				continue
			}
			ts, err := strconv.ParseInt(parts[segment], 10, 64)
			if err != nil {
				continue
			}
			latest = max(latest, ts)
		}
		return nil
	})
	if err != nil || latest == 0 {
		return time.Time{}, err
	}
	return time.Unix(0, latest).UTC(), nil
}
