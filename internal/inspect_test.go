package internal

import (
	"bytes"
	"chat-sync/repositories"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Scan_Describes_Stored_Documents(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openDB(t)

	messages := repositories.NewMessageRepository(db, slog.Default(), nil)
	_, err := messages.Append(ctx, repositories.DiskMessage{Thread: "bob_alice", Sender: "alice", Receiver: "bob", Text: "hello"})
	req.NoError(err)
	name := "Alice"
	_, err = repositories.NewProfileRepository(db).Merge(ctx, "alice", repositories.DiskProfilePatch{Name: &name})
	req.NoError(err)

	rows, err := Scan(db, "msg:")
	req.NoError(err)
	req.Len(rows, 1)
	req.Equal("MESSAGE", rows[0].Type)
	req.Equal("bob_alice", rows[0].Namespace)
	req.Equal("alice: hello", rows[0].Detail)
	req.NotEqual("--:--:--", rows[0].Timestamp)

	rows, err = Scan(db, "user:")
	req.NoError(err)
	req.Len(rows, 1)
	req.Equal("PROFILE", rows[0].Type)
	req.Equal("alice", rows[0].EntityID)
	req.True(strings.HasPrefix(rows[0].Detail, "Alice"))

	var out bytes.Buffer
	WriteTable(&out, rows)
	req.Contains(out.String(), "user:alice")
}

func Test_DocumentMapper_Unknown_Key_Is_Raw(t *testing.T) {
	row := DocumentMapper("other:1", []byte{0xff, 0x01})
	require.Equal(t, "RAW", row.Type)
	require.Equal(t, "Size: 2 bytes", row.Detail)
}

func Test_DocumentMapper_Truncates_Long_Detail(t *testing.T) {
	require.Len(t, []rune(truncate(strings.Repeat("é", 100))), detailWidth)
}

func Test_Config_Origins_And_CharacterRune(t *testing.T) {
	req := require.New(t)
	req.Equal([]string{"http://a", "http://b"}, Config{AllowedOrigins: " http://a, ,http://b"}.Origins())

	r, err := CharacterRune("*")
	req.NoError(err)
	req.Equal('*', r)
	_, err = CharacterRune("**")
	req.Error(err)
}
