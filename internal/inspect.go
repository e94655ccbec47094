package internal

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// InspectRow is one stored document as shown by the inspector.
type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Namespace string
	Detail    string
}

const detailWidth = 60

// DocumentMapper describes the message, profile and post documents; any
// other key is reported as raw bytes.
func DocumentMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Namespace: "default",
		Detail:    fmt.Sprintf("Size: %d bytes", len(val)),
	}
	if strings.HasPrefix(key, "idx:") {
		row.Type = "INDEX"
		row.Detail = string(val)
		return row
	}

	var doc structpb.Struct
	if err := proto.Unmarshal(val, &doc); err != nil {
		return row
	}
	fields := doc.GetFields()
	str := func(name string) string { return fields[name].GetStringValue() }

	switch {
	case strings.HasPrefix(key, "msg:"):
		row.Type = "MESSAGE"
		row.Namespace = str("thread")
		row.Timestamp = clock(str("createdAt"))
		row.Detail = fmt.Sprintf("%s: %s", str("senderId"), str("text"))
	case strings.HasPrefix(key, "user:"):
		row.Type = "PROFILE"
		row.Namespace = "users"
		row.Timestamp = clock(str("updatedAt"))
		row.Detail = fmt.Sprintf("%s (%s)", str("name"), str("theme"))
	case strings.HasPrefix(key, "post:"):
		row.Type = "POST"
		row.Namespace = "feed"
		row.Timestamp = clock(str("createdAt"))
		row.Detail = fmt.Sprintf("%s: %s [%d likes, %d comments]", str("userName"), str("content"),
			len(fields["likedBy"].GetListValue().GetValues()),
			len(fields["comments"].GetListValue().GetValues()))
	default:
		return row
	}
	row.EntityID = short(str("id"))
	row.Detail = truncate(row.Detail)
	return row
}

// Scan collects the documents stored under prefix.
func Scan(db *badger.DB, prefix string) ([]InspectRow, error) {
	var rows []InspectRow
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				rows = append(rows, DocumentMapper(string(item.Key()), val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

// WriteTable renders rows as an aligned text table.
func WriteTable(w io.Writer, rows []InspectRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Namespace", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, r := range rows {
		table.Append([]string{r.Key, r.Type, r.Timestamp, r.EntityID, r.Namespace, r.Detail})
	}
	table.Render()
}

func clock(raw string) string {
	if len(raw) < len("2006-01-02T15:04:05") {
		return "--:--:--"
	}
	return raw[len("2006-01-02T"):len("2006-01-02T15:04:05")]
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "--------"
	}
	return id
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= detailWidth {
		return s
	}
	return string(r[:detailWidth-3]) + "..."
}
