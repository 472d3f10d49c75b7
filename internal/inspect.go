package internal

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const maxDetailLength = 120

// InspectablePrefixes are the keyspaces served over HTTP. Users hold password
// hashes and are never listed.
var InspectablePrefixes = []string{"file:", "part:", "fragment:"}

func inspectable(prefix string) bool {
	return lo.SomeBy(InspectablePrefixes, func(allowed string) bool {
		return strings.HasPrefix(prefix, allowed)
	})
}

type InspectRow struct {
	Key    string
	Size   int
	Detail string
}

type RowMapper func(key string, val []byte) InspectRow

// Scan collects one row per entry under prefix, in key order.
func Scan(db *badger.DB, prefix string, mapper RowMapper) ([]InspectRow, error) {
	if mapper == nil {
		mapper = DefaultMapper
	}
	var rows []InspectRow
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				rows = append(rows, mapper(string(item.KeyCopy(nil)), val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

// Render writes rows as a borderless text table.
func Render(w io.Writer, rows []InspectRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Size", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, row := range rows {
		table.Append([]string{row.Key, strconv.Itoa(row.Size), row.Detail})
	}
	table.Render()
}

// InspectHandler dumps every entry under ?prefix= as a plain text table.
// Values of fragments are raw bytes; only their size is shown. A prefix outside
// InspectablePrefixes is refused with 403.
func InspectHandler(db *badger.DB, mapper RowMapper, defaultPrefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = defaultPrefix
		}
		if !inspectable(prefix) {
			http.Error(w, "prefix not inspectable: "+prefix, http.StatusForbidden)
			return
		}
		rows, err := Scan(db, prefix, mapper)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		Render(w, rows)
	}
}

// DefaultMapper shows JSON values compacted and truncated, anything else by size only.
func DefaultMapper(key string, val []byte) InspectRow {
	row := InspectRow{Key: key, Size: len(val), Detail: "-"}
	if json.Valid(val) {
		detail := string(val)
		if len(detail) > maxDetailLength {
			detail = detail[:maxDetailLength] + "…"
		}
		row.Detail = detail
	}
	return row
}
