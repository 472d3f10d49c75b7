package main

import (
	"flag"
	"fmt"
	"log"
	"nfinite/internal"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Dumps a stopped hub database. Use the hub's INSPECT_PATH for a running one.
func main() {
	dbPath := flag.String("db", "./data/hub", "Path to badger DB")
	// Fragments are raw bytes, the file catalog is the interesting part
	prefix := flag.String("prefix", "file:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	rows, err := internal.Scan(db, *prefix, nil)
	if err != nil {
		log.Fatal(err)
	}
	internal.Render(os.Stdout, rows)
	fmt.Printf("%d entries under %q\n", len(rows), *prefix)
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		// A hub killed mid-write leaves a vlog that needs truncating before a read-only open
		if strings.Contains(err.Error(), "Log truncate required") {
			repaired, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil).WithBypassLockGuard(true))
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			_ = repaired.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
