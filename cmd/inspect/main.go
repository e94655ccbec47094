package main

import (
	"chat-sync/internal"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	// "msg:" by default, "user:", "post:" and "idx:" are also accepted
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	rows, err := internal.Scan(db, *prefix)
	if err != nil {
		log.Fatal(err)
	}
	internal.WriteTable(os.Stdout, rows)
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err == nil {
		return db, nil
	}
	if !strings.Contains(err.Error(), "Log truncate required") {
		return nil, err
	}

	// A crashed writer leaves the value log dirty, a read-write open truncates it.
	fmt.Fprintln(os.Stderr, "Value log needs truncation, repairing...")
	repaired, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil).WithBypassLockGuard(true))
	if err != nil {
		return nil, fmt.Errorf("repair failed: %w", err)
	}
	_ = repaired.Close()
	return badger.Open(opts)
}
