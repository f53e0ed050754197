package main

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var ledgerBucket = []byte("documents")

// LedgerEntry records what the index holds for one file: the stable document
// id its segments are stored under, the checksum of the text it was ingested
// from, and the leading excerpt handed to the context assembler as raw text.
type LedgerEntry struct {
	DocID   string `json:"doc_id"`
	Crc     uint32 `json:"crc"`
	Excerpt string `json:"excerpt"`
}

// Ledger is the local record of ingested files, keyed by file path. It lets
// Sync decide what changed without scanning vector-store metadata.
type Ledger struct {
	db *bolt.DB
}

func OpenLedger(path string) (*Ledger, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(ledgerBucket)
		return e
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}

	return &Ledger{db: db}, nil
}

func (l *Ledger) Put(file string, entry LedgerEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode ledger entry: %w", err)
	}

	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ledgerBucket).Put([]byte(file), raw)
	})
}

func (l *Ledger) Get(file string) (LedgerEntry, bool, error) {
	var entry LedgerEntry
	found := false

	err := l.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(ledgerBucket).Get([]byte(file))
		if raw == nil {
			return nil
		}

		found = true
		return json.Unmarshal(raw, &entry)
	})
	if err != nil {
		return LedgerEntry{}, false, fmt.Errorf("failed to read ledger entry: %w", err)
	}

	return entry, found, nil
}

func (l *Ledger) Delete(file string) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ledgerBucket).Delete([]byte(file))
	})
}

func (l *Ledger) All() (map[string]LedgerEntry, error) {
	entries := make(map[string]LedgerEntry)

	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(ledgerBucket).ForEach(func(k, v []byte) error {
			var entry LedgerEntry
			if e := json.Unmarshal(v, &entry); e != nil {
				return e
			}

			entries[string(k)] = entry
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	return entries, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
