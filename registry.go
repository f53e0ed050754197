package main

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/gamma-omg/docqa/prompt"
)

// Pipeline is the ingestion side of the question-answering core.
type Pipeline interface {
	Ingest(ctx context.Context, docID, text string) error
	Forget(ctx context.Context, docID string) error
}

type FileReader interface {
	CanRead(path string) bool
	ReadText(path string) (string, error)
}

// DocRegistry keeps the vector index in step with a document directory.
// Sync reconciles the directory against the ledger on startup; Watch follows
// filesystem events afterwards. Documents are processed with bounded
// concurrency, but each document's chunk/embed/upsert steps stay sequential.
type DocRegistry struct {
	log              *slog.Logger
	root             string
	pipeline         Pipeline
	ledger           *Ledger
	readers          []FileReader
	mergeEventsDelay time.Duration
	syncWorkers      int

	mu     sync.Mutex
	timers map[string]*time.Timer
}

type diskDoc struct {
	file string
	text string
	crc  uint32
}

func (dr *DocRegistry) Sync(ctx context.Context) error {
	disk, err := dr.collectDocs()
	if err != nil {
		return err
	}

	diskMap := make(map[string]diskDoc, len(disk))
	for _, d := range disk {
		diskMap[d.file] = d
	}

	known, err := dr.ledger.All()
	if err != nil {
		return err
	}

	if err := dr.ingestNewDocuments(ctx, diskMap, known); err != nil {
		return err
	}

	return dr.forgetRemovedDocuments(ctx, diskMap, known)
}

func (dr *DocRegistry) collectDocs() (docs []diskDoc, err error) {
	err = filepath.Walk(dr.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		reader, e := dr.findReader(path)
		if e != nil {
			dr.log.Warn("unsupported file", "path", path)
			return nil
		}

		text, e := reader.ReadText(path)
		if e != nil {
			return e
		}

		docs = append(docs, diskDoc{
			file: path,
			text: text,
			crc:  crc32.Checksum([]byte(text), crc32.IEEETable),
		})

		return nil
	})

	return
}

func (dr *DocRegistry) ingestNewDocuments(ctx context.Context, disk map[string]diskDoc, known map[string]LedgerEntry) error {
	workers := dr.syncWorkers
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, doc := range disk {
		entry, ok := known[doc.file]
		if ok && entry.Crc == doc.crc {
			continue
		}

		g.Go(func() error {
			if err := dr.ingestDoc(gctx, doc); err != nil {
				return fmt.Errorf("failed to ingest document %s: %w", doc.file, err)
			}

			return nil
		})
	}

	return g.Wait()
}

func (dr *DocRegistry) forgetRemovedDocuments(ctx context.Context, disk map[string]diskDoc, known map[string]LedgerEntry) error {
	for file, entry := range known {
		if _, ok := disk[file]; ok {
			continue
		}

		if err := dr.pipeline.Forget(ctx, entry.DocID); err != nil {
			return fmt.Errorf("failed to remove document %s from index: %w", file, err)
		}
		if err := dr.ledger.Delete(file); err != nil {
			return err
		}
	}

	return nil
}

func (dr *DocRegistry) ingestDoc(ctx context.Context, doc diskDoc) error {
	docID := hashPath(doc.file)
	if entry, ok, err := dr.ledger.Get(doc.file); err != nil {
		return err
	} else if ok {
		if entry.Crc == doc.crc {
			return nil
		}
		docID = entry.DocID
	}

	if err := dr.pipeline.Ingest(ctx, docID, doc.text); err != nil {
		return err
	}

	return dr.ledger.Put(doc.file, LedgerEntry{
		DocID:   docID,
		Crc:     doc.crc,
		Excerpt: excerpt(doc.text),
	})
}

func (dr *DocRegistry) ingestPath(ctx context.Context, path string) error {
	reader, err := dr.findReader(path)
	if err != nil {
		dr.log.Warn("unsupported file", "path", path)
		return nil
	}

	text, err := reader.ReadText(path)
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", path, err)
	}

	return dr.ingestDoc(ctx, diskDoc{
		file: path,
		text: text,
		crc:  crc32.Checksum([]byte(text), crc32.IEEETable),
	})
}

func (dr *DocRegistry) forgetPath(ctx context.Context, path string) error {
	entry, ok, err := dr.ledger.Get(path)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := dr.pipeline.Forget(ctx, entry.DocID); err != nil {
		return fmt.Errorf("failed to remove document %s from index: %w", path, err)
	}

	return dr.ledger.Delete(path)
}

// Watch follows filesystem events under the document root until ctx is
// cancelled. Editors tend to emit bursts of writes for one save, so ingestion
// is debounced per path by mergeEventsDelay.
func (dr *DocRegistry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(dr.root); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dr.root, err)
	}

	dr.timers = make(map[string]*time.Timer)

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				dr.handleEvent(ctx, event)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				dr.log.Error("watcher error", "error", err)
			}
		}
	}()

	return nil
}

func (dr *DocRegistry) handleEvent(ctx context.Context, event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		dr.scheduleIngest(ctx, event.Name)

	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		if err := dr.forgetPath(ctx, event.Name); err != nil {
			dr.log.Error("failed to forget document", "path", event.Name, "error", err)
		}
	}
}

func (dr *DocRegistry) scheduleIngest(ctx context.Context, path string) {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if timer, ok := dr.timers[path]; ok {
		timer.Stop()
	}

	dr.timers[path] = time.AfterFunc(dr.mergeEventsDelay, func() {
		dr.mu.Lock()
		delete(dr.timers, path)
		dr.mu.Unlock()

		if err := dr.ingestPath(ctx, path); err != nil {
			dr.log.Error("failed to ingest document", "path", path, "error", err)
		}
	})
}

func (dr *DocRegistry) findReader(file string) (FileReader, error) {
	for _, r := range dr.readers {
		if r.CanRead(file) {
			return r, nil
		}
	}

	return nil, errors.New("no reader for file " + file)
}

func hashPath(path string) string {
	h := sha1.Sum([]byte(path))
	return hex.EncodeToString(h[:8])
}

func excerpt(text string) string {
	if len(text) <= prompt.RawExcerptChars {
		return text
	}

	return text[:prompt.RawExcerptChars]
}
