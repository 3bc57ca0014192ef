package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github/itish2003/meetassist/models"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

var meetingIDPattern = regexp.MustCompile(`\d+`)

// FileIngester extracts transcript files and hands them to the RAG service
// together with their content hash.
type FileIngester struct {
	rag       RAGService
	extractor *Extractor
}

func NewFileIngester(rag RAGService, extractor *Extractor) *FileIngester {
	return &FileIngester{rag: rag, extractor: extractor}
}

// Ingest indexes the file at path as meetingID. It returns ErrAlreadyIngested
// when the same bytes were ingested before.
func (f *FileIngester) Ingest(ctx context.Context, path string, meetingID int64, source string) (*models.IngestResponse, error) {
	hash, err := calculateFileHash(path)
	if err != nil {
		return nil, fmt.Errorf("could not hash file: %w", err)
	}
	text, err := f.extractor.ExtractTextFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not extract text: %w", err)
	}
	return f.rag.IngestTranscript(ctx, models.IngestTranscriptRequest{
		MeetingID:        meetingID,
		Text:             text,
		SourcePlatform:   source,
		TranscriptFormat: FormatForFile(path),
		ContentHash:      hash,
	})
}

// TranscriptWatcher ingests transcript files dropped into a directory.
// The index is append-only, so removed or renamed files keep their vectors.
type TranscriptWatcher struct {
	ingester *FileIngester
	root     string
	patterns []string
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewTranscriptWatcher creates a watcher for dir. patterns are doublestar
// globs matched against paths relative to dir.
func NewTranscriptWatcher(ingester *FileIngester, dir string, patterns []string) *TranscriptWatcher {
	return &TranscriptWatcher{
		ingester: ingester,
		root:     filepath.Clean(dir),
		patterns: patterns,
		debounce: DefaultDebounce,
		pending:  make(map[string]*time.Timer),
	}
}

// Matches reports whether path is a supported file selected by the patterns.
func (w *TranscriptWatcher) Matches(path string) bool {
	if !SupportedFile(path) {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// MeetingIDFromPath returns the first integer in the file name, so
// "standup-42.vtt" and "42_notes.txt" both belong to meeting 42.
func MeetingIDFromPath(path string) (int64, bool) {
	m := meetingIDPattern.FindString(filepath.Base(path))
	if m == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(m, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// IngestFile ingests one file under the meeting id found in its name. Files
// whose content was already ingested are skipped without error.
func (w *TranscriptWatcher) IngestFile(ctx context.Context, path string) error {
	meetingID, ok := MeetingIDFromPath(path)
	if !ok {
		return fmt.Errorf("no meeting id in file name %s", filepath.Base(path))
	}
	resp, err := w.ingester.Ingest(ctx, path, meetingID, "file")
	if errors.Is(err, ErrAlreadyIngested) {
		log.Printf("INDEXER: %s is unchanged, skipping.", path)
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("INDEXER: Indexed %s as meeting %d (%d chunks).", path, meetingID, resp.IngestedChunks)
	return nil
}

// ScanDirectory ingests every matching file already under the root.
func (w *TranscriptWatcher) ScanDirectory(ctx context.Context) {
	log.Printf("INDEXER: Starting directory scan for: %s", w.root)
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !w.Matches(path) {
			return nil
		}
		if err := w.IngestFile(ctx, path); err != nil {
			log.Printf("INDEXER ERROR: Failed to process file %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("INDEXER ERROR: Error walking the path %s: %v", w.root, err)
	}
	log.Println("INDEXER: Directory scan finished.")
}

// Watch blocks until ctx is cancelled, ingesting files as they are written.
// fsnotify is not recursive, so every subdirectory gets its own watch.
func (w *TranscriptWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addTree(watcher, w.root); err != nil {
		return err
	}
	log.Printf("WATCHER: Watching directory: %s", w.root)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, watcher, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("WATCHER ERROR: %v", err)
		case <-ctx.Done():
			log.Println("WATCHER: Context cancelled, shutting down watcher.")
			w.stopPending()
			return nil
		}
	}
}

func (w *TranscriptWatcher) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(watcher, event.Name); err != nil {
				log.Printf("WATCHER ERROR: %v", err)
			}
			return
		}
	}
	if !w.Matches(event.Name) {
		return
	}

	switch {
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		w.schedule(ctx, event.Name)
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		log.Printf("WATCHER: %s removed or renamed; its chunks stay in the append-only index.", event.Name)
	}
}

// schedule ingests path once no write has arrived for the debounce period.
func (w *TranscriptWatcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := w.IngestFile(ctx, path); err != nil {
			log.Printf("WATCHER ERROR: Failed to process file %s: %v", path, err)
		}
	})
}

func (w *TranscriptWatcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *TranscriptWatcher) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add path %s to watcher: %w", path, err)
		}
		return nil
	})
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
