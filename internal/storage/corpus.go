package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Caia-Tech/caia-legal-corpus/pkg/document"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/filename"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/logging"
)

const (
	FilesDir   = "files"
	TextsDir   = "texts"
	CorpusFile = "corpus.jsonl"

	textExt       = "txt"
	recordVersion = 1
)

// ContentID is the stable identity of a document: the hex SHA-1 of its source URL.
func ContentID(sourceURL string) string {
	sum := sha1.Sum([]byte(sourceURL))
	return hex.EncodeToString(sum[:])
}

// CorpusStore writes artifacts under <root>/files and <root>/texts and appends
// records to <root>/corpus.jsonl. Existing files are never overwritten.
type CorpusStore struct {
	root         string
	filesDir     string
	textsDir     string
	corpusPath   string
	jurisdiction string
	metrics      MetricsCollector
	mu           sync.Mutex
}

// NewCorpusStore creates the directory layout under root. metrics may be nil.
func NewCorpusStore(root, jurisdiction string, metrics MetricsCollector) (*CorpusStore, error) {
	s := &CorpusStore{
		root:         root,
		filesDir:     filepath.Join(root, FilesDir),
		textsDir:     filepath.Join(root, TextsDir),
		corpusPath:   filepath.Join(root, CorpusFile),
		jurisdiction: jurisdiction,
		metrics:      metrics,
	}
	for _, dir := range []string{s.filesDir, s.textsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return s, nil
}

// Root returns the store's output directory.
func (s *CorpusStore) Root() string { return s.root }

// CorpusPath returns the path of the record log.
func (s *CorpusStore) CorpusPath() string { return s.corpusPath }

// Persist writes the binary artifact, then the text artifact, then appends
// the record. title must already be sanitized for the filesystem. The writes
// are ordered but not atomic: a failure leaves earlier writes in place and
// no record is appended. Documents failing Validate are rejected before any
// write.
func (s *CorpusStore) Persist(ctx context.Context, doc *document.ExtractedDocument, title string) (*document.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to persist %s: %w", doc.SourceURL, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := doc.ContentID
	if id == "" {
		id = ContentID(doc.SourceURL)
	}
	ext := doc.ContentType.Extension()

	name := filename.ResolveCrawl(title, document.IDPrefix(id), filename.InDirs(map[string]string{
		s.filesDir: ext,
		s.textsDir: textExt,
	}))
	binaryName := name.WithExt(ext).String()
	textName := name.WithExt(textExt).String()

	logger := logging.GetStorageLogger("persist", s.root)

	if err := s.timed("write_binary", len(doc.Raw), func() error {
		return writeNew(filepath.Join(s.filesDir, binaryName), doc.Raw)
	}); err != nil {
		return nil, err
	}

	if err := s.timed("write_text", len(doc.BodyText), func() error {
		return writeNew(filepath.Join(s.textsDir, textName), []byte(doc.BodyText))
	}); err != nil {
		return nil, err
	}

	record := &document.Record{
		ID:           id,
		Type:         doc.ContentType.RecordType(),
		Title:        doc.RepairedTitle,
		SourceURL:    doc.SourceURL,
		Jurisdiction: s.jurisdiction,
		Body:         doc.BodyText,
		Version:      recordVersion,
		Filename:     binaryName,
		TextFile:     textName,
	}
	if err := s.timed("append_record", len(doc.BodyText), func() error {
		return s.appendRecord(record)
	}); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("id", id).
		Str("filename", binaryName).
		Msg("Document persisted")
	return record, nil
}

func (s *CorpusStore) appendRecord(record *document.Record) error {
	f, err := os.OpenFile(s.corpusPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

func (s *CorpusStore) timed(op string, size int, fn func() error) error {
	start := time.Now()
	err := fn()
	if s.metrics != nil {
		s.metrics.RecordMetric(StorageMetrics{
			OperationType: op,
			Duration:      time.Since(start).Nanoseconds(),
			Success:       err == nil,
			Bytes:         size,
			Error:         err,
		})
	}
	return err
}

// writeNew creates path exclusively so an existing artifact is never replaced.
func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// Records reads every record in the store's corpus log.
func (s *CorpusStore) Records() ([]document.Record, error) {
	var out []document.Record
	err := ReadRecords(s.corpusPath, func(r document.Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

// ReadRecords streams the records of a corpus log to fn. A missing log holds
// no records.
func ReadRecords(path string, fn func(document.Record) error) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	for {
		var r document.Record
		if err := dec.Decode(&r); err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
}
