package search

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

const (
	indexDirName  = "catalog.bleve"
	stampFileName = "catalog.mapping"
	batchSize     = 500
)

// mappingRevision changes whenever buildIndexMapping does. An on-disk index
// stamped with another revision is dropped on open.
const mappingRevision = "catalog-2"

// SearchIndex is the storefront catalog index: products, published recipes
// and published collections. It is safe for concurrent use; Rebuild excludes
// every other call while it swaps the underlying index.
type SearchIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	dir    string // empty for in-memory indexes
	logger *slog.Logger
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage; empty keeps it in memory
	Logger   *slog.Logger // Discards when nil
}

// NewSearchIndex opens the catalog index under DataPath, creating it when
// missing. An unreadable index, or one built with another mapping revision,
// is replaced by an empty index and the caller reindexes from the store.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	s := &SearchIndex{logger: opts.Logger}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if opts.DataPath != "" {
		s.dir = filepath.Join(opts.DataPath, indexDirName)
	}

	index, err := s.open(filepath.Join(opts.DataPath, stampFileName))
	if err != nil {
		return nil, err
	}
	s.index = index
	return s, nil
}

// open returns the existing index when its stamp matches, otherwise a fresh one.
func (s *SearchIndex) open(stampPath string) (bleve.Index, error) {
	if s.dir == "" {
		return s.create()
	}

	stamp, err := os.ReadFile(stampPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Info("no catalog index stamp, creating index", "path", s.dir)
	case err != nil:
		s.logger.Warn("unreadable catalog index stamp, recreating index", "error", err)
	case strings.TrimSpace(string(stamp)) != mappingRevision:
		s.logger.Info("catalog index mapping changed, recreating index",
			"old_revision", strings.TrimSpace(string(stamp)),
			"new_revision", mappingRevision,
		)
	default:
		index, openErr := bleve.Open(s.dir)
		if openErr == nil {
			s.logger.Info("opened catalog index", "path", s.dir)
			return index, nil
		}
		s.logger.Warn("failed to open catalog index, recreating", "path", s.dir, "error", openErr)
	}

	index, err := s.create()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(stampPath, []byte(mappingRevision), 0o644); err != nil {
		s.logger.Warn("failed to write catalog index stamp", "error", err)
	}
	return index, nil
}

// create builds an empty index, removing whatever is on disk first.
func (s *SearchIndex) create() (bleve.Index, error) {
	if s.dir == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return index, nil
	}

	if err := os.RemoveAll(s.dir); err != nil {
		return nil, fmt.Errorf("remove catalog index: %w", err)
	}
	index, err := bleve.New(s.dir, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create catalog index: %w", err)
	}
	return index, nil
}

// Close closes the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument adds or replaces one document.
func (s *SearchIndex) IndexDocument(doc *SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexDocuments adds or replaces docs, committing in batches.
func (s *SearchIndex) IndexDocuments(docs []*SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for chunk := range slices.Chunk(docs, batchSize) {
		batch := s.index.NewBatch()
		for _, doc := range chunk {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch of %d: %w", len(chunk), err)
		}
	}
	return nil
}

// DeleteDocument removes a document. Unknown IDs are not an error.
func (s *SearchIndex) DeleteDocument(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DeleteDocuments removes several documents in one batch.
func (s *SearchIndex) DeleteDocuments(ids []string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return s.index.Batch(batch)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index with an empty one.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close catalog index: %w", err)
	}
	index, err := s.create()
	if err != nil {
		return err
	}
	s.index = index
	s.logger.Info("catalog index emptied for rebuild", "path", s.dir)
	return nil
}
