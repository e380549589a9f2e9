package vectorstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"github.com/pkg/errors"

	"github.com/policydesk/policydesk/plugin/docload"
)

// collectionName is the fixed collection holding the embedded policy document.
const collectionName = "policy_documents"

// SearchResult is a single semantic-search hit.
type SearchResult struct {
	ChunkID string
	Content string
	Score   float32
}

// Store wraps chromem-go with disk persistence and a single policy collection.
type Store struct {
	mu      sync.RWMutex
	db      *chromem.DB
	embedFn chromem.EmbeddingFunc
}

// New creates (or opens) the persistent vector store at dataDir/vectorstore/.
// embedFunc is the embedding function to use — pass chromem.NewEmbeddingFuncOpenAICompat
// pointed at the configured embeddings endpoint.
func New(dataDir string, embedFunc chromem.EmbeddingFunc) (*Store, error) {
	dir := filepath.Join(dataDir, "vectorstore")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, errors.Wrap(err, "create vectorstore dir")
	}
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, errors.Wrap(err, "open vectorstore")
	}
	return &Store{db: db, embedFn: embedFunc}, nil
}

// NewInMemory creates a non-persistent store, used by tests.
func NewInMemory(embedFunc chromem.EmbeddingFunc) *Store {
	return &Store{db: chromem.NewDB(), embedFn: embedFunc}
}

func (s *Store) collection() (*chromem.Collection, error) {
	col := s.db.GetCollection(collectionName, s.embedFn)
	if col == nil {
		var err error
		col, err = s.db.CreateCollection(collectionName, nil, s.embedFn)
		if err != nil {
			return nil, errors.Wrap(err, "create policy collection")
		}
	}
	return col, nil
}

// UpsertChunks indexes (or re-indexes) document chunks. Chunk IDs are derived
// from the chunk index so re-running ingestion overwrites in place.
func (s *Store) UpsertChunks(ctx context.Context, chunks []docload.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.collection()
	if err != nil {
		return err
	}
	for _, c := range chunks {
		doc := chromem.Document{
			ID:      fmt.Sprintf("chunk-%04d", c.Index),
			Content: c.Text,
			Metadata: map[string]string{
				"index": strconv.Itoa(c.Index),
			},
		}
		if err := col.AddDocument(ctx, doc); err != nil {
			return errors.Wrapf(err, "upsert chunk %d", c.Index)
		}
	}
	return nil
}

// SearchSimilar returns the top-k chunks most semantically similar to the
// query, ranked by descending similarity.
func (s *Store) SearchSimilar(ctx context.Context, query string, k int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection()
	if err != nil {
		return nil, err
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	var results []chromem.Result

	// chromem-go sometimes throws "nResults must be <= number of documents"
	// despite Count checks. Step down k if it fails.
	for attemptK := k; attemptK > 0; attemptK-- {
		results, err = col.Query(ctx, query, attemptK, nil, nil)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResult{
			ChunkID: r.ID,
			Content: r.Content,
			Score:   r.Similarity,
		})
	}
	return out, nil
}

// Count reports how many chunks are indexed.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col := s.db.GetCollection(collectionName, s.embedFn)
	if col == nil {
		return 0
	}
	return col.Count()
}
