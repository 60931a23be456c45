// Package index builds and queries the per-pet retrieval index: fetched pet
// documents are split into overlapping text windows, embedded, and persisted
// into a named vector collection keyed by pet id.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"runtime"
	"strconv"
	"time"
	"unicode/utf8"

	chromem "github.com/philippgille/chromem-go"
)

var (
	// ErrNoDocumentsLoaded means no text could be extracted from any document.
	ErrNoDocumentsLoaded = errors.New("no documents loaded")
	// ErrEmbedding wraps failures from the embedding service.
	ErrEmbedding = errors.New("embedding service failed")
	// ErrPersistence means the vector store write failed even after the
	// delete-and-recreate retry.
	ErrPersistence = errors.New("vector persistence failed")
)

// previewLen bounds the cited fragment text returned to callers.
const previewLen = 200

// Embedder is the embedding half of the provider contract.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// Config controls splitting, retrieval size and fetch bounds.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	FetchTimeout time.Duration
}

// Builder constructs per-pet retrieval indexes.
type Builder struct {
	db     *chromem.DB
	embed  Embedder
	cfg    Config
	logger *log.Logger
	client *http.Client

	// extract is swapped in tests to avoid real PDF fixtures.
	extract func(data []byte) ([]docPage, error)
}

func NewBuilder(db *chromem.DB, embed Embedder, cfg Config, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(log.Writer(), "[INDEX] ", log.LstdFlags)
	}
	return &Builder{
		db:      db,
		embed:   embed,
		cfg:     cfg,
		logger:  logger,
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		extract: extractPages,
	}
}

// CollectionName is the per-pet vector collection identifier.
func CollectionName(petID string) string {
	return "pet_" + petID + "_documents"
}

type window struct {
	text   string
	source string
	page   int
	ord    int
}

// Build fetches the given document URLs, splits their text into overlapping
// windows, embeds them and persists the result into the pet's collection.
// Individual URL failures are logged and skipped; zero extracted windows is
// ErrNoDocumentsLoaded. A failed collection write is retried once against a
// freshly recreated collection before surfacing ErrPersistence.
func (b *Builder) Build(ctx context.Context, petID string, urls []string) (*Index, error) {
	var windows []window
	for _, u := range urls {
		data, err := b.fetchURL(ctx, u)
		if err != nil {
			b.logger.Printf("skipping document %s: %v", u, err)
			continue
		}
		pages, err := b.extract(data)
		if err != nil {
			b.logger.Printf("skipping document %s: %v", u, err)
			continue
		}
		for _, p := range pages {
			for i, chunk := range splitWindows(p.Text, b.cfg.ChunkSize, b.cfg.ChunkOverlap) {
				windows = append(windows, window{text: chunk, source: u, page: p.Number, ord: i})
			}
		}
	}
	if len(windows) == 0 {
		return nil, ErrNoDocumentsLoaded
	}

	texts := make([]string, len(windows))
	for i, w := range windows {
		texts[i] = w.text
	}
	vecs, err := b.embed.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vecs) != len(windows) {
		return nil, fmt.Errorf("%w: got %d vectors for %d windows", ErrEmbedding, len(vecs), len(windows))
	}

	docs := make([]chromem.Document, len(windows))
	for i, w := range windows {
		docs[i] = chromem.Document{
			ID:        windowID(w),
			Embedding: normalize(vecs[i]),
			Content:   w.text,
			Metadata: map[string]string{
				"source": w.source,
				"page":   strconv.Itoa(w.page),
			},
		}
	}

	name := CollectionName(petID)
	col, err := b.db.GetOrCreateCollection(name, nil, b.queryEmbedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		b.logger.Printf("collection %s write failed, recreating: %v", name, err)
		if err := b.db.DeleteCollection(name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		col, err = b.db.GetOrCreateCollection(name, nil, b.queryEmbedding)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}
	return &Index{col: col, topK: b.cfg.TopK}, nil
}

// queryEmbedding embeds one query text via the batch contract.
func (b *Builder) queryEmbedding(ctx context.Context, text string) ([]float32, error) {
	vecs, err := b.embed.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one text", ErrEmbedding, len(vecs))
	}
	return normalize(vecs[0]), nil
}

func (b *Builder) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// windowID is deterministic per (source, page, ordinal), so rebuilding the
// same documents upserts in place instead of duplicating.
func windowID(w window) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", w.source, w.page, w.ord)))
	return hex.EncodeToString(sum[:])
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	n := float32(math.Sqrt(sum))
	if n == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

// Fragment is a cited retrieval hit: a preview of the window text plus its
// originating document URL and page.
type Fragment struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
}

// Index is an opaque similarity-search handle over one pet's collection.
type Index struct {
	col  *chromem.Collection
	topK int
}

// Empty reports whether the handle holds no searchable windows. Safe on nil.
func (ix *Index) Empty() bool {
	return ix == nil || ix.col.Count() == 0
}

// Search returns the top-K most similar windows for the query. K is clamped
// to the collection size.
func (ix *Index) Search(ctx context.Context, query string) ([]Fragment, error) {
	if ix.Empty() {
		return nil, nil
	}
	k := ix.topK
	if k > ix.col.Count() {
		k = ix.col.Count()
	}
	results, err := ix.col.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	frags := make([]Fragment, 0, len(results))
	for _, r := range results {
		page, _ := strconv.Atoi(r.Metadata["page"])
		frags = append(frags, Fragment{
			Content: preview(r.Content),
			Source:  r.Metadata["source"],
			Page:    page,
		})
	}
	return frags, nil
}

// preview truncates to previewLen bytes, backing off only over a trailing
// incomplete rune so the cut never splits a multibyte character.
func preview(s string) string {
	if len(s) <= previewLen {
		return s
	}
	cut := previewLen
	for cut > previewLen-utf8.UTFMax && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
