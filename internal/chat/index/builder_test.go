package index

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	chromem "github.com/philippgille/chromem-go"
)

// stubEmbedder returns a deterministic unit vector per text.
type stubEmbedder struct {
	fail bool
}

func (s *stubEmbedder) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	if s.fail {
		return nil, errors.New("quota exceeded")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := []float32{1, float32(len(t) % 7), float32(len(t) % 3)}
		out[i] = normalize(v)
	}
	return out, nil
}

func fakePages(data []byte) ([]docPage, error) {
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}
	return []docPage{{Number: 1, Text: string(data)}}, nil
}

func testBuilder(t *testing.T, embed Embedder) *Builder {
	t.Helper()
	b := NewBuilder(chromem.NewDB(), embed, Config{
		ChunkSize:    50,
		ChunkOverlap: 10,
		TopK:         4,
		FetchTimeout: 5 * time.Second,
	}, nil)
	b.extract = fakePages
	return b
}

func TestBuildSkipsFailedFetches(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Rex was vaccinated against rabies in March. Booster due next year."))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	b := testBuilder(t, &stubEmbedder{})
	ix, err := b.Build(context.Background(), "p1", []string{bad.URL, good.URL})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ix.Empty() {
		t.Fatal("expected non-empty index")
	}

	frags, err := ix.Search(context.Background(), "rabies vaccine")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(frags) == 0 {
		t.Fatal("expected fragments")
	}
	for _, f := range frags {
		if f.Source != good.URL {
			t.Fatalf("fragment cites wrong source: %+v", f)
		}
		if f.Page != 1 {
			t.Fatalf("fragment cites wrong page: %+v", f)
		}
		if len(f.Content) > 200 {
			t.Fatalf("preview exceeds 200 chars: %d", len(f.Content))
		}
	}
}

func TestBuildNoDocumentsLoaded(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	b := testBuilder(t, &stubEmbedder{})
	_, err := b.Build(context.Background(), "p1", []string{bad.URL})
	if !errors.Is(err, ErrNoDocumentsLoaded) {
		t.Fatalf("expected ErrNoDocumentsLoaded, got %v", err)
	}
}

func TestBuildEmbeddingFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("some veterinary notes"))
	}))
	defer good.Close()

	b := testBuilder(t, &stubEmbedder{fail: true})
	_, err := b.Build(context.Background(), "p1", []string{good.URL})
	if !errors.Is(err, ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestRebuildUpserts(t *testing.T) {
	text := strings.Repeat("The patient is a three year old beagle. ", 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(text))
	}))
	defer srv.Close()

	b := testBuilder(t, &stubEmbedder{})
	first, err := b.Build(context.Background(), "p1", []string{srv.URL})
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	n := first.col.Count()

	second, err := b.Build(context.Background(), "p1", []string{srv.URL})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if second.col.Count() != n {
		t.Fatalf("rebuild duplicated windows: %d -> %d", n, second.col.Count())
	}
}

func TestPreviewDropsTrailingSplitRune(t *testing.T) {
	// "é" straddles the 200-byte cut, the truncation must exclude it whole
	s := strings.Repeat("a", 199) + "é" + strings.Repeat("b", 20)
	got := preview(s)
	if len(got) != 199 {
		t.Fatalf("expected 199 bytes, got %d: %q", len(got), got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
}

func TestPreviewIgnoresInteriorInvalidBytes(t *testing.T) {
	// a stray invalid byte early in the text must not shrink the preview
	s := "\xff" + strings.Repeat("a", 250)
	got := preview(s)
	if len(got) != 200 {
		t.Fatalf("expected 200 bytes, got %d", len(got))
	}
}

func TestEmptyIndexIsNilSafe(t *testing.T) {
	var ix *Index
	if !ix.Empty() {
		t.Fatal("nil index must report empty")
	}
	frags, err := ix.Search(context.Background(), "anything")
	if err != nil || frags != nil {
		t.Fatalf("nil index search: frags=%v err=%v", frags, err)
	}
}
