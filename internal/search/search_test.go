package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/amilimetros/internal/db/dbtest"
	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/repo"
)

func TestStoreEngine_Search(t *testing.T) {
	products := repo.NewProductRepo(dbtest.NewSeeded(t), nil)
	e := StoreEngine{Products: products}
	ctx := context.Background()

	total, found, err := e.Search(ctx, "gato", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, found, 3)

	assert.NoError(t, e.Index(ctx, models.Product{}))
	assert.NoError(t, e.Remove(ctx, 1))
}

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_source":{"id":3,"name":"Pelota Interactiva","price":"8990","category":"Juguetes"}}]}}`)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	default:
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	}
}

func (f *fakeES) seen() ([]string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...), append([]string(nil), f.bodies...)
}

func newFakeEngine(t *testing.T) (*ESEngine, *fakeES) {
	t.Helper()
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &ESEngine{ES: client, IndexName: "product"}, fake
}

func TestESEngine_Search(t *testing.T) {
	e, fake := newFakeEngine(t)

	total, found, err := e.Search(context.Background(), "pelota", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, "Pelota Interactiva", found[0].Name)
	assert.True(t, decimal.NewFromInt(8990).Equal(found[0].Price))

	reqs, bodies := fake.seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, "POST /product/_search", reqs[0])

	var q map[string]any
	require.NoError(t, json.Unmarshal([]byte(bodies[0]), &q))
	mm := q["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "pelota", mm["query"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
}

func TestESEngine_IndexAndRemove(t *testing.T) {
	e, fake := newFakeEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Index(ctx, models.Product{ID: 5, Name: "Collar", Price: decimal.NewFromInt(6990)}))
	require.NoError(t, e.Remove(ctx, 5))

	reqs, _ := fake.seen()
	require.Len(t, reqs, 2)
	assert.Equal(t, "PUT /product/_doc/5", reqs[0])
	assert.Equal(t, "DELETE /product/_doc/5", reqs[1])
}
