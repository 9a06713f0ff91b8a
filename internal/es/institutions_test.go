package es

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/charity/internal/domain"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

func newFakeCluster(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*elasticsearch.Client, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		respond(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, &seen
}

func TestInstitutionIndex_Index(t *testing.T) {
	client, seen := newFakeCluster(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	idx := NewInstitutionIndex(client, "institutions")

	err := idx.Index(context.Background(), domain.Institution{ID: 3, Name: "Bez domu", Description: "Shelter"})
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/institutions/_doc/3", req.Path)
	assert.JSONEq(t, `{"id":3,"name":"Bez domu","description":"Shelter"}`, req.Body)
	assert.NotContains(t, req.Query, "refresh")
}

func TestInstitutionIndex_RefreshOnWrite(t *testing.T) {
	client, seen := newFakeCluster(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"result":"updated"}`))
	})
	idx := NewInstitutionIndex(client, "institutions")
	idx.Refresh = true

	require.NoError(t, idx.Index(context.Background(), domain.Institution{ID: 3, Name: "Bez domu"}))
	require.NoError(t, idx.Remove(context.Background(), 3))

	require.Len(t, *seen, 2)
	for _, req := range *seen {
		assert.Contains(t, req.Query, "refresh=true", req.Method)
	}
}

func TestInstitutionIndex_RemoveMissingIsNotAnError(t *testing.T) {
	client, seen := newFakeCluster(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	idx := NewInstitutionIndex(client, "institutions")

	require.NoError(t, idx.Remove(context.Background(), 9))
	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodDelete, (*seen)[0].Method)
	assert.Equal(t, "/institutions/_doc/9", (*seen)[0].Path)
}

func TestInstitutionIndex_Search(t *testing.T) {
	client, seen := newFakeCluster(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_id":"3","_source":{"id":3,"name":"Bez domu","description":"Shelter"}}]}}`))
	})
	idx := NewInstitutionIndex(client, "institutions")

	got, err := idx.Search(context.Background(), "domu", 5)
	require.NoError(t, err)
	assert.Equal(t, []domain.Institution{{ID: 3, Name: "Bez domu", Description: "Shelter"}}, got)

	require.Len(t, *seen, 1)
	assert.Equal(t, "/institutions/_search", (*seen)[0].Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte((*seen)[0].Body), &body))
	assert.EqualValues(t, 5, body["size"])
	mm := body["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "domu", mm["query"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
}

func TestInstitutionIndex_SearchClusterError(t *testing.T) {
	client, _ := newFakeCluster(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"unavailable"}`))
	})
	idx := NewInstitutionIndex(client, "institutions")

	_, err := idx.Search(context.Background(), "domu", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
