package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchReturnsJoinedSnippets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go+concurrency", r.URL.Query().Get("q"))
		w.Write([]byte(`{
			"AbstractText": "Goroutines are lightweight threads.",
			"RelatedTopics": [{"Text": "Channels coordinate goroutines."}]
		}`))
	}))
	defer server.Close()

	client := NewClient(time.Second)
	client.BaseURL = server.URL

	out, err := client.Search(context.Background(), "go concurrency")
	require.NoError(t, err)
	assert.Contains(t, out, "Goroutines are lightweight threads.")
	assert.Contains(t, out, "Channels coordinate goroutines.")
}

func TestSearchEmptyAnswerIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"AbstractText": "", "RelatedTopics": []}`))
	}))
	defer server.Close()

	client := NewClient(time.Second)
	client.BaseURL = server.URL

	out, err := client.Search(context.Background(), "obscure query")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSearchTimesOutThroughContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(time.Second)
	client.BaseURL = server.URL

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, "slow")
	require.Error(t, err)
}

func TestSearchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(time.Second)
	client.BaseURL = server.URL

	_, err := client.Search(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
