package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johncui/rapport/pkg/journal"
	"github.com/johncui/rapport/pkg/memory"
	"github.com/johncui/rapport/pkg/metrics"
)

const ownerID = "5f1b8c0e-3a52-4a8e-9f7e-2d6c1a9b4e30"

type harness struct {
	t       *testing.T
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	reg := prometheus.NewRegistry()
	eng := journal.New(memory.NewStore(), journal.Options{Metrics: metrics.New(reg)})
	srv := NewServer(eng, Options{Gatherer: reg})
	return &harness{t: t, handler: srv.Handler()}
}

func (h *harness) do(method, path string, body any, owner string) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set(OwnerHeader, owner)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOwnerHeaderRequired(t *testing.T) {
	h := newHarness(t)

	for _, owner := range []string{"", "not-a-uuid"} {
		rec := h.do(http.MethodGet, "/api/people", nil, owner)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, decodeInto[map[string]string](t, rec)["error"], "owner")
	}
}

func TestEntryLifecycle(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/people", journal.PersonInput{Name: "Sam"}, ownerID)
	require.Equal(t, http.StatusCreated, rec.Code)
	sam := decodeInto[journal.PersonView](t, rec)
	rec = h.do(http.MethodPost, "/api/people", journal.PersonInput{Name: "Maya"}, ownerID)
	require.Equal(t, http.StatusCreated, rec.Code)
	maya := decodeInto[journal.PersonView](t, rec)

	rec = h.do(http.MethodPost, "/api/journal-entries", journal.CreateEntryInput{
		Title:           "Lunch",
		Content:         "Sam was so sweet and helpful during lunch with Maya.",
		InteractionType: "meeting",
		PersonIDs:       []int64{sam.ID, maya.ID},
	}, ownerID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decodeInto[journal.EntryView](t, rec)
	assert.Greater(t, entry.SentimentScore, 0.0)
	assert.Len(t, entry.People, 2)

	rec = h.do(http.MethodGet, "/api/social-graph", nil, ownerID)
	require.Equal(t, http.StatusOK, rec.Code)
	graph := decodeInto[journal.SocialGraph](t, rec)
	assert.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Links, 1)
	assert.Equal(t, 1, graph.Links[0].MentionCount)
	assert.InDelta(t, entry.SentimentScore, graph.Links[0].Sentiment, 1e-9)

	rec = h.do(http.MethodGet, "/api/journal-entries/"+itoa(entry.ID), nil, ownerID)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/api/visualizations/emotion-timeline/"+itoa(maya.ID), nil, ownerID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeInto[[]journal.TimelinePoint](t, rec), 1)

	rec = h.do(http.MethodDelete, "/api/journal-entries/"+itoa(entry.ID), nil, ownerID)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(http.MethodGet, "/api/journal-entries/"+itoa(entry.ID), nil, ownerID)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rapport_entries_ingested_total{op="create"} 1`)
}

func TestErrorMapping(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"validation", http.MethodPost, "/api/journal-entries", journal.CreateEntryInput{Title: "t"}, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/people", "{", http.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/people/abc", nil, http.StatusBadRequest},
		{"missing person", http.MethodGet, "/api/people/99", nil, http.StatusNotFound},
		{"self connection", http.MethodPost, "/api/connections", journal.ConnectionInput{SourceID: 1, TargetID: 1}, http.StatusBadRequest},
		{"timeline of unknown person", http.MethodGet, "/api/visualizations/emotion-timeline/5", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(tt.method, tt.path, tt.body, ownerID)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decodeInto[map[string]string](t, rec)["error"])
		})
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	h := newHarness(t)
	other := "0d3c9a77-8e41-4b1f-a6d2-7c5e0f3b9a18"

	rec := h.do(http.MethodPost, "/api/people", journal.PersonInput{Name: "Maya"}, ownerID)
	require.Equal(t, http.StatusCreated, rec.Code)
	maya := decodeInto[journal.PersonView](t, rec)

	rec = h.do(http.MethodGet, "/api/people/"+itoa(maya.ID), nil, other)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodGet, "/api/people", nil, other)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
