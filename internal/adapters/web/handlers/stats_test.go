package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinassist/internal/domain/models"
)

type stubHistory struct {
	lastLimit int
}

func (s *stubHistory) SaveQuery(ctx context.Context, record models.QueryRecord) error {
	return nil
}

func (s *stubHistory) RecentQueries(ctx context.Context, limit int) ([]models.QueryRecord, error) {
	s.lastLimit = limit
	return nil, nil
}

func (s *stubHistory) CountBySource(ctx context.Context) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (s *stubHistory) Close() error { return nil }

func getStats(t *testing.T, handler *StatsHandler, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

func TestStatsLimit(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantLimit  int
	}{
		{"default", "/api/stats", http.StatusOK, defaultStatsLimit},
		{"explicit", "/api/stats?limit=5", http.StatusOK, 5},
		{"clamped to maximum", "/api/stats?limit=1000000000", http.StatusOK, maxStatsLimit},
		{"zero rejected", "/api/stats?limit=0", http.StatusBadRequest, 0},
		{"negative rejected", "/api/stats?limit=-3", http.StatusBadRequest, 0},
		{"garbage rejected", "/api/stats?limit=ten", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &stubHistory{}
			handler := NewStatsHandler(history, log)

			rec := getStats(t, handler, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantLimit, history.lastLimit)
			}
		})
	}
}
