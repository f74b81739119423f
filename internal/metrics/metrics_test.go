package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPath(t *testing.T) {
	tests := map[string]string{
		"/api/warrior.v1.TradeService/CreateTrade": "/api/warrior.v1.TradeService/CreateTrade",
		"/api/leaderboard/cron-update":             "/api/leaderboard",
		"/healthz":                                 "/healthz",
		"/":                                        "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, canonicalPath(in), in)
	}
}

func TestInstrumentHandlerRecordsStatus(t *testing.T) {
	h := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/teapot", "418"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/teapot", "418"))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, after)
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordCacheLookup(true)
	RecordLeaderboardRun("cron", 0, 12, true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "mpt_warrior_cache_lookups_total"))
	assert.True(t, strings.Contains(body, "mpt_warrior_leaderboard_ranked_users 12"))
}
