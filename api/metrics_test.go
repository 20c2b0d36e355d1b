package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoutePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/api/v1/motorcycles/507f1f77bcf86cd799439011", "/api/v1/motorcycles/{id}"},
		{"/api/v1/reservations/507f1f77bcf86cd799439011/cancel", "/api/v1/reservations/{id}/cancel"},
		{"/api/v1/documents/0b7d3f5e-8a1c-4f0e-9b2d-3c4e5f6a7b8c/url", "/api/v1/documents/{id}/url"},
		{"/api/v1/users/12345678901/", "/api/v1/users/{id}"},
		{"/api/v1/motorcycles", "/api/v1/motorcycles"},
		{"/", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeRoutePath(tt.in), tt.in)
	}
}

func TestMetricsMiddlewareCountsByRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.HandleFunc("/api/v1/motorcycles/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	counter := httpRequests.WithLabelValues(http.MethodGet, "/api/v1/motorcycles/{id}", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"M1", "M2"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/motorcycles/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestSchedulerRun(t *testing.T) {
	ok := schedulerRuns.WithLabelValues("otp_sweep", "ok")
	failed := schedulerRuns.WithLabelValues("otp_sweep", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	SchedulerRun("otp_sweep", nil)
	SchedulerRun("otp_sweep", errors.New("mongo down"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestTimeoutMiddleware(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("late"))
	})
	rr := httptest.NewRecorder()
	TimeoutMiddleware(20*time.Millisecond)(slow).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusRequestTimeout, rr.Code)
	assert.Contains(t, rr.Body.String(), "Request timeout")
	assert.NotContains(t, rr.Body.String(), "late")
}

func TestTimeoutMiddlewarePassesFastRequests(t *testing.T) {
	fast := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	rr := httptest.NewRecorder()
	TimeoutMiddleware(time.Second)(fast).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
}
