package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/haircutbot/plugin/dateparse"
	"github.com/hrygo/haircutbot/server/internal/observability"
	"github.com/hrygo/haircutbot/server/stats"
	"github.com/hrygo/haircutbot/store"
)

var msk = time.FixedZone("MSK", 3*60*60)

type stubLister struct {
	find *store.FindAppointment
	list []*store.Appointment
	err  error
}

func (s *stubLister) ListAppointments(_ context.Context, find *store.FindAppointment) ([]*store.Appointment, error) {
	s.find = find
	return s.list, s.err
}

func newTestServer(t *testing.T, lister AppointmentLister) (*echo.Echo, *APIV1Service) {
	t.Helper()
	svc := NewAPIV1Service(nil, dateparse.NewService(nil, msk, 90*time.Minute), observability.NewMetrics(), lister)
	svc.now = func() time.Time { return time.Date(2024, 6, 12, 9, 41, 0, 0, msk) }

	e := echo.New()
	svc.RegisterRoutes(e)
	return e, svc
}

func get(e *echo.Echo, path string, query url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path+"?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestResolve(t *testing.T) {
	e, _ := newTestServer(t, nil)

	tests := []struct {
		name       string
		query      url.Values
		wantStatus int
		wantStart  string
		strategy   string
	}{
		{"tomorrow", url.Values{"text": {"завтра в 10:30"}}, http.StatusOK, "2024-06-13T10:30:00+03:00", "relative"},
		{"anchor", url.Values{"text": {"в пятницу"}, "anchor": {"2024-06-17"}}, http.StatusOK, "2024-06-21T14:00:00+03:00", "weekday"},
		{"no date", url.Values{"text": {"привет"}}, http.StatusNotFound, "", ""},
		{"missing text", url.Values{}, http.StatusBadRequest, "", ""},
		{"bad anchor", url.Values{"text": {"завтра"}, "anchor": {"17.06.2024"}}, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(e, "/api/v1/resolve", tt.query)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp ResolveResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStart, resp.Start.Format(time.RFC3339))
			assert.Equal(t, 90*time.Minute, resp.End.Sub(resp.Start))
			assert.Equal(t, tt.strategy, resp.Strategy)
			assert.Equal(t, "MSK", resp.Timezone)
		})
	}
}

func TestListAppointments(t *testing.T) {
	start := time.Date(2024, 6, 13, 15, 0, 0, 0, time.UTC)
	lister := &stubLister{list: []*store.Appointment{{
		UID:       "abc",
		CreatorID: 1,
		TaskID:    "task-1",
		Title:     "Стрижка",
		StartTs:   start.Unix(),
		EndTs:     start.Add(90 * time.Minute).Unix(),
		Timezone:  "UTC",
		Status:    store.AppointmentActive,
	}}}
	e, _ := newTestServer(t, lister)

	rec := get(e, "/api/v1/appointments", url.Values{"user_id": {"1"}, "limit": {"5"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp []AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "task-1", resp[0].TaskID)
	assert.Equal(t, "ACTIVE", resp[0].Status)

	require.NotNil(t, lister.find.CreatorID)
	assert.Equal(t, int64(1), *lister.find.CreatorID)
	assert.Equal(t, 5, *lister.find.Limit)
	assert.Equal(t, store.AppointmentActive, *lister.find.Status)
}

func TestListAppointments_BadRequest(t *testing.T) {
	e, _ := newTestServer(t, &stubLister{})

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/v1/appointments", url.Values{"user_id": {"x"}}).Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/api/v1/appointments", url.Values{"limit": {"0"}}).Code)
}

func TestListAppointments_NoStore(t *testing.T) {
	e, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/api/v1/appointments", nil).Code)
}

func TestGetMetricsOverview(t *testing.T) {
	e, svc := newTestServer(t, nil)
	svc.Metrics.RecordUpdate("message", 20*time.Millisecond)
	svc.Metrics.RecordUpdate("message", 40*time.Millisecond)
	svc.Metrics.RecordFailure("message")

	rec := get(e, "/api/v1/system/metrics/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MetricsOverviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.TotalUpdates)
	assert.Equal(t, int64(1), resp.ErrorCount)
	assert.InDelta(t, 50.0, resp.SuccessRate, 0.001)
	assert.Equal(t, int64(30), resp.AvgLatencyMs["message"])
}

func TestGetStats(t *testing.T) {
	e, svc := newTestServer(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/api/v1/system/stats", nil).Code)

	start := time.Date(2024, 6, 13, 15, 0, 0, 0, msk)
	lister := &stubLister{list: []*store.Appointment{
		{CreatorID: 1, StartTs: start.Unix(), Status: store.AppointmentActive},
		{CreatorID: 2, StartTs: start.Unix(), Status: store.AppointmentCancelled},
	}}
	svc.Stats = stats.NewCollector(lister, msk, nil)
	svc.Stats.Collect(context.Background())

	rec := get(e, "/api/v1/system/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stats.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.TotalAppointments)
	assert.Equal(t, int64(1), resp.Cancelled)
	assert.Equal(t, int64(2), resp.Users)
}
