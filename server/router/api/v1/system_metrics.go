package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MetricsOverviewResponse represents the overview of bot update metrics.
type MetricsOverviewResponse struct {
	TotalUpdates int64            `json:"total_updates"`
	SuccessRate  float64          `json:"success_rate"`
	ErrorCount   int64            `json:"error_count"`
	AvgLatencyMs map[string]int64 `json:"avg_latency_ms"`
}

// GetMetricsOverview returns the update counters since start.
// GET /api/v1/system/metrics/overview
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snap := s.Metrics.Snapshot()

	latency := make(map[string]int64, len(snap.Handlers))
	for name, h := range snap.Handlers {
		latency[name] = h.AverageDuration
	}

	return c.JSON(http.StatusOK, MetricsOverviewResponse{
		TotalUpdates: snap.UpdateTotal,
		SuccessRate:  snap.SuccessRate(),
		ErrorCount:   snap.UpdateFailed,
		AvgLatencyMs: latency,
	})
}

// GetStats returns the appointment statistics of the last collection.
// GET /api/v1/system/stats
func (s *APIV1Service) GetStats(c echo.Context) error {
	if s.Stats == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "stats are not collected"})
	}
	return c.JSON(http.StatusOK, s.Stats.GetStats())
}
