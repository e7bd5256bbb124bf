package v1

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/haircutbot/internal/profile"
	"github.com/hrygo/haircutbot/plugin/dateparse"
	"github.com/hrygo/haircutbot/server/internal/observability"
	"github.com/hrygo/haircutbot/server/stats"
	"github.com/hrygo/haircutbot/store"
)

// AppointmentLister is the read side of the appointment store.
type AppointmentLister interface {
	ListAppointments(ctx context.Context, find *store.FindAppointment) ([]*store.Appointment, error)
}

// APIV1Service serves the JSON API next to the bot.
type APIV1Service struct {
	Profile      *profile.Profile
	Resolver     *dateparse.Service
	Metrics      *observability.Metrics
	Appointments AppointmentLister
	// Stats is optional; /system/stats answers 503 without it.
	Stats *stats.Collector

	// now is replaced in tests.
	now func() time.Time
}

func NewAPIV1Service(profile *profile.Profile, resolver *dateparse.Service, metrics *observability.Metrics, appointments AppointmentLister) *APIV1Service {
	if resolver == nil {
		resolver = dateparse.NewService(nil, nil, 0)
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &APIV1Service{
		Profile:      profile,
		Resolver:     resolver,
		Metrics:      metrics,
		Appointments: appointments,
		now:          time.Now,
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1")
	g.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: 10 * time.Second,
	}))

	g.GET("/resolve", s.Resolve)
	g.GET("/appointments", s.ListAppointments)
	g.GET("/system/metrics/overview", s.GetMetricsOverview)
	g.GET("/system/stats", s.GetStats)
}
