// Package server wires the Telegram bot, the appointment service and the
// HTTP API into one process.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/haircutbot/internal/profile"
	"github.com/hrygo/haircutbot/plugin/dateparse"
	"github.com/hrygo/haircutbot/plugin/notify"
	"github.com/hrygo/haircutbot/plugin/todoist"
	"github.com/hrygo/haircutbot/server/bot"
	"github.com/hrygo/haircutbot/server/internal/observability"
	ratelimit "github.com/hrygo/haircutbot/server/middleware"
	apiv1 "github.com/hrygo/haircutbot/server/router/api/v1"
	"github.com/hrygo/haircutbot/server/service/appointment"
	"github.com/hrygo/haircutbot/server/service/users"
	"github.com/hrygo/haircutbot/server/stats"
	"github.com/hrygo/haircutbot/server/timezone"
	"github.com/hrygo/haircutbot/store"
)

// Server runs the bot and, when a port is configured, the HTTP API.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store
	Bot     *bot.Bot
	Stats   *stats.Collector

	echoServer *echo.Echo
	logger     *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Server.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger replaces the logger built from the profile mode.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewResolver builds the date resolver configured by the profile.
func NewResolver(p *profile.Profile, logger *slog.Logger) (*dateparse.Service, error) {
	loc, err := timezone.ParseTimezone(p.Timezone)
	if err != nil {
		return nil, err
	}
	parser := dateparse.NewParser(
		dateparse.WithDefaultTime(dateparse.Clock{Hour: p.DefaultHour, Minute: p.DefaultMinute}),
		dateparse.WithLogger(logger),
	)
	return dateparse.NewService(parser, loc, p.Duration()), nil
}

// NewServer wires every component. telegram is usually a *tgbotapi.BotAPI.
func NewServer(_ context.Context, p *profile.Profile, st *store.Store, telegram bot.API, opts ...Option) (*Server, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = observability.NewLogger(os.Stderr, p.Mode)
	}

	resolver, err := NewResolver(p, logger)
	if err != nil {
		return nil, err
	}
	registry := users.NewRegistry(p.AllowedUsers, p.UsersConfig, p.TodoistToken, logger)
	appointments := appointment.NewService(st, registry, resolver,
		appointment.NewClientFactory(p.TodoistBaseURL, todoist.WithLogger(logger)), logger)

	dispatcher := notify.NewDispatcher(logger)
	dispatcher.Register(notify.ChannelTelegram, notify.NewTelegramSender(telegram, logger))
	if p.NotifyWebhookURL != "" {
		dispatcher.Register(notify.ChannelWebhook, notify.NewWebhookSender(notify.WebhookConfig{
			URL:    p.NotifyWebhookURL,
			Secret: p.NotifyWebhookSecret,
		}, logger))
	}

	metrics := observability.NewMetrics()
	s := &Server{
		Profile: p,
		Store:   st,
		Bot: bot.New(telegram, registry, appointments, dispatcher,
			ratelimit.NewRateLimiter(p.RateLimitPerMinute), metrics,
			bot.Config{
				PollTimeout: p.PollTimeout,
				Duration:    p.Duration(),
				DefaultTime: dateparse.Clock{Hour: p.DefaultHour, Minute: p.DefaultMinute}.String(),
			}, logger),
		Stats:  stats.NewCollector(st, resolver.Location(), logger),
		logger: logger,
	}

	echoServer := echo.New()
	echoServer.Debug = p.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": p.Version,
		})
	})
	api := apiv1.NewAPIV1Service(p, resolver, metrics, st)
	api.Stats = s.Stats
	api.RegisterRoutes(echoServer)
	s.echoServer = echoServer

	logger.Info("server initialized", "users", registry.String(), "timezone", resolver.Location().String())
	return s, nil
}

// Handler exposes the HTTP router.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start begins stats collection, the HTTP listener when Port > 0, and bot
// polling. It returns once everything is running.
func (s *Server) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	s.Stats.Start(ctx, time.Hour)

	if s.Profile.Port > 0 {
		address := net.JoinHostPort(s.Profile.Addr, fmt.Sprintf("%d", s.Profile.Port))
		listener, err := net.Listen("tcp", address)
		if err != nil {
			s.cancel()
			return errors.Wrap(err, "failed to listen")
		}
		s.echoServer.Listener = listener

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("failed to start echo server", "error", err)
			}
		}()
		s.logger.Info("http server started", "address", listener.Addr().String())
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Bot.Run(ctx); err != nil {
			s.logger.Error("bot stopped with error", "error", err)
		}
	}()
	return nil
}

// Shutdown stops polling, waits for in-flight updates and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.logger.Info("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
	s.Stats.Stop()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown echo server", "error", err)
	}
	s.wg.Wait()

	if err := s.Store.Close(); err != nil {
		s.logger.Error("failed to close store", "error", err)
	}
	s.logger.Info("server stopped")
}
