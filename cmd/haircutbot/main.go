package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/haircutbot/internal/profile"
	"github.com/hrygo/haircutbot/internal/version"
	"github.com/hrygo/haircutbot/plugin/todoist"
	"github.com/hrygo/haircutbot/server"
	"github.com/hrygo/haircutbot/server/service/users"
	"github.com/hrygo/haircutbot/server/timezone"
	"github.com/hrygo/haircutbot/store"
	"github.com/hrygo/haircutbot/store/db"
)

var (
	rootCmd = &cobra.Command{
		Use:   "haircutbot",
		Short: `A Telegram bot that books haircut appointments in Todoist from Russian free-text messages.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	resolveCmd = &cobra.Command{
		Use:   "resolve <text>",
		Short: "Resolve the appointment time of a message and print it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, strings.Join(args, " "))
		},
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Check the Todoist token of every configured user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd)
		},
	}
)

// loadProfile builds the profile from flags, HAIRCUT_* variables and the
// plain variable names.
func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:                   viper.GetString("mode"),
		Addr:                   viper.GetString("addr"),
		Port:                   viper.GetInt("port"),
		Data:                   viper.GetString("data"),
		Driver:                 viper.GetString("driver"),
		DSN:                    viper.GetString("dsn"),
		TelegramToken:          viper.GetString("telegram-token"),
		TelegramDebug:          viper.GetBool("telegram-debug"),
		PollTimeout:            viper.GetInt("poll-timeout"),
		TodoistBaseURL:         viper.GetString("todoist-base-url"),
		TodoistToken:           viper.GetString("todoist-token"),
		Timezone:               viper.GetString("timezone"),
		DefaultDurationMinutes: viper.GetInt("duration"),
		DefaultHour:            viper.GetInt("default-hour"),
		DefaultMinute:          viper.GetInt("default-minute"),
		AllowedUsers:           viper.GetString("allowed-users"),
		UsersConfig:            viper.GetString("users-config"),
		NotifyWebhookURL:       viper.GetString("webhook-url"),
		NotifyWebhookSecret:    viper.GetString("webhook-secret"),
		RateLimitPerMinute:     viper.GetInt("rate-limit"),
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Version = version.GetCurrentVersion(p.Mode)
	return p, nil
}

func runServe(ctx context.Context) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}
	if err := p.ValidateBot(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		return errors.Wrap(err, "failed to create db driver")
	}
	storeInstance := store.New(dbDriver, p)
	if err := storeInstance.Migrate(ctx); err != nil {
		_ = storeInstance.Close()
		return errors.Wrap(err, "failed to migrate")
	}

	telegram, err := tgbotapi.NewBotAPI(p.TelegramToken)
	if err != nil {
		_ = storeInstance.Close()
		return errors.Wrap(err, "failed to connect to telegram")
	}
	telegram.Debug = p.TelegramDebug

	s, err := server.NewServer(ctx, p, storeInstance, telegram)
	if err != nil {
		_ = storeInstance.Close()
		return errors.Wrap(err, "failed to create server")
	}
	if err := s.Start(ctx); err != nil {
		_ = storeInstance.Close()
		return errors.Wrap(err, "failed to start server")
	}
	printGreetings(p, telegram.Self.UserName)

	<-ctx.Done()
	s.Shutdown(context.Background())
	return nil
}

func printGreetings(p *profile.Profile, botName string) {
	fmt.Printf("haircutbot %s started as @%s in %s mode\n", p.Version, botName, p.Mode)
	fmt.Printf("Data directory: %s, driver: %s\n", p.Data, p.Driver)
	if p.Port > 0 {
		fmt.Printf("HTTP API: http://%s:%d/api/v1\n", p.Addr, p.Port)
	}
}

func runResolve(cmd *cobra.Command, text string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}
	resolver, err := server.NewResolver(p, cliLogger())
	if err != nil {
		return err
	}

	now := time.Now()
	if raw, _ := cmd.Flags().GetString("anchor"); raw != "" {
		now, err = timezone.ParseDate(raw, resolver.Location())
		if err != nil {
			return errors.Wrapf(err, "invalid anchor %q", raw)
		}
	}

	window, ok := resolver.ResolveWindow(cmd.Context(), text, now)
	if !ok {
		return errors.New("no date found")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s - %s\n", window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))
	return nil
}

func runCheck(cmd *cobra.Command) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}
	logger := cliLogger()
	registry := users.NewRegistry(p.AllowedUsers, p.UsersConfig, p.TodoistToken, logger)

	ids := registry.ConfiguredUsers()
	if cfg, ok := registry.Config(0); ok && len(ids) == 0 && cfg.TodoistToken != "" {
		ids = append(ids, 0)
	}
	if len(ids) == 0 {
		return errors.New("no todoist tokens configured")
	}

	failed := 0
	for _, id := range ids {
		cfg, _ := registry.Config(id)
		client := todoist.NewClient(p.TodoistBaseURL, cfg.TodoistToken, todoist.WithLogger(logger))
		label := fmt.Sprintf("%d", id)
		if id == 0 {
			label = users.DefaultKey
		}
		if err := client.TestConnection(cmd.Context()); err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", label, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", label)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d tokens failed", failed, len(ids))
	}
	return nil
}

// cliLogger keeps one-shot commands quiet unless something goes wrong.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 0)

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", "", "address of the HTTP server")
	flags.Int("port", 0, "port of the HTTP server, 0 disables it")
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "database driver (sqlite or postgres)")
	flags.String("dsn", "", "database source name")
	flags.String("telegram-token", "", "Telegram bot token")
	flags.Bool("telegram-debug", false, "log Telegram API calls")
	flags.Int("poll-timeout", 60, "long polling timeout in seconds")
	flags.String("todoist-base-url", "", "Todoist REST API base URL")
	flags.String("todoist-token", "", "Todoist token of the default user")
	flags.String("timezone", "", "timezone of appointments")
	flags.Int("duration", profile.DefaultDurationMinutes, "appointment length in minutes")
	flags.Int("default-hour", profile.DefaultHour, "hour used when a message has no time")
	flags.Int("default-minute", profile.DefaultMinute, "minute used when a message has no time")
	flags.String("allowed-users", "", "allowed Telegram user ids, JSON array or comma-separated")
	flags.String("users-config", "", "per-user Todoist config, JSON object keyed by user id")
	flags.String("webhook-url", "", "URL notified about new appointments")
	flags.String("webhook-secret", "", "value of the X-Webhook-Secret header")
	flags.Int("rate-limit", 10, "appointment messages per user per minute, 0 disables the limit")

	resolveCmd.Flags().String("anchor", "", "anchor date YYYY-MM-DD, today by default")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("haircut")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd, resolveCmd, checkCmd)
}

func main() {
	// A missing .env is fine; variables may come from the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "failed to read .env:", err)
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
