/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/seckatie/moohub/internal/core"
	"github.com/seckatie/moohub/internal/core/auth"
	"github.com/seckatie/moohub/internal/core/db"
	"github.com/seckatie/moohub/internal/core/web"
	"github.com/seckatie/moohub/internal/core/widgets"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "moohub",
	Short: "Personal dashboard server with blog, memos and bookmarks",
	Long: `MooHub serves a personal dashboard: a private blog, daily memos,
bookmark folders and information widgets (weather, calendar, exchange
rates, stocks and news).

Secrets come from the environment or from .env files selected by
MOOHUB_ENV (default "dev"). SESSION_HASH_KEY is required; Google sign-in
is enabled when GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are set.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("db", "d", "moohub.db", "Path to the SQLite database file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", core.LogFormatText, "Log format (text or json)")
	rootCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	rootCmd.Flags().String("host", "localhost", "Host to listen on")
	rootCmd.Flags().String("base-url", "", "Externally visible URL, used for the OAuth redirect (default http://<host>:<port>)")
}

func runServe(cmd *cobra.Command) error {
	logger, err := initLogger(cmd)
	if err != nil {
		return err
	}
	log := core.Component(logger, "serve")

	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return fmt.Errorf("failed to read --host: %w", err)
	}
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("failed to read --port: %w", err)
	}
	baseURL, err := cmd.Flags().GetString("base-url")
	if err != nil {
		return fmt.Errorf("failed to read --base-url: %w", err)
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", host, port)
	}

	core.LoadDotEnvs("")
	cfg, err := core.ConfigFromEnv(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return err
	}

	database, err := initDB(cmd, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	metrics := web.NewMetrics()
	registerEventListeners(database, metrics, core.Component(logger, "events"))

	opts := web.Options{
		DB:       database,
		Sessions: auth.NewSessions([]byte(cfg.SessionHashKey), []byte(cfg.SessionBlockKey), strings.HasPrefix(cfg.BaseURL, "https://")),
		Widgets: widgets.NewService(widgets.Options{
			WeatherAPIKey: cfg.OpenWeatherAPIKey,
			WeatherCity:   cfg.WeatherCity,
		}, core.Component(logger, "widgets")),
		Metrics: metrics,
		Log:     core.Component(logger, "web"),
	}
	if cfg.OAuthEnabled() {
		oauthConfig := auth.GoogleConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.BaseURL+"/auth/callback")
		opts.OAuth = auth.NewProvider(oauthConfig, opts.Sessions, database, core.Component(logger, "auth"))
		opts.Refresher = auth.ConfigRefresher{Config: oauthConfig}
	} else {
		log.Warn("GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set, sign-in is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return web.StartServer(ctx, fmt.Sprintf("%s:%d", host, port), web.NewServer(opts))
}

// registerEventListeners logs every change and counts it in metrics.
func registerEventListeners(database *db.DB, metrics *web.Metrics, log *logrus.Entry) {
	for _, kind := range db.AllEventKinds {
		database.RegisterEventListener(kind, func(event db.Event) error {
			log.WithFields(logrus.Fields{
				"event": event.Kind().String(),
				"user":  event.Owner(),
			}).Debug("Resource changed")
			return metrics.ObserveEvent(event)
		})
	}
	database.RegisterEventListener(db.OnPostPublishedEvent, func(event db.Event) error {
		ev := event.(db.PostPublishedEvent)
		log.Infof("Post %s published: %q", ev.Post.ID, ev.Post.Title)
		return nil
	})
}

func initLogger(cmd *cobra.Command) (*logrus.Logger, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to read --log-level: %w", err)
	}
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, fmt.Errorf("failed to read --log-format: %w", err)
	}
	return core.NewLogger(level, format, cmd.ErrOrStderr())
}

func initDB(cmd *cobra.Command, logger *logrus.Logger) (*db.DB, error) {
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return nil, fmt.Errorf("failed to read --db: %w", err)
	}
	database, err := db.NewSQLiteDB(dbPath, core.Component(logger, "db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Debug("Database migrated successfully")
	return database, nil
}
