package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasktrack/tasktrack/internal/api/middleware"
	"github.com/tasktrack/tasktrack/internal/config"
	"github.com/tasktrack/tasktrack/internal/log"
	"github.com/tasktrack/tasktrack/internal/notify"
	"github.com/tasktrack/tasktrack/internal/server"
	"github.com/tasktrack/tasktrack/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and notification sweeper",
	Long: `Run the HTTP API and the background sweeper that retries pending
notifications. Stops gracefully on SIGINT or SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		bind, _ := cmd.Flags().GetString("bind")
		noSweeper, _ := cmd.Flags().GetBool("no-sweeper")

		if err := runServe(bind, !noSweeper); err != nil {
			handleError(err)
		}
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one notification sweep and exit",
	Run: func(cmd *cobra.Command, args []string) {
		res, err := runSweep()
		if err != nil {
			handleError(err)
		}
		printSweep(os.Stdout, res, jsonOutput)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := runMigrate()
		if err != nil {
			handleError(err)
		}
		printSuccess(os.Stdout, fmt.Sprintf("Schema applied to %s", path), jsonOutput)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint a bearer token for a user",
	Long: `Sign a token with the configured jwt_secret. Intended for development
and for scripting the CLI against a local server.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := runToken(args[0], ttl)
		if err != nil {
			handleError(err)
		}
		if jsonOutput {
			printJSON(os.Stdout, map[string]string{"token": token})
			return
		}
		fmt.Fprintln(os.Stdout, token)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)

	serveCmd.Flags().String("bind", "", "Address to bind the server to (default: [server] host:port)")
	serveCmd.Flags().Bool("no-sweeper", false, "Do not run the notification sweeper")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime; 0 for no expiry")
}

func requireSecret(cfg *config.Config) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.Join(errConfig, fmt.Errorf("[auth] jwt_secret or %s must be set", config.EnvJWTSecret))
	}
	return nil
}

func runServe(bind string, withSweeper bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireSecret(cfg); err != nil {
		return err
	}
	if err := log.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		return errors.Join(errConfig, err)
	}
	logger := log.GetLogger()

	app, err := server.Build(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if bind == "" {
		bind = cfg.Server.Addr()
	}
	sweeper := app.Sweeper
	if !withSweeper {
		sweeper = nil
	}

	return server.New(bind, app.Router(), sweeper, logger).ListenAndServe()
}

func runSweep() (res notify.SweepResult, err error) {
	cfg, err := loadConfig()
	if err != nil {
		return res, err
	}
	if err := log.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		return res, errors.Join(errConfig, err)
	}

	ctx := context.Background()
	app, err := server.Build(ctx, cfg, log.GetLogger())
	if err != nil {
		return res, err
	}
	defer app.Close()

	return app.Sweeper.RunOnce(ctx)
}

func runMigrate() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	m, err := store.Open(cfg.Database.Path)
	if err != nil {
		return "", err
	}
	defer m.Close()
	if err := m.Migrate(context.Background()); err != nil {
		return "", err
	}
	return m.Path(), nil
}

func runToken(userID string, ttl time.Duration) (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if err := requireSecret(cfg); err != nil {
		return "", err
	}
	return middleware.NewToken(cfg.Auth.JWTSecret, userID, ttl)
}
