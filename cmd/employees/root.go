package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Sternrassler/employee-client/internal/config"
	"github.com/Sternrassler/employee-client/pkg/client"
	"github.com/Sternrassler/employee-client/pkg/logging"
	"github.com/Sternrassler/employee-client/pkg/orchestrator"
	"github.com/Sternrassler/employee-client/pkg/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs. It is filled by the root
// command's PersistentPreRunE.
type app struct {
	configFile string
	envFile    string
	baseURL    string
	debug      bool

	cfg      *config.Config
	client   *client.Client
	repo     repository.Repository
	redis    *redis.Client
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "employees",
		Short:         "Employee records client",
		Long:          `employees lists, searches, edits and exports employee records served by the employee API.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: employees.yaml in . or ~/.config/employee-client)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "env file loaded before EMPLOYEES_* overrides")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "employee API base URL (overrides api.base_url)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newListCmd(a),
		newSearchCmd(a),
		newGetCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newBrowseCmd(a),
		newFakeAPICmd(a),
		newCacheCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{ConfigFile: a.configFile, EnvFile: a.envFile})
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.API.BaseURL = a.baseURL
	}
	if a.debug {
		cfg.Logging.Level = string(logging.LevelDebug)
	}
	a.cfg = cfg

	logCfg := logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
		Output: cmd.ErrOrStderr(),
		File:   cfg.Logging.File,
	}
	if cmd.Name() == "browse" {
		// The terminal belongs to the browser; only the log file is written.
		logCfg.Output = io.Discard
		logCfg.Pretty = false
	}
	_, closeLog, err := logging.SetupWithFile(logCfg)
	if err != nil {
		return err
	}
	a.closeLog = closeLog

	clientCfg := client.Config{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout,
		Retry: client.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Delay:       cfg.Retry.Delay,
		},
	}

	if cfg.Redis.Enabled {
		a.redis = connectRedis(cmd.Context(), cfg.Redis)
		clientCfg.Redis = a.redis
	}

	c, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	a.client = c
	a.repo = repository.NewAPI(c)

	log.Debug().
		Str("base_url", cfg.API.BaseURL).
		Bool("cache", a.redis != nil).
		Int("page_size", cfg.Paging.PageSize).
		Msg("Client configured")
	return nil
}

// connectRedis returns a connected client, or nil when Redis is not
// reachable. The CLI works without the cache.
func connectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if ctx == nil {
		ctx = context.Background()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis unavailable, response cache disabled")
		_ = rdb.Close()
		return nil
	}
	log.Debug().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return rdb
}

func (a *app) close() error {
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.closeLog != nil {
		return a.closeLog()
	}
	return nil
}

// orchestrator creates an orchestrator that reports nothing on its own;
// commands print the returned errors.
func (a *app) orchestrator() *orchestrator.Orchestrator {
	logger := log.With().Str("component", "orchestrator").Logger()
	return orchestrator.New(a.repo, orchestrator.Options{
		PageSize: a.cfg.Paging.PageSize,
		Logger:   &logger,
	})
}

// userError turns a normalized API error into the message a user should see.
func userError(err error) error {
	if apiErr, ok := client.AsAPIError(err); ok {
		return fmt.Errorf("%s", apiErr.Message)
	}
	return err
}
