package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/auth"
	"github.com/danielhkuo/bausite/cliparse"
	"github.com/danielhkuo/bausite/db"
	"github.com/danielhkuo/bausite/logging"
	"github.com/danielhkuo/bausite/media"
	"github.com/danielhkuo/bausite/notify"
	"github.com/danielhkuo/bausite/router"
	"github.com/danielhkuo/bausite/seed"
	"github.com/danielhkuo/bausite/store"
)

const shutdownTimeout = 10 * time.Second

var (
	cfg    cliparse.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "bausite",
	Short:         "Construction company site, staff panel and client cabinet",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cliparse.LoadDotEnv(); err != nil {
			return err
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		if err := cfg.ValidateDatabase(); err != nil {
			return err
		}

		var err error
		logger, err = logging.NewLogger(cfg.LogLevel, cfg.LogFormat, logging.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var createSuperuserCmd = &cobra.Command{
	Use:   "create-superuser",
	Short: "Create root/root if no superuser exists yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
			_, err := seed.CreateSuperuser(ctx, st, logger)
			return err
		})
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a staff account unless the email or username is taken",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
			_, err := seed.CreateAdmin(ctx, st, logger, email, username, password)
			return err
		})
	},
}

var seedElementsCmd = &cobra.Command{
	Use:   "seed-elements",
	Short: "Create the default inactive element style rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSeeder(cmd.Context(), func(ctx context.Context, s *seed.Seeder) error {
			res, err := s.Elements(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Elements: %d created, %d skipped\n", res.Created, res.Skipped)
			return nil
		})
	},
}

var seedDemoCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Create the starter request taxonomy and demo content",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSeeder(cmd.Context(), func(ctx context.Context, s *seed.Seeder) error {
			tax, err := s.Taxonomy(ctx)
			if err != nil {
				return err
			}
			demo, err := s.Demo(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Taxonomy: %d created, %d skipped\n", tax.Created, tax.Skipped)
			fmt.Printf("Demo data: %d created, %d skipped\n", demo.Created, demo.Skipped)
			return nil
		})
	},
}

func init() {
	cliparse.RegisterFlags(rootCmd.PersistentFlags(), &cfg)

	createAdminCmd.Flags().String("email", "", "Admin email")
	createAdminCmd.Flags().String("username", "", "Admin username")
	createAdminCmd.Flags().String("password", "", "Admin password")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("username")
	createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, createSuperuserCmd, createAdminCmd, seedElementsCmd, seedDemoCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if logger != nil {
		logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDatabase connects and makes sure the schema exists
func openDatabase(ctx context.Context) (*sql.DB, error) {
	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(ctx, conn, cfg.DatabaseType); err != nil {
		conn.Close()
		return nil, fmt.Errorf("schema creation failed: %w", err)
	}
	logger.Info("database schema ready", zap.String("type", cfg.DatabaseType))
	return conn, nil
}

func withStore(ctx context.Context, fn func(context.Context, *store.Store) error) error {
	conn, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(ctx, store.New(conn, logger))
}

func withSeeder(ctx context.Context, fn func(context.Context, *seed.Seeder) error) error {
	fixtures, err := seed.Load()
	if err != nil {
		return err
	}
	return withStore(ctx, func(ctx context.Context, st *store.Store) error {
		return fn(ctx, seed.New(st, fixtures, logger))
	})
}

// revoker picks Redis when configured so logouts survive restarts
func revoker(ctx context.Context) (auth.Revoker, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, revoked sessions are kept in memory")
		return auth.NewMemoryRevoker(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}
	logger.Info("session revocation backed by redis", zap.String("addr", cfg.RedisAddr))
	return auth.NewRedisRevoker(client), func() { client.Close() }, nil
}

func serve(ctx context.Context) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	conn, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	rev, closeRevoker, err := revoker(ctx)
	if err != nil {
		return err
	}
	defer closeRevoker()

	objects, err := media.New(ctx, media.Config{
		Driver: cfg.MediaDriver,
		DB:     conn,
		S3: media.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		},
	})
	if err != nil {
		return fmt.Errorf("media store: %w", err)
	}

	handler := router.NewRouter(router.Deps{
		Store:    store.New(conn, logger),
		Media:    objects,
		Tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, rev),
		Notifier: notify.New(cfg.WebhookURL, logger),
		Logger:   logger,
		Config:   cfg,
	})

	server := &http.Server{
		Handler:           handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.Int("port", cfg.Port), zap.String("media", cfg.MediaDriver))
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server closed")
	return nil
}
