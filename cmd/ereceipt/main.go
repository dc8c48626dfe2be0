package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/terraincognita07/ereceipt/internal/api"
	"github.com/terraincognita07/ereceipt/internal/cli"
	"github.com/terraincognita07/ereceipt/internal/config"
	"github.com/terraincognita07/ereceipt/internal/db"
	"github.com/terraincognita07/ereceipt/internal/storage"
	"gorm.io/gorm"
)

const (
	csrfHeaderName   = "X-CSRF-Token"
	requestBodyLimit = 11 << 20
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using process environment")
	}

	command, args := "serve", os.Args[1:]
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	var err error
	switch command {
	case "serve":
		err = runServer()
	case "create-admin":
		err = runCreateAdmin(args)
	case "reset-password":
		err = runResetPassword(args)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		printUsage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "usage: ereceipt [serve | create-admin <username> | reset-password <username>]")
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	time.Local = cfg.Location

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	lifecycleCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	files, err := openFileStore(lifecycleCtx, cfg)
	if err != nil {
		return fmt.Errorf("file store init failed: %w", err)
	}

	handler, err := api.NewHandler(database, cfg.SecretKey, cfg.Location, cfg.CookieSecure, files)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := newApp(cfg, handler)

	go func() {
		<-lifecycleCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Errorf("server shutdown failed: %v", err)
		}
	}()

	log.Infof("eReceipt listening on http://0.0.0.0:%s (db: %s, uploads: %s, tz: %s)", cfg.Port, cfg.DBDriver, cfg.UploadDriver, cfg.Location)
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(cfg config.Config, handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "eReceipt",
		DisableStartupMessage: true,
		ErrorHandler:          api.ErrorHandler,
		BodyLimit:             requestBodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	if len(cfg.CORSAllowedOrigins) > 0 {
		app.Use(cors.New(corsMiddlewareConfig(cfg.CORSAllowedOrigins)))
	}
	if cfg.RateLimitPerMinute > 0 {
		app.Use(limiter.New(limiterMiddlewareConfig(cfg.RateLimitPerMinute)))
	}
	app.Use(csrf.New(csrfMiddlewareConfig(cfg.CookieSecure)))

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

// csrfMiddlewareConfig uses the double-submit pattern: safe requests set the
// token cookie, unsafe ones must echo it in X-CSRF-Token.
func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		KeyLookup:      "header:" + csrfHeaderName,
		CookieName:     "ereceipt_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: false,
		CookieSecure:   cookieSecure,
		Expiration:     12 * time.Hour,
		ContextKey:     "csrf",
	}
}

func corsMiddlewareConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, " + csrfHeaderName,
		AllowCredentials: !slices.Contains(origins, "*"),
	}
}

func limiterMiddlewareConfig(perMinute int) limiter.Config {
	return limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return !strings.HasPrefix(c.Path(), "/api/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests. Please slow down.",
			})
		},
	}
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	database, err := db.Open(db.Options{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		DSN:    cfg.DatabaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	return database, nil
}

func openFileStore(ctx context.Context, cfg config.Config) (storage.FileStore, error) {
	if cfg.UploadDriver == config.UploadDriverS3 {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Prefix:    cfg.S3.Prefix,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func runCreateAdmin(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: ereceipt create-admin <username>")
	}
	return withDatabase(func(database *gorm.DB) error {
		return cli.RunCreateAdminCommand(database, args[0], cli.EnvOrPromptPassword(os.Stdin, os.Stdout), os.Stdout)
	})
}

func runResetPassword(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: ereceipt reset-password <username>")
	}
	return withDatabase(func(database *gorm.DB) error {
		return cli.RunResetPasswordCommand(database, args[0], os.Stdout)
	})
}

func withDatabase(run func(*gorm.DB) error) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}
	return run(database)
}
