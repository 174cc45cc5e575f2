package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sampark-backend/db"
	hAdmin "sampark-backend/handlers/admin"
	hauth "sampark-backend/handlers/auth"
	hConfig "sampark-backend/handlers/config"
	hConnections "sampark-backend/handlers/connections"
	hDirectory "sampark-backend/handlers/directory"
	"sampark-backend/handlers/health"
	hPublic "sampark-backend/handlers/public"
	hUsers "sampark-backend/handlers/users"
	"sampark-backend/mailer"
	mw "sampark-backend/middleware"
	"sampark-backend/store"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8000"
	}

	var st store.Store
	switch os.Getenv("STORE_DRIVER") {
	case "", "postgres":
		pool := db.MustPool()
		defer pool.Close()
		if err := db.EnsureSchema(context.Background(), pool); err != nil {
			slog.Error("can't create database schema", "error", err)
			os.Exit(1)
		}
		st = store.NewPostgres(pool)
	case "memory":
		slog.Warn("using in-memory store, data will not survive a restart")
		st = store.NewMemory()
	default:
		slog.Error("unknown STORE_DRIVER", "value", os.Getenv("STORE_DRIVER"))
		os.Exit(1)
	}

	mail := mailer.FromEnv()

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Get("/healthz", health.Health(st))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtGuard := mw.JwtGuard()

	// Credential endpoints share a throttle keyed by client IP.
	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
	})

	// --- Auth routes ---
	authGroup := app.Group("/auth")
	hauth.Register(authGroup, st, mail, loginLimiter)

	// --- Admin ---
	adminGroup := app.Group("/admin")
	hAdmin.Register(adminGroup, st, mail)

	// --- Users & connection workflow ---
	usersGroup := app.Group("/users")
	hUsers.Register(usersGroup, st, jwtGuard)

	connGroup := app.Group("/connections")
	hConnections.Register(connGroup, st, jwtGuard)

	// --- Directory & public profiles ---
	dirGroup := app.Group("/directory")
	hDirectory.Register(dirGroup, st)

	publicGroup := app.Group("/public")
	hPublic.Register(publicGroup, st)

	// --- Static external links ---
	configGroup := app.Group("/config")
	hConfig.Register(configGroup)

	slog.Info("listening", "addr", addr)
	if err := app.Listen(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
