package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/luna-backend/internal/config"
	"github.com/AnshRaj112/luna-backend/internal/database"
	"github.com/AnshRaj112/luna-backend/internal/handlers"
	"github.com/AnshRaj112/luna-backend/internal/middleware"
	"github.com/AnshRaj112/luna-backend/internal/routes"
	"github.com/AnshRaj112/luna-backend/internal/services"
	"github.com/AnshRaj112/luna-backend/pkg/clientip"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()
	clientip.TrustProxy(cfg.TrustProxy)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is optional: cache, sessions, rate limits and chat fan-out fall
	// back to in-process state without it.
	if cfg.RedisURI != "" {
		log.Printf("Connecting to Redis...")
		if err := database.ConnectRedis(cfg.RedisURI); err != nil {
			log.Printf("⚠️  WARNING: Redis unavailable, using in-memory fallbacks: %v", err)
		} else {
			defer database.DisconnectRedis()
		}
	} else {
		log.Println("⚠️  REDIS_URI not set, using in-memory cache and sessions")
	}

	// MongoDB holds chat transcripts, content flags and feedback history.
	if cfg.MongoURI != "" {
		log.Printf("MongoDB URI: %s", database.MaskURI(cfg.MongoURI))
		if err := database.Connect(cfg.MongoURI); err != nil {
			log.Printf("⚠️  WARNING: MongoDB unavailable, transcripts will not be persisted: %v", err)
		} else {
			defer database.Disconnect()
			if err := services.EnsureChatIndexes(ctx); err != nil {
				log.Printf("⚠️  WARNING: failed to ensure MongoDB chat indexes: %v", err)
			} else {
				log.Println("✅ MongoDB chat indexes ensured")
			}
		}
	}

	store, closeStore := openResponseStore(ctx, cfg)
	defer closeStore()

	handlers.InitServices(cfg, store)

	if err := handlers.InitCloudinaryService(cfg); err != nil {
		log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
		log.Println("File uploads will not be available")
	} else if cfg.CloudinaryConfigured() {
		log.Println("✅ Cloudinary service initialized")
	}

	if cfg.AdminKeyHash == "" {
		log.Println("⚠️  ADMIN_KEY_HASH not set, admin routes are disabled (generate one with: go run ./cmd/hashkey)")
	}

	// Content flags older than 24 hours are removed every 6 hours
	services.StartFlagCleanup(ctx, 6, 24)
	services.StartRedisChatSubscriber(ctx)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, host check, per-IP rate limiting)")
	}

	routes.SetupRoutes(r, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("🚀 Luna backend running on :%s (%s, store=%s)", cfg.Port, cfg.Environment, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Graceful shutdown failed: %v", err)
	}
}

// openResponseStore picks the Q&A store from STORE_DRIVER. A misconfigured
// SQL driver is fatal rather than silently falling back to memory.
func openResponseStore(ctx context.Context, cfg *config.Config) (services.ResponseStore, func()) {
	switch cfg.StoreDriver {
	case "postgres":
		if cfg.PostgresURI == "" {
			log.Fatal("STORE_DRIVER=postgres requires POSTGRES_URI")
		}
		log.Printf("Connecting to PostgreSQL...")
		if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
			log.Fatal("Failed to connect to PostgreSQL:", err)
		}
		store, err := services.NewPostgresResponseStore(ctx, database.PostgresDB)
		if err != nil {
			log.Fatal("Failed to open PostgreSQL response store:", err)
		}
		return store, func() { database.DisconnectPostgres() }
	case "sqlite":
		if err := database.ConnectSQLite(cfg.SQLitePath); err != nil {
			log.Fatal("Failed to open SQLite:", err)
		}
		store, err := services.NewSQLiteResponseStore(ctx, database.SQLiteDB)
		if err != nil {
			log.Fatal("Failed to open SQLite response store:", err)
		}
		return store, func() { database.DisconnectSQLite() }
	case "memory", "":
		return services.NewMemoryResponseStore(), func() {}
	default:
		log.Fatalf("Unknown STORE_DRIVER %q (memory, postgres or sqlite)", cfg.StoreDriver)
		return nil, nil
	}
}
