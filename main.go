package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/api"
	"github.com/boostmysites25/zippty-backend/internal/auth"
	"github.com/boostmysites25/zippty-backend/internal/config"
	"github.com/boostmysites25/zippty-backend/internal/db"
	"github.com/boostmysites25/zippty-backend/internal/handlers"
	"github.com/boostmysites25/zippty-backend/internal/logging"
	"github.com/boostmysites25/zippty-backend/internal/metrics"
	"github.com/boostmysites25/zippty-backend/internal/middleware"
	"github.com/boostmysites25/zippty-backend/internal/repository"
	"github.com/boostmysites25/zippty-backend/internal/service"
	"github.com/boostmysites25/zippty-backend/internal/service/admin"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

type secretRule struct {
	minLength int
	hint      string
	forbidden []string
}

func main() {
	loadedEnv := []string{}
	if os.Getenv("DISABLE_DOTENV") == "" {
		loadedEnv = loadDotEnv()
	}
	logging.Init(os.Getenv("LOG_LEVEL"))
	for _, p := range loadedEnv {
		slog.Info("loaded env file", "path", p)
	}

	env := os.Getenv("ENV")
	isProduction := env == "production" || env == "prod"

	requiredSecrets := map[string]secretRule{
		"JWT_SECRET": {
			minLength: 32,
			hint:      "generate with: openssl rand -base64 32",
			forbidden: []string{"replace", "changeme", "jwt-secret", "your_jwt_secret"},
		},
		"MONGO_URI": {
			minLength: 1,
			hint:      "set MongoDB connection string, e.g. mongodb://localhost:27017",
		},
	}
	if errs := validateSecrets(requiredSecrets); len(errs) > 0 {
		slog.Error("required secrets validation failed", "environment", env, "errors", errs)
		os.Exit(1)
	}

	if isProduction && os.Getenv("REDIS_ADDR") != "" && len(os.Getenv("REDIS_PASSWORD")) < 16 {
		slog.Error("Redis is configured without strong password in production",
			"hint", "set REDIS_PASSWORD (minimum 16 characters)")
		os.Exit(1)
	}

	trustProxy := false
	switch os.Getenv("TRUST_PROXY") {
	case "1", "true", "TRUE", "True":
		trustProxy = true
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	configMgr, err := config.NewManager(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", configPath)
		os.Exit(1)
	}
	cfg := configMgr.Get()
	slog.Info("loaded server config", "path", configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "zippty"
	}
	client, database, err := db.Open(ctx, db.Options{URI: os.Getenv("MONGO_URI"), Database: dbName})
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	store := repository.NewStore(database, m)
	if err := store.EnsureIndexes(ctx); err != nil {
		slog.Warn("failed to ensure indexes", "error", err)
	}

	tokenManager := auth.NewTokenManager([]byte(os.Getenv("JWT_SECRET")), cfg.Auth.TokenTTL())

	redisClient := openRedis(ctx, os.Getenv("REDIS_ADDR"))
	if redisClient != nil {
		tokenManager.SetRedis(redisClient)
		slog.Info("token revocation and rate limiting enabled via Redis")
	} else {
		slog.Warn("Redis not available; token revocation and rate limiting disabled")
	}

	validator, err := api.NewValidator()
	if err != nil {
		slog.Error("failed to load openapi document", "error", err)
		os.Exit(1)
	}

	apiServer := handlers.API{
		Auth:       service.NewAuthService(store, tokenManager, m),
		Dashboard:  service.NewDashboardService(store, store, cfg.Dashboard, m),
		Profile:    admin.NewProfileService(store, tokenManager, cfg.Auth.BcryptCost),
		Users:      admin.NewUsersService(store),
		Store:      store,
		ServerName: cfg.Server.Name,
		StartedAt:  time.Now(),
	}
	router := handlers.NewRouter(apiServer, handlers.RouterOptions{
		Authenticator:  auth.NewAuthenticator(tokenManager, store),
		Redis:          redisClient,
		Metrics:        m,
		Gatherer:       reg,
		Validator:      validator,
		TrustProxy:     trustProxy,
		AllowedOrigins: middleware.ParseOrigins(os.Getenv("ALLOWED_ORIGINS")),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "7070"
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting http server", "addr", server.Addr,
		"readTimeout", server.ReadTimeout,
		"writeTimeout", server.WriteTimeout)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("http server stopped")
}

func validateSecrets(rules map[string]secretRule) []string {
	var errs []string
	for name, rule := range rules {
		value := strings.TrimSpace(os.Getenv(name))
		if value == "" {
			errs = append(errs, fmt.Sprintf("%s not set (hint: %s)", name, rule.hint))
			continue
		}
		if len(value) < rule.minLength {
			errs = append(errs, fmt.Sprintf("%s too short (minimum %d characters, hint: %s)",
				name, rule.minLength, rule.hint))
			continue
		}
		lower := strings.ToLower(value)
		for _, f := range rule.forbidden {
			if strings.Contains(lower, f) {
				errs = append(errs, fmt.Sprintf("%s contains placeholder value %q (hint: %s)", name, f, rule.hint))
				break
			}
		}
	}
	return errs
}

// openRedis returns nil when Redis is not configured or not reachable.
func openRedis(ctx context.Context, addr string) *redis.Client {
	if strings.TrimSpace(addr) == "" {
		return nil
	}
	opts, err := redisOptionsFromAddr(addr)
	if err != nil {
		slog.Warn("invalid REDIS_ADDR; redis disabled", "error", err)
		return nil
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis not reachable", "addr", opts.Addr, "error", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func redisOptionsFromAddr(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		if opts, err := redis.ParseURL(addr); err == nil {
			return opts, nil
		}
		parsed, err := url.Parse(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_ADDR: %w", err)
		}
		if parsed.Host == "" {
			return nil, fmt.Errorf("REDIS_ADDR missing host: %q", addr)
		}
		return &redis.Options{Addr: parsed.Host}, nil
	}
	return &redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")}, nil
}

func loadDotEnv() []string {
	if p := strings.TrimSpace(os.Getenv("DOTENV_PATH")); p != "" {
		if err := godotenv.Load(p); err == nil {
			return []string{p}
		}
		return nil
	}

	var loaded []string
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	for dir := wd; ; {
		for _, name := range []string{".env.local", ".env"} {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := godotenv.Load(p); err == nil {
				loaded = append(loaded, p)
			}
		}
		if len(loaded) > 0 {
			return loaded
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return loaded
}
