package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/forgo/aisle/api/internal/config"
	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/floorplan"
	"github.com/forgo/aisle/api/internal/imagegen"
	"github.com/forgo/aisle/api/internal/jobs"
	"github.com/forgo/aisle/api/internal/middleware"
	"github.com/forgo/aisle/api/internal/repository"
	"github.com/forgo/aisle/api/internal/service"
	"github.com/forgo/aisle/api/internal/storage"
	"github.com/forgo/aisle/api/pkg/jwt"
)

func main() {
	// Initialize structured logging
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	buckets, memStore, err := newBuckets(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	imageClient := imagegen.NewClient(imagegen.Config{
		BaseURL: cfg.ImageGen.BaseURL,
		APIKey:  cfg.ImageGen.APIKey,
		Model:   cfg.ImageGen.Model,
		Size:    cfg.ImageGen.Size,
		Timeout: cfg.ImageGen.Timeout,
	})
	floorPlanClient := floorplan.NewClient(floorplan.Config{
		BaseURL: cfg.FloorPlan.BaseURL,
		APIKey:  cfg.FloorPlan.APIKey,
		Timeout: cfg.FloorPlan.Timeout,
	})
	if !imageClient.Enabled() {
		slog.Warn("image generation disabled, IMAGEGEN_BASE_URL not set")
	}
	if !floorPlanClient.Enabled() {
		slog.Warn("floor plan analysis disabled, FLOORPLAN_BASE_URL not set")
	}

	eventHub := service.NewEventHub()
	defer eventHub.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	customVendorRepo := repository.NewCustomVendorRepository(db)
	venueRepo := repository.NewVenueRepository(db)
	seatingRepo := repository.NewSeatingRepository(db)
	guestRepo := repository.NewGuestRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)
	moodboardRepo := repository.NewMoodboardRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService:      jwtService,
		TokenRepo:       tokenRepo,
		RefreshDuration: time.Duration(cfg.JWT.RefreshTokenDays) * 24 * time.Hour,
	})
	timelineService := service.NewTimelineService(service.TimelineServiceConfig{
		TimelineRepo: timelineRepo,
		ProfileRepo:  profileRepo,
		Events:       eventHub,
	})
	budgetService := service.NewBudgetService(service.BudgetServiceConfig{
		BudgetRepo:  budgetRepo,
		ProfileRepo: profileRepo,
	})
	profileService := service.NewProfileService(service.ProfileServiceConfig{
		ProfileRepo: profileRepo,
		Timeline:    timelineService,
		Budget:      budgetService,
	})
	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
		Onboarding:   service.NewOnboardingService(profileService, budgetService, timelineService),
		Events:       eventHub,
	})
	vendorService := service.NewVendorService(service.VendorServiceConfig{
		VendorRepo: vendorRepo,
		Buckets:    buckets,
	})
	customVendorService := service.NewCustomVendorService(customVendorRepo)
	venueService := service.NewVenueService(service.VenueServiceConfig{
		VenueRepo: venueRepo,
		Buckets:   buckets,
		Analyzer:  floorPlanClient,
	})
	seatingService := service.NewSeatingService(service.SeatingServiceConfig{
		SeatingRepo: seatingRepo,
		GuestRepo:   guestRepo,
		RoomRepo:    venueRepo,
	})
	guestService := service.NewGuestService(service.GuestServiceConfig{
		GuestRepo: guestRepo,
	})
	moodboardService := service.NewMoodboardService(service.MoodboardServiceConfig{
		MoodboardRepo: moodboardRepo,
		Buckets:       buckets,
		Generator:     imageClient,
		Events:        eventHub,
	})

	if err := seatingService.SeedBuiltIns(ctx); err != nil {
		slog.Error("failed to seed table templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Rate limiting and idempotency
	var redisClient redis.UniversalClient
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			slog.Warn("redis unreachable, rate limits fall back to local buckets",
				slog.String("addr", cfg.Redis.Addr),
				slog.String("error", err.Error()))
		}
		cancel()
	}

	var apiLimiter, authLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		apiLimiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			Rate:      cfg.RateLimit.RequestsPerMinute,
			Window:    time.Minute,
			Burst:     cfg.RateLimit.Burst,
			Redis:     redisClient,
			KeyPrefix: "aisle:ratelimit:api:",
		})
		defer apiLimiter.Stop()

		authLimiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			Rate:      cfg.RateLimit.AuthPerMinute,
			Window:    time.Minute,
			Burst:     cfg.RateLimit.AuthPerMinute,
			Redis:     redisClient,
			KeyPrefix: "aisle:ratelimit:auth:",
		})
		defer authLimiter.Stop()
	}

	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     24 * time.Hour,
		Cleanup: time.Hour,
	})
	defer idempotencyStore.Stop()

	// Background jobs
	overdueProcessor := jobs.NewOverdueProcessor(timelineService, cfg.Jobs.OverdueInterval)
	overdueProcessor.Start()
	defer overdueProcessor.Stop()

	tokenCleanup := jobs.NewTokenCleanup(tokenService, cfg.Jobs.TokenCleanupInterval)
	tokenCleanup.Start()
	defer tokenCleanup.Stop()

	mux := http.NewServeMux()
	registerRoutes(mux, routeDeps{
		db:          db,
		tokens:      tokenService,
		authLimiter: authLimiter,
		media:       memStore,

		auth:          authService,
		events:        eventHub,
		profiles:      profileService,
		vendors:       vendorService,
		customVendors: customVendorService,
		venues:        venueService,
		seating:       seatingService,
		guests:        guestService,
		budgets:       budgetService,
		timeline:      timelineService,
		moodboards:    moodboardService,
	})

	// Outermost first: recovery sees every panic, metrics see every status
	mws := []middleware.Middleware{
		middleware.Recovery,
		middleware.RequestID,
		middleware.Logger,
		middleware.Metrics,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Compress,
	}
	if apiLimiter != nil {
		mws = append(mws, middleware.RateLimit(apiLimiter))
	}
	mws = append(mws, middleware.Idempotency(idempotencyStore))
	handler := middleware.Chain(mux, mws...)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("storage", cfg.Storage.Driver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Open event streams never finish on their own
	eventHub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server stopped")
}

// newBuckets picks the media store. The memory store is also returned so
// its objects can be served from /media in development.
func newBuckets(ctx context.Context, cfg *config.Config) (storage.Buckets, *storage.MemoryStore, error) {
	switch cfg.Storage.Driver {
	case "s3":
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UsePathStyle:    cfg.Storage.UsePathStyle,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
			BucketNames:     cfg.Storage.Buckets,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		store := storage.NewMemoryStore(strings.TrimSuffix(cfg.Server.PublicURL, "/") + "/media")
		return store, store, nil
	}
}
