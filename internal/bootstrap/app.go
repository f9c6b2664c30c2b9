package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-tailor/internal/companies"
	"resume-tailor/internal/convert"
	"resume-tailor/internal/developers"
	"resume-tailor/internal/jobs"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/services/health"
	"resume-tailor/internal/shared/auth"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/lock"
	"resume-tailor/internal/shared/server"
	"resume-tailor/internal/shared/storage/db"
	"resume-tailor/internal/shared/storage/object"
	localstore "resume-tailor/internal/shared/storage/object/local"
	s3store "resume-tailor/internal/shared/storage/object/s3"
	"resume-tailor/internal/users"
	"resume-tailor/resume/render"
)

// App holds shared dependencies and the configured router.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Redis     *redis.Client
	Store     object.ObjectStore
	Signer    *auth.Signer
	Completer llm.Completer
	Converter convert.Converter

	UsersService      *users.Service
	DevelopersService *developers.Service
	CompaniesService  *companies.Service
	JobsService       *jobs.Service
	ResumesService    *resumes.Service
}

// Overrides replaces external collaborators, for tests and local tooling.
type Overrides struct {
	Completer llm.Completer
	Converter convert.Converter
}

// Build prepares every dependency and wires the router.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(cfg, Overrides{})
}

// BuildWith is Build with collaborator overrides.
func BuildWith(cfg config.Config, ov Overrides) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL, cfg.Env == "production")
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	completer := ov.Completer
	if completer == nil {
		completer, err = NewCompleter(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	converter := ov.Converter
	if converter == nil {
		converter = convert.NewSoffice(cfg.SofficeBin, cfg.ConvertTimeout, cfg.TempDir)
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Signer:    signer,
		Completer: completer,
		Converter: converter,
	}

	locker, err := buildLocker(ctx, app)
	if err != nil {
		return nil, err
	}

	handlers := buildServices(app, locker)
	if app.ResumesService == nil || app.DevelopersService == nil {
		return nil, errors.New("failed to initialize services")
	}

	deps := handlers
	deps.Config = cfg
	deps.Verifier = signer
	deps.Health = buildHealth(app)
	if cfg.ObjectStoreType == "local" {
		deps.FilesDir = cfg.LocalStoreDir
	}
	app.Router = server.NewRouter(deps)
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.ConnectWithRetry(ctx, cfg.DatabaseURL, opts, 5)
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	// Production schemas are migrated by cmd/migrate before rollout.
	if cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
			PublicURL:       cfg.S3PublicURL,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
		})
	default:
		return localstore.New(cfg.LocalStoreDir, strings.TrimRight(cfg.PublicBaseURL, "/")+"/files"), nil
	}
}

// NewCompleter picks the provider client and layers pacing and the
// calling-layer retry on top.
func NewCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	var base llm.Completer
	switch cfg.LLMProvider {
	case "gemini":
		g, err := llm.NewGeminiClient(ctx, cfg.LLMAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		base = g
	default:
		base = llm.NewChatClient(llm.ChatConfig{
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			APIKey:  cfg.LLMAPIKey,
			Timeout: cfg.LLMTimeout,
		})
	}
	if cfg.LLMAPIKey == "" {
		log.Printf("bootstrap: no LLM API key configured; generation requests will fail")
	}
	return llm.WithRetry(llm.Paced(base, cfg.LLMRequestsPerSecond), cfg.LLMMaxRetries), nil
}

func buildLocker(ctx context.Context, app *App) (lock.Locker, error) {
	if strings.TrimSpace(app.Config.RedisURL) == "" {
		return lock.NewMemoryLocker(), nil
	}
	client, err := lock.NewRedisClient(ctx, app.Config.RedisURL)
	if err != nil {
		if app.Config.IsDevLike() {
			log.Printf("bootstrap: redis unavailable; using in-process locks: %v", err)
			return lock.NewMemoryLocker(), nil
		}
		return nil, err
	}
	app.Redis = client
	// A holder may run a full conversion; the TTL outlives it.
	return lock.NewRedisLocker(client, app.Config.ConvertTimeout*2), nil
}

func buildServices(app *App, locker lock.Locker) server.RouterDeps {
	var (
		userRepo      users.Repo
		developerRepo developers.Repo
		companyRepo   companies.Repo
		jobRepo       jobs.Repo
		resumeRepo    resumes.Repo
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		developerRepo = &developers.PGRepo{DB: app.DB}
		companyRepo = &companies.PGRepo{DB: app.DB}
		jobRepo = &jobs.PGRepo{DB: app.DB}
		resumeRepo = &resumes.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		developerRepo = developers.NewMemoryRepo()
		companyRepo = companies.NewMemoryRepo()
		jobRepo = jobs.NewMemoryRepo()
		resumeRepo = resumes.NewMemoryRepo()
	}

	fetcher := object.NewFetcher(app.Store)
	rewriter := llm.NewRewriter(app.Completer)

	app.UsersService = users.NewService(userRepo, app.Signer)
	app.DevelopersService = &developers.Service{
		Repo:           developerRepo,
		Store:          app.Store,
		MaxUploadBytes: app.Config.MaxUploadBytes,
	}
	app.CompaniesService = &companies.Service{Repo: companyRepo}
	app.JobsService = &jobs.Service{
		Repo:      jobRepo,
		Companies: app.CompaniesService,
		Extractor: rewriter,
	}
	app.ResumesService = &resumes.Service{
		Repo:       resumeRepo,
		Developers: developerRepo,
		Rewriter:   rewriter,
		Renderer:   render.New(fetcher),
		Converter:  app.Converter,
		Store:      app.Store,
		Fetch:      fetcher,
		Locker:     locker,
		TempDir:    app.Config.TempDir,
	}

	return server.RouterDeps{
		UserHandler:      users.NewHandler(app.UsersService),
		DeveloperHandler: developers.NewHandler(app.DevelopersService),
		CompanyHandler:   companies.NewHandler(app.CompaniesService),
		JobHandler:       jobs.NewHandler(app.JobsService),
		ResumeHandler:    resumes.NewHandler(app.ResumesService, server.GenerateLimit(app.Config.GenerateRatePerMinute)),
	}
}

func buildHealth(app *App) *health.Service {
	svc := health.NewService(2 * time.Second)
	if app.DB != nil {
		svc.Add("database", app.DB.PingContext)
	}
	if app.Redis != nil {
		svc.Add("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}
	return svc
}

// Close releases pooled connections.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}
