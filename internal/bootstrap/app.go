package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"pitchdeck-backend/internal/analyses"
	"pitchdeck-backend/internal/documents"
	"pitchdeck-backend/internal/llm"
	"pitchdeck-backend/internal/llm/gemini"
	"pitchdeck-backend/internal/llm/openai"
	"pitchdeck-backend/internal/shared/config"
	"pitchdeck-backend/internal/shared/server"
	"pitchdeck-backend/internal/shared/storage/db"
	"pitchdeck-backend/internal/shared/storage/object"
	localstore "pitchdeck-backend/internal/shared/storage/object/local"
	miniostore "pitchdeck-backend/internal/shared/storage/object/minio"
	s3store "pitchdeck-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sqlx.DB
	Store            object.ObjectStore
	LLM              llm.Client
	Schema           analyses.Schema
	DocumentsRepo    documents.DocumentsRepo
	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	DocumentsHandler *documents.Handler
	AnalysisHandler  *analyses.Handler
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	schema, ok := analyses.SchemaFor(cfg.Analysis.SchemaVersion)
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", analyses.ErrUnknownSchema, cfg.Analysis.SchemaVersion, strings.Join(analyses.Versions(), ", "))
	}

	llmClient, err := BuildLLM(cfg.LLM)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		LLM:    llmClient,
		Schema: schema,
	}
	if err := buildServices(app); err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   app.Config,
		Handlers: []server.RouteRegistrar{app.DocumentsHandler, app.AnalysisHandler},
	})

	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	case "minio":
		return miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, fmt.Errorf("unknown OBJECT_STORE %q", cfg.ObjectStoreType)
	}
}

// BuildLLM selects the provider adapter. Without credentials the server still
// starts and every analysis fails as provider_unavailable.
func BuildLLM(cfg config.LLMConfig) (llm.Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "gemini"
	}
	pc := llm.ProviderConfig{
		Provider:        provider,
		Model:           cfg.Model,
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		SafetyThreshold: cfg.SafetyThreshold,
		Temperature:     cfg.Temperature,
		Timeout:         cfg.Timeout,
	}

	switch provider {
	case "gemini", "openai":
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
	if strings.TrimSpace(pc.APIKey) == "" {
		log.Printf("bootstrap: %s api key not set; analyses will fail until it is configured", provider)
		return llm.Unconfigured{Provider: provider}, nil
	}

	if provider == "openai" {
		return openai.NewClient(pc)
	}
	return gemini.NewClient(pc)
}

func buildServices(app *App) error {
	var docRepo documents.DocumentsRepo
	if app.DB != nil {
		docRepo = documents.NewSQLRepo(app.DB)
	} else {
		docRepo = documents.NewMemoryRepo()
	}

	docSvc := &documents.Service{
		Store: app.Store,
		Repo:  docRepo,
	}
	analysisSvc := &analyses.Service{
		Docs:           docRepo,
		LLM:            app.LLM,
		Schema:         app.Schema,
		StrictSchema:   app.Config.Analysis.StrictSchema,
		PromptMaxChars: app.Config.Analysis.PromptMaxChars,
		Timeout:        app.Config.LLM.Timeout,
		RetryAttempts:  app.Config.LLM.RetryAttempts,
	}

	app.DocumentsRepo = docRepo
	app.DocumentsService = docSvc
	app.AnalysesService = analysisSvc
	app.DocumentsHandler = documents.NewHandler(docSvc, app.Config.MaxUploadBytes)
	app.AnalysisHandler = analyses.NewHandler(analysisSvc, docSvc)

	if app.DocumentsHandler == nil || app.AnalysisHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

func closeDB(sqlDB *sqlx.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
