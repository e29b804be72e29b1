package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/answerer"
	"github.com/juristack/juristack-engine/pkg/auth"
	"github.com/juristack/juristack-engine/pkg/config"
	"github.com/juristack/juristack-engine/pkg/database"
	"github.com/juristack/juristack-engine/pkg/handlers"
	"github.com/juristack/juristack-engine/pkg/logging"
	"github.com/juristack/juristack-engine/pkg/mcp"
	"github.com/juristack/juristack-engine/pkg/mcp/tools"
	"github.com/juristack/juristack-engine/pkg/middleware"
	"github.com/juristack/juristack-engine/pkg/repositories"
	"github.com/juristack/juristack-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("bind_addr", cfg.BindAddr),
		zap.String("port", cfg.Port),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.Bool("answerer_configured", cfg.Answerer.IsConfigured()))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	// Migrations run through database/sql (required by golang-migrate)
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.String("error", logging.SanitizeError(err)))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	// Repositories
	ruleRepo := repositories.NewRuleRepository()
	versionRepo := repositories.NewRuleVersionRepository()
	snapshotRepo := repositories.NewSnapshotRepository()
	contextRepo := repositories.NewUserContextRepository()
	candidateRepo := repositories.NewChangeCandidateRepository()
	taskRepo := repositories.NewReviewTaskRepository()

	// Answer orchestrator. Without an LLM endpoint the engine still
	// runs; every answer is a refusal.
	var orchestrator answerer.Orchestrator
	if cfg.Answerer.IsConfigured() {
		client, err := answerer.NewClient(&answerer.ClientConfig{
			Provider: cfg.Answerer.Provider,
			Endpoint: cfg.Answerer.Endpoint,
			Model:    cfg.Answerer.Model,
			APIKey:   cfg.Answerer.APIKey,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create answerer client", zap.Error(err))
		}
		orchestrator = answerer.NewOrchestrator(client, logger)
	} else {
		logger.Warn("No answerer model configured; all answers will be refusals")
		orchestrator = answerer.NewDisabledOrchestrator()
	}

	// Services
	ruleService := services.NewRuleService(&services.RuleServiceDeps{
		DB:          db,
		RuleRepo:    ruleRepo,
		VersionRepo: versionRepo,
		Logger:      logger,
	})
	contextService := services.NewContextService(&services.ContextServiceDeps{
		ContextRepo: contextRepo,
		Logger:      logger,
	})
	snapshotService := services.NewSnapshotService(&services.SnapshotServiceDeps{
		DB:           db,
		SnapshotRepo: snapshotRepo,
		VersionRepo:  versionRepo,
		ContextRepo:  contextRepo,
		Logger:       logger,
	})
	reviewService := services.NewReviewService(&services.ReviewServiceDeps{
		DB:            db,
		CandidateRepo: candidateRepo,
		TaskRepo:      taskRepo,
		VersionRepo:   versionRepo,
		Logger:        logger,
	})
	answerService := services.NewAnswerService(&services.AnswerServiceDeps{
		SnapshotRepo: snapshotRepo,
		VersionRepo:  versionRepo,
		ContextSvc:   contextService,
		Orchestrator: orchestrator,
		Logger:       logger,
	})

	// Auth
	authService, err := auth.NewAuthService(auth.Config{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSURL:            cfg.Auth.JWKSURL,
		Issuer:             cfg.Auth.Issuer,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create auth service", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(authService, logger)
	scopeMiddleware := database.WithScope(db, logger)

	mux := http.NewServeMux()

	// HTTP API
	handlers.NewHealthHandler(cfg).RegisterRoutes(mux)
	handlers.NewRulesHandler(ruleService, logger).RegisterRoutes(mux, authMiddleware, scopeMiddleware)
	handlers.NewContextHandler(contextService, logger).RegisterRoutes(mux, authMiddleware, scopeMiddleware)
	handlers.NewSnapshotsHandler(snapshotService, logger).RegisterRoutes(mux, authMiddleware, scopeMiddleware)
	handlers.NewReviewHandler(reviewService, logger).RegisterRoutes(mux, authMiddleware, scopeMiddleware)
	handlers.NewAnswerHandler(answerService, logger).RegisterRoutes(mux, authMiddleware, scopeMiddleware)

	// MCP surface
	mcpServer := mcp.NewServer("juristack-engine", cfg.Version, logger)
	tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version)
	tools.RegisterAnswerTools(mcpServer.MCP(), &tools.AnswerToolDeps{
		BaseMCPToolDeps: tools.BaseMCPToolDeps{DB: db, Logger: logger},
		AnswerService:   answerService,
	})
	tools.RegisterReviewTools(mcpServer.MCP(), &tools.ReviewToolDeps{
		BaseMCPToolDeps: tools.BaseMCPToolDeps{DB: db, Logger: logger},
		ReviewService:   reviewService,
	})
	mux.Handle("/mcp", mcpServer.NewStreamableHTTPServer())

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting juristack-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
