package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/haolun/policygraph-backend/internal/analysis"
	"github.com/haolun/policygraph-backend/internal/data/graph"
	"github.com/haolun/policygraph-backend/internal/handlers"
	"github.com/haolun/policygraph-backend/internal/narrative"
	"github.com/haolun/policygraph-backend/internal/platform/deepseek"
	"github.com/haolun/policygraph-backend/internal/platform/logger"
	"github.com/haolun/policygraph-backend/internal/platform/neo4jdb"
	"github.com/haolun/policygraph-backend/internal/server"
)

type App struct {
	Log    *logger.Logger
	Graph  *neo4jdb.Client
	Router *gin.Engine
	Cfg    Config
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	graphClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init graph store: %w", err)
	}

	profiles, err := LoadThresholdProfiles(cfg.ThresholdProfilesPath)
	if err != nil {
		graphClient.Close(ctx)
		log.Sync()
		return nil, err
	}

	// Narrative prose is optional: a missing API key degrades reports to
	// metrics plus findings instead of failing startup.
	var narrativeGen analysis.NarrativeGenerator
	if cfg.NarrativeEnabled {
		llm, err := deepseek.NewClient(log)
		if err != nil {
			log.Warn("narrative generation disabled", "reason", err.Error())
		} else {
			narrativeGen = narrative.NewGenerator(log, llm)
		}
	}

	store := graph.NewStore(graphClient)
	svc := analysis.NewService(log, store, narrativeGen, cfg.NarrativeTimeout)
	analyzeHandler := handlers.NewAnalyzeHandler(log, svc, profiles)

	router := server.NewRouter(server.RouterConfig{
		Log:            log,
		AnalyzeHandler: analyzeHandler,
		AllowOrigins:   cfg.AllowOrigins,
	})

	return &App{
		Log:    log,
		Graph:  graphClient,
		Router: router,
		Cfg:    cfg,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("listening", "addr", a.Cfg.Addr)
	return a.Router.Run(a.Cfg.Addr)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Graph != nil {
		a.Graph.Close(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
