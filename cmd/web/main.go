package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/TulasiR141/otopilot/internal/assessment"
	"github.com/TulasiR141/otopilot/internal/catalog"
	"github.com/TulasiR141/otopilot/internal/decisiontree"
	"github.com/TulasiR141/otopilot/internal/envstruct"
	"github.com/TulasiR141/otopilot/internal/errors"
	"github.com/TulasiR141/otopilot/internal/logging"
	"github.com/TulasiR141/otopilot/internal/pprofserver"
	"github.com/TulasiR141/otopilot/internal/recommendation"
	"github.com/TulasiR141/otopilot/internal/repositories"
	"github.com/TulasiR141/otopilot/internal/sqlite"
)

type config struct {
	Addr          string `env:"OTOPILOT_ADDR" envDefault:"localhost:4000"`
	PprofPort     string `env:"OTOPILOT_PPROF_PORT" envDefault:":6060"`
	SQLiteURL     string `env:"OTOPILOT_SQLITE_URL" envDefault:"./otopilot.sqlite"`
	TreePath      string `env:"OTOPILOT_TREE_PATH" envDefault:"./data/decision-tree.json"`
	TemplatesPath string `env:"OTOPILOT_TEMPLATES_PATH" envDefault:"./data/recommendation-templates.yaml"`
}

type application struct {
	logger    *slog.Logger
	engine    *assessment.Engine
	trees     *decisiontree.Store
	templates *recommendation.Library
	catalog   *catalog.Repository
	patients  *repositories.PatientRepository
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "parse configuration")
	}

	// Initialise pprof listening on localhost so that it's not open to the world.
	pprofserver.Launch(cfg.PprofPort, logger)

	dbs, err := sqlite.NewDatabase(ctx, cfg.SQLiteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "could not close database", errors.SlogError(closeErr))
		}
	}()
	go dbs.StartOptimizer(ctx)

	trees := decisiontree.NewStore(cfg.TreePath, logger)
	// Fail fast on boot when the tree document is broken instead of serving
	// errors on every assessment request.
	if _, err = trees.Load(ctx); err != nil {
		return errors.Wrap(err, "load decision tree")
	}
	templates := recommendation.NewLibrary(cfg.TemplatesPath, logger)

	catalogRepo := catalog.NewRepository(dbs, logger)
	assessments := repositories.NewAssessmentRepository(dbs, logger)
	patients := repositories.NewPatientRepository(dbs, logger)

	app := application{
		logger:    logger,
		engine:    assessment.NewEngine(trees, assessments, catalogRepo, templates, logger),
		trees:     trees,
		templates: templates,
		catalog:   catalogRepo,
		patients:  patients,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func main() {
	ctx := context.Background()
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.LogAttrs(ctx, slog.LevelError, "could not load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server failed", errors.SlogError(err))
		os.Exit(1)
	}
}
