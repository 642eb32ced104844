package cmd

import (
	"github.com/spf13/viper"

	"golang-dsf-service/cmd/dsf/config"
	"golang-dsf-service/internal/balance"
	"golang-dsf-service/internal/coherence"
	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/internal/exporter"
	"golang-dsf-service/internal/importer"
	"golang-dsf-service/internal/mapping"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/internal/store"
	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

// application holds the components a command works with. Commands create it
// in RunE and close it when they return.
type application struct {
	config   *config.AppConfig
	db       *store.Database
	service  *declaration.Service
	mappings *store.GormMappingRepository
	resolver *mapping.Resolver
	logger   logger.Logger
}

// newApplication loads the configuration, installs the global logger, opens
// and migrates the database and wires the declaration service.
func newApplication() (*application, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(config.CreateLoggerConfig(cfg, viper.GetBool("verbose")))
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "logging", nil, err)
	}
	logger.SetGlobalLogger(log)

	opts, err := config.CreateGeneratorOptions(cfg)
	if err != nil {
		return nil, err
	}
	checks, err := config.CreateCoherenceConfig(cfg)
	if err != nil {
		return nil, err
	}
	matching, err := config.CreateMatcherConfig(cfg)
	if err != nil {
		return nil, err
	}
	matcher, err := importer.NewMatcher(matching)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := logger.TimedOperation("migrate_database", log.WithComponent("store"), db.Migrate); err != nil {
		_ = db.Close()
		return nil, err
	}

	mappings := store.NewGormMappingRepository(db.DB)
	resolver := mapping.NewResolver(mappings)

	service, err := declaration.NewService(declaration.Dependencies{
		Balances:     store.NewGormBalanceRepository(db.DB),
		Declarations: store.NewGormDeclarationRepository(db.DB),
		Imports:      store.NewGormImportRepository(db.DB),
		Resolver:     resolver,
		Generator:    report.NewGenerator(opts),
		Controller:   coherence.NewController(checks),
		Processor: balance.NewProcessor(
			balance.NewValidator(config.CreateValidatorConfig(cfg)),
			balance.NewIssueDetector(config.CreateIssueDetectorConfig(cfg)),
		),
		Matcher: matcher,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.WithFields(logger.Fields{
		"driver":  cfg.Database.Driver,
		"version": version,
	}).Debug("Application ready")

	return &application{
		config:   cfg,
		db:       db,
		service:  service,
		mappings: mappings,
		resolver: resolver,
		logger:   log.WithComponent("cli"),
	}, nil
}

func (a *application) exporter(format string) (*exporter.SafeExporter, error) {
	exportConfig, err := config.CreateExportConfig(a.config, format)
	if err != nil {
		return nil, err
	}
	return exporter.NewSafeExporter(exportConfig, a.logger)
}

func (a *application) close() {
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close database")
	}
}
