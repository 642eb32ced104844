// Package config loads the dsf command configuration from file, environment
// and flags, and builds the configuration of every internal component from it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"golang-dsf-service/internal/balance"
	"golang-dsf-service/internal/coherence"
	"golang-dsf-service/internal/exporter"
	"golang-dsf-service/internal/importer"
	"golang-dsf-service/internal/parsers"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/internal/store"
	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

// DateLayout is the layout of dates in configuration files and flags
const DateLayout = "2006-01-02"

// AppConfig is the complete configuration of the dsf command
type AppConfig struct {
	Database   store.Config     `mapstructure:"database"`
	Logging    logger.Config    `mapstructure:"logging"`
	Parser     ParserConfig     `mapstructure:"parser"`
	Validation ValidationConfig `mapstructure:"validation"`
	Generation GenerationConfig `mapstructure:"generation"`
	Import     importer.Config  `mapstructure:"import"`
	Export     ExportConfig     `mapstructure:"export"`
	Entity     EntityConfig     `mapstructure:"entity"`
}

// ParserConfig selects how trial balance files are read
type ParserConfig struct {
	Sheet            string `mapstructure:"sheet"`
	HeaderSearchRows int    `mapstructure:"header_search_rows" validate:"gt=0"`
	SkipTotals       bool   `mapstructure:"skip_totals"`
	CSVDelimiter     string `mapstructure:"csv_delimiter" validate:"len=1"`
	MaxRowErrors     int    `mapstructure:"max_row_errors" validate:"gte=0"`
}

// ValidationConfig tunes balance validation and account issue detection
type ValidationConfig struct {
	StrictAccountNumbers  bool     `mapstructure:"strict_account_numbers"`
	AllowUnbalanced       bool     `mapstructure:"allow_unbalanced"`
	SpecificationPrefixes []string `mapstructure:"specification_prefixes" validate:"dive,len=2,numeric"`
	ExcludeContraAssets   bool     `mapstructure:"exclude_contra_assets"`
	ContraAssetPrefixes   []string `mapstructure:"contra_asset_prefixes" validate:"dive,len=2,numeric"`
}

// GenerationConfig tunes report generation and the coherence checks.
// Amounts are strings so that they reach decimal without a float step.
type GenerationConfig struct {
	TaxRate       string   `mapstructure:"tax_rate" validate:"required,numeric"`
	Tolerance     string   `mapstructure:"tolerance" validate:"required,numeric"`
	RequiredNotes []string `mapstructure:"required_notes"`
	Categories    []string `mapstructure:"categories"`
}

// ExportConfig selects the output format of generated declarations
type ExportConfig struct {
	Format           string `mapstructure:"format" validate:"oneof=console json csv xlsx"`
	IncludeZeroLines bool   `mapstructure:"include_zero_lines"`
	IncludeCoherence bool   `mapstructure:"include_coherence"`
	IncludeWarnings  bool   `mapstructure:"include_warnings"`
	CSVDelimiter     string `mapstructure:"csv_delimiter" validate:"len=1"`
	CSVHeaders       bool   `mapstructure:"csv_headers"`
}

// EntityConfig identifies the declaring company. Dates use DateLayout.
type EntityConfig struct {
	Name           string `mapstructure:"name"`
	Acronym        string `mapstructure:"acronym"`
	TaxID          string `mapstructure:"tax_id"`
	LegalForm      string `mapstructure:"legal_form"`
	TaxRegime      string `mapstructure:"tax_regime"`
	Address        string `mapstructure:"address"`
	Activity       string `mapstructure:"activity"`
	PeriodStart    string `mapstructure:"period_start" validate:"omitempty,datetime=2006-01-02"`
	PeriodEnd      string `mapstructure:"period_end" validate:"omitempty,datetime=2006-01-02"`
	Headcount      int    `mapstructure:"headcount" validate:"gte=0"`
	PriorHeadcount int    `mapstructure:"prior_headcount" validate:"gte=0"`
}

var validate = validator.New()

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	db := store.DefaultConfig()
	v.SetDefault("database.driver", db.Driver)
	v.SetDefault("database.dsn", db.DSN)
	v.SetDefault("database.log_level", db.LogLevel)
	v.SetDefault("database.max_open_conns", db.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", db.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", db.ConnMaxLifetime)

	log := logger.DefaultConfig()
	v.SetDefault("logging.level", string(log.Level))
	v.SetDefault("logging.format", string(log.Format))
	v.SetDefault("logging.output", string(log.Output))
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.caller_info", false)

	parser := parsers.DefaultTrialBalanceParserConfig()
	v.SetDefault("parser.sheet", "")
	v.SetDefault("parser.header_search_rows", parser.HeaderSearchRows)
	v.SetDefault("parser.skip_totals", parser.SkipTotals)
	v.SetDefault("parser.csv_delimiter", string(parser.CSV.Delimiter))
	v.SetDefault("parser.max_row_errors", parser.MaxRowErrors)

	issues := balance.DefaultIssueDetectorConfig()
	v.SetDefault("validation.strict_account_numbers", false)
	v.SetDefault("validation.allow_unbalanced", false)
	v.SetDefault("validation.specification_prefixes", issues.SpecificationPrefixes)
	v.SetDefault("validation.exclude_contra_assets", issues.ExcludeContraAssets)
	v.SetDefault("validation.contra_asset_prefixes", issues.ContraAssetPrefixes)

	checks := coherence.DefaultConfig()
	v.SetDefault("generation.tax_rate", report.DefaultTaxRate.String())
	v.SetDefault("generation.tolerance", checks.Tolerance.String())
	v.SetDefault("generation.required_notes", checks.RequiredNotes)
	v.SetDefault("generation.categories", []string{})

	matching := importer.DefaultConfig()
	v.SetDefault("import.weights.sheet", matching.Weights.Sheet)
	v.SetDefault("import.weights.label", matching.Weights.Label)
	v.SetDefault("import.weights.account", matching.Weights.Account)
	v.SetDefault("import.weights.position", matching.Weights.Position)
	v.SetDefault("import.redistribution", string(matching.Redistribution))
	v.SetDefault("import.sheet_threshold", matching.SheetThreshold)
	v.SetDefault("import.auto_apply_threshold", matching.AutoApplyThreshold)
	v.SetDefault("import.max_value_columns", matching.MaxValueColumns)
	v.SetDefault("import.position_step", matching.PositionStep)

	export := exporter.DefaultConfig()
	v.SetDefault("export.format", string(export.Format))
	v.SetDefault("export.include_zero_lines", export.IncludeZeroLines)
	v.SetDefault("export.include_coherence", export.IncludeCoherence)
	v.SetDefault("export.include_warnings", export.IncludeWarnings)
	v.SetDefault("export.csv_delimiter", string(export.CSVDelimiter))
	v.SetDefault("export.csv_headers", export.CSVHeaders)
}

// Load decodes and validates the configuration held by v. Defaults are
// registered first so that a missing file still yields a complete configuration.
func Load(v *viper.Viper) (*AppConfig, error) {
	SetDefaults(v)

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "config", v.ConfigFileUsed(), err).
			WithSuggestion("Check the configuration file syntax")
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateConfig checks struct constraints first, then the rules each
// component enforces on its own configuration.
func ValidateConfig(cfg *AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "config", nil, err).
			WithSuggestion("Fix the reported settings or remove them to use the defaults")
	}

	if err := cfg.Logging.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "logging", nil, err)
	}
	if _, err := CreateParserConfig(cfg); err != nil {
		return err
	}
	if _, err := CreateCoherenceConfig(cfg); err != nil {
		return err
	}
	if _, err := CreateGeneratorOptions(cfg); err != nil {
		return err
	}
	if _, err := CreateMatcherConfig(cfg); err != nil {
		return err
	}
	if _, err := CreateExportConfig(cfg, ""); err != nil {
		return err
	}
	if _, err := CreateEntity(cfg); err != nil {
		return err
	}
	return nil
}

// CreateLoggerConfig returns the logger configuration; verbose forces debug level
func CreateLoggerConfig(cfg *AppConfig, verbose bool) *logger.Config {
	out := cfg.Logging
	if verbose {
		out.Level = logger.DebugLevel
	}
	return &out
}

// CreateParserConfig creates the trial balance parser configuration
func CreateParserConfig(cfg *AppConfig) (*parsers.TrialBalanceParserConfig, error) {
	out := parsers.DefaultTrialBalanceParserConfig()
	out.Sheet = cfg.Parser.Sheet
	out.HeaderSearchRows = cfg.Parser.HeaderSearchRows
	out.SkipTotals = cfg.Parser.SkipTotals
	out.MaxRowErrors = cfg.Parser.MaxRowErrors
	if cfg.Parser.CSVDelimiter != "" {
		out.CSV.Delimiter = []rune(cfg.Parser.CSVDelimiter)[0]
	}

	if err := out.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "parser", nil, err)
	}
	return out, nil
}

// CreateValidatorConfig creates the balance validator configuration
func CreateValidatorConfig(cfg *AppConfig) balance.ValidatorConfig {
	return balance.ValidatorConfig{StrictAccountNumbers: cfg.Validation.StrictAccountNumbers}
}

// CreateIssueDetectorConfig creates the account issue detector configuration
func CreateIssueDetectorConfig(cfg *AppConfig) balance.IssueDetectorConfig {
	out := balance.DefaultIssueDetectorConfig()
	if len(cfg.Validation.SpecificationPrefixes) > 0 {
		out.SpecificationPrefixes = cfg.Validation.SpecificationPrefixes
	}
	if len(cfg.Validation.ContraAssetPrefixes) > 0 {
		out.ContraAssetPrefixes = cfg.Validation.ContraAssetPrefixes
	}
	out.ExcludeContraAssets = cfg.Validation.ExcludeContraAssets
	return out
}

// CreateGeneratorOptions creates the report generator options
func CreateGeneratorOptions(cfg *AppConfig) (report.Options, error) {
	rate, err := decimal.NewFromString(cfg.Generation.TaxRate)
	if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return report.Options{}, errors.ConfigurationError(errors.CodeInvalidConfig, "generation.tax_rate",
			cfg.Generation.TaxRate, fmt.Errorf("tax rate must be a decimal between 0 and 1")).
			WithSuggestion("Use a rate such as 0.30 for 30%")
	}

	for _, id := range cfg.Generation.Categories {
		if _, ok := report.LookupCategory(id); !ok {
			return report.Options{}, errors.ConfigurationError(errors.CodeUnknownCategory,
				"generation.categories", id, fmt.Errorf("unknown report category"))
		}
	}
	return report.Options{TaxRate: rate, Categories: cfg.Generation.Categories}, nil
}

// CreateCoherenceConfig creates the coherence controller configuration
func CreateCoherenceConfig(cfg *AppConfig) (*coherence.Config, error) {
	tolerance, err := decimal.NewFromString(cfg.Generation.Tolerance)
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "generation.tolerance",
			cfg.Generation.Tolerance, err)
	}

	out := coherence.DefaultConfig()
	out.Tolerance = tolerance
	if cfg.Generation.RequiredNotes != nil {
		out.RequiredNotes = cfg.Generation.RequiredNotes
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMatcherConfig creates the legacy import matcher configuration
func CreateMatcherConfig(cfg *AppConfig) (*importer.Config, error) {
	out := cfg.Import.Clone()
	if err := out.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "import", nil, err)
	}
	return out, nil
}

// CreateExportConfig creates the exporter configuration. A non-empty format
// overrides the configured one.
func CreateExportConfig(cfg *AppConfig, format string) (*exporter.Config, error) {
	out := &exporter.Config{
		Format:           exporter.OutputFormat(strings.ToLower(cfg.Export.Format)),
		IncludeZeroLines: cfg.Export.IncludeZeroLines,
		IncludeCoherence: cfg.Export.IncludeCoherence,
		IncludeWarnings:  cfg.Export.IncludeWarnings,
		CSVHeaders:       cfg.Export.CSVHeaders,
	}
	if format != "" {
		out.Format = exporter.OutputFormat(strings.ToLower(format))
	}
	if cfg.Export.CSVDelimiter != "" {
		out.CSVDelimiter = []rune(cfg.Export.CSVDelimiter)[0]
	}

	if err := out.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "export.format", string(out.Format), err).
			WithSuggestion("Use one of the formats console, json, csv or xlsx")
	}
	return out, nil
}

// CreateEntity converts the entity section into the identification printed on reports
func CreateEntity(cfg *AppConfig) (report.Entity, error) {
	e := cfg.Entity
	out := report.Entity{
		Name:           e.Name,
		Acronym:        e.Acronym,
		TaxID:          e.TaxID,
		LegalForm:      e.LegalForm,
		TaxRegime:      e.TaxRegime,
		Address:        e.Address,
		Activity:       e.Activity,
		Headcount:      e.Headcount,
		PriorHeadcount: e.PriorHeadcount,
	}

	var err error
	if out.PeriodStart, err = parseDate("entity.period_start", e.PeriodStart); err != nil {
		return report.Entity{}, err
	}
	if out.PeriodEnd, err = parseDate("entity.period_end", e.PeriodEnd); err != nil {
		return report.Entity{}, err
	}
	if !out.PeriodStart.IsZero() && !out.PeriodEnd.IsZero() && out.PeriodStart.After(out.PeriodEnd) {
		return report.Entity{}, errors.ConfigurationError(errors.CodeInvalidConfig, "entity.period_start",
			e.PeriodStart, fmt.Errorf("period start cannot be after period end"))
	}
	return out, nil
}

func parseDate(setting, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, errors.ConfigurationError(errors.CodeInvalidConfig, setting, value, err).
			WithSuggestion("Use dates in YYYY-MM-DD format")
	}
	return t, nil
}
