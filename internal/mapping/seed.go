package mapping

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

// seedFile is the layout of a mapping seed file:
//
//	configs:
//	  - category: note17
//	    mappings:
//	      - accountNumber: "401100"
//	        source: SC
//	        destination: lignes.fournisseurs
type seedFile struct {
	Configs []models.MappingConfig `mapstructure:"configs"`
}

// LoadSeedFile reads mapping configurations from a JSON, YAML or TOML file.
// Missing owner and scope default to SYSTEM / GLOBAL and every loaded
// configuration is active.
func LoadSeedFile(path string) ([]models.MappingConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}

	var seed seedFile
	if err := v.Unmarshal(&seed); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "mapping_seed", path, err)
	}
	if len(seed.Configs) == 0 {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "mapping_seed", path,
			fmt.Errorf("no configs found"))
	}

	for i := range seed.Configs {
		c := &seed.Configs[i]
		if c.OwnerType == "" {
			c.OwnerType = models.OwnerSystem
		}
		if c.Scope == "" {
			c.Scope = models.ScopeGlobal
		}
		c.Active = true
	}
	return seed.Configs, nil
}

// Loader validates and stores configurations
type Loader struct {
	store  Store
	logger logger.Logger
	now    func() time.Time
}

// NewLoader creates a loader writing to store
func NewLoader(store Store) *Loader {
	return &Loader{
		store:  store,
		logger: logger.GetGlobalLogger().WithComponent("mapping_loader"),
		now:    time.Now,
	}
}

// Load validates every configuration first and stores them only if all pass
func (l *Loader) Load(ctx context.Context, configs []models.MappingConfig) error {
	for i := range configs {
		if err := Validate(&configs[i]); err != nil {
			return errors.WrapIfNeeded(err, errors.CategoryMapping, errors.CodeInvalidMapping, "invalid configuration").
				WithContext("config_index", i)
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = l.now()
		}
		if err := l.store.Save(ctx, c); err != nil {
			return err
		}
		l.logger.WithFields(logger.Fields{
			"config_id": c.ID,
			"category":  c.Category,
			"owner":     c.OwnerType,
			"scope":     c.Scope,
			"mappings":  len(c.Mappings),
		}).Info("Mapping configuration stored")
	}
	return nil
}
