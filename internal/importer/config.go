package importer

import (
	"fmt"
	"math"
)

// Redistribution decides where the weight of an absent signal goes
type Redistribution string

const (
	// RedistributeToLabel moves a missing account or position weight onto the label band
	RedistributeToLabel Redistribution = "label"
	// RedistributeProportional spreads a missing weight over the remaining bands
	// in proportion to their own weights
	RedistributeProportional Redistribution = "proportional"
)

// Weights are the shares of each signal in the composite score
type Weights struct {
	Sheet    float64 `json:"sheet" mapstructure:"sheet"`
	Label    float64 `json:"label" mapstructure:"label"`
	Account  float64 `json:"account" mapstructure:"account"`
	Position float64 `json:"position" mapstructure:"position"`
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Sheet + w.Label + w.Account + w.Position
}

// Validate checks every weight is within [0,1] and the total is about 1
func (w *Weights) Validate() error {
	for name, v := range map[string]float64{"sheet": w.Sheet, "label": w.Label, "account": w.Account, "position": w.Position} {
		if v < 0.0 || v > 1.0 {
			return fmt.Errorf("%s weight must be between 0.0 and 1.0: %f", name, v)
		}
	}

	total := w.Sum()
	if total < 0.99 || total > 1.01 {
		return fmt.Errorf("weights should sum to 1.0, got %f", total)
	}
	return nil
}

// Config holds the matcher thresholds and weights
type Config struct {
	Weights Weights `json:"weights" mapstructure:"weights"`

	// Redistribution applies when a row has no account number or a field has no expected row
	Redistribution Redistribution `json:"redistribution" mapstructure:"redistribution"`

	// SheetThreshold is the minimum sheet-name similarity that classifies a sheet (0-100)
	SheetThreshold float64 `json:"sheet_threshold" mapstructure:"sheet_threshold"`

	// AutoApplyThreshold is the minimum confidence for automatic application (0-100)
	AutoApplyThreshold float64 `json:"auto_apply_threshold" mapstructure:"auto_apply_threshold"`

	// MaxValueColumns bounds how many period amounts are read per row (N, N-1, N-2)
	MaxValueColumns int `json:"max_value_columns" mapstructure:"max_value_columns"`

	// PositionStep is the score lost per row of distance from the expected row
	PositionStep float64 `json:"position_step" mapstructure:"position_step"`
}

// DefaultConfig returns the standard weighting: sheet 30%, label 40%, account 20%, position 10%
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Sheet:    0.30,
			Label:    0.40,
			Account:  0.20,
			Position: 0.10,
		},
		Redistribution:     RedistributeToLabel,
		SheetThreshold:     60,
		AutoApplyThreshold: 80,
		MaxValueColumns:    3,
		PositionStep:       10,
	}
}

// Validate checks if the matcher configuration is valid
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}

	switch c.Redistribution {
	case RedistributeToLabel, RedistributeProportional:
	default:
		return fmt.Errorf("unknown redistribution policy: %q", c.Redistribution)
	}

	if c.SheetThreshold < 0 || c.SheetThreshold > 100 {
		return fmt.Errorf("sheet threshold must be between 0 and 100: %f", c.SheetThreshold)
	}

	if c.AutoApplyThreshold < 0 || c.AutoApplyThreshold > 100 {
		return fmt.Errorf("auto apply threshold must be between 0 and 100: %f", c.AutoApplyThreshold)
	}

	if c.MaxValueColumns < 1 || c.MaxValueColumns > 3 {
		return fmt.Errorf("max value columns must be between 1 and 3: %d", c.MaxValueColumns)
	}

	if c.PositionStep <= 0 {
		return fmt.Errorf("position step must be positive: %f", c.PositionStep)
	}
	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// effectiveWeights normalises the weights for the signals actually present.
// The result always sums to the configured total.
func (c *Config) effectiveWeights(hasAccount, hasPosition bool) Weights {
	w := c.Weights
	var missing float64
	if !hasAccount {
		missing += w.Account
		w.Account = 0
	}
	if !hasPosition {
		missing += w.Position
		w.Position = 0
	}
	if missing == 0 {
		return w
	}

	switch c.Redistribution {
	case RedistributeProportional:
		remaining := w.Sum()
		if remaining == 0 {
			w.Label = missing
			return w
		}
		factor := (remaining + missing) / remaining
		w.Sheet *= factor
		w.Label *= factor
		w.Account *= factor
		w.Position *= factor
	default:
		w.Label += missing
	}
	return w
}

// composite combines band scores (each 0-100) into one confidence rounded to two decimals
func composite(w Weights, sheet, label, account, position float64) float64 {
	score := w.Sheet*sheet + w.Label*label + w.Account*account + w.Position*position
	return math.Round(score*100) / 100
}
