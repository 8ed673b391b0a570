package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/llm-d-incubation/training-resumption/internal/callbacks"
	"github.com/llm-d-incubation/training-resumption/internal/logging"
	"github.com/llm-d-incubation/training-resumption/internal/metrics"
)

const (
	// GlobalDefaultsKey is the reserved entry key holding defaults applied
	// to every model without an override.
	GlobalDefaultsKey = "defaults"
)

// RescaleConfig configures the global learning-rate rescaler applied at
// run start.
type RescaleConfig struct {
	// ScaleFactor is the multiplicative factor applied to every learning
	// rate, typically in (0, inf).
	ScaleFactor float64 `yaml:"scaleFactor" json:"scaleFactor" mapstructure:"scaleFactor"`

	// WeightDecayFraction is the fraction of the rescaled learning rate
	// assigned as weight decay. Defaults to 0.
	WeightDecayFraction float64 `yaml:"weightDecayFraction,omitempty" json:"weightDecayFraction,omitempty" mapstructure:"weightDecayFraction"`
}

// Validate checks for invalid rescale values.
func (c *RescaleConfig) Validate() error {
	if math.IsNaN(c.ScaleFactor) || math.IsInf(c.ScaleFactor, 0) {
		return fmt.Errorf("scaleFactor must be finite, got %v", c.ScaleFactor)
	}
	if c.ScaleFactor == 0 {
		return fmt.Errorf("scaleFactor must be set and non-zero")
	}
	if math.IsNaN(c.WeightDecayFraction) || math.IsInf(c.WeightDecayFraction, 0) {
		return fmt.Errorf("weightDecayFraction must be finite, got %v", c.WeightDecayFraction)
	}
	return nil
}

// FreezeConfig configures the layer freezer applied at run start.
type FreezeConfig struct {
	// Targets are the parameter names to freeze. Duplicates are collapsed.
	Targets []string `yaml:"targets" json:"targets" mapstructure:"targets"`
}

// Validate checks for invalid freeze values. An empty target list is
// rejected here because it can never freeze anything and would only fail
// later, at run start.
func (c *FreezeConfig) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("freeze targets must not be empty")
	}
	for _, name := range c.Targets {
		if name == "" {
			return fmt.Errorf("freeze targets must not contain empty names")
		}
	}
	return nil
}

// ResumptionConfig is the per-run callback configuration. Both blocks are
// optional; a nil block disables the corresponding callback.
type ResumptionConfig struct {
	// ModelID identifies the model this entry overrides (only used in
	// override entries of a multi-model config).
	ModelID string `yaml:"model_id,omitempty" json:"model_id,omitempty" mapstructure:"model_id"`

	Rescale *RescaleConfig `yaml:"rescale,omitempty" json:"rescale,omitempty" mapstructure:"rescale"`
	Freeze  *FreezeConfig  `yaml:"freeze,omitempty" json:"freeze,omitempty" mapstructure:"freeze"`
}

// Validate checks every configured block.
func (c *ResumptionConfig) Validate() error {
	if c.Rescale != nil {
		if err := c.Rescale.Validate(); err != nil {
			return fmt.Errorf("rescale: %w", err)
		}
	}
	if c.Freeze != nil {
		if err := c.Freeze.Validate(); err != nil {
			return fmt.Errorf("freeze: %w", err)
		}
	}
	return nil
}

// Build constructs a callback registry from the configuration. The rescaler
// runs before the freezer when both are configured. m may be nil.
func (c *ResumptionConfig) Build(m *metrics.Metrics) (*callbacks.Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	registry := callbacks.NewRegistry(m)
	if c.Rescale != nil {
		registry.Register(callbacks.NewRateRescaler(c.Rescale.ScaleFactor, c.Rescale.WeightDecayFraction))
	}
	if c.Freeze != nil {
		registry.Register(callbacks.NewLayerFreezer(c.Freeze.Targets...).WithMetrics(m))
	}
	return registry, nil
}

// ResumptionConfigData holds parsed resumption configuration for all models,
// keyed by model ID (plus the reserved defaults entry).
type ResumptionConfigData map[string]ResumptionConfig

// ParseResumptionConfig parses a map of YAML documents, one per entry, into
// per-model resumption configuration. Invalid entries are logged and
// skipped; on duplicate model IDs the first key (in sorted order) wins.
func ParseResumptionConfig(logger logr.Logger, data map[string]string) ResumptionConfigData {
	out := make(ResumptionConfigData)
	seen := make(map[string]string)

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var cfg ResumptionConfig
		if err := yaml.Unmarshal([]byte(data[key]), &cfg); err != nil {
			logger.Info("Failed to parse resumption config entry, skipping",
				"key", key, "error", err.Error())
			continue
		}
		if err := cfg.Validate(); err != nil {
			logger.Info("Invalid resumption config entry, skipping",
				"key", key, "error", err.Error())
			continue
		}

		if key == GlobalDefaultsKey {
			out[GlobalDefaultsKey] = cfg
			continue
		}

		if cfg.ModelID == "" {
			logger.Info("Skipping resumption config without model_id field", "key", key)
			continue
		}
		if winner, dup := seen[cfg.ModelID]; dup {
			logger.Info("Duplicate model_id in resumption config - first key wins",
				"model_id", cfg.ModelID, "winningKey", winner, "duplicateKey", key)
			continue
		}
		seen[cfg.ModelID] = key
		out[cfg.ModelID] = cfg
	}

	logger.V(logging.DEBUG).Info("Parsed resumption config", "modelCount", len(out))
	return out
}

// GetModelConfig returns the effective configuration for a specific model,
// merging the model-specific entry over the global defaults. Blocks override
// wholesale: a model-level rescale block replaces the default one.
func (data ResumptionConfigData) GetModelConfig(modelID string) ResumptionConfig {
	result := data[GlobalDefaultsKey]
	modelCfg, ok := data[modelID]
	if !ok {
		return result
	}

	if modelCfg.ModelID != "" {
		result.ModelID = modelCfg.ModelID
	}
	if modelCfg.Rescale != nil {
		result.Rescale = modelCfg.Rescale
	}
	if modelCfg.Freeze != nil {
		result.Freeze = modelCfg.Freeze
	}
	return result
}
