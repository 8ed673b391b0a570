package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads a resumption configuration file (YAML) and applies environment
// overrides with the RESUMPTION_ prefix, e.g.
// RESUMPTION_RESCALE_SCALEFACTOR=0.5.
func Load(path string) (ResumptionConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RESUMPTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return ResumptionConfig{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg ResumptionConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ResumptionConfig{}, fmt.Errorf("unmarshaling config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return ResumptionConfig{}, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadForModel reads a multi-model resumption configuration file and returns
// the effective configuration for modelID. The file is a YAML map of entry
// name to configuration: the reserved defaults entry applies to every model,
// and an entry whose model_id matches overrides it block by block. Invalid
// entries are logged and skipped.
func LoadForModel(logger logr.Logger, path, modelID string) (ResumptionConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ResumptionConfig{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var entries map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return ResumptionConfig{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	data := make(map[string]string, len(entries))
	for key := range entries {
		node := entries[key]
		doc, err := yaml.Marshal(&node)
		if err != nil {
			return ResumptionConfig{}, fmt.Errorf("re-encoding config entry %s: %w", key, err)
		}
		data[key] = string(doc)
	}

	cfg := ParseResumptionConfig(logger, data).GetModelConfig(modelID)
	if err := cfg.Validate(); err != nil {
		return ResumptionConfig{}, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}
