package main

import (
	"fmt"

	"github.com/jonathan/hr-pulse/internal/config"
	"github.com/jonathan/hr-pulse/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// flagOverride maps a command flag onto a config key. The flag wins only when
// it was set explicitly.
type flagOverride struct {
	flag string
	key  string
}

// loadConfig reads the config file and environment, then applies explicitly
// set flags on top.
func loadConfig(cmd *cobra.Command, overrides ...flagOverride) (*config.Config, error) {
	var opts []config.Option
	for _, o := range overrides {
		f := cmd.Flags().Lookup(o.flag)
		if f == nil || !f.Changed {
			continue
		}
		opts = append(opts, config.WithOverride(o.key, f.Value.String()))
	}
	if cmd.Flags().Changed("debug") {
		opts = append(opts, config.WithOverride("log.debug", logDebug))
	}
	if cmd.Flags().Changed("json") {
		opts = append(opts, config.WithOverride("log.json", logJSON))
	}

	cfg, err := config.Load(configFile, opts...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the config.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// setup is loadConfig followed by newLogger.
func setup(cmd *cobra.Command, overrides ...flagOverride) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd, overrides...)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// errRequired formats a missing required setting.
func errRequired(what, flag, env string) error {
	if env == "" {
		return fmt.Errorf("%s is required (use %s)", what, flag)
	}
	return fmt.Errorf("%s is required (set %s environment variable or use %s flag)", what, env, flag)
}
