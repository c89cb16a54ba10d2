package main

import (
	"fmt"
	"path/filepath"

	"github.com/salvagekit/salvage/pkg/salvage/config"
	"github.com/salvagekit/salvage/pkg/salvage/engine"
	"github.com/salvagekit/salvage/pkg/salvage/tuner"
	"github.com/salvagekit/salvage/pkg/salvage/types"
	"github.com/salvagekit/salvage/pkg/salvage/writer"
	"github.com/spf13/viper"
)

// buildEngineConfig assembles a recovery session config from viper state.
// The device path must already be validated by the caller.
func buildEngineConfig(device string) (engine.Config, error) {
	cfg := engine.Config{Device: device}

	profileStr := viper.GetString("profile")
	if profileStr == "" {
		profileStr = config.DefaultProfile
	}
	profile, err := tuner.ParseProfile(profileStr)
	if err != nil {
		return cfg, fmt.Errorf("invalid profile %q: %w", profileStr, err)
	}
	cfg.Profile = profile

	strategies, err := engine.ParseStrategies(viper.GetString("strategies"))
	if err != nil {
		return cfg, fmt.Errorf("invalid strategies %q: %w", viper.GetString("strategies"), err)
	}
	cfg.Strategies = strategies

	if typesStr := viper.GetString("types"); typesStr != "" {
		list, err := types.ParseTypeList(typesStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid types %q: %w", typesStr, err)
		}
		cfg.Types = list
	}

	cfg.Pattern = viper.GetString("pattern")
	cfg.FilterSystem = viper.GetBool("filter_system")
	cfg.PreviewOnly = viper.GetBool("preview")

	capStr := viper.GetString("preview_cap")
	if capStr == "" {
		capStr = config.DefaultPreviewCap
	}
	previewCap, err := types.ParseSize(capStr)
	if err != nil {
		return cfg, fmt.Errorf("invalid preview cap %q: %w", capStr, err)
	}
	cfg.PreviewCap = previewCap

	cfg.MaxReadFailures = viper.GetInt("max_read_failures")

	if !cfg.PreviewOnly {
		outDir := viper.GetString("output_dir")
		if outDir == "" {
			outDir = config.DefaultOutputDir
		}
		expanded, err := config.ExpandPath(outDir)
		if err != nil {
			return cfg, fmt.Errorf("failed to expand output directory: %w", err)
		}
		absDir, err := filepath.Abs(expanded)
		if err != nil {
			return cfg, fmt.Errorf("failed to resolve output directory: %w", err)
		}
		cfg.OutputDir = absDir
		cfg.Writer = &writer.DirWriter{Compress: viper.GetBool("compress")}
	}

	return cfg, nil
}
