package main

import (
	"strings"
	"testing"

	"github.com/salvagekit/salvage/pkg/salvage/config"
	"github.com/salvagekit/salvage/pkg/salvage/engine"
	"github.com/salvagekit/salvage/pkg/salvage/tuner"
	"github.com/salvagekit/salvage/pkg/salvage/types"
	"github.com/salvagekit/salvage/pkg/salvage/writer"
	"github.com/spf13/viper"
)

func TestBuildEngineConfig(t *testing.T) {
	// Reset viper for each test
	resetViperForTest := func() {
		viper.Reset()
		// Set defaults
		viper.SetDefault("profile", config.DefaultProfile)
		viper.SetDefault("strategies", config.DefaultStrategies)
		viper.SetDefault("preview_cap", config.DefaultPreviewCap)
		viper.SetDefault("output_dir", config.DefaultOutputDir)
		viper.SetDefault("filter_system", true)
		viper.SetDefault("max_read_failures", config.DefaultMaxReadFailures)
	}

	tests := []struct {
		name           string
		setup          func()
		wantProfile    tuner.Profile
		wantStrategies engine.Strategy
		wantPreview    bool
		wantCap        int64
		wantFailures   int
		wantErr        bool
	}{
		{
			name: "default values",
			setup: func() {
				resetViperForTest()
			},
			wantProfile:    tuner.ProfileBalanced,
			wantStrategies: engine.DefaultStrategies,
			wantCap:        types.MiB,
			wantFailures:   8,
			wantErr:        false,
		},
		{
			name: "performance profile",
			setup: func() {
				resetViperForTest()
				viper.Set("profile", "performance")
			},
			wantProfile:    tuner.ProfilePerformance,
			wantStrategies: engine.DefaultStrategies,
			wantCap:        types.MiB,
			wantFailures:   8,
			wantErr:        false,
		},
		{
			name: "invalid profile",
			setup: func() {
				resetViperForTest()
				viper.Set("profile", "turbo")
			},
			wantErr: true,
		},
		{
			name: "explicit strategies",
			setup: func() {
				resetViperForTest()
				viper.Set("strategies", "direct,offset")
			},
			wantProfile:    tuner.ProfileBalanced,
			wantStrategies: engine.StrategyDirect | engine.StrategyOffset,
			wantCap:        types.MiB,
			wantFailures:   8,
			wantErr:        false,
		},
		{
			name: "invalid strategy",
			setup: func() {
				resetViperForTest()
				viper.Set("strategies", "psychic")
			},
			wantErr: true,
		},
		{
			name: "preview skips writer",
			setup: func() {
				resetViperForTest()
				viper.Set("preview", true)
			},
			wantProfile:    tuner.ProfileBalanced,
			wantStrategies: engine.DefaultStrategies,
			wantPreview:    true,
			wantCap:        types.MiB,
			wantFailures:   8,
			wantErr:        false,
		},
		{
			name: "custom preview cap",
			setup: func() {
				resetViperForTest()
				viper.Set("preview_cap", "4K")
			},
			wantProfile:    tuner.ProfileBalanced,
			wantStrategies: engine.DefaultStrategies,
			wantCap:        4096,
			wantFailures:   8,
			wantErr:        false,
		},
		{
			name: "invalid preview cap",
			setup: func() {
				resetViperForTest()
				viper.Set("preview_cap", "lots")
			},
			wantErr: true,
		},
		{
			name: "custom read failure budget",
			setup: func() {
				resetViperForTest()
				viper.Set("max_read_failures", 32)
			},
			wantProfile:    tuner.ProfileBalanced,
			wantStrategies: engine.DefaultStrategies,
			wantCap:        types.MiB,
			wantFailures:   32,
			wantErr:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			cfg, err := buildEngineConfig("/dev/sdz1")
			if (err != nil) != tt.wantErr {
				t.Errorf("buildEngineConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if cfg.Device != "/dev/sdz1" {
				t.Errorf("buildEngineConfig() Device = %q, want %q", cfg.Device, "/dev/sdz1")
			}
			if cfg.Profile != tt.wantProfile {
				t.Errorf("buildEngineConfig() Profile = %v, want %v", cfg.Profile, tt.wantProfile)
			}
			if cfg.Strategies != tt.wantStrategies {
				t.Errorf("buildEngineConfig() Strategies = %v, want %v", cfg.Strategies, tt.wantStrategies)
			}
			if cfg.PreviewOnly != tt.wantPreview {
				t.Errorf("buildEngineConfig() PreviewOnly = %v, want %v", cfg.PreviewOnly, tt.wantPreview)
			}
			if cfg.PreviewCap != tt.wantCap {
				t.Errorf("buildEngineConfig() PreviewCap = %d, want %d", cfg.PreviewCap, tt.wantCap)
			}
			if cfg.MaxReadFailures != tt.wantFailures {
				t.Errorf("buildEngineConfig() MaxReadFailures = %d, want %d", cfg.MaxReadFailures, tt.wantFailures)
			}
			if tt.wantPreview {
				if cfg.Writer != nil {
					t.Errorf("buildEngineConfig() Writer = %v, want nil in preview mode", cfg.Writer)
				}
				if cfg.OutputDir != "" {
					t.Errorf("buildEngineConfig() OutputDir = %q, want empty in preview mode", cfg.OutputDir)
				}
			} else {
				if cfg.Writer == nil {
					t.Error("buildEngineConfig() Writer is nil, want a directory writer")
				}
				if cfg.OutputDir == "" {
					t.Error("buildEngineConfig() OutputDir is empty")
				}
			}
		})
	}
}

func TestBuildEngineConfigTypes(t *testing.T) {
	resetViperForTest := func() {
		viper.Reset()
		viper.SetDefault("profile", config.DefaultProfile)
		viper.SetDefault("strategies", config.DefaultStrategies)
		viper.SetDefault("preview_cap", config.DefaultPreviewCap)
		viper.SetDefault("output_dir", config.DefaultOutputDir)
		viper.SetDefault("max_read_failures", config.DefaultMaxReadFailures)
	}

	tests := []struct {
		name      string
		typesStr  string
		wantTypes []types.FileType
		wantErr   bool
	}{
		{
			name:      "empty means all types",
			typesStr:  "",
			wantTypes: nil,
			wantErr:   false,
		},
		{
			name:      "single type",
			typesStr:  "jpeg",
			wantTypes: []types.FileType{types.TypeJpeg},
			wantErr:   false,
		},
		{
			name:      "type group",
			typesStr:  "image",
			wantTypes: types.TypeGroups["image"],
			wantErr:   false,
		},
		{
			name:     "unknown type",
			typesStr: "hologram",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViperForTest()
			if tt.typesStr != "" {
				viper.Set("types", tt.typesStr)
			}

			cfg, err := buildEngineConfig("/dev/sdz1")
			if (err != nil) != tt.wantErr {
				t.Errorf("buildEngineConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if len(cfg.Types) != len(tt.wantTypes) {
				t.Errorf("buildEngineConfig() Types count = %d, want %d", len(cfg.Types), len(tt.wantTypes))
				return
			}
			for i, ft := range cfg.Types {
				if ft != tt.wantTypes[i] {
					t.Errorf("buildEngineConfig() Types[%d] = %v, want %v", i, ft, tt.wantTypes[i])
				}
			}
		})
	}
}

func TestBuildEngineConfigCompression(t *testing.T) {
	viper.Reset()
	viper.SetDefault("profile", config.DefaultProfile)
	viper.SetDefault("strategies", config.DefaultStrategies)
	viper.SetDefault("preview_cap", config.DefaultPreviewCap)
	viper.SetDefault("output_dir", config.DefaultOutputDir)
	viper.SetDefault("max_read_failures", config.DefaultMaxReadFailures)
	viper.Set("compress", true)

	cfg, err := buildEngineConfig("/dev/sdz1")
	if err != nil {
		t.Fatalf("buildEngineConfig() error = %v", err)
	}

	dw, ok := cfg.Writer.(*writer.DirWriter)
	if !ok {
		t.Fatalf("buildEngineConfig() Writer = %T, want *writer.DirWriter", cfg.Writer)
	}
	if !dw.Compress {
		t.Error("buildEngineConfig() Writer.Compress = false, want true")
	}
}

func TestBuildEngineConfigOutputDirIsAbsolute(t *testing.T) {
	viper.Reset()
	viper.SetDefault("profile", config.DefaultProfile)
	viper.SetDefault("strategies", config.DefaultStrategies)
	viper.SetDefault("preview_cap", config.DefaultPreviewCap)
	viper.SetDefault("max_read_failures", config.DefaultMaxReadFailures)
	viper.Set("output_dir", "./rescued")

	cfg, err := buildEngineConfig("/dev/sdz1")
	if err != nil {
		t.Fatalf("buildEngineConfig() error = %v", err)
	}
	if !strings.HasSuffix(cfg.OutputDir, "rescued") {
		t.Errorf("buildEngineConfig() OutputDir = %q, want suffix %q", cfg.OutputDir, "rescued")
	}
	if !strings.HasPrefix(cfg.OutputDir, "/") {
		t.Errorf("buildEngineConfig() OutputDir = %q, want absolute path", cfg.OutputDir)
	}
}
