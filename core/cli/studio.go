package cli

import (
	"fmt"

	"github.com/aquarius4k/aquarius/core/config"
	"github.com/aquarius4k/aquarius/pkg/xsysinfo"
)

type StudioCMD struct {
	Endpoint      string  `env:"AQUARIUS_ENDPOINT" help:"Base URL of the OpenAI compatible image API (default http://127.0.0.1:8080/v1/)" group:"backend"`
	AuthToken     string  `env:"AQUARIUS_AUTH_TOKEN,HF_TOKEN" required:"" help:"Token sent as a bearer credential to the image API" group:"backend"`
	BaseModel     string  `env:"AQUARIUS_BASE_MODEL" help:"Model used for the 512x512 base image" group:"models"`
	UpscaleModel  string  `env:"AQUARIUS_UPSCALE_MODEL" help:"Model used for the x4 upscale" group:"models"`
	GuidanceScale float64 `env:"AQUARIUS_GUIDANCE_SCALE" help:"Classifier free guidance scale (default 8.5)" group:"models"`
	Device        string  `env:"AQUARIUS_DEVICE" help:"Device hint for the backend (cpu, cuda, rocm, xpu or auto to detect)" group:"models"`
	SkipPreload   bool    `env:"AQUARIUS_SKIP_PRELOAD" default:"false" help:"Do not check that both models exist before opening the window" group:"models"`

	ConfigFile  string `env:"AQUARIUS_CONFIG" name:"config" default:"aquarius.yaml" help:"YAML file with studio settings, reloaded on change" group:"storage"`
	WatchConfig bool   `env:"AQUARIUS_WATCH_CONFIG" default:"true" negatable:"" help:"Reload the config file when it changes" group:"storage"`
	OutputDir   string `env:"AQUARIUS_OUTPUT_DIR" help:"Directory that receives AQ_NNNN.png files (default current directory)" group:"storage"`
}

// Overrides collects the flags that sit above the config file. Unset flags
// stay zero so the file or the defaults win.
func (s *StudioCMD) Overrides() config.StudioConfig {
	return config.NewOverrides(
		config.WithEndpoint(s.Endpoint),
		config.WithAuthToken(s.AuthToken),
		config.WithBaseModel(s.BaseModel),
		config.WithUpscaleModel(s.UpscaleModel),
		config.WithGuidanceScale(s.GuidanceScale),
		config.WithDevice(s.Device),
		config.WithOutputDir(s.OutputDir),
	)
}

// Load resolves defaults, the config file and the flags into a validated
// StudioConfig.
func (s *StudioCMD) Load() (config.StudioConfig, error) {
	file, err := config.LoadFile(s.ConfigFile)
	if err != nil {
		return config.StudioConfig{}, err
	}
	cfg, err := config.Resolve(file, s.Overrides())
	if err != nil {
		return cfg, fmt.Errorf("merging configuration: %w", err)
	}
	cfg.Device = xsysinfo.ResolveDevice(cfg.Device)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
