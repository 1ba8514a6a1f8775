package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

var ErrMissingAuthToken = errors.New("missing auth token")

// StudioConfig drives the 4K studio: which models to call, how to call them
// and where to put the results.
type StudioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AuthToken string `yaml:"-"`

	BaseModel     string  `yaml:"base_model"`
	UpscaleModel  string  `yaml:"upscale_model"`
	GuidanceScale float64 `yaml:"guidance_scale"`
	Device        string  `yaml:"device"`

	BaseWidth     int `yaml:"base_width"`
	BaseHeight    int `yaml:"base_height"`
	UpscaleFactor int `yaml:"upscale_factor"`
	TargetWidth   int `yaml:"target_width"`
	TargetHeight  int `yaml:"target_height"`
	PreviewWidth  int `yaml:"preview_width"`
	PreviewHeight int `yaml:"preview_height"`

	OutputDir string `yaml:"output_dir"`
}

type StudioOption func(*StudioConfig)

// Default is the stock Aquarius 4K setup: SD 1.4 at 512x512, the x4
// upscaler, guidance 8.5 and a 3840x2160 result in the working directory.
func Default() StudioConfig {
	return StudioConfig{
		Endpoint:      "http://127.0.0.1:8080/v1/",
		BaseModel:     "CompVis/stable-diffusion-v1-4",
		UpscaleModel:  "stabilityai/stable-diffusion-x4-upscaler",
		GuidanceScale: 8.5,
		Device:        "cpu",
		BaseWidth:     512,
		BaseHeight:    512,
		UpscaleFactor: 4,
		TargetWidth:   3840,
		TargetHeight:  2160,
		PreviewWidth:  512,
		PreviewHeight: 512,
		OutputDir:     ".",
	}
}

func NewStudioConfig(o ...StudioOption) *StudioConfig {
	opt := Default()
	for _, oo := range o {
		oo(&opt)
	}
	return &opt
}

// NewOverrides applies o to an empty config. Fields no option sets stay zero
// so that Resolve leaves the lower layers alone.
func NewOverrides(o ...StudioOption) StudioConfig {
	var c StudioConfig
	for _, oo := range o {
		oo(&c)
	}
	return c
}

func WithEndpoint(url string) StudioOption {
	return func(o *StudioConfig) {
		o.Endpoint = url
	}
}

func WithAuthToken(token string) StudioOption {
	return func(o *StudioConfig) {
		o.AuthToken = token
	}
}

func WithBaseModel(id string) StudioOption {
	return func(o *StudioConfig) {
		o.BaseModel = id
	}
}

func WithUpscaleModel(id string) StudioOption {
	return func(o *StudioConfig) {
		o.UpscaleModel = id
	}
}

func WithGuidanceScale(scale float64) StudioOption {
	return func(o *StudioConfig) {
		o.GuidanceScale = scale
	}
}

func WithDevice(device string) StudioOption {
	return func(o *StudioConfig) {
		o.Device = device
	}
}

func WithOutputDir(dir string) StudioOption {
	return func(o *StudioConfig) {
		o.OutputDir = dir
	}
}

func WithTargetSize(width, height int) StudioOption {
	return func(o *StudioConfig) {
		o.TargetWidth = width
		o.TargetHeight = height
	}
}

func WithPreviewSize(width, height int) StudioOption {
	return func(o *StudioConfig) {
		o.PreviewWidth = width
		o.PreviewHeight = height
	}
}

// UpscaledSize is the resolution the upscaler is asked for.
func (c StudioConfig) UpscaledSize() (int, int) {
	return c.BaseWidth * c.UpscaleFactor, c.BaseHeight * c.UpscaleFactor
}

// Validate reports every problem at once.
func (c StudioConfig) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is empty"))
	}
	if c.AuthToken == "" {
		errs = append(errs, ErrMissingAuthToken)
	}
	if c.BaseModel == "" || c.UpscaleModel == "" {
		errs = append(errs, errors.New("base and upscale model ids are required"))
	}
	if c.GuidanceScale <= 0 {
		errs = append(errs, fmt.Errorf("guidance scale must be positive, got %v", c.GuidanceScale))
	}
	for name, v := range map[string]int{
		"base_width":     c.BaseWidth,
		"base_height":    c.BaseHeight,
		"upscale_factor": c.UpscaleFactor,
		"target_width":   c.TargetWidth,
		"target_height":  c.TargetHeight,
		"preview_width":  c.PreviewWidth,
		"preview_height": c.PreviewHeight,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output dir is empty"))
	}
	return errors.Join(errs...)
}

// LoadFile reads a YAML studio config. A missing file yields an empty
// config.
func LoadFile(path string) (*StudioConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &StudioConfig{}, nil
	}
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML, rejecting unknown keys. Empty input is an empty
// config.
func Parse(data []byte) (*StudioConfig, error) {
	var c StudioConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &c, nil
}

// Resolve layers defaults, then file, then overrides. Zero values in a
// layer leave the layer below untouched, so a zero guidance scale can never
// be selected and Validate rejects it.
func Resolve(file *StudioConfig, overrides StudioConfig) (StudioConfig, error) {
	c := Default()
	if file != nil {
		if err := mergo.Merge(&c, *file, mergo.WithOverride); err != nil {
			return c, err
		}
	}
	if err := mergo.Merge(&c, overrides, mergo.WithOverride); err != nil {
		return c, err
	}
	return c, nil
}

// Holder shares the live StudioConfig between the UI and the watcher.
type Holder struct {
	mu  sync.RWMutex
	cfg StudioConfig
}

func NewHolder(c StudioConfig) *Holder {
	return &Holder{cfg: c}
}

func (h *Holder) Get() StudioConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

func (h *Holder) Set(c StudioConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = c
}
