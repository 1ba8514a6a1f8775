package backend

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	"github.com/aquarius4k/aquarius/core/config"
	"github.com/aquarius4k/aquarius/pkg/imageutils"
	"github.com/aquarius4k/aquarius/pkg/utils"
	"github.com/mudler/xlog"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var ErrNoImage = errors.New("no image returned")

// ImagePipeline is the pair of pretrained pipelines the studio chains: a
// text-to-image model and a super-resolution model.
type ImagePipeline interface {
	TextToImage(ctx context.Context, prompt string) (image.Image, error)
	Upscale(ctx context.Context, prompt string, src image.Image) (image.Image, error)
}

// Settings returns the configuration a request should use. It is read on
// every call so reloads apply to the next generation.
type Settings func() config.StudioConfig

// OpenAIPipeline talks to an OpenAI compatible image API (e.g. LocalAI with
// diffusers models) that serves both the base and the upscale model.
type OpenAIPipeline struct {
	client   openai.Client
	settings Settings
}

func NewOpenAIPipeline(cfg config.StudioConfig, settings Settings, opts ...option.RequestOption) (*OpenAIPipeline, error) {
	if cfg.AuthToken == "" {
		return nil, config.ErrMissingAuthToken
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("missing endpoint")
	}
	if settings == nil {
		settings = func() config.StudioConfig { return cfg }
	}

	opts = append([]option.RequestOption{
		option.WithBaseURL(cfg.Endpoint),
		option.WithAPIKey(cfg.AuthToken),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAIPipeline{
		client:   openai.NewClient(opts...),
		settings: settings,
	}, nil
}

// Preload checks that both models are known to the server with the
// configured credential.
func (p *OpenAIPipeline) Preload(ctx context.Context) error {
	s := p.settings()
	for _, id := range []string{s.BaseModel, s.UpscaleModel} {
		xlog.Info("Checking model", "model", id, "device", s.Device)
		if _, err := p.client.Models.Get(ctx, id); err != nil {
			return fmt.Errorf("loading model %s: %w", id, err)
		}
	}
	return nil
}

func (p *OpenAIPipeline) TextToImage(ctx context.Context, prompt string) (image.Image, error) {
	s := p.settings()
	xlog.Debug("Generating base image", "model", s.BaseModel, "width", s.BaseWidth, "height", s.BaseHeight, "guidance", s.GuidanceScale)

	return p.generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(s.BaseModel),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(fmt.Sprintf("%dx%d", s.BaseWidth, s.BaseHeight)),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	},
		option.WithJSONSet("guidance_scale", s.GuidanceScale),
	)
}

// Upscale sends src as the "file" source image, which LocalAI uses for
// image-to-image pipelines such as the x4 upscaler.
func (p *OpenAIPipeline) Upscale(ctx context.Context, prompt string, src image.Image) (image.Image, error) {
	s := p.settings()
	width, height := s.UpscaledSize()
	xlog.Debug("Upscaling image", "model", s.UpscaleModel, "width", width, "height", height)

	data, err := imageutils.PNGBytes(src)
	if err != nil {
		return nil, fmt.Errorf("encoding source image: %w", err)
	}

	return p.generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(s.UpscaleModel),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(fmt.Sprintf("%dx%d", width, height)),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	},
		option.WithJSONSet("file", base64.StdEncoding.EncodeToString(data)),
		option.WithJSONSet("guidance_scale", s.GuidanceScale),
	)
}

func (p *OpenAIPipeline) generate(ctx context.Context, params openai.ImageGenerateParams, opts ...option.RequestOption) (image.Image, error) {
	resp, err := p.client.Images.Generate(ctx, params, opts...)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%s: %w", params.Model, ErrNoImage)
	}

	content := resp.Data[0].B64JSON
	if content == "" {
		content = resp.Data[0].URL
	}
	if content == "" {
		return nil, fmt.Errorf("%s: %w", params.Model, ErrNoImage)
	}

	data, err := utils.DecodeContent(ctx, content)
	if err != nil {
		return nil, err
	}
	return imageutils.Decode(data)
}
