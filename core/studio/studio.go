// Package studio turns a prompt into a saved 4K image and a preview, the
// work behind the Generate button.
package studio

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aquarius4k/aquarius/core/backend"
	"github.com/aquarius4k/aquarius/pkg/imageutils"
	"github.com/aquarius4k/aquarius/pkg/naming"
	"github.com/aquarius4k/aquarius/pkg/utils"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mudler/xlog"
)

const (
	EmptyPromptMessage = "Please enter a prompt."

	lockFile = ".aquarius.lock"
)

var ErrEmptyPrompt = errors.New("empty prompt")

// View is what a trigger reports back to: either a text or an image takes
// the preview area.
type View interface {
	ShowMessage(text string)
	ShowImage(img image.Image)
}

type Result struct {
	ID      string
	Path    string
	Image   image.Image
	Preview image.Image
}

type Studio struct {
	pipeline backend.ImagePipeline
	settings backend.Settings
	names    naming.Allocator
}

func New(pipeline backend.ImagePipeline, settings backend.Settings) *Studio {
	return &Studio{
		pipeline: pipeline,
		settings: settings,
		names:    naming.Default(),
	}
}

// Generate runs base generation, upscaling, resizing and saving for prompt.
// Nothing touches the pipelines or the disk when the prompt is blank.
func (s *Studio) Generate(ctx context.Context, prompt string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	cfg := s.settings()
	id := uuid.New().String()
	start := time.Now()
	xlog.Info("Generating image", "id", id, "prompt", prompt)

	base, err := s.pipeline.TextToImage(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating base image: %w", err)
	}

	upscaled, err := s.pipeline.Upscale(ctx, prompt, base)
	if err != nil {
		return nil, fmt.Errorf("upscaling image: %w", err)
	}

	final := imageutils.Resize(upscaled, cfg.TargetWidth, cfg.TargetHeight)

	path, err := s.save(ctx, cfg.OutputDir, final)
	if err != nil {
		return nil, fmt.Errorf("saving image: %w", err)
	}
	xlog.Info("Image saved", "id", id, "path", path, "elapsed", time.Since(start))

	return &Result{
		ID:      id,
		Path:    path,
		Image:   final,
		Preview: imageutils.Thumbnail(final, cfg.PreviewWidth, cfg.PreviewHeight),
	}, nil
}

// save holds a lock on dir while picking the next AQ_ name and writing, so
// concurrent studios never hand out the same name.
func (s *Studio) save(ctx context.Context, dir string, img image.Image) (string, error) {
	lock := flock.New(filepath.Join(dir, lockFile))
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return "", err
	}
	if !locked {
		return "", fmt.Errorf("could not lock %s", dir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			xlog.Error("unable to release output lock", "error", err, "dir", dir)
		}
	}()

	name, err := s.names.Allocate(dir)
	if err != nil {
		return "", err
	}
	path, err := utils.SafeJoin(dir, name)
	if err != nil {
		return "", err
	}

	err = utils.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return imageutils.EncodePNG(w, img)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// Trigger is the catch-all boundary around Generate: whatever happens, the
// view ends up showing either the preview or a message.
func (s *Studio) Trigger(ctx context.Context, prompt string, view View) {
	defer func() {
		if r := recover(); r != nil {
			xlog.Error("Image generation panicked", "panic", r)
			view.ShowMessage(fmt.Sprintf("Error: %v", r))
		}
	}()

	res, err := s.Generate(ctx, prompt)
	switch {
	case errors.Is(err, ErrEmptyPrompt):
		view.ShowMessage(EmptyPromptMessage)
	case err != nil:
		xlog.Error("Image generation failed", "error", err)
		view.ShowMessage("Error: " + err.Error())
	default:
		view.ShowImage(res.Preview)
	}
}
