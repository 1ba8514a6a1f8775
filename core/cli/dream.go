package cli

import (
	"image"
	"io"
	"math/rand/v2"

	"github.com/aquarius4k/aquarius/pkg/imageutils"
	"github.com/aquarius4k/aquarius/pkg/toynet"
	"github.com/aquarius4k/aquarius/pkg/utils"
	"github.com/aquarius4k/aquarius/pkg/vocab"
	"github.com/mudler/xlog"
)

type DreamCMD struct {
	Prompt   string `env:"TOYDREAM_PROMPT" default:"a cat on mat" help:"Text to turn into a 28x28 image"`
	Seed     uint64 `env:"TOYDREAM_SEED" help:"Seed for weights and noise, 0 picks one at random"`
	Output   string `env:"TOYDREAM_OUTPUT" short:"o" help:"Also write the image to this PNG file"`
	Zoom     int    `env:"TOYDREAM_ZOOM" default:"12" help:"Pixel zoom of the viewer window"`
	Headless bool   `env:"TOYDREAM_HEADLESS" help:"Do not open a window"`
}

// Render builds a freshly initialized model and dreams the prompt into a
// grayscale image.
func (d *DreamCMD) Render() (*image.Gray, error) {
	seed := d.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	xlog.Debug("Initializing toy model", "seed", seed)

	v := vocab.Default()
	xlog.Debug("Vocabulary", "tokens", v.Tokens())

	model := toynet.NewModel(v, rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out, err := model.Dream(d.Prompt)
	if err != nil {
		return nil, err
	}
	return imageutils.FromMatrix(out), nil
}

// Save writes img to the --output path, if one was given.
func (d *DreamCMD) Save(img image.Image) error {
	if d.Output == "" {
		return nil
	}
	err := utils.WriteFileAtomic(d.Output, 0o644, func(w io.Writer) error {
		return imageutils.EncodePNG(w, img)
	})
	if err != nil {
		return err
	}
	xlog.Info("Image written", "path", d.Output)
	return nil
}
