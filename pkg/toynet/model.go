package toynet

import (
	"fmt"
	"math/rand/v2"

	"github.com/aquarius4k/aquarius/pkg/vocab"
	"gonum.org/v1/gonum/mat"
)

const (
	EmbeddingDim = 10
	NoiseDim     = 100
)

// Model chains the vocabulary, the encoder and the generator.
type Model struct {
	vocab     *vocab.Vocabulary
	encoder   *TextEncoder
	generator *Generator
	src       rand.Source
}

// NewModel builds a model with fresh random weights drawn from src. The
// same source is used for the per-call noise.
func NewModel(v *vocab.Vocabulary, src rand.Source) *Model {
	return &Model{
		vocab:     v,
		encoder:   NewTextEncoder(v.Size(), EmbeddingDim, src),
		generator: NewGenerator(NoiseDim, EmbeddingDim, src),
		src:       src,
	}
}

// Dream encodes prompt, samples noise and returns the generated image.
func (m *Model) Dream(prompt string) (*mat.Dense, error) {
	embed, err := m.encoder.Encode(m.vocab.Encode(prompt))
	if err != nil {
		return nil, fmt.Errorf("encoding prompt %q: %w", prompt, err)
	}
	return m.generator.Generate(Noise(NoiseDim, m.src), embed)
}
