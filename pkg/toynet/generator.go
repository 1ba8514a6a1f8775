package toynet

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	ImageSize = 28

	hidden1 = 256
	hidden2 = 512
)

var ErrDimensionMismatch = errors.New("input dimension mismatch")

type activation func(float64) float64

func relu(x float64) float64 { return math.Max(0, x) }

// linear is a fully connected layer y = Wx + b.
type linear struct {
	weight *mat.Dense // out x in
	bias   *mat.VecDense
	act    activation
}

// newLinear draws weights and biases uniformly from [-1/sqrt(in), 1/sqrt(in)].
func newLinear(in, out int, act activation, src rand.Source) *linear {
	bound := 1 / math.Sqrt(float64(in))
	dist := distuv.Uniform{Min: -bound, Max: bound, Src: src}

	w := make([]float64, out*in)
	for i := range w {
		w[i] = dist.Rand()
	}
	b := make([]float64, out)
	for i := range b {
		b[i] = dist.Rand()
	}
	return &linear{
		weight: mat.NewDense(out, in, w),
		bias:   mat.NewVecDense(out, b),
		act:    act,
	}
}

func (l *linear) forward(x mat.Vector) *mat.VecDense {
	out, _ := l.weight.Dims()
	y := mat.NewVecDense(out, nil)
	y.MulVec(l.weight, x)
	y.AddVec(y, l.bias)
	for i := 0; i < out; i++ {
		y.SetVec(i, l.act(y.AtVec(i)))
	}
	return y
}

// Generator turns a noise vector and a text embedding into a 28x28 image
// with values in [-1, 1].
type Generator struct {
	noiseDim, embedDim int
	layers             []*linear
}

func NewGenerator(noiseDim, embedDim int, src rand.Source) *Generator {
	return &Generator{
		noiseDim: noiseDim,
		embedDim: embedDim,
		layers: []*linear{
			newLinear(noiseDim+embedDim, hidden1, relu, src),
			newLinear(hidden1, hidden2, relu, src),
			newLinear(hidden2, ImageSize*ImageSize, math.Tanh, src),
		},
	}
}

// Generate runs the forward pass on concat(noise, embed).
func (g *Generator) Generate(noise, embed mat.Vector) (*mat.Dense, error) {
	if noise.Len() != g.noiseDim {
		return nil, fmt.Errorf("%w: noise has %d values, want %d", ErrDimensionMismatch, noise.Len(), g.noiseDim)
	}
	if embed.Len() != g.embedDim {
		return nil, fmt.Errorf("%w: embedding has %d values, want %d", ErrDimensionMismatch, embed.Len(), g.embedDim)
	}

	x := mat.NewVecDense(g.noiseDim+g.embedDim, nil)
	for i := 0; i < g.noiseDim; i++ {
		x.SetVec(i, noise.AtVec(i))
	}
	for i := 0; i < g.embedDim; i++ {
		x.SetVec(g.noiseDim+i, embed.AtVec(i))
	}

	for _, l := range g.layers {
		x = l.forward(x)
	}
	return mat.NewDense(ImageSize, ImageSize, x.RawVector().Data), nil
}
