package toynet

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrEmptySequence   = errors.New("empty token sequence")
	ErrTokenOutOfRange = errors.New("token index out of range")
)

// TextEncoder embeds every token and mean-pools the sequence into a single
// vector. The table is randomly initialized and never trained.
type TextEncoder struct {
	embedding *mat.Dense // vocabSize x dim
}

func NewTextEncoder(vocabSize, dim int, src rand.Source) *TextEncoder {
	return &TextEncoder{embedding: normalMatrix(vocabSize, dim, src)}
}

func (e *TextEncoder) VocabSize() int {
	r, _ := e.embedding.Dims()
	return r
}

func (e *TextEncoder) Dim() int {
	_, c := e.embedding.Dims()
	return c
}

// Encode returns the mean of the embedding rows selected by ids.
func (e *TextEncoder) Encode(ids []int) (*mat.VecDense, error) {
	if len(ids) == 0 {
		return nil, ErrEmptySequence
	}

	out := mat.NewVecDense(e.Dim(), nil)
	for _, id := range ids {
		if id < 0 || id >= e.VocabSize() {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrTokenOutOfRange, id, e.VocabSize())
		}
		out.AddVec(out, e.embedding.RowView(id))
	}
	out.ScaleVec(1/float64(len(ids)), out)
	return out, nil
}

// Noise draws a standard normal vector of length dim.
func Noise(dim int, src rand.Source) *mat.VecDense {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	data := make([]float64, dim)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewVecDense(dim, data)
}

func normalMatrix(r, c int, src rand.Source) *mat.Dense {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	data := make([]float64, r*c)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(r, c, data)
}
