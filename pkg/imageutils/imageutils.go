package imageutils

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/mat"
)

// FromMatrix renders m as a grayscale image, stretching the smallest value
// to black and the largest to white. A constant matrix renders black.
func FromMatrix(m mat.Matrix) *image.Gray {
	rows, cols := m.Dims()
	img := image.NewGray(image.Rect(0, 0, cols, rows))

	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := m.At(y, x)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	span := hi - lo
	if span == 0 {
		return img
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := (m.At(y, x) - lo) / span
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(v * 255))})
		}
	}
	return img
}

// Resize scales img to exactly width x height, ignoring aspect ratio.
func Resize(img image.Image, width, height int) *image.RGBA {
	return scale(draw.CatmullRom, img, width, height)
}

// Thumbnail is a cheaper Resize meant for previews.
func Thumbnail(img image.Image, width, height int) *image.RGBA {
	return scale(draw.ApproxBiLinear, img, width, height)
}

// Enlarge scales img by an integer factor keeping hard pixel edges.
func Enlarge(img image.Image, factor int) *image.RGBA {
	b := img.Bounds()
	return scale(draw.NearestNeighbor, img, b.Dx()*factor, b.Dy()*factor)
}

func scale(s draw.Scaler, img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	s.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Decode reads a PNG, JPEG or WebP image.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
