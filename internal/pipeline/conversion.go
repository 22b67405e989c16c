package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"l0-obliterator/internal/tensor"
)

// clamp01 clips a sample to the displayable [0, 1] range. The frequency
// solve can overshoot slightly near strong edges.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sample8 rescales a normalized sample to an 8-bit value with rounding.
func sample8(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

// matToTensor converts an 8-bit OpenCV Mat to a normalized tensor. OpenCV
// decodes color images as BGR; channels are reordered to RGB so the encode
// path agrees with the standard library.
func matToTensor(mat gocv.Mat) (*tensor.Dense, error) {
	rows := mat.Rows()
	cols := mat.Cols()
	channels := mat.Channels()

	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: Mat dimensions %dx%d", tensor.ErrInvalidImage, cols, rows)
	}
	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return nil, fmt.Errorf("%w: unsupported Mat type %v", tensor.ErrInvalidImage, mat.Type())
	}

	d, err := tensor.NewDense(rows, cols, channels)
	if err != nil {
		return nil, err
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			base := (y*cols + x) * channels
			switch channels {
			case 1:
				d.Data[base] = float64(mat.GetUCharAt(y, x)) / 255.0
			case 3, 4:
				b := mat.GetUCharAt(y, x*channels)
				g := mat.GetUCharAt(y, x*channels+1)
				r := mat.GetUCharAt(y, x*channels+2)
				d.Data[base] = float64(r) / 255.0
				d.Data[base+1] = float64(g) / 255.0
				d.Data[base+2] = float64(b) / 255.0
				if channels == 4 {
					d.Data[base+3] = float64(mat.GetUCharAt(y, x*channels+3)) / 255.0
				}
			}
		}
	}

	return d, nil
}

// imageToTensor converts a standard-library image to a normalized tensor.
// Grayscale sources become single-channel tensors, everything else three
// RGB channels.
func imageToTensor(img image.Image) (*tensor.Dense, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", tensor.ErrInvalidImage)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if gray, ok := img.(*image.Gray); ok {
		d, err := tensor.NewDense(height, width, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				v := gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
				d.Data[y*width+x] = float64(v) / 255.0
			}
		}
		return d, nil
	}

	d, err := tensor.NewDense(height, width, 3)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			base := (y*width + x) * 3
			d.Data[base] = float64(r>>8) / 255.0
			d.Data[base+1] = float64(g>>8) / 255.0
			d.Data[base+2] = float64(b>>8) / 255.0
		}
	}
	return d, nil
}

// tensorToImage rescales a normalized tensor to 8-bit samples and wraps it
// in a standard-library image for encoding.
func tensorToImage(d *tensor.Dense) (image.Image, error) {
	if err := tensor.Validate(d); err != nil {
		return nil, err
	}

	switch d.C {
	case 1:
		img := image.NewGray(image.Rect(0, 0, d.W, d.H))
		for y := 0; y < d.H; y++ {
			for x := 0; x < d.W; x++ {
				img.SetGray(x, y, color.Gray{Y: sample8(d.Data[y*d.W+x])})
			}
		}
		return img, nil
	case 3, 4:
		img := image.NewRGBA(image.Rect(0, 0, d.W, d.H))
		for y := 0; y < d.H; y++ {
			for x := 0; x < d.W; x++ {
				base := (y*d.W + x) * d.C
				a := uint8(255)
				if d.C == 4 {
					a = sample8(d.Data[base+3])
				}
				img.SetRGBA(x, y, color.RGBA{
					R: sample8(d.Data[base]),
					G: sample8(d.Data[base+1]),
					B: sample8(d.Data[base+2]),
					A: a,
				})
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: cannot encode %d channels", tensor.ErrInvalidImage, d.C)
	}
}
