package versiondiff

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// RenderOptions controls the colors used by RenderDiff. Zero values fall
// back to opaque blue for unchanged pixels and magenta for changed ones.
type RenderOptions struct {
	SameColor color.NRGBA
	DiffColor color.NRGBA
}

// DefaultRenderOptions returns the standard highlight palette.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		SameColor: color.NRGBA{R: 0, G: 0, B: 255, A: 255},
		DiffColor: color.NRGBA{R: 255, G: 0, B: 255, A: 255},
	}
}

// RenderDiff produces a PNG highlighting the pixel differences between two
// encoded images. Unchanged pixels render in the same color; changed pixels
// render in the diff color with alpha scaled by the normalized RGB distance,
// so near-identical pixels come out nearly transparent. The canvas spans the
// larger of the two dimensions in each axis; when the inputs disagree on
// size, coordinates covered by only one image render as unchanged and a
// warning naming both sizes is returned alongside the image.
func RenderDiff(from, to []byte, opts RenderOptions) (data []byte, warning string, err error) {
	if opts.SameColor == (color.NRGBA{}) {
		opts.SameColor = DefaultRenderOptions().SameColor
	}
	if opts.DiffColor == (color.NRGBA{}) {
		opts.DiffColor = DefaultRenderOptions().DiffColor
	}

	imgFrom, err := decodeNRGBA(from)
	if err != nil {
		return nil, "", fmt.Errorf("decode source image: %v", err)
	}
	imgTo, err := decodeNRGBA(to)
	if err != nil {
		return nil, "", fmt.Errorf("decode target image: %v", err)
	}

	fw, fh := imgFrom.Bounds().Dx(), imgFrom.Bounds().Dy()
	tw, th := imgTo.Bounds().Dx(), imgTo.Bounds().Dy()
	if fw != tw || fh != th {
		warning = fmt.Sprintf("image sizes differ: %dx%d vs %dx%d", fw, fh, tw, th)
	}

	w, h := fw, fh
	if tw > w {
		w = tw
	}
	if th > h {
		h = th
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= fw || y >= fh || x >= tw || y >= th {
				out.SetNRGBA(x, y, opts.SameColor)
				continue
			}
			pf := imgFrom.NRGBAAt(x, y)
			pt := imgTo.NRGBAAt(x, y)
			if pf == pt {
				out.SetNRGBA(x, y, opts.SameColor)
				continue
			}
			diff := float64(absDiff(pf.R, pt.R)+absDiff(pf.G, pt.G)+absDiff(pf.B, pt.B)) / 3.0
			c := opts.DiffColor
			c.A = uint8(diff / 255.0 * 255.0)
			out.SetNRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, "", fmt.Errorf("encode diff image: %v", err)
	}
	return buf.Bytes(), warning, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
