// Package versiondiff performs deep comparison of two extracted asset sets,
// classifying each path as unchanged, changed, added or removed, and
// rendering per-pixel highlight images for the changed ones.
package versiondiff

import (
	"bytes"
	"crypto/sha1"
	"image"
	"image/draw"
	"sort"

	_ "image/png"
)

// Classification partitions the union of two asset sets. Every path present
// in either input lands in exactly one bucket. Slices are sorted.
type Classification struct {
	Same      []string `json:"same"`
	Different []string `json:"different"`
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
}

// Classify compares two path -> bytes maps. Identical bytes are detected by
// digest without decoding. When digests differ the entries are decoded and
// compared pixel by pixel, so re-encoded but visually identical images still
// count as unchanged. Entries that cannot be decoded as images fall back to
// the byte verdict.
func Classify(from, to map[string][]byte) Classification {
	var c Classification

	for _, path := range sortedKeys(from) {
		toData, ok := to[path]
		if !ok {
			c.Removed = append(c.Removed, path)
			continue
		}
		if sha1.Sum(from[path]) == sha1.Sum(toData) {
			c.Same = append(c.Same, path)
			continue
		}
		if imagesIdentical(from[path], toData) {
			c.Same = append(c.Same, path)
		} else {
			c.Different = append(c.Different, path)
		}
	}

	for _, path := range sortedKeys(to) {
		if _, ok := from[path]; !ok {
			c.Added = append(c.Added, path)
		}
	}

	return c
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func imagesIdentical(a, b []byte) bool {
	imgA, err := decodeNRGBA(a)
	if err != nil {
		return false
	}
	imgB, err := decodeNRGBA(b)
	if err != nil {
		return false
	}

	if imgA.Bounds().Dx() != imgB.Bounds().Dx() || imgA.Bounds().Dy() != imgB.Bounds().Dy() {
		return false
	}

	for y := 0; y < imgA.Bounds().Dy(); y++ {
		for x := 0; x < imgA.Bounds().Dx(); x++ {
			if imgA.NRGBAAt(x, y) != imgB.NRGBAAt(x, y) {
				return false
			}
		}
	}
	return true
}

func decodeNRGBA(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n, nil
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst, nil
}
