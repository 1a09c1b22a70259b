package versiondiff

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/mullak99/MCTools/catalog"
)

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip open: %v", err)
	}
	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("zip entry %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("zip entry %s: %v", f.Name, err)
		}
		out[f.Name] = string(body)
	}
	return out
}

func TestBundleName(t *testing.T) {
	cases := []struct {
		kind, from, to, edition, want string
	}{
		{"Added", "1.20.1", "1.20.2", catalog.EditionJava, "Added-1.20.1-to-1.20.2-Java.zip"},
		{"Changed_Highlighted", "1.20.30.2", "1.20.40.20", catalog.EditionBedrock, "Changed_Highlighted-1.20.30.2-to-1.20.40.20-Bedrock.zip"},
	}
	for _, c := range cases {
		if got := BundleName(c.kind, c.from, c.to, c.edition); got != c.want {
			t.Errorf("BundleName = %q, want %q", got, c.want)
		}
	}
}

func TestWriteBundle(t *testing.T) {
	assets := map[string][]byte{
		"textures/a.png": []byte("aaa"),
		"textures/b.png": []byte("bbb"),
	}

	var buf bytes.Buffer
	err := WriteBundle(&buf, []string{"textures/b.png", "textures/a.png", "textures/missing.png"}, assets)
	if err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}

	entries := readZip(t, buf.Bytes())
	if len(entries) != 2 {
		t.Fatalf("bundle has %d entries, want 2 (missing paths skipped)", len(entries))
	}
	if entries["textures/a.png"] != "aaa" || entries["textures/b.png"] != "bbb" {
		t.Errorf("entries = %v", entries)
	}
}

func TestWriteHighlightedBundle(t *testing.T) {
	imgFrom := makePNG(t, 2, 2, red, nil)
	imgTo := makePNG(t, 2, 2, red, map[image.Point]color.NRGBA{{X: 0, Y: 0}: blue})
	imgBig := makePNG(t, 4, 4, red, nil)

	from := map[string][]byte{
		"textures/a.png":        imgFrom,
		"textures/resized.png":  imgFrom,
		"textures/broken.png":   []byte("not an image"),
		"textures/a.png.mcmeta": []byte("{\n  \"animation\": {}\n}\n"),
	}
	to := map[string][]byte{
		"textures/a.png":        imgTo,
		"textures/resized.png":  imgBig,
		"textures/broken.png":   []byte("still not an image"),
		"textures/a.png.mcmeta": []byte("{\n  \"animation\": {\"frametime\": 2}\n}\n"),
	}
	changed := []string{"textures/a.png", "textures/resized.png", "textures/broken.png", "textures/a.png.mcmeta"}

	var buf bytes.Buffer
	if err := WriteHighlightedBundle(&buf, changed, from, to, RenderOptions{}); err != nil {
		t.Fatalf("WriteHighlightedBundle: %v", err)
	}
	entries := readZip(t, buf.Bytes())

	if _, ok := entries["textures/a.png"]; !ok {
		t.Error("rendered diff image missing from bundle")
	}
	if _, ok := entries["textures/resized.png"]; !ok {
		t.Error("dimension-mismatched diff image missing from bundle")
	}
	if _, ok := entries["textures/broken.png"]; ok {
		t.Error("unrenderable asset written to bundle")
	}

	patch, ok := entries["textures/a.png.mcmeta.patch"]
	if !ok {
		t.Fatal("mcmeta patch missing from bundle")
	}
	if !strings.Contains(patch, "+") || !strings.Contains(patch, "frametime") {
		t.Errorf("patch does not look like a unified diff:\n%s", patch)
	}

	readme, ok := entries["README.txt"]
	if !ok {
		t.Fatal("README.txt missing from bundle")
	}
	if !strings.Contains(readme, "Blue") || !strings.Contains(readme, "Magenta") {
		t.Error("README does not describe the color legend")
	}
	if !strings.Contains(readme, "textures/resized.png") {
		t.Error("README does not list the dimension warning")
	}
	if !strings.Contains(readme, "textures/broken.png") {
		t.Error("README does not list the unrenderable asset")
	}
}

func TestSanitizePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"textures/a.png", "textures/a.png"},
		{"/textures/a.png", "textures/a.png"},
		{"textures/../../etc/passwd", "etc/passwd"},
		{"..", "entry"},
	}
	for _, c := range cases {
		if got := sanitizePath(c.in); got != c.want {
			t.Errorf("sanitizePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
