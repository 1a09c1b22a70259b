package pack

import (
	"archive/zip"
	"bytes"
	"errors"
	"sort"
	"testing"

	"github.com/mullak99/MCTools/catalog"
	"github.com/mullak99/MCTools/common/commonerr"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func equalSorted(t *testing.T, got, want []string) {
	t.Helper()
	g := append([]string(nil), got...)
	w := append([]string(nil), want...)
	sort.Strings(g)
	sort.Strings(w)
	if len(g) != len(w) {
		t.Fatalf("got %v, want %v", g, w)
	}
	for i := range w {
		if g[i] != w[i] {
			t.Fatalf("got %v, want %v", g, w)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Run("JavaAcceptsZipOnly", func(t *testing.T) {
		if err := Validate("pack.zip", 1024, catalog.EditionJava, 0); err != nil {
			t.Errorf("zip rejected: %v", err)
		}
		if err := Validate("pack.mcpack", 1024, catalog.EditionJava, 0); err == nil {
			t.Error("mcpack accepted for java")
		}
	})

	t.Run("BedrockAcceptsMcpack", func(t *testing.T) {
		if err := Validate("pack.mcpack", 1024, catalog.EditionBedrock, 0); err != nil {
			t.Errorf("mcpack rejected: %v", err)
		}
		if err := Validate("pack.zip", 1024, catalog.EditionBedrock, 0); err != nil {
			t.Errorf("zip rejected: %v", err)
		}
	})

	t.Run("SizeAndTypeReportedTogether", func(t *testing.T) {
		err := Validate("pack.rar", MaxFileSizeBytes+1, catalog.EditionJava, 0)
		if err == nil {
			t.Fatal("oversized rar accepted")
		}
		var verr *commonerr.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("got %T, want *ValidationError", err)
		}
		if len(verr.Messages) != 2 {
			t.Fatalf("messages = %v, want both size and type violations", verr.Messages)
		}
	})
}

func TestLoadJavaBase(t *testing.T) {
	data := buildZip(t, map[string]string{
		"pack.mcmeta": `{"pack":{"pack_format":15}}`,
		"pack.png":    "icon",
		"assets/minecraft/textures/block/stone.png":         "png",
		"assets/minecraft/textures/block/fire_0.png.mcmeta": "{}",
		"assets/minecraft/sounds.json":                      "{}",
	})

	p, err := Load("pack.zip", data, catalog.EditionJava, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(p.Overlays) != 0 {
		t.Errorf("pack without overlay metadata has %d overlays", len(p.Overlays))
	}
	equalSorted(t, p.BaseAssets.Textures, []string{
		"pack.png",
		"assets/minecraft/textures/block/stone.png",
	})
	equalSorted(t, p.BaseAssets.McMetas, []string{
		"assets/minecraft/textures/block/fire_0.png.mcmeta",
	})
}

func TestLoadJavaOverlays(t *testing.T) {
	data := buildZip(t, map[string]string{
		"pack.mcmeta": `{"pack":{"pack_format":18},"overlays":{"entries":[` +
			`{"directory":"overlay_121","formats":[34]},` +
			`{"directory":"missing_dir","formats":[34]},` +
			`{"directory":"assets"}]}}`,
		"assets/minecraft/textures/block/stone.png":              "png",
		"overlay_121/assets/minecraft/textures/block/stone.png":  "png2",
		"overlay_121/assets/minecraft/textures/block/new.png":    "png3",
		"stray_dir/assets/minecraft/textures/block/ignored.png":  "png4",
	})

	p, err := Load("pack.zip", data, catalog.EditionJava, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Only declared directories that exist become overlays; "assets" never
	// does, and undeclared directories are dropped.
	if len(p.Overlays) != 1 || p.Overlays[0].Name != "overlay_121" {
		t.Fatalf("overlays = %+v, want exactly overlay_121", p.Overlays)
	}
	equalSorted(t, p.Overlays[0].Textures, []string{
		"assets/minecraft/textures/block/stone.png",
		"assets/minecraft/textures/block/new.png",
	})

	t.Run("EffectiveUnion", func(t *testing.T) {
		equalSorted(t, p.GetEffectiveTextures(), []string{
			"assets/minecraft/textures/block/stone.png",
			"assets/minecraft/textures/block/new.png",
		})

		if !p.SetOverlayEnabled("overlay_121", false) {
			t.Fatal("SetOverlayEnabled could not find the overlay")
		}
		equalSorted(t, p.GetEffectiveTextures(), []string{
			"assets/minecraft/textures/block/stone.png",
		})
		p.SetOverlayEnabled("overlay_121", true)
	})

	t.Run("ResolvePath", func(t *testing.T) {
		got, ok := p.ResolvePath("assets/minecraft/textures/block/new.png")
		if !ok || got != "overlay_121/assets/minecraft/textures/block/new.png" {
			t.Errorf("ResolvePath = %q, %v", got, ok)
		}

		got, ok = p.ResolvePath("assets/minecraft/textures/block/stone.png")
		if !ok || got != "assets/minecraft/textures/block/stone.png" {
			t.Errorf("ResolvePath = %q, %v (base must win)", got, ok)
		}

		if _, ok := p.ResolvePath("nope.png"); ok {
			t.Error("ResolvePath found a path that does not exist")
		}
	})
}

func TestLoadBedrock(t *testing.T) {
	data := buildZip(t, map[string]string{
		"textures/blocks/stone.png":  "png",
		"textures/entity/cow.tga":    "tga",
		"textures/terrain_texture.json": "{}",
		"manifest.json":              "{}",
	})

	p, err := Load("pack.mcpack", data, catalog.EditionBedrock, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(p.Overlays) != 0 {
		t.Errorf("bedrock pack has overlays: %+v", p.Overlays)
	}
	equalSorted(t, p.BaseAssets.Textures, []string{
		"textures/blocks/stone.png",
		"textures/entity/cow.tga",
	})
}

func TestLoadCorruptArchive(t *testing.T) {
	_, err := Load("pack.zip", []byte("this is not a zip"), catalog.EditionJava, 0)
	if !errors.Is(err, commonerr.ErrCorruptArchive) {
		t.Fatalf("got %v, want ErrCorruptArchive", err)
	}
}
