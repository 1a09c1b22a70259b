package versiondiff

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/catalog"
)

// fixedZipTime keeps exported bundles byte-for-byte reproducible
// (1980-01-01 UTC).
var fixedZipTime = time.Unix(315532800, 0).UTC()

// BundleName builds the download file name for an export bundle, e.g.
// "Changed-1.20.1-to-1.20.2-Java.zip".
func BundleName(kind, fromID, toID, edition string) string {
	label := "Java"
	if edition == catalog.EditionBedrock {
		label = "Bedrock"
	}
	return fmt.Sprintf("%s-%s-to-%s-%s.zip", kind, fromID, toID, label)
}

// WriteBundle zips the named assets in sorted order. Paths with no bytes in
// the map are skipped rather than failing the whole export.
func WriteBundle(w io.Writer, paths []string, assets map[string][]byte) error {
	zw := zip.NewWriter(w)
	for _, p := range sortedCopy(paths) {
		data, ok := assets[p]
		if !ok || data == nil {
			continue
		}
		if err := writeEntry(zw, p, data); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

// WriteHighlightedBundle zips a rendered highlight image for every changed
// asset, plus a README describing the color legend and any per-asset
// warnings. Changed mcmeta files are text, so they get a unified patch
// instead of an image. Assets whose images cannot be rendered are listed in
// the README rather than aborting the export.
func WriteHighlightedBundle(w io.Writer, changed []string, from, to map[string][]byte, opts RenderOptions) error {
	zw := zip.NewWriter(w)

	var warnings, failures []string
	for _, p := range sortedCopy(changed) {
		fromData, okFrom := from[p]
		toData, okTo := to[p]
		if !okFrom || !okTo {
			failures = append(failures, p)
			continue
		}

		if strings.HasSuffix(p, ".mcmeta") {
			patch, err := unifiedPatch(p, fromData, toData)
			if err != nil {
				log.WithError(err).WithField("asset", p).Warn("could not build patch for changed asset")
				failures = append(failures, p)
				continue
			}
			if err := writeEntry(zw, p+".patch", []byte(patch)); err != nil {
				zw.Close()
				return err
			}
			continue
		}

		img, warning, err := RenderDiff(fromData, toData, opts)
		if err != nil {
			log.WithError(err).WithField("asset", p).Warn("could not render diff for changed asset")
			failures = append(failures, p)
			continue
		}
		if warning != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", p, warning))
		}
		if err := writeEntry(zw, p, img); err != nil {
			zw.Close()
			return err
		}
	}

	if err := writeEntry(zw, "README.txt", []byte(buildReadme(warnings, failures))); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func buildReadme(warnings, failures []string) string {
	var sb strings.Builder
	sb.WriteString("This archive contains the differences between the two selected versions.\n")
	sb.WriteString("Pixel Colour Key:\n")
	sb.WriteString("- Blue: Pixels that are unchanged between From and To.\n")
	sb.WriteString("- Magenta: Pixels that are different. The shade shows the magnitude of the difference.\n")

	if len(warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range warnings {
			sb.WriteString("- " + w + "\n")
		}
	}

	if len(failures) > 0 {
		sb.WriteString("\nWarning! Unable to show differences for some assets!\n\n")
		for _, f := range failures {
			sb.WriteString("- " + f + "\n")
		}
	}
	return sb.String()
}

func unifiedPatch(path string, from, to []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(from)),
		B:        splitLinesKeepNL(string(to)),
		FromFile: "from/" + path,
		ToFile:   "to/" + path,
		Context:  3,
	})
}

// splitLinesKeepNL keeps the trailing newline on each line, which produces
// cleaner unified hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	h := &zip.FileHeader{Name: sanitizePath(name), Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = fixedZipTime
	w, err := zw.CreateHeader(h)
	if err != nil {
		return fmt.Errorf("create %s: %v", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %v", name, err)
	}
	return nil
}

// sanitizePath normalizes a zip entry path: forward slashes, no leading '/',
// no '.' or '..' segments.
func sanitizePath(p string) string {
	s := strings.TrimLeft(filepath.ToSlash(p), "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	if len(stack) == 0 {
		return "entry"
	}
	return strings.Join(stack, "/")
}

func sortedCopy(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	sort.Strings(out)
	return out
}
