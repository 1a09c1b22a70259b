package pack

import (
	"fmt"
	"strings"

	"github.com/mullak99/MCTools/catalog"
	"github.com/mullak99/MCTools/common/commonerr"
)

const (
	// MaxFileSizeMB is the default upload limit for resource packs.
	MaxFileSizeMB    = 100
	MaxFileSizeBytes = MaxFileSizeMB * 1024 * 1024
)

// Validate checks an upload's size and file type against the selected edition
// before any parsing happens. Every violated rule is reported; a nil return
// means the upload may be parsed. A maxBytes <= 0 uses the default limit.
func Validate(name string, size int64, edition string, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = MaxFileSizeBytes
	}

	var errors []string
	if size > maxBytes {
		errors = append(errors, fmt.Sprintf("Uploads cannot be greater than %dMB", maxBytes/(1024*1024)))
	}

	fileType := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		fileType = name[i+1:]
	}
	if edition == catalog.EditionJava {
		if fileType != "zip" {
			errors = append(errors, "Only zip files are supported")
		}
	} else {
		if fileType != "zip" && fileType != "mcpack" {
			errors = append(errors, "Only zip and mcpack files are supported")
		}
	}

	if len(errors) > 0 {
		return commonerr.NewValidationError(errors...)
	}
	return nil
}

// SupportedPackFormats lists the accepted upload extensions for an edition.
func SupportedPackFormats(edition string) string {
	if edition == catalog.EditionJava {
		return ".zip"
	}
	return ".zip, .mcpack"
}
