package assets

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-certmail/internal/fileutil"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadTemplate loads an embedded template by name.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// Load resolves a template reference. A bare name is looked up among the
// embedded templates; a path ("mail/thanks.md") is loaded from its
// directory, falling back to an embedded template of the same name.
func Load(ref string) (string, error) {
	if !isPathRef(ref) {
		return LoadTemplate(ref)
	}

	resolver, err := NewAssetResolver(filepath.Dir(ref))
	if err != nil {
		return "", err
	}
	return resolver.LoadTemplate(strings.TrimSuffix(filepath.Base(ref), TemplateExt))
}

func isPathRef(ref string) bool {
	return fileutil.IsFilePath(ref) || strings.HasSuffix(ref, TemplateExt)
}
