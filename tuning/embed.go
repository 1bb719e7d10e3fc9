package tuning

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.yaml
var PresetsFS embed.FS

// Load returns the named preset, preferring an edited copy on disk over the
// embedded default.
func Load(name string) ([]byte, error) {
	clean := cleanPresetPath(name)
	if data, err := os.ReadFile(diskPresetPath(clean)); err == nil {
		return data, nil
	}
	return PresetsFS.ReadFile(clean)
}

func cleanPresetPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if strings.HasPrefix(s, "tuning/") {
		return strings.TrimPrefix(s, "tuning/")
	}
	return s
}

func diskPresetPath(clean string) string {
	return filepath.Join("tuning", filepath.FromSlash(clean))
}
