package discover

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/tormodhaugland/pv/internal/previewtree"
	"gopkg.in/yaml.v3"
)

// ManifestNames are looked up in the previews directory when no manifest
// is configured.
var ManifestNames = []string{"previews.yaml", "previews.yml", "previews.json"}

type manifestFile struct {
	Previews []previewtree.Preview `json:"previews" yaml:"previews"`
}

// LoadManifest reads a preview list from a YAML or JSON file.
//
//	previews:
//	  - group: email/Welcome
//	    items: [Default, Dark]
func LoadManifest(path string) ([]previewtree.Preview, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}

	var m manifestFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &m)
	} else {
		err = yaml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}

	previews := make([]previewtree.Preview, 0, len(m.Previews))
	for _, p := range m.Previews {
		if p.Items == nil {
			p.Items = []string{}
		}
		previews = append(previews, p)
	}
	return previews, nil
}

// FindManifest returns the first of ManifestNames present in dir, or "".
func FindManifest(dir string) string {
	for _, name := range ManifestNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
