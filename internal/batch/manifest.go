package batch

import (
	"encoding/json"
	"os"
)

// Manifest describes one snapshot run.
type Manifest struct {
	Model     string          `json:"model"`
	Mesh      string          `json:"mesh"`
	Triangles int             `json:"triangles"`
	Size      int             `json:"size"`
	Pitch     float64         `json:"pitch"`
	Views     []ManifestEntry `json:"views"`
}

// ManifestEntry represents one rendered view in the output manifest.
type ManifestEntry struct {
	View  int     `json:"view"`
	Yaw   float64 `json:"yaw"`
	Image string  `json:"image"`
}

// WriteManifest writes the successful views of results to path.
func WriteManifest(path string, m Manifest, results []Result) error {
	m.Views = make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		m.Views = append(m.Views, ManifestEntry{View: r.View, Yaw: r.Yaw, Image: r.File})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
