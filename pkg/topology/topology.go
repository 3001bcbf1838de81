// Package topology loads a service dependency graph description from disk,
// accepting either JSON or YAML depending on the file extension.
package topology

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jihwankim/cascadesim/pkg/graph"
)

// document is the on-disk shape: a flat list of service descriptors.
type document struct {
	Services []graph.NodeDescriptor `json:"services" yaml:"services"`
}

// Load reads a topology file and returns its service descriptors, ready
// to pass to graph.Build. JSON is the default format; files ending in
// .yaml or .yml are parsed as YAML.
func Load(path string) ([]graph.NodeDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("topology: read file: %w", err)
	}

	var doc document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("topology: parse YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("topology: parse JSON: %w", err)
		}
	}

	if len(doc.Services) == 0 {
		return nil, fmt.Errorf("topology: %s declares no services", path)
	}

	return doc.Services, nil
}
