package topology_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jihwankim/cascadesim/pkg/topology"
)

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.json")
	os.WriteFile(path, []byte(`{"services":[{"name":"A","health":1.0},{"name":"B","depends_on":["A"],"health":1.0}]}`), 0o644)

	descs, err := topology.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("expected 2 services, got %d", len(descs))
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.yaml")
	os.WriteFile(path, []byte("services:\n  - name: A\n    health: 1.0\n  - name: B\n    depends_on: [A]\n    health: 1.0\n"), 0o644)

	descs, err := topology.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("expected 2 services, got %d", len(descs))
	}
}

func TestLoad_EmptyServicesErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.json")
	os.WriteFile(path, []byte(`{"services":[]}`), 0o644)

	if _, err := topology.Load(path); err == nil {
		t.Error("expected error for empty services list")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := topology.Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
