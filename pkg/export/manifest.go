package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// ManifestName is the file WriteManifest produces.
const ManifestName = "manifest.yaml"

// Manifest summarises one written dataset.
type Manifest struct {
	RunID       string              `yaml:"run_id"`
	Seed        uint64              `yaml:"seed"`
	Version     string              `yaml:"version"`
	GeneratedAt time.Time           `yaml:"generated_at"`
	Sinks       []string            `yaml:"sinks"`
	RecordSets  []ManifestRecordSet `yaml:"record_sets"`
}

// ManifestRecordSet describes one record set in the manifest.
type ManifestRecordSet struct {
	Name    string   `yaml:"name"`
	Rows    int      `yaml:"rows"`
	Columns []string `yaml:"columns"`
}

// BuildManifest describes ds as written to sinks.
func BuildManifest(ds *models.Dataset, version string, sinks []string, now time.Time) *Manifest {
	m := &Manifest{
		RunID:       ds.RunID.String(),
		Seed:        ds.Seed,
		Version:     version,
		GeneratedAt: now.UTC(),
		Sinks:       sinks,
	}
	for _, rs := range ds.RecordSets() {
		m.RecordSets = append(m.RecordSets, ManifestRecordSet{
			Name:    rs.Name,
			Rows:    rs.Len(),
			Columns: rs.Columns,
		})
	}
	return m
}

// WriteManifest writes m to dir/manifest.yaml.
func WriteManifest(dir string, m *Manifest) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads dir/manifest.yaml.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
