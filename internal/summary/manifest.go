package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tjma12/gwsumm/internal/tabs"
)

// ManifestName is written at the output root after every run.
const ManifestName = "manifest.json"

// ManifestTab describes one written tab.
type ManifestTab struct {
	Name   string   `json:"name"`
	Parent string   `json:"parent,omitempty"`
	Kind   string   `json:"kind"`
	Path   string   `json:"path"`
	States []string `json:"states"`
	Plots  []string `json:"plots,omitempty"`
}

// Manifest is the JSON record of a run.
type Manifest struct {
	GeneratedAt string        `json:"generated_at"`
	IFO         string        `json:"ifo"`
	Mode        string        `json:"mode"`
	GPSStart    int64         `json:"gps_start"`
	GPSEnd      int64         `json:"gps_end"`
	Start       string        `json:"start"`
	End         string        `json:"end"`
	ConfigFiles []string      `json:"config_files"`
	Tabs        []ManifestTab `json:"tabs"`
}

// BuildManifest records the tabs of run in declaration order.
func BuildManifest(run *Run, now time.Time) Manifest {
	env := run.Env
	manifest := Manifest{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		IFO:         env.IFO,
		Mode:        env.Mode.String(),
		GPSStart:    env.Span.Start,
		GPSEnd:      env.Span.End,
		Start:       env.Span.StartUTC().Format(time.RFC3339),
		End:         env.Span.EndUTC().Format(time.RFC3339),
		ConfigFiles: append([]string(nil), env.Config.Files...),
		Tabs:        make([]ManifestTab, 0, len(run.Tabs)),
	}
	for _, tab := range run.Tabs {
		info := tab.Info()
		entry := ManifestTab{
			Name:   info.Name,
			Parent: info.ParentName,
			Kind:   string(info.Kind),
			Path:   info.Path(),
			States: info.States,
		}
		if plots, ok := tab.(*tabs.PlotsTab); ok {
			for _, out := range plots.Outputs {
				entry.Plots = append(entry.Plots, out.File)
			}
		}
		manifest.Tabs = append(manifest.Tabs, entry)
	}
	return manifest
}

// WriteManifest writes manifest as indented JSON.
func WriteManifest(path string, manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest JSON: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest JSON: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by an earlier run.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest JSON: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest JSON: %w", err)
	}
	return &manifest, nil
}
