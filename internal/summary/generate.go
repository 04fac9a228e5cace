package summary

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tjma12/gwsumm/internal/site"
	"github.com/tjma12/gwsumm/internal/tabs"
)

// ProgressFunc is told how many tabs are done out of total.
type ProgressFunc func(done, total int)

// GenerateRequest configures a full generation run.
type GenerateRequest struct {
	Request
	// Progress, when set, is called after each tab is processed.
	Progress ProgressFunc
}

// GenerateResult is printed by the CLI after the pages are written.
type GenerateResult struct {
	IFO          string   `json:"ifo"`
	Mode         string   `json:"mode"`
	GPSStart     int64    `json:"gps_start"`
	GPSEnd       int64    `json:"gps_end"`
	OutputDir    string   `json:"output_dir"`
	ManifestPath string   `json:"manifest_path"`
	Tabs         int      `json:"tabs"`
	Plots        int      `json:"plots"`
	Channels     int      `json:"channels"`
	States       int      `json:"states"`
	Pages        []string `json:"pages"`
	DurationMS   int64    `json:"duration_ms"`
}

// Generate runs the whole pipeline: prepare, process every tab in
// declaration order, then write the about page, every tab page, the root
// index and the manifest.
func Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	start := time.Now()
	run, err := Prepare(ctx, req.Request)
	if err != nil {
		return nil, err
	}
	defer run.Close()

	if err := run.OpenData(ctx); err != nil {
		return nil, err
	}
	env := run.Env
	if err := site.EnsureDir(env.OutputDir); err != nil {
		return nil, err
	}
	if err := site.EnsureDir(env.PlotDir()); err != nil {
		return nil, err
	}

	done := 0
	err = tabs.ProcessAll(ctx, env, run.Tabs, func(tab tabs.Tab) {
		done++
		if req.Progress != nil {
			req.Progress(done, len(run.Tabs))
		}
	})
	if err != nil {
		return nil, err
	}
	run.log("tabs processed", "tabs", len(run.Tabs))

	about := tabs.NewAboutTab()
	if err := about.Process(ctx, env); err != nil {
		return nil, fmt.Errorf("process about tab: %w", err)
	}

	resources, err := site.ResourcesFromConfig(env.Config)
	if err != nil {
		return nil, fmt.Errorf("read html resources: %w", err)
	}
	writer := &site.Writer{
		OutputDir: env.OutputDir,
		Resources: resources,
		IFO:       env.IFO,
		Span:      env.Span,
		Mode:      env.Mode,
		Nav:       run.Roots,
		About:     about,
		Logger:    env.Logger,
	}
	pages, err := writer.WriteAll(run.Tabs)
	if err != nil {
		return nil, err
	}

	manifest := BuildManifest(run, time.Now())
	manifestPath := filepath.Join(env.OutputDir, ManifestName)
	if err := WriteManifest(manifestPath, manifest); err != nil {
		return nil, err
	}
	run.log("pages written", "pages", len(pages), "output_dir", env.OutputDir)

	plots := 0
	for _, tab := range manifest.Tabs {
		plots += len(tab.Plots)
	}
	return &GenerateResult{
		IFO:          env.IFO,
		Mode:         env.Mode.String(),
		GPSStart:     env.Span.Start,
		GPSEnd:       env.Span.End,
		OutputDir:    env.OutputDir,
		ManifestPath: manifestPath,
		Tabs:         len(run.Tabs),
		Plots:        plots,
		Channels:     env.Channels.Len(),
		States:       env.States.Len(),
		Pages:        pages,
		DurationMS:   time.Since(start).Milliseconds(),
	}, nil
}
